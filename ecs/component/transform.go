package component

import "github.com/jakecoffman/cp"

// Transform is where an entity stands and which way it faces (radians).
type Transform struct {
	Position cp.Vector
	Heading  float64
}

var TransformComponent = NewComponent[Transform]()
