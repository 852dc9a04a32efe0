package ai

import "github.com/jakecoffman/cp"

// Intent is what the agent wants the movement and combat collaborators to
// do this tick. A nil Destination means hold position.
type Intent struct {
	Destination     *cp.Vector
	SpeedMultiplier float64
	AttackRequested bool
	StopDistance    float64
}

func (i Intent) HasDestination() bool {
	return i.Destination != nil
}
