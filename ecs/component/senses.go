package component

import "github.com/milk9111/npcsense/perception"

// Senses marks an entity as a perceiver.
type Senses struct {
	Profile perception.Profile
}

// Percept is the perception result for the current tick. It is overwritten
// every tick and never read across ticks.
type Percept struct {
	Result perception.Result
}

var SensesComponent = NewComponent[Senses]()
var PerceptComponent = NewComponent[Percept]()
