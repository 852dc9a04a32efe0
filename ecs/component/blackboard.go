package component

// Blackboard holds numeric facts scripted rules may read.
type Blackboard struct {
	Values map[string]float64
}

var BlackboardComponent = NewComponent[Blackboard]()
