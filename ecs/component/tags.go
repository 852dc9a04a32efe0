package component

// DeadTag hides an entity from everyone's senses.
type DeadTag struct{}

var DeadTagComponent = NewComponent[DeadTag]()
