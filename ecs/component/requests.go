package component

import "github.com/milk9111/npcsense/ai"

// Requests below are one-shot: the behavior system consumes and removes
// them on the next tick.

// DeathNotice is raised by the combat collaborator.
type DeathNotice struct{}

// ArrivalReport is raised by the movement executor when it reaches the
// last destination within stop distance.
type ArrivalReport struct{}

// StateCommand forces a state change from outside.
type StateCommand struct {
	Command ai.Command
}

var DeathNoticeComponent = NewComponent[DeathNotice]()
var ArrivalReportComponent = NewComponent[ArrivalReport]()
var StateCommandComponent = NewComponent[StateCommand]()
