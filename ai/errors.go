package ai

import (
	"errors"
	"fmt"

	"github.com/milk9111/npcsense/common"
)

var (
	// ErrInvalidTargetReference means a referenced entity no longer exists.
	ErrInvalidTargetReference = errors.New("ai: invalid target reference")
	// ErrEmptyPatrolPath means patrol was requested without waypoints.
	ErrEmptyPatrolPath = errors.New("ai: empty patrol path")
	// ErrInvalidCommand means an external state command was rejected.
	ErrInvalidCommand = errors.New("ai: invalid command")
	// ErrScript wraps failures from scripted rules.
	ErrScript = errors.New("ai: script rule failed")
)

// Warning is a recovered problem surfaced to the caller. None are fatal.
type Warning struct {
	Entity common.Entity
	State  State
	Err    error
}

func (w Warning) Error() string {
	return fmt.Sprintf("entity %s in %s: %v", w.Entity, w.State, w.Err)
}

func (w Warning) Unwrap() error {
	return w.Err
}
