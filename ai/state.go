package ai

import (
	"fmt"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcsense/common"
	"gopkg.in/yaml.v3"
)

// State is an agent's behavioral state.
type State int

const (
	Idle State = iota
	Wander
	Patrol
	Follow
	Suspect
	Chase
	Attack
	Hide
	Flee
	Combat
	Turret
	Dead
)

var stateNames = [...]string{
	Idle:    "idle",
	Wander:  "wander",
	Patrol:  "patrol",
	Follow:  "follow",
	Suspect: "suspect",
	Chase:   "chase",
	Attack:  "attack",
	Hide:    "hide",
	Flee:    "flee",
	Combat:  "combat",
	Turret:  "turret",
	Dead:    "dead",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// States lists every state in declaration order.
func States() []State {
	out := make([]State, 0, len(stateNames))
	for i := range stateNames {
		out = append(out, State(i))
	}
	return out
}

func ParseState(s string) (State, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return Idle, fmt.Errorf("ai: unknown state %q", s)
}

func (s *State) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("ai: state must be a string")
	}
	parsed, err := ParseState(value.Value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s State) MarshalYAML() (any, error) {
	return s.String(), nil
}

// Calm states are the ones an agent settles into with nothing going on.
func (s State) Calm() bool {
	switch s {
	case Idle, Wander, Patrol, Turret:
		return true
	}
	return false
}

// StateData is the tagged variant for the active state. Each variant holds
// only what that state needs, so nothing leaks between states.
type StateData interface {
	State() State
}

type IdleState struct{}

type WanderState struct {
	Destination *cp.Vector
}

// PatrolState carries nothing; route progress lives on Agent so it
// survives detours.
type PatrolState struct{}

type FollowState struct {
	Leader common.Entity
}

type SuspectState struct {
	Investigate cp.Vector
}

type ChaseState struct {
	Target    common.Entity
	LastKnown *cp.Vector
}

type AttackState struct {
	Target    common.Entity
	LastKnown *cp.Vector
	Elapsed   float64
}

type HideState struct {
	Threat cp.Vector
}

type FleeState struct {
	Threat cp.Vector
}

type CombatState struct {
	Target common.Entity
	Threat cp.Vector
}

type TurretState struct{}

type DeadState struct{}

func (IdleState) State() State    { return Idle }
func (WanderState) State() State  { return Wander }
func (PatrolState) State() State  { return Patrol }
func (FollowState) State() State  { return Follow }
func (SuspectState) State() State { return Suspect }
func (ChaseState) State() State   { return Chase }
func (AttackState) State() State  { return Attack }
func (HideState) State() State    { return Hide }
func (FleeState) State() State    { return Flee }
func (CombatState) State() State  { return Combat }
func (TurretState) State() State  { return Turret }
func (DeadState) State() State    { return Dead }

// stateOf tolerates a nil variant, which reads as Idle.
func stateOf(d StateData) State {
	if d == nil {
		return Idle
	}
	return d.State()
}

// Target returns the entity the variant is focused on, if any.
func Target(d StateData) (common.Entity, bool) {
	switch v := d.(type) {
	case ChaseState:
		return v.Target, v.Target.Valid()
	case AttackState:
		return v.Target, v.Target.Valid()
	case CombatState:
		return v.Target, v.Target.Valid()
	case FollowState:
		return v.Leader, v.Leader.Valid()
	}
	return 0, false
}
