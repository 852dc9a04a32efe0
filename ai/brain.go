package ai

import (
	"math"
	"math/rand/v2"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcsense/common"
	"github.com/milk9111/npcsense/faction"
	"github.com/milk9111/npcsense/perception"
)

// Command asks an agent to switch state from outside, e.g. a squad order.
type Command struct {
	State  State
	Leader common.Entity
	Point  *cp.Vector
}

// FactionWriter lets scripted rules request relation changes. The
// simulation hands in a frozen table, so writes land at the tick boundary.
type FactionWriter interface {
	faction.Resolver
	SetRelation(a, b faction.ID, r faction.Relation)
}

// Input is everything the brain may read for one agent in one tick.
type Input struct {
	Self     common.Entity
	Faction  faction.ID
	Position cp.Vector
	Dt       float64
	Percept  perception.Result
	Died     bool
	Command  *Command
	// Arrived is the movement executor's report for the last destination.
	Arrived bool
	// Locate resolves an entity in the tick snapshot.
	Locate     func(common.Entity) (cp.Vector, bool)
	Blackboard map[string]float64
	Factions   FactionWriter
}

func (in *Input) locate(e common.Entity) (cp.Vector, bool) {
	if in.Locate == nil || !e.Valid() {
		return cp.Vector{}, false
	}
	return in.Locate(e)
}

// Agent is the mutable decision state of one NPC.
type Agent struct {
	Data      StateData
	Suspicion Suspicion
	Patrol    PatrolProgress

	wanderPicks uint64
}

// NewAgent spawns in Patrol when a path is preset, otherwise in the
// configured calm state.
func NewAgent(cfg Config) Agent {
	a := Agent{Suspicion: NewSuspicion(cfg.MaxSuspicion)}
	if !cfg.Path.Empty() {
		a.Data = PatrolState{}
		return a
	}
	switch calmDefault(cfg.Default) {
	case Wander:
		a.Data = WanderState{}
	case Turret:
		a.Data = TurretState{}
	default:
		a.Data = IdleState{}
	}
	return a
}

func (a *Agent) State() State {
	return stateOf(a.Data)
}

// Decision is the outcome of one tick.
type Decision struct {
	From     State
	To       State
	Rule     string
	Intent   Intent
	Warnings []error
}

func (d Decision) Changed() bool {
	return d.From != d.To
}

// Tick runs suspicion, then the first matching rule, then the active
// state's behaviour. Dead agents are never evaluated again.
func (a *Agent) Tick(cfg Config, rules *Rules, in Input) Decision {
	from := a.State()
	if from == Dead {
		return Decision{From: Dead, To: Dead}
	}
	if a.Data == nil {
		a.Data = IdleState{}
	}

	a.Suspicion.Max = math.Max(cfg.MaxSuspicion, 0)
	expired := a.Suspicion.Tick(in.Dt, in.Percept.Stimulus())

	ctx := &Context{Agent: a, Config: &cfg, Input: &in, Expired: expired}
	if in.Command != nil && in.Command.State == Dead {
		ctx.Warn(ErrInvalidCommand)
		in.Command = nil
	}

	dec := Decision{From: from}
	if rule, ok := rules.Match(ctx); ok {
		dec.Rule = rule.Name
		a.Data = a.enter(ctx, rule.Target(ctx))
	}
	dec.Intent = a.act(ctx)
	dec.To = a.State()
	dec.Warnings = ctx.warnings
	return dec
}

// enter builds the variant for to. Entering the current state refreshes it.
func (a *Agent) enter(ctx *Context, to State) StateData {
	cur := a.State()
	in := ctx.Input
	switch to {
	case Idle:
		return IdleState{}
	case Wander:
		if v, ok := a.Data.(WanderState); ok {
			return v
		}
		return WanderState{}
	case Patrol:
		if ctx.Config.Path.Empty() {
			ctx.Warn(ErrEmptyPatrolPath)
			return IdleState{}
		}
		if cur != Patrol {
			a.Patrol.Interrupt()
		}
		return PatrolState{}
	case Follow:
		leader, _ := Target(a.Data)
		if in.Command != nil && in.Command.State == Follow {
			leader = in.Command.Leader
		}
		if _, ok := in.locate(leader); !ok {
			ctx.Warn(ErrInvalidTargetReference)
			return IdleState{}
		}
		return FollowState{Leader: leader}
	case Suspect:
		a.Suspicion.Reset()
		return SuspectState{Investigate: a.investigatePoint(ctx)}
	case Chase:
		if p, ok := ctx.Primary(); ok {
			return ChaseState{Target: p.ID, LastKnown: at(p.Position)}
		}
		target, _ := Target(a.Data)
		next := ChaseState{Target: target}
		if pos, ok := in.locate(target); ok {
			next.LastKnown = at(pos)
		} else if lk, ok := ctx.LastKnown(); ok {
			next.LastKnown = at(lk)
		}
		return next
	case Attack:
		p, ok := ctx.Primary()
		if !ok || p.Distance > ctx.Config.AttackRange {
			// Attack needs a visible enemy in reach at the moment of entry.
			ctx.Warn(ErrInvalidCommand)
			_, remembered := ctx.LastKnown()
			if _, hunting := Target(a.Data); ok || remembered || (hunting && a.State() != Follow) {
				return a.enter(ctx, Chase)
			}
			return IdleState{}
		}
		next := AttackState{Target: p.ID, LastKnown: at(p.Position)}
		if v, ok := a.Data.(AttackState); ok && v.Target == p.ID {
			next.Elapsed = v.Elapsed
		}
		return next
	case Hide:
		return HideState{Threat: a.threatPoint(ctx)}
	case Flee:
		return FleeState{Threat: a.threatPoint(ctx)}
	case Combat:
		next := CombatState{Threat: a.threatPoint(ctx)}
		if p, ok := ctx.Primary(); ok {
			next.Target = p.ID
		} else if target, ok := Target(a.Data); ok {
			next.Target = target
		}
		return next
	case Turret:
		return TurretState{}
	case Dead:
		if !in.Died {
			ctx.Warn(ErrInvalidCommand)
			return a.Data
		}
		a.Patrol.Interrupt()
		return DeadState{}
	}
	return IdleState{}
}

// act produces the tick's intent for the active state.
func (a *Agent) act(ctx *Context) Intent {
	cfg := ctx.Config
	in := ctx.Input
	intent := Intent{SpeedMultiplier: cfg.SpeedFor(a.State()), StopDistance: cfg.StopDistance}

	switch v := a.Data.(type) {
	case WanderState:
		intent.Destination = a.wander(ctx, v)
	case PatrolState:
		arrived := in.Arrived
		if a.Patrol.Index >= 0 && a.Patrol.Index < len(cfg.Path.Points) {
			arrived = arrived || in.Position.Distance(cfg.Path.Points[a.Patrol.Index]) <= cfg.StopDistance
		}
		dest, err := a.Patrol.Step(cfg.Path, cfg.WaitTime, arrived, in.Dt)
		if err != nil {
			ctx.Warn(err)
			a.Data = IdleState{}
			return Intent{StopDistance: cfg.StopDistance}
		}
		intent.Destination = at(dest)
	case FollowState:
		pos, ok := in.locate(v.Leader)
		if !ok {
			ctx.Warn(ErrInvalidTargetReference)
			a.Data = IdleState{}
			return Intent{StopDistance: cfg.StopDistance}
		}
		intent.Destination = at(pos)
	case SuspectState:
		if h := in.Percept.Heard; h != nil {
			v.Investigate = h.Event.Origin
		} else if c := in.Percept.Cue; c != nil {
			v.Investigate = c.Position
		}
		a.Data = v
		intent.Destination = at(v.Investigate)
	case ChaseState:
		if v.Target.Valid() {
			if _, ok := in.locate(v.Target); !ok {
				ctx.Warn(ErrInvalidTargetReference)
				v.Target = 0
				a.Data = v
			}
		}
		if v.LastKnown != nil {
			intent.Destination = at(*v.LastKnown)
		}
	case AttackState:
		v.Elapsed += in.Dt
		if pos, ok := in.locate(v.Target); ok {
			intent.AttackRequested = in.Position.Distance(pos) <= cfg.AttackRange
		} else if v.Target.Valid() {
			ctx.Warn(ErrInvalidTargetReference)
			v.Target = 0
		}
		a.Data = v
	case FleeState:
		intent.Destination = at(common.Away(in.Position, v.Threat, cfg.FleeDistance))
	case CombatState:
		if p, ok := ctx.Primary(); ok {
			v.Target = p.ID
			v.Threat = p.Position
			intent.AttackRequested = p.Distance <= cfg.AttackRange
		}
		a.Data = v
	}

	if cfg.Stationary {
		intent.Destination = nil
		intent.SpeedMultiplier = 0
	}
	return intent
}

func (a *Agent) wander(ctx *Context, v WanderState) *cp.Vector {
	cfg := ctx.Config
	in := ctx.Input
	if cfg.WanderRadius <= 0 {
		return nil
	}
	arrived := v.Destination != nil && (in.Arrived || in.Position.Distance(*v.Destination) <= cfg.StopDistance)
	if v.Destination == nil || arrived {
		a.wanderPicks++
		rng := rand.New(rand.NewPCG(cfg.Seed, uint64(in.Self)*0x9e3779b97f4a7c15+a.wanderPicks))
		ang := rng.Float64() * 2 * math.Pi
		r := cfg.WanderRadius * math.Sqrt(rng.Float64())
		v.Destination = at(cfg.WanderCenter.Add(cp.ForAngle(ang).Mult(r)))
		a.Data = v
	}
	return at(*v.Destination)
}

// investigatePoint picks where a suspicious agent should look.
func (a *Agent) investigatePoint(ctx *Context) cp.Vector {
	in := ctx.Input
	if in.Command != nil && in.Command.State == Suspect && in.Command.Point != nil {
		return *in.Command.Point
	}
	if lk, ok := ctx.LastKnown(); ok {
		return lk
	}
	if p, ok := threatOf(a.Data); ok {
		return p
	}
	if h := in.Percept.Heard; h != nil {
		return h.Event.Origin
	}
	if c := in.Percept.Cue; c != nil {
		return c.Position
	}
	if v, ok := a.Data.(SuspectState); ok {
		return v.Investigate
	}
	return in.Position
}

// threatPoint picks what a fleeing or hiding agent is avoiding.
func (a *Agent) threatPoint(ctx *Context) cp.Vector {
	in := ctx.Input
	if p, ok := ctx.Primary(); ok {
		return p.Position
	}
	if lk, ok := ctx.LastKnown(); ok {
		return lk
	}
	if p, ok := threatOf(a.Data); ok {
		return p
	}
	if c := in.Percept.Cue; c != nil {
		return c.Position
	}
	if h := in.Percept.Heard; h != nil {
		return h.Event.Origin
	}
	return in.Position
}

func threatOf(d StateData) (cp.Vector, bool) {
	switch v := d.(type) {
	case FleeState:
		return v.Threat, true
	case HideState:
		return v.Threat, true
	case CombatState:
		return v.Threat, true
	}
	return cp.Vector{}, false
}

func at(p cp.Vector) *cp.Vector {
	return &p
}
