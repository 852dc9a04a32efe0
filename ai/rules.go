package ai

import (
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcsense/perception"
)

// Predicate decides whether a rule applies this tick.
type Predicate func(ctx *Context) bool

// Rule is one row of the transition table.
type Rule struct {
	Priority int
	Name     string
	To       State
	When     Predicate
	// Resolve picks the target state at match time. When nil, To is used.
	Resolve func(ctx *Context) State
}

// Target returns the state this rule moves to for ctx.
func (r Rule) Target(ctx *Context) State {
	if r.Resolve != nil {
		return r.Resolve(ctx)
	}
	return r.To
}

// Rules is an ordered transition table. Lower priority values run first and
// the first matching rule is the only transition of the tick.
type Rules struct {
	list []Rule
}

// Rule priorities of the default table.
const (
	PriorityDeath            = 10
	PriorityCommand          = 15
	PriorityAttack           = 20
	PriorityChase            = 30
	PriorityLostTarget       = 40
	PriorityAlerted          = 50
	PrioritySuspicionExpired = 60
	PriorityOutOfRange       = 70
	PriorityTargetGone       = 80
	PriorityDisengage        = 85
	PriorityPatrol           = 90
	PriorityFallback         = 100
)

// NewRules sorts rules by priority. Rules sharing a priority keep their
// given order.
func NewRules(rules ...Rule) *Rules {
	list := append([]Rule(nil), rules...)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Priority < list[j].Priority
	})
	return &Rules{list: list}
}

// With returns a new table holding r's rules plus extra.
func (r *Rules) With(extra ...Rule) *Rules {
	var base []Rule
	if r != nil {
		base = r.list
	}
	return NewRules(append(append([]Rule(nil), base...), extra...)...)
}

// List returns a copy of the table in evaluation order.
func (r *Rules) List() []Rule {
	if r == nil {
		return nil
	}
	return append([]Rule(nil), r.list...)
}

// Match returns the first rule whose predicate holds.
func (r *Rules) Match(ctx *Context) (Rule, bool) {
	if r == nil {
		return Rule{}, false
	}
	for _, rule := range r.list {
		if rule.When != nil && rule.When(ctx) {
			return rule, true
		}
	}
	return Rule{}, false
}

// DefaultRules is the standard decision order.
func DefaultRules() *Rules {
	return NewRules(
		Rule{Priority: PriorityDeath, Name: "death", To: Dead, When: func(ctx *Context) bool {
			return ctx.Input.Died
		}},
		Rule{Priority: PriorityCommand, Name: "command", When: func(ctx *Context) bool {
			return ctx.Input.Command != nil
		}, Resolve: func(ctx *Context) State {
			return ctx.Input.Command.State
		}},
		Rule{Priority: PriorityAttack, Name: "attack", To: Attack, When: func(ctx *Context) bool {
			p, ok := ctx.Primary()
			return ok && p.Distance <= ctx.Config.AttackRange
		}},
		Rule{Priority: PriorityChase, Name: "chase", To: Chase, When: func(ctx *Context) bool {
			p, ok := ctx.Primary()
			return ok && p.Distance > ctx.Config.AttackRange
		}},
		Rule{Priority: PriorityLostTarget, Name: "lost_target", To: Suspect, When: func(ctx *Context) bool {
			if ctx.Sees() {
				return false
			}
			s := ctx.State()
			if s != Chase && s != Attack {
				return false
			}
			_, ok := ctx.LastKnown()
			return ok
		}},
		Rule{Priority: PriorityAlerted, Name: "alerted", To: Suspect, When: func(ctx *Context) bool {
			if !ctx.Input.Percept.Stimulus() {
				return false
			}
			switch ctx.State() {
			case Idle, Wander, Patrol, Follow:
				return true
			}
			return false
		}},
		Rule{Priority: PrioritySuspicionExpired, Name: "suspicion_expired", To: Idle, When: func(ctx *Context) bool {
			return ctx.State() == Suspect && (ctx.Expired || ctx.Agent.Suspicion.Timer <= 0)
		}},
		Rule{Priority: PriorityOutOfRange, Name: "out_of_range", To: Chase, When: func(ctx *Context) bool {
			if ctx.State() != Attack {
				return false
			}
			d, ok := ctx.TargetDistance()
			return ok && d > ctx.Config.AttackRange
		}},
		Rule{Priority: PriorityTargetGone, Name: "target_gone", To: Idle, When: func(ctx *Context) bool {
			if ctx.Sees() {
				return false
			}
			if _, ok := ctx.LastKnown(); ok {
				return false
			}
			switch ctx.State() {
			case Chase:
				return true
			case Attack:
				_, ok := ctx.TargetDistance()
				return !ok
			}
			return false
		}},
		Rule{Priority: PriorityDisengage, Name: "disengage", To: Suspect, When: func(ctx *Context) bool {
			switch ctx.State() {
			case Flee, Hide, Combat:
				return !ctx.Sees()
			}
			return false
		}},
		Rule{Priority: PriorityPatrol, Name: "patrol", To: Patrol, When: func(ctx *Context) bool {
			return ctx.State().Calm() && !ctx.Config.Path.Empty()
		}},
		Rule{Priority: PriorityFallback, Name: "fallback", When: func(ctx *Context) bool {
			return ctx.State().Calm() && ctx.Config.Path.Empty()
		}, Resolve: func(ctx *Context) State {
			return calmDefault(ctx.Config.Default)
		}},
	)
}

func calmDefault(s State) State {
	switch s {
	case Wander, Turret:
		return s
	}
	return Idle
}

// Context is what predicates and entry actions see.
type Context struct {
	Agent   *Agent
	Config  *Config
	Input   *Input
	Expired bool

	warnings []error
}

func (c *Context) State() State {
	return stateOf(c.Agent.Data)
}

// Warn records a recovered problem for this tick.
func (c *Context) Warn(err error) {
	c.warnings = append(c.warnings, err)
}

func (c *Context) Primary() (perception.Sighting, bool) {
	return c.Input.Percept.Primary()
}

func (c *Context) Sees() bool {
	_, ok := c.Primary()
	return ok
}

// LastKnown returns the remembered target position held by Chase or Attack.
func (c *Context) LastKnown() (cp.Vector, bool) {
	switch v := c.Agent.Data.(type) {
	case ChaseState:
		if v.LastKnown != nil {
			return *v.LastKnown, true
		}
	case AttackState:
		if v.LastKnown != nil {
			return *v.LastKnown, true
		}
	}
	return cp.Vector{}, false
}

// TargetDistance looks the current target up in the tick snapshot.
func (c *Context) TargetDistance() (float64, bool) {
	target, ok := Target(c.Agent.Data)
	if !ok {
		return 0, false
	}
	pos, ok := c.Input.locate(target)
	if !ok {
		return 0, false
	}
	return c.Input.Position.Distance(pos), true
}
