package sim

import (
	"math"

	"github.com/milk9111/npcsense/ai"
	"github.com/milk9111/npcsense/common"
	"github.com/milk9111/npcsense/ecs"
	"github.com/milk9111/npcsense/ecs/component"
)

// Mover is the movement executor. It reports arrival within the intent's
// stop distance. An error is logged and the entity is skipped for the tick.
type Mover interface {
	Move(w *ecs.World, e ecs.Entity, intent ai.Intent, dt float64) (arrived bool, err error)
}

// LineMover walks straight at BaseSpeed scaled by the intent's multiplier
// and turns to face where it is going. It ignores obstacles.
type LineMover struct {
	BaseSpeed float64
	// TurnRate caps heading change in radians per second. Zero snaps.
	TurnRate float64
}

func (m LineMover) Move(w *ecs.World, e ecs.Entity, intent ai.Intent, dt float64) (bool, error) {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return false, nil
	}

	if p, ok := ecs.Get(w, e, component.PerceptComponent.Kind()); ok && !intent.HasDestination() {
		if primary, ok := p.Result.Primary(); ok {
			t.Heading = m.turn(t.Heading, common.HeadingTo(t.Position, primary.Position), dt)
		}
	}
	if !intent.HasDestination() {
		return false, nil
	}

	dest := *intent.Destination
	dist := t.Position.Distance(dest)
	if dist <= intent.StopDistance {
		return true, nil
	}
	step := m.BaseSpeed * intent.SpeedMultiplier * dt
	if step <= 0 {
		return false, nil
	}
	t.Heading = m.turn(t.Heading, common.HeadingTo(t.Position, dest), dt)
	if step >= dist {
		t.Position = dest
		return true, nil
	}
	t.Position = t.Position.Add(dest.Sub(t.Position).Normalize().Mult(step))
	return t.Position.Distance(dest) <= intent.StopDistance, nil
}

func (m LineMover) turn(from, to, dt float64) float64 {
	if m.TurnRate <= 0 {
		return to
	}
	diff := common.NormalizeAngle(to - from)
	limit := m.TurnRate * dt
	if math.Abs(diff) <= limit {
		return to
	}
	return common.NormalizeAngle(from + math.Copysign(limit, diff))
}
