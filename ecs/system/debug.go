package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcsense/ai"
	"github.com/milk9111/npcsense/ecs"
	"github.com/milk9111/npcsense/ecs/component"
	"github.com/milk9111/npcsense/perception"
)

// DebugView is what a visualizer needs to draw one agent. It is a copy;
// nothing written to it flows back.
type DebugView struct {
	ID          ecs.Entity
	Archetype   string
	State       ai.State
	Position    cp.Vector
	Heading     float64
	FOV         float64
	VisionRange float64
	Suspicion   float64
	Visible     []perception.Sighting
}

// DebugViews lists every brain in spawn order.
func DebugViews(w *ecs.World) []DebugView {
	var out []DebugView
	ecs.ForEach(w, component.BrainComponent.Kind(), func(e ecs.Entity, brain *component.Brain) {
		v := DebugView{
			ID:        e,
			Archetype: brain.Archetype,
			State:     brain.Agent.State(),
			Suspicion: brain.Agent.Suspicion.Timer,
		}
		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			v.Position = t.Position
			v.Heading = t.Heading
		}
		if s, ok := ecs.Get(w, e, component.SensesComponent.Kind()); ok {
			v.FOV = s.Profile.FOV
			v.VisionRange = s.Profile.VisionRange
		}
		if p, ok := ecs.Get(w, e, component.PerceptComponent.Kind()); ok {
			v.Visible = append([]perception.Sighting(nil), p.Result.Visible...)
		}
		out = append(out, v)
	})
	return out
}
