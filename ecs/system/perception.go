package system

import (
	"github.com/milk9111/npcsense/ecs"
	"github.com/milk9111/npcsense/ecs/component"
	"github.com/milk9111/npcsense/faction"
	"github.com/milk9111/npcsense/perception"
)

// PerceptionSystem fills every living perceiver's Percept from the tick
// snapshot, the faction table, static geometry and this tick's noise.
type PerceptionSystem struct {
	Snapshot *Snapshot
	Resolver faction.Resolver
	Occluder perception.Occluder
	Noise    func() []perception.NoiseEvent
}

func (s *PerceptionSystem) Update(w *ecs.World) {
	if w == nil || s.Snapshot == nil {
		return
	}
	var noise []perception.NoiseEvent
	if s.Noise != nil {
		noise = s.Noise()
	}

	ecs.ForEach(w, component.SensesComponent.Kind(), func(e ecs.Entity, senses *component.Senses) {
		pos, ok := s.Snapshot.Locate(e)
		if !ok {
			_ = ecs.Remove(w, e, component.PerceptComponent.Kind())
			return
		}
		fac, _ := s.Snapshot.Faction(e)
		obs := perception.Observer{
			ID:       e,
			Faction:  fac,
			Position: pos,
			Heading:  s.Snapshot.Headings[e],
			Profile:  senses.Profile,
		}
		res := perception.Perceive(obs, s.Snapshot.Candidates, noise, s.Resolver, s.Occluder)
		_ = ecs.Add(w, e, component.PerceptComponent.Kind(), &component.Percept{Result: res})
	})
}
