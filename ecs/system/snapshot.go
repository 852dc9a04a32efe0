package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcsense/ecs"
	"github.com/milk9111/npcsense/ecs/component"
	"github.com/milk9111/npcsense/faction"
	"github.com/milk9111/npcsense/perception"
)

// Snapshot is the read-only view of the world every agent perceives and
// decides against during one tick.
type Snapshot struct {
	Tick       uint64
	Candidates []perception.Candidate
	Headings   map[ecs.Entity]float64

	positions map[ecs.Entity]cp.Vector
	factions  map[ecs.Entity]faction.ID
}

// Locate returns e's position at the start of the tick. Dead or despawned
// entities are not found.
func (s *Snapshot) Locate(e ecs.Entity) (cp.Vector, bool) {
	if s == nil {
		return cp.Vector{}, false
	}
	p, ok := s.positions[e]
	return p, ok
}

func (s *Snapshot) Faction(e ecs.Entity) (faction.ID, bool) {
	if s == nil {
		return "", false
	}
	f, ok := s.factions[e]
	return f, ok
}

// SnapshotSystem captures positions and factions in spawn order before any
// agent runs, so no agent sees another's mid-tick changes.
type SnapshotSystem struct {
	Out *Snapshot
}

func NewSnapshotSystem(out *Snapshot) *SnapshotSystem {
	return &SnapshotSystem{Out: out}
}

func (s *SnapshotSystem) Update(w *ecs.World) {
	if w == nil || s.Out == nil {
		return
	}
	snap := Snapshot{
		Tick:      s.Out.Tick + 1,
		Headings:  make(map[ecs.Entity]float64),
		positions: make(map[ecs.Entity]cp.Vector),
		factions:  make(map[ecs.Entity]faction.ID),
	}
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.FactionMemberComponent.Kind(), func(e ecs.Entity, t *component.Transform, f *component.FactionMember) {
		if ecs.Has(w, e, component.DeadTagComponent.Kind()) {
			return
		}
		snap.Candidates = append(snap.Candidates, perception.Candidate{ID: e, Faction: f.Faction, Position: t.Position})
		snap.Headings[e] = t.Heading
		snap.positions[e] = t.Position
		snap.factions[e] = f.Faction
	})
	*s.Out = snap
}
