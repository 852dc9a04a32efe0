package system

import (
	"github.com/milk9111/npcsense/ai"
	"github.com/milk9111/npcsense/ecs"
	"github.com/milk9111/npcsense/ecs/component"
	"go.uber.org/zap"
)

// Event types pushed by BehaviorSystem.
const (
	EventTransition = "transition"
	EventWarning    = "warning"
)

// Transition is the payload of an EventTransition.
type Transition struct {
	Entity ecs.Entity
	From   ai.State
	To     ai.State
	Rule   string
}

// BehaviorSystem runs each brain once per tick in spawn order: it consumes
// one-shot requests, ticks suspicion and the rule table, and stores the
// resulting intent.
type BehaviorSystem struct {
	Snapshot *Snapshot
	Factions ai.FactionWriter
	Logger   *zap.Logger
	// Dt is the step length for the next Update.
	Dt float64
}

func NewBehaviorSystem(snap *Snapshot, factions ai.FactionWriter, logger *zap.Logger) *BehaviorSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BehaviorSystem{Snapshot: snap, Factions: factions, Logger: logger}
}

func (s *BehaviorSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}

	ecs.ForEach(w, component.BrainComponent.Kind(), func(e ecs.Entity, brain *component.Brain) {
		in := ai.Input{
			Self:   e,
			Dt:     s.Dt,
			Locate: s.Snapshot.Locate,
		}
		if s.Factions != nil {
			in.Factions = s.Factions
		}
		if pos, ok := s.Snapshot.Locate(e); ok {
			in.Position = pos
		} else if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			in.Position = t.Position
		}
		if f, ok := s.Snapshot.Faction(e); ok {
			in.Faction = f
		} else if f, ok := ecs.Get(w, e, component.FactionMemberComponent.Kind()); ok {
			in.Faction = f.Faction
		}
		if p, ok := ecs.Get(w, e, component.PerceptComponent.Kind()); ok {
			in.Percept = p.Result
		}
		if bb, ok := ecs.Get(w, e, component.BlackboardComponent.Kind()); ok {
			in.Blackboard = bb.Values
		}

		// One-shot requests are consumed whether or not they change anything.
		if ecs.Remove(w, e, component.DeathNoticeComponent.Kind()) {
			in.Died = true
		}
		if ecs.Remove(w, e, component.ArrivalReportComponent.Kind()) {
			in.Arrived = true
		}
		if cmd, ok := ecs.Get(w, e, component.StateCommandComponent.Kind()); ok {
			c := cmd.Command
			in.Command = &c
			_ = ecs.Remove(w, e, component.StateCommandComponent.Kind())
		}

		dec := brain.Agent.Tick(brain.Config, brain.Rules, in)
		brain.Last = dec
		_ = ecs.Add(w, e, component.IntentComponent.Kind(), &component.Intent{Intent: dec.Intent})

		if dec.Changed() {
			s.Logger.Debug("state transition",
				zap.Uint64("entity", uint64(e)),
				zap.String("archetype", brain.Archetype),
				zap.String("from", dec.From.String()),
				zap.String("to", dec.To.String()),
				zap.String("rule", dec.Rule),
			)
			w.Events().Push(ecs.Event{Type: EventTransition, Data: Transition{Entity: e, From: dec.From, To: dec.To, Rule: dec.Rule}})
		}
		for _, err := range dec.Warnings {
			warn := ai.Warning{Entity: e, State: dec.To, Err: err}
			s.Logger.Warn("agent recovered",
				zap.Uint64("entity", uint64(e)),
				zap.String("state", dec.To.String()),
				zap.Error(err),
			)
			w.Events().Push(ecs.Event{Type: EventWarning, Data: warn})
		}
		if dec.To == ai.Dead {
			_ = ecs.Add(w, e, component.DeadTagComponent.Kind(), &component.DeadTag{})
		}
	})
}
