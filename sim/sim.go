package sim

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcsense/ai"
	"github.com/milk9111/npcsense/ecs"
	"github.com/milk9111/npcsense/ecs/component"
	"github.com/milk9111/npcsense/ecs/entity"
	"github.com/milk9111/npcsense/ecs/system"
	"github.com/milk9111/npcsense/faction"
	"github.com/milk9111/npcsense/perception"
	"go.uber.org/zap"
)

// ErrUnknownEntity is returned for handles that are stale or never existed.
var ErrUnknownEntity = errors.New("sim: unknown entity")

type Options struct {
	Logger   *zap.Logger
	Factions *faction.Table
	Geometry perception.Occluder
	// Mover executes intents after each tick. Nil leaves movement to the
	// caller.
	Mover Mover
	// Systems run after the behavior system inside each tick, while the
	// faction table is still frozen.
	Systems []ecs.System
}

// Report is what happened in one tick.
type Report struct {
	Tick          uint64
	Time          float64
	Transitions   []system.Transition
	Warnings      []ai.Warning
	FactionWrites int
}

// Simulation is a fixed-step, single-threaded world of agents. It is not
// safe for concurrent use; run separate simulations in parallel instead.
type Simulation struct {
	world     *ecs.World
	scheduler *ecs.Scheduler
	snapshot  system.Snapshot
	percept   *system.PerceptionSystem
	behavior  *system.BehaviorSystem
	noise     perception.NoiseBuffer
	factions  *faction.Table
	mover     Mover
	logger    *zap.Logger

	tick  uint64
	clock float64
}

func New(opts Options) *Simulation {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	factions := opts.Factions
	if factions == nil {
		factions = faction.NewTable()
	}

	s := &Simulation{
		world:    ecs.NewWorld(),
		factions: factions,
		mover:    opts.Mover,
		logger:   logger,
	}
	s.percept = &system.PerceptionSystem{
		Snapshot: &s.snapshot,
		Resolver: factions,
		Occluder: opts.Geometry,
		Noise:    s.noise.Current,
	}
	s.behavior = system.NewBehaviorSystem(&s.snapshot, factions, logger)
	s.scheduler = ecs.NewScheduler(
		system.NewSnapshotSystem(&s.snapshot),
		s.percept,
		s.behavior,
	)
	for _, sys := range opts.Systems {
		s.scheduler.Add(sys)
	}
	return s
}

func (s *Simulation) World() *ecs.World {
	return s.world
}

// Factions exposes the live relation table. Writes made while a tick runs
// land when it ends.
func (s *Simulation) Factions() *faction.Table {
	return s.factions
}

// SetGeometry swaps the static occluder used from the next tick on.
func (s *Simulation) SetGeometry(o perception.Occluder) {
	s.percept.Occluder = o
}

func (s *Simulation) Tick() uint64 {
	return s.tick
}

func (s *Simulation) Time() float64 {
	return s.clock
}

// Spawn builds an archetype at pos facing heading (radians).
func (s *Simulation) Spawn(prefab string, pos cp.Vector, heading float64) (ecs.Entity, error) {
	e, err := entity.BuildEntity(s.world, prefab)
	if err != nil {
		return 0, err
	}
	if err := entity.SetEntityTransform(s.world, e, pos, heading); err != nil {
		ecs.DestroyEntity(s.world, e)
		return 0, err
	}
	entity.AnchorBrain(s.world, e, pos)
	return e, nil
}

// Step advances the world by dt.
func (s *Simulation) Step(dt float64) Report {
	if dt < 0 {
		dt = 0
	}
	s.noise.Flip()
	s.factions.Freeze()
	s.tick++
	s.clock += dt
	s.behavior.Dt = dt

	s.scheduler.Update(s.world)

	report := Report{Tick: s.tick, Time: s.clock}
	report.FactionWrites = s.factions.Thaw()
	if report.FactionWrites > 0 {
		s.logger.Info("faction relations changed", zap.Uint64("tick", s.tick), zap.Int("writes", report.FactionWrites))
	}
	for _, evt := range s.world.Events().Drain() {
		switch data := evt.Data.(type) {
		case system.Transition:
			report.Transitions = append(report.Transitions, data)
		case ai.Warning:
			report.Warnings = append(report.Warnings, data)
		}
	}

	if s.mover != nil {
		s.move(dt)
	}
	return report
}

func (s *Simulation) move(dt float64) {
	ecs.ForEach2(s.world, component.IntentComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, in *component.Intent, t *component.Transform) {
		if ecs.Has(s.world, e, component.DeadTagComponent.Kind()) {
			return
		}
		arrived, err := s.mover.Move(s.world, e, in.Intent, dt)
		if err != nil {
			s.logger.Warn("mover failed", zap.Uint64("entity", uint64(e)), zap.Error(err))
			return
		}
		if arrived {
			_ = ecs.Add(s.world, e, component.ArrivalReportComponent.Kind(), &component.ArrivalReport{})
		}
	})
}

// EmitNoise queues a sound for the next tick. source may be zero.
func (s *Simulation) EmitNoise(origin cp.Vector, volume float64, source ecs.Entity) perception.NoiseEvent {
	ev := perception.NoiseEvent{Origin: origin, Volume: volume}
	if ecs.IsAlive(s.world, source) {
		ev.Source = source
		if f, ok := ecs.Get(s.world, source, component.FactionMemberComponent.Kind()); ok {
			ev.Faction = f.Faction
		}
	}
	return s.noise.Emit(ev)
}

// NotifyDeath marks id dead. Agents reach Dead on the next tick and every
// entity drops out of other agents' senses from then on.
func (s *Simulation) NotifyDeath(id ecs.Entity) error {
	if !ecs.IsAlive(s.world, id) {
		return fmt.Errorf("notify death %s: %w", id, ErrUnknownEntity)
	}
	if ecs.Has(s.world, id, component.BrainComponent.Kind()) {
		return ecs.Add(s.world, id, component.DeathNoticeComponent.Kind(), &component.DeathNotice{})
	}
	return ecs.Add(s.world, id, component.DeadTagComponent.Kind(), &component.DeadTag{})
}

// ReportArrival tells id's brain its last destination was reached.
func (s *Simulation) ReportArrival(id ecs.Entity) error {
	if !ecs.Has(s.world, id, component.BrainComponent.Kind()) {
		return fmt.Errorf("report arrival %s: %w", id, ErrUnknownEntity)
	}
	return ecs.Add(s.world, id, component.ArrivalReportComponent.Kind(), &component.ArrivalReport{})
}

// Command queues a forced state change for the next tick. A later command
// before that tick replaces an earlier one.
func (s *Simulation) Command(id ecs.Entity, cmd ai.Command) error {
	if !ecs.Has(s.world, id, component.BrainComponent.Kind()) {
		return fmt.Errorf("command %s: %w", id, ErrUnknownEntity)
	}
	switch cmd.State {
	case ai.Dead:
		return fmt.Errorf("command %s: use NotifyDeath: %w", id, ai.ErrInvalidCommand)
	case ai.Attack:
		return fmt.Errorf("command %s: attack is entered from sight only: %w", id, ai.ErrInvalidCommand)
	}
	return ecs.Add(s.world, id, component.StateCommandComponent.Kind(), &component.StateCommand{Command: cmd})
}

func (s *Simulation) SetBlackboard(id ecs.Entity, key string, value float64) error {
	if !ecs.IsAlive(s.world, id) {
		return fmt.Errorf("set blackboard %s: %w", id, ErrUnknownEntity)
	}
	bb, ok := ecs.Get(s.world, id, component.BlackboardComponent.Kind())
	if !ok {
		bb = &component.Blackboard{}
	}
	if bb.Values == nil {
		bb.Values = make(map[string]float64)
	}
	bb.Values[key] = value
	return ecs.Add(s.world, id, component.BlackboardComponent.Kind(), bb)
}

// Teleport places id at pos without going through the mover.
func (s *Simulation) Teleport(id ecs.Entity, pos cp.Vector) error {
	if !ecs.IsAlive(s.world, id) {
		return fmt.Errorf("teleport %s: %w", id, ErrUnknownEntity)
	}
	t, ok := ecs.Get(s.world, id, component.TransformComponent.Kind())
	heading := 0.0
	if ok {
		heading = t.Heading
	}
	return entity.SetEntityTransform(s.world, id, pos, heading)
}

// Intent returns id's intent from the latest tick.
func (s *Simulation) Intent(id ecs.Entity) (ai.Intent, bool) {
	in, ok := ecs.Get(s.world, id, component.IntentComponent.Kind())
	if !ok {
		return ai.Intent{}, false
	}
	return in.Intent, true
}

func (s *Simulation) State(id ecs.Entity) (ai.State, bool) {
	brain, ok := ecs.Get(s.world, id, component.BrainComponent.Kind())
	if !ok {
		return ai.Idle, false
	}
	return brain.Agent.State(), true
}

// Agent returns a copy of id's decision state.
func (s *Simulation) Agent(id ecs.Entity) (ai.Agent, bool) {
	brain, ok := ecs.Get(s.world, id, component.BrainComponent.Kind())
	if !ok {
		return ai.Agent{}, false
	}
	return brain.Agent, true
}

// Percept returns what id sensed on the latest tick.
func (s *Simulation) Percept(id ecs.Entity) (perception.Result, bool) {
	p, ok := ecs.Get(s.world, id, component.PerceptComponent.Kind())
	if !ok {
		return perception.Result{}, false
	}
	return p.Result, true
}

func (s *Simulation) DebugViews() []system.DebugView {
	return system.DebugViews(s.world)
}
