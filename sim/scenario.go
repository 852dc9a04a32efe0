package sim

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcsense/ai"
	"github.com/milk9111/npcsense/ecs/entity"
	"github.com/milk9111/npcsense/levels"
	"github.com/milk9111/npcsense/prefabs"
	"go.uber.org/zap"
)

const defaultFactionsFile = "factions.yaml"

// Scenario drives a Simulation from a level file, firing the level's timed
// events at the start of their tick.
type Scenario struct {
	RunID  string
	Level  *levels.Level
	Sim    *Simulation
	Loaded *entity.LoadedLevel

	logger       *zap.Logger
	next         int
	factionsFile string
}

// NewScenario builds the level into a fresh simulation. When opts has no
// faction table the level's faction file (or factions.yaml) is loaded.
func NewScenario(lvl *levels.Level, opts Options) (*Scenario, error) {
	if lvl == nil {
		return nil, fmt.Errorf("sim: nil level")
	}
	factionsFile := lvl.Factions
	if factionsFile == "" {
		factionsFile = defaultFactionsFile
	}
	if opts.Factions == nil {
		spec, err := prefabs.LoadFactionSpec(factionsFile)
		if err != nil {
			return nil, fmt.Errorf("sim: level %s: %w", lvl.Name, err)
		}
		opts.Factions = spec.NewTable()
	}

	runID := uuid.NewString()
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	opts.Logger = opts.Logger.With(zap.String("run", runID), zap.String("level", lvl.Name))

	s := New(opts)
	loaded, err := entity.LoadLevelToWorld(s.World(), lvl)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	if opts.Geometry == nil {
		s.SetGeometry(loaded.Geometry)
	}
	return &Scenario{RunID: runID, Level: lvl, Sim: s, Loaded: loaded, logger: opts.Logger, factionsFile: factionsFile}, nil
}

// FactionsFile is the faction table the scenario was built from.
func (sc *Scenario) FactionsFile() string {
	return sc.factionsFile
}

// ReloadFactions re-reads FactionsFile into the live table. It may be called
// from another goroutine; a reload that arrives mid-tick lands when the
// tick ends.
func (sc *Scenario) ReloadFactions() error {
	spec, err := prefabs.LoadFactionSpec(sc.factionsFile)
	if err != nil {
		return fmt.Errorf("sim: reload factions: %w", err)
	}
	sc.Sim.Factions().Replace(spec.Relations)
	sc.logger.Info("faction table reloaded", zap.String("file", sc.factionsFile), zap.Int("relations", len(spec.Relations)))
	return nil
}

// Step fires due events and advances one tick.
func (sc *Scenario) Step(dt float64) (Report, error) {
	due := sc.Sim.Tick() + 1
	for sc.next < len(sc.Level.Events) && sc.Level.Events[sc.next].Tick <= due {
		ev := sc.Level.Events[sc.next]
		sc.next++
		if err := sc.fire(ev); err != nil {
			return Report{}, fmt.Errorf("sim: level %s tick %d: %w", sc.Level.Name, ev.Tick, err)
		}
	}
	return sc.Sim.Step(dt), nil
}

func (sc *Scenario) fire(ev levels.TimedEvent) error {
	sc.logger.Debug("level event", zap.String("kind", ev.Kind), zap.String("target", ev.Target), zap.Uint64("tick", ev.Tick))
	target := sc.Loaded.Named[ev.Target]
	switch ev.Kind {
	case levels.EventNoise:
		sc.Sim.EmitNoise(cp.Vector{X: ev.X, Y: ev.Y}, ev.Volume, target)
		return nil
	case levels.EventDeath:
		return sc.Sim.NotifyDeath(target)
	case levels.EventTeleport:
		return sc.Sim.Teleport(target, cp.Vector{X: ev.X, Y: ev.Y})
	case levels.EventCommand:
		state, err := ai.ParseState(ev.State)
		if err != nil {
			return err
		}
		cmd := ai.Command{State: state}
		if state == ai.Suspect {
			p := cp.Vector{X: ev.X, Y: ev.Y}
			cmd.Point = &p
		}
		return sc.Sim.Command(target, cmd)
	case levels.EventProp:
		return sc.Sim.SetBlackboard(target, ev.Key, ev.Value)
	}
	return fmt.Errorf("unknown event kind %q", ev.Kind)
}

// Summary condenses a run for the CLI.
type Summary struct {
	RunID         string
	Level         string
	Ticks         uint64
	Transitions   int
	Warnings      int
	FactionWrites int
	// Final maps named agents to their last state.
	Final map[string]ai.State
}

// Names returns the agent names in Final, sorted.
func (s Summary) Names() []string {
	names := make([]string, 0, len(s.Final))
	for n := range s.Final {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Run steps ticks times, stopping early if ctx is cancelled. onReport, when
// set, sees every tick's report.
func (sc *Scenario) Run(ctx context.Context, ticks int, dt float64, onReport func(Report)) (Summary, error) {
	sum := Summary{RunID: sc.RunID, Level: sc.Level.Name}
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		rep, err := sc.Step(dt)
		if err != nil {
			return sum, err
		}
		sum.Ticks = rep.Tick
		sum.Transitions += len(rep.Transitions)
		sum.Warnings += len(rep.Warnings)
		sum.FactionWrites += rep.FactionWrites
		if onReport != nil {
			onReport(rep)
		}
	}
	sum.Final = make(map[string]ai.State)
	for name, e := range sc.Loaded.Named {
		if st, ok := sc.Sim.State(e); ok {
			sum.Final[name] = st
		}
	}
	return sum, nil
}
