package ai

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcsense/common"
	"github.com/milk9111/npcsense/faction"
	"github.com/milk9111/npcsense/perception"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	guardID  = common.MakeEntity(1, 0)
	playerID = common.MakeEntity(2, 0)
)

type world map[common.Entity]cp.Vector

func (w world) locate(e common.Entity) (cp.Vector, bool) {
	p, ok := w[e]
	return p, ok
}

func guardObserver(pos cp.Vector) perception.Observer {
	return perception.Observer{
		ID:       guardID,
		Faction:  "guards",
		Position: pos,
		Heading:  0,
		Profile:  perception.Profile{FOV: 90, VisionRange: 20, HearingRange: 10, HearingThreshold: 0.5},
	}
}

func hostileTable() *faction.Table {
	return faction.NewTable(faction.Entry{A: "guards", B: "players", Relation: faction.Enemy})
}

func perceive(w world, noise ...perception.NoiseEvent) perception.Result {
	var cands []perception.Candidate
	if p, ok := w[playerID]; ok {
		cands = append(cands, perception.Candidate{ID: playerID, Faction: "players", Position: p})
	}
	return perception.Perceive(guardObserver(w[guardID]), cands, noise, hostileTable(), nil)
}

func input(w world, percept perception.Result) Input {
	return Input{
		Self:     guardID,
		Faction:  "guards",
		Position: w[guardID],
		Dt:       0.1,
		Percept:  percept,
		Locate:   w.locate,
	}
}

func TestTickVisibleEnemyStartsChase(t *testing.T) {
	cfg := DefaultConfig()
	w := world{guardID: {}, playerID: {X: 10, Y: 0}}
	agent := NewAgent(cfg)
	require.Equal(t, Idle, agent.State())

	dec := agent.Tick(cfg, DefaultRules(), input(w, perceive(w)))

	assert.Equal(t, Idle, dec.From)
	assert.Equal(t, Chase, dec.To)
	assert.Equal(t, "chase", dec.Rule)
	assert.True(t, dec.Changed())
	require.True(t, dec.Intent.HasDestination())
	assert.Equal(t, cp.Vector{X: 10, Y: 0}, *dec.Intent.Destination)
	assert.Equal(t, cfg.ChaseSpeedMult, dec.Intent.SpeedMultiplier)
	assert.False(t, dec.Intent.AttackRequested)

	chase := agent.Data.(ChaseState)
	assert.Equal(t, playerID, chase.Target)
}

func TestTickNoiseAtThresholdStartsSuspect(t *testing.T) {
	cfg := DefaultConfig()
	w := world{guardID: {}}
	agent := NewAgent(cfg)
	// Volume 1 at 5 units over a 10 unit hearing range arrives at exactly 0.5.
	noise := perception.NoiseEvent{Seq: 1, Origin: cp.Vector{X: -5, Y: 0}, Volume: 1}

	dec := agent.Tick(cfg, DefaultRules(), input(w, perceive(w, noise)))

	assert.Equal(t, Suspect, dec.To)
	assert.Equal(t, "alerted", dec.Rule)
	assert.Equal(t, cfg.MaxSuspicion, agent.Suspicion.Timer)
	require.NotNil(t, dec.Intent.Destination)
	assert.Equal(t, noise.Origin, *dec.Intent.Destination)
	assert.Equal(t, cfg.PatrolSpeedMult, dec.Intent.SpeedMultiplier)
}

func TestTickQuietNoiseIgnored(t *testing.T) {
	cfg := DefaultConfig()
	w := world{guardID: {}}
	agent := NewAgent(cfg)
	noise := perception.NoiseEvent{Seq: 1, Origin: cp.Vector{X: -6, Y: 0}, Volume: 1}

	dec := agent.Tick(cfg, DefaultRules(), input(w, perceive(w, noise)))
	assert.Equal(t, Idle, dec.To)
}

func TestTickSuspicionRunsOutToIdle(t *testing.T) {
	cfg := DefaultConfig()
	w := world{guardID: {}}
	agent := Agent{
		Data:      SuspectState{Investigate: cp.Vector{X: 3, Y: 3}},
		Suspicion: Suspicion{Timer: 0.1, Max: cfg.MaxSuspicion},
	}
	in := input(w, perception.Result{})
	in.Dt = 0.2

	dec := agent.Tick(cfg, DefaultRules(), in)

	assert.Equal(t, Idle, dec.To)
	assert.Equal(t, "suspicion_expired", dec.Rule)
	assert.Zero(t, agent.Suspicion.Timer)
	assert.Nil(t, dec.Intent.Destination)
}

func TestTickSuspectHoldsWhileTimerRuns(t *testing.T) {
	cfg := DefaultConfig()
	w := world{guardID: {}}
	agent := Agent{
		Data:      SuspectState{Investigate: cp.Vector{X: 3, Y: 3}},
		Suspicion: Suspicion{Timer: 2, Max: cfg.MaxSuspicion},
	}
	dec := agent.Tick(cfg, DefaultRules(), input(w, perception.Result{}))
	assert.Equal(t, Suspect, dec.To)
	assert.Empty(t, dec.Rule)
	assert.InDelta(t, 1.9, agent.Suspicion.Timer, 1e-12)
	require.NotNil(t, dec.Intent.Destination)
	assert.Equal(t, cp.Vector{X: 3, Y: 3}, *dec.Intent.Destination)
}

func TestTickDeathIsTerminal(t *testing.T) {
	cfg := DefaultConfig()
	w := world{guardID: {}, playerID: {X: 10, Y: 0}}
	agent := NewAgent(cfg)
	rules := DefaultRules()

	agent.Tick(cfg, rules, input(w, perceive(w)))
	require.Equal(t, Chase, agent.State())

	in := input(w, perceive(w))
	in.Died = true
	dec := agent.Tick(cfg, rules, in)
	assert.Equal(t, Dead, dec.To)
	assert.Equal(t, "death", dec.Rule)
	assert.Nil(t, dec.Intent.Destination)
	assert.Zero(t, dec.Intent.SpeedMultiplier)

	for i := 0; i < 5; i++ {
		in := input(w, perceive(w))
		in.Command = &Command{State: Patrol}
		dec := agent.Tick(cfg, rules, in)
		assert.Equal(t, Dead, dec.To)
		assert.False(t, dec.Changed())
		assert.Nil(t, dec.Intent.Destination)
		assert.False(t, dec.Intent.AttackRequested)
	}
}

func TestTickAttackOnlyInRange(t *testing.T) {
	cfg := DefaultConfig()
	w := world{guardID: {}, playerID: {X: 1.5, Y: 0}}
	agent := NewAgent(cfg)
	rules := DefaultRules()

	dec := agent.Tick(cfg, rules, input(w, perceive(w)))
	assert.Equal(t, Attack, dec.To)
	assert.True(t, dec.Intent.AttackRequested)
	assert.Nil(t, dec.Intent.Destination)

	w[playerID] = cp.Vector{X: 6, Y: 0}
	dec = agent.Tick(cfg, rules, input(w, perceive(w)))
	assert.Equal(t, Chase, dec.To)
	assert.False(t, dec.Intent.AttackRequested)
}

func TestTickAttackTargetDespawned(t *testing.T) {
	cfg := DefaultConfig()
	w := world{guardID: {}, playerID: {X: 1, Y: 0}}
	agent := NewAgent(cfg)
	rules := DefaultRules()
	agent.Tick(cfg, rules, input(w, perceive(w)))
	require.Equal(t, Attack, agent.State())

	delete(w, playerID)
	dec := agent.Tick(cfg, rules, input(w, perceive(w)))
	assert.Equal(t, Suspect, dec.To, "last known position is investigated")
	assert.False(t, dec.Intent.AttackRequested)
	require.NotNil(t, dec.Intent.Destination)
	assert.Equal(t, cp.Vector{X: 1, Y: 0}, *dec.Intent.Destination)
}

func TestTickLostTargetInvestigatesLastKnown(t *testing.T) {
	cfg := DefaultConfig()
	w := world{guardID: {}, playerID: {X: 10, Y: 0}}
	agent := NewAgent(cfg)
	rules := DefaultRules()
	agent.Tick(cfg, rules, input(w, perceive(w)))

	// Behind the guard now, out of the cone.
	w[playerID] = cp.Vector{X: -15, Y: 0}
	dec := agent.Tick(cfg, rules, input(w, perceive(w)))
	assert.Equal(t, Suspect, dec.To)
	assert.Equal(t, "lost_target", dec.Rule)
	assert.Equal(t, cp.Vector{X: 10, Y: 0}, agent.Data.(SuspectState).Investigate)
}

func TestTickChaseWithoutMemoryGoesIdle(t *testing.T) {
	cfg := DefaultConfig()
	w := world{guardID: {}}
	agent := Agent{Data: ChaseState{}, Suspicion: NewSuspicion(cfg.MaxSuspicion)}
	dec := agent.Tick(cfg, DefaultRules(), input(w, perception.Result{}))
	assert.Equal(t, Idle, dec.To)
	assert.Equal(t, "target_gone", dec.Rule)
}

func TestTickPatrolFromSpawn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = Path{Points: []cp.Vector{{X: 5, Y: 0}, {X: 5, Y: 5}}, Loop: true}
	w := world{guardID: {}}
	agent := NewAgent(cfg)
	require.Equal(t, Patrol, agent.State())

	dec := agent.Tick(cfg, DefaultRules(), input(w, perception.Result{}))
	assert.Equal(t, Patrol, dec.To)
	require.NotNil(t, dec.Intent.Destination)
	assert.Equal(t, cp.Vector{X: 5, Y: 0}, *dec.Intent.Destination)
	assert.Equal(t, cfg.PatrolSpeedMult, dec.Intent.SpeedMultiplier)

	in := input(w, perception.Result{})
	in.Arrived = true
	agent.Tick(cfg, DefaultRules(), in)
	assert.True(t, agent.Patrol.Waiting)
}

func TestTickPatrolResumesAfterDetour(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = Path{Points: []cp.Vector{{X: 5, Y: 0}, {X: 5, Y: 5}, {X: 0, Y: 5}}, Loop: true}
	agent := NewAgent(cfg)
	agent.Patrol.Index = 2
	agent.Data = SuspectState{}
	agent.Suspicion.Timer = 0.05

	w := world{guardID: {}}
	rules := DefaultRules()
	agent.Tick(cfg, rules, input(w, perception.Result{}))
	require.Equal(t, Idle, agent.State())

	dec := agent.Tick(cfg, rules, input(w, perception.Result{}))
	assert.Equal(t, Patrol, dec.To)
	require.NotNil(t, dec.Intent.Destination)
	assert.Equal(t, cp.Vector{X: 0, Y: 5}, *dec.Intent.Destination)
}

func TestTickCommandPatrolWithoutPath(t *testing.T) {
	cfg := DefaultConfig()
	w := world{guardID: {}}
	agent := NewAgent(cfg)
	in := input(w, perception.Result{})
	in.Command = &Command{State: Patrol}

	dec := agent.Tick(cfg, DefaultRules(), in)
	assert.Equal(t, Idle, dec.To)
	require.Len(t, dec.Warnings, 1)
	assert.ErrorIs(t, dec.Warnings[0], ErrEmptyPatrolPath)
}

func TestTickCommandDeadRejected(t *testing.T) {
	cfg := DefaultConfig()
	w := world{guardID: {}}
	agent := NewAgent(cfg)
	in := input(w, perception.Result{})
	in.Command = &Command{State: Dead}

	dec := agent.Tick(cfg, DefaultRules(), in)
	assert.Equal(t, Idle, dec.To)
	require.NotEmpty(t, dec.Warnings)
	assert.ErrorIs(t, dec.Warnings[0], ErrInvalidCommand)
}

func TestTickCommandAttackWithoutTarget(t *testing.T) {
	cfg := DefaultConfig()
	// The player stands behind the guard, outside the cone.
	w := world{guardID: {}, playerID: {X: -1, Y: 0}}
	agent := NewAgent(cfg)
	in := input(w, perceive(w))
	require.Empty(t, in.Percept.Visible)
	in.Command = &Command{State: Attack}

	dec := agent.Tick(cfg, DefaultRules(), in)
	assert.Equal(t, Idle, dec.To)
	assert.False(t, dec.Intent.AttackRequested)
	require.Len(t, dec.Warnings, 1)
	assert.ErrorIs(t, dec.Warnings[0], ErrInvalidCommand)
}

func TestTickCommandAttackOutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	w := world{guardID: {}, playerID: {X: 10, Y: 0}}
	agent := NewAgent(cfg)
	rules := DefaultRules()
	agent.Tick(cfg, rules, input(w, perceive(w)))
	require.Equal(t, Chase, agent.State())

	in := input(w, perceive(w))
	in.Command = &Command{State: Attack}
	dec := agent.Tick(cfg, rules, in)

	assert.Equal(t, Chase, dec.To)
	assert.Equal(t, "command", dec.Rule)
	assert.False(t, dec.Intent.AttackRequested)
	require.Len(t, dec.Warnings, 1)
	assert.ErrorIs(t, dec.Warnings[0], ErrInvalidCommand)
	chase := agent.Data.(ChaseState)
	assert.Equal(t, playerID, chase.Target)
}

func TestTickRuleToDeadNeedsDeathNotice(t *testing.T) {
	cfg := DefaultConfig()
	w := world{guardID: {}}
	agent := NewAgent(cfg)
	rules := DefaultRules().With(Rule{Priority: 5, Name: "suicide", To: Dead, When: func(*Context) bool { return true }})

	dec := agent.Tick(cfg, rules, input(w, perception.Result{}))
	assert.Equal(t, Idle, dec.To)
	require.Len(t, dec.Warnings, 1)
	assert.ErrorIs(t, dec.Warnings[0], ErrInvalidCommand)
}

func TestTickFollowLeader(t *testing.T) {
	cfg := DefaultConfig()
	leader := common.MakeEntity(7, 0)
	w := world{guardID: {}, leader: {X: 4, Y: 4}}
	agent := NewAgent(cfg)
	rules := DefaultRules()

	in := input(w, perception.Result{})
	in.Command = &Command{State: Follow, Leader: leader}
	dec := agent.Tick(cfg, rules, in)
	assert.Equal(t, Follow, dec.To)
	require.NotNil(t, dec.Intent.Destination)
	assert.Equal(t, cp.Vector{X: 4, Y: 4}, *dec.Intent.Destination)

	delete(w, leader)
	dec = agent.Tick(cfg, rules, input(w, perception.Result{}))
	assert.Equal(t, Idle, agent.State())
	require.NotEmpty(t, dec.Warnings)
	assert.ErrorIs(t, dec.Warnings[0], ErrInvalidTargetReference)
}

func TestTickFollowUnknownLeader(t *testing.T) {
	cfg := DefaultConfig()
	w := world{guardID: {}}
	agent := NewAgent(cfg)
	in := input(w, perception.Result{})
	in.Command = &Command{State: Follow, Leader: common.MakeEntity(99, 1)}

	dec := agent.Tick(cfg, DefaultRules(), in)
	assert.Equal(t, Idle, dec.To)
	require.NotEmpty(t, dec.Warnings)
	assert.ErrorIs(t, dec.Warnings[0], ErrInvalidTargetReference)
}

func TestTickFleeRunsAway(t *testing.T) {
	cfg := DefaultConfig()
	w := world{guardID: {}, playerID: {X: 5, Y: 0}}
	agent := NewAgent(cfg)
	in := input(w, perceive(w))
	in.Command = &Command{State: Flee}

	dec := agent.Tick(cfg, DefaultRules(), in)
	assert.Equal(t, Flee, dec.To)
	require.NotNil(t, dec.Intent.Destination)
	assert.InDelta(t, -cfg.FleeDistance, dec.Intent.Destination.X, 1e-9)
	assert.Equal(t, cfg.ChaseSpeedMult, dec.Intent.SpeedMultiplier)
}

func TestTickStationaryNeverMoves(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Default = Turret
	cfg.Stationary = true
	w := world{guardID: {}, playerID: {X: 10, Y: 0}}
	agent := NewAgent(cfg)
	require.Equal(t, Turret, agent.State())

	dec := agent.Tick(cfg, DefaultRules(), input(w, perceive(w)))
	assert.Equal(t, Chase, dec.To)
	assert.Nil(t, dec.Intent.Destination)
	assert.Zero(t, dec.Intent.SpeedMultiplier)
}

func TestWanderIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Default = Wander
	cfg.Seed = 42
	w := world{guardID: {}}

	pick := func() cp.Vector {
		agent := NewAgent(cfg)
		dec := agent.Tick(cfg, DefaultRules(), input(w, perception.Result{}))
		require.Equal(t, Wander, dec.To)
		require.NotNil(t, dec.Intent.Destination)
		return *dec.Intent.Destination
	}
	first := pick()
	assert.Equal(t, first, pick())
	assert.LessOrEqual(t, first.Length(), cfg.WanderRadius+1e-9)
}

func TestIntentInvariants(t *testing.T) {
	cfg := DefaultConfig()
	rules := DefaultRules()
	positions := []cp.Vector{{X: 1, Y: 0}, {X: 10, Y: 0}, {X: -10, Y: 0}, {X: 1.9, Y: 0.5}, {X: 30, Y: 0}}
	agent := NewAgent(cfg)
	for i := 0; i < 50; i++ {
		w := world{guardID: {}, playerID: positions[i%len(positions)]}
		dec := agent.Tick(cfg, rules, input(w, perceive(w)))
		if dec.Intent.AttackRequested {
			assert.Equal(t, Attack, dec.To)
			assert.LessOrEqual(t, w[guardID].Distance(w[playerID]), cfg.AttackRange)
		}
		if dec.To == Attack {
			_, ok := Target(agent.Data)
			assert.True(t, ok)
		}
		assert.GreaterOrEqual(t, agent.Suspicion.Timer, 0.0)
		assert.LessOrEqual(t, agent.Suspicion.Timer, cfg.MaxSuspicion)
	}
}
