package ai

import "github.com/jakecoffman/cp"

// Config is per-agent tuning. It is read-only to the brain.
type Config struct {
	AttackRange     float64   `yaml:"attack_range"`
	PatrolSpeedMult float64   `yaml:"patrol_speed_mult"`
	ChaseSpeedMult  float64   `yaml:"chase_speed_mult"`
	WaitTime        float64   `yaml:"wait_time"`
	MaxSuspicion    float64   `yaml:"max_suspicion"`
	WanderRadius    float64   `yaml:"wander_radius"`
	WanderCenter    cp.Vector `yaml:"wander_center"`
	FleeDistance    float64   `yaml:"flee_distance"`
	StopDistance    float64   `yaml:"stop_distance"`
	// Default is the calm state used when no patrol path is set.
	Default    State  `yaml:"default_state"`
	Stationary bool   `yaml:"stationary"`
	Path       Path   `yaml:"patrol"`
	Seed       uint64 `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		AttackRange:     2,
		PatrolSpeedMult: 0.5,
		ChaseSpeedMult:  1.0,
		WaitTime:        1.0,
		MaxSuspicion:    5.0,
		WanderRadius:    5,
		FleeDistance:    10,
		StopDistance:    0.5,
		Default:         Idle,
	}
}

// SpeedFor returns the speed multiplier an agent moves at in state s.
func (c Config) SpeedFor(s State) float64 {
	switch s {
	case Wander, Patrol, Follow, Suspect:
		return c.PatrolSpeedMult
	case Chase, Flee:
		return c.ChaseSpeedMult
	}
	return 0
}
