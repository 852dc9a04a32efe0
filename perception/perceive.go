package perception

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcsense/common"
	"github.com/milk9111/npcsense/faction"
)

// Profile holds an agent's sensor tuning.
type Profile struct {
	FOV              float64 `yaml:"fov"` // degrees
	VisionRange      float64 `yaml:"vision_range"`
	HearingRange     float64 `yaml:"hearing_range"`
	HearingThreshold float64 `yaml:"hearing_threshold"`
	DetectionRange   float64 `yaml:"detection_range"`
}

func DefaultProfile() Profile {
	return Profile{
		FOV:              DefaultFOV,
		VisionRange:      DefaultVisionRange,
		HearingRange:     10,
		HearingThreshold: 0.25,
	}
}

// Observer is one agent's view of itself at the start of a tick.
type Observer struct {
	ID       common.Entity
	Faction  faction.ID
	Position cp.Vector
	Heading  float64
	Profile  Profile
}

func (o Observer) Cone() Cone {
	return Cone{Origin: o.Position, Heading: o.Heading, FOV: o.Profile.FOV, Range: o.Profile.VisionRange}
}

// Result is everything one agent sensed in one tick. It is rebuilt every
// tick and never carried over.
type Result struct {
	Visible []Sighting
	Cue     *Sighting
	Heard   *Heard
}

// Primary returns the closest visible enemy.
func (r Result) Primary() (Sighting, bool) {
	if len(r.Visible) == 0 {
		return Sighting{}, false
	}
	return r.Visible[0], true
}

// Stimulus reports whether anything this tick should keep suspicion up.
func (r Result) Stimulus() bool {
	return r.Heard != nil || r.Cue != nil
}

// Perceive runs vision, the detection-radius glimpse and hearing for obs.
func Perceive(obs Observer, candidates []Candidate, noise []NoiseEvent, resolver faction.Resolver, occluder Occluder) Result {
	res := Result{
		Visible: See(obs, candidates, resolver, occluder),
		Heard:   Listen(obs, noise, resolver),
	}
	if len(res.Visible) == 0 {
		res.Cue = Glimpse(obs, candidates, resolver, occluder)
	}
	return res
}
