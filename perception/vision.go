package perception

import (
	"math"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcsense/common"
	"github.com/milk9111/npcsense/faction"
)

const (
	// Default vision parameters.
	DefaultFOV         = 90.0 // degrees, total arc width
	DefaultVisionRange = 20.0

	// Targets closer than this are treated as in the cone whatever the heading.
	touchDistance = 1e-6
)

// Cone is an observer's view volume at one instant.
type Cone struct {
	Origin  cp.Vector
	Heading float64 // radians, 0 = +X
	FOV     float64 // degrees, total arc width
	Range   float64
}

// Contains reports whether p lies within range and within FOV/2 of the
// heading. Both bounds are inclusive.
func (c Cone) Contains(p cp.Vector) bool {
	dist := c.Origin.Distance(p)
	if dist > c.Range {
		return false
	}
	return c.Faces(p)
}

// Faces checks the angular bound only.
func (c Cone) Faces(p cp.Vector) bool {
	if c.FOV >= 360 {
		return true
	}
	if c.Origin.Distance(p) < touchDistance {
		return true
	}
	diff := common.NormalizeAngle(common.HeadingTo(c.Origin, p) - c.Heading)
	half := common.DegToRad(c.FOV) / 2.0
	// Absorb rounding from Atan2 so targets placed exactly on the edge count.
	return math.Abs(diff) <= half+1e-9
}

// Candidate is anything an observer might see.
type Candidate struct {
	ID       common.Entity
	Faction  faction.ID
	Position cp.Vector
}

// Sighting is a candidate that passed every vision test.
type Sighting struct {
	ID       common.Entity
	Position cp.Vector
	Distance float64
}

// See returns the enemies visible to obs, closest first. Candidates are
// expected in spawn order; equal distances keep that order.
func See(obs Observer, candidates []Candidate, resolver faction.Resolver, occluder Occluder) []Sighting {
	cone := obs.Cone()
	var out []Sighting
	for _, c := range candidates {
		if c.ID == obs.ID {
			continue
		}
		if !cone.Contains(c.Position) {
			continue
		}
		if !hostile(resolver, obs.Faction, c.Faction) {
			continue
		}
		if blocked(occluder, obs.Position, c.Position) {
			continue
		}
		out = append(out, Sighting{ID: c.ID, Position: c.Position, Distance: obs.Position.Distance(c.Position)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	return out
}

// Glimpse finds the closest enemy that is in clear line of sight and within
// the detection radius but outside the cone. It is a hint, not a sighting.
func Glimpse(obs Observer, candidates []Candidate, resolver faction.Resolver, occluder Occluder) *Sighting {
	radius := obs.Profile.DetectionRange
	if radius <= 0 {
		return nil
	}
	cone := obs.Cone()
	var best *Sighting
	for _, c := range candidates {
		if c.ID == obs.ID {
			continue
		}
		dist := obs.Position.Distance(c.Position)
		if dist > radius || cone.Contains(c.Position) {
			continue
		}
		if best != nil && dist >= best.Distance {
			continue
		}
		if !hostile(resolver, obs.Faction, c.Faction) || blocked(occluder, obs.Position, c.Position) {
			continue
		}
		best = &Sighting{ID: c.ID, Position: c.Position, Distance: dist}
	}
	return best
}

func hostile(resolver faction.Resolver, a, b faction.ID) bool {
	if resolver == nil {
		return false
	}
	return resolver.Relation(a, b) == faction.Enemy
}

func blocked(occluder Occluder, from, to cp.Vector) bool {
	if occluder == nil {
		return false
	}
	return occluder.Blocked(from, to)
}
