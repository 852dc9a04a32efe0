package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NormalizeAngle wraps an angle to [-pi, pi].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// HeadingTo returns the angle in radians from a toward b.
func HeadingTo(a, b cp.Vector) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// Away returns the point dist units from from, directed away from threat.
// When the two coincide the point lies along +X.
func Away(from, threat cp.Vector, dist float64) cp.Vector {
	dir := from.Sub(threat)
	if dir.LengthSq() < 1e-12 {
		dir = cp.Vector{X: 1}
	}
	return from.Add(dir.Normalize().Mult(dist))
}
