package perception

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Occluder answers line-of-sight queries against static geometry.
type Occluder interface {
	Blocked(from, to cp.Vector) bool
}

// Rect is an axis-aligned box given by its min and max corners.
type Rect struct {
	Min cp.Vector
	Max cp.Vector
}

// Rects occludes with a flat list of boxes.
type Rects []Rect

func (r Rects) Blocked(from, to cp.Vector) bool {
	for _, box := range r {
		if segmentAABBHit(from, to, box) {
			return true
		}
	}
	return false
}

func segmentAABBHit(from, to cp.Vector, box Rect) bool {
	dx := to.X - from.X
	dy := to.Y - from.Y
	tmin := 0.0
	tmax := 1.0

	if math.Abs(dx) < 1e-12 {
		if from.X < box.Min.X || from.X > box.Max.X {
			return false
		}
	} else {
		invD := 1.0 / dx
		t1 := (box.Min.X - from.X) * invD
		t2 := (box.Max.X - from.X) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	}

	if math.Abs(dy) < 1e-12 {
		if from.Y < box.Min.Y || from.Y > box.Max.Y {
			return false
		}
	} else {
		invD := 1.0 / dy
		t1 := (box.Min.Y - from.Y) * invD
		t2 := (box.Max.Y - from.Y) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	}

	return tmax >= tmin
}

// Space occludes with static chipmunk shapes. Shapes are attached to the
// space's static body, so no stepping is needed before querying.
type Space struct {
	space  *cp.Space
	shapes int
}

func NewSpace() *Space {
	return &Space{space: cp.NewSpace()}
}

// AddBox adds a solid box from its min and max corners.
func (s *Space) AddBox(min, max cp.Vector) {
	bb := cp.BB{L: min.X, B: min.Y, R: max.X, T: max.Y}
	s.add(cp.NewBox2(s.space.StaticBody, bb, 0))
}

// AddSegment adds a wall of the given half thickness.
func (s *Space) AddSegment(a, b cp.Vector, radius float64) {
	s.add(cp.NewSegment(s.space.StaticBody, a, b, radius))
}

func (s *Space) AddCircle(center cp.Vector, radius float64) {
	s.add(cp.NewCircle(s.space.StaticBody, radius, center))
}

func (s *Space) add(shape *cp.Shape) {
	s.space.AddShape(shape)
	s.shapes++
}

// Len returns the number of shapes added.
func (s *Space) Len() int {
	if s == nil {
		return 0
	}
	return s.shapes
}

func (s *Space) Blocked(from, to cp.Vector) bool {
	if s == nil || s.shapes == 0 {
		return false
	}
	info := s.space.SegmentQueryFirst(from, to, 0, cp.SHAPE_FILTER_ALL)
	return info.Shape != nil
}
