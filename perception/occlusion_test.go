package perception

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
)

func TestRectsBlocked(t *testing.T) {
	walls := Rects{{Min: cp.Vector{X: 4, Y: -2}, Max: cp.Vector{X: 5, Y: 2}}}
	cases := []struct {
		name     string
		from, to cp.Vector
		want     bool
	}{
		{"through_wall", cp.Vector{}, cp.Vector{X: 10}, true},
		{"stops_short", cp.Vector{}, cp.Vector{X: 3}, false},
		{"passes_above", cp.Vector{Y: 5}, cp.Vector{X: 10, Y: 5}, false},
		{"vertical_miss", cp.Vector{X: 0, Y: -10}, cp.Vector{X: 0, Y: 10}, false},
		{"vertical_hit", cp.Vector{X: 4.5, Y: -10}, cp.Vector{X: 4.5, Y: 10}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, walls.Blocked(c.from, c.to))
		})
	}
}

func TestSpaceBlocked(t *testing.T) {
	s := NewSpace()
	assert.False(t, s.Blocked(cp.Vector{}, cp.Vector{X: 10}), "empty space never blocks")

	s.AddBox(cp.Vector{X: 4, Y: -2}, cp.Vector{X: 5, Y: 2})
	s.AddCircle(cp.Vector{X: 0, Y: 20}, 1)
	s.AddSegment(cp.Vector{X: -10, Y: -5}, cp.Vector{X: 10, Y: -5}, 0.25)
	assert.Equal(t, 3, s.Len())

	assert.True(t, s.Blocked(cp.Vector{}, cp.Vector{X: 10}), "box")
	assert.True(t, s.Blocked(cp.Vector{}, cp.Vector{Y: 30}), "circle")
	assert.True(t, s.Blocked(cp.Vector{}, cp.Vector{Y: -10}), "segment")
	assert.False(t, s.Blocked(cp.Vector{}, cp.Vector{X: -10}), "open side")

	var nilSpace *Space
	assert.False(t, nilSpace.Blocked(cp.Vector{}, cp.Vector{X: 1}))
}
