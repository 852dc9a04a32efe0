package ai

import "github.com/jakecoffman/cp"

// Path is an ordered waypoint list. With Loop the agent wraps from the last
// point to the first; without it the agent walks back and forth.
type Path struct {
	Points []cp.Vector `yaml:"points"`
	Loop   bool        `yaml:"loop"`
}

func (p Path) Empty() bool {
	return len(p.Points) == 0
}

// PatrolProgress is an agent's position along its path. It is kept when
// the agent leaves Patrol so the route resumes where it stopped.
type PatrolProgress struct {
	Index     int
	Reverse   bool
	Waiting   bool
	WaitTimer float64
}

// Step moves progress along path. arrived means the agent is within stop
// distance of the current waypoint. It returns the waypoint to head for.
func (p *PatrolProgress) Step(path Path, waitTime float64, arrived bool, dt float64) (cp.Vector, error) {
	n := len(path.Points)
	if n == 0 {
		p.Waiting = false
		p.WaitTimer = 0
		return cp.Vector{}, ErrEmptyPatrolPath
	}
	if p.Index < 0 || p.Index >= n {
		p.Index = 0
		p.Reverse = false
	}
	if waitTime < 0 {
		waitTime = 0
	}

	switch {
	case p.Waiting:
		p.WaitTimer -= dt
		if p.WaitTimer > waitTime {
			p.WaitTimer = waitTime
		}
		if p.WaitTimer <= 0 {
			p.WaitTimer = 0
			p.Waiting = false
			p.advance(path)
		}
	case arrived:
		if waitTime <= 0 {
			p.advance(path)
		} else {
			p.Waiting = true
			p.WaitTimer = waitTime
		}
	}
	return path.Points[p.Index], nil
}

// Interrupt drops any pending wait, keeping the index.
func (p *PatrolProgress) Interrupt() {
	p.Waiting = false
	p.WaitTimer = 0
}

func (p *PatrolProgress) advance(path Path) {
	n := len(path.Points)
	if n <= 1 {
		p.Index = 0
		return
	}
	if path.Loop {
		p.Index = (p.Index + 1) % n
		return
	}
	if p.Reverse {
		if p.Index == 0 {
			p.Reverse = false
			p.Index = 1
			return
		}
		p.Index--
		return
	}
	if p.Index == n-1 {
		p.Reverse = true
		p.Index = n - 2
		return
	}
	p.Index++
}
