package ai

// Suspicion is a decaying timer. It never changes an agent's state itself;
// Tick reports the falling edge and the brain decides what to do with it.
type Suspicion struct {
	Timer float64
	Max   float64
}

func NewSuspicion(max float64) Suspicion {
	if max < 0 {
		max = 0
	}
	return Suspicion{Max: max}
}

// Tick advances by dt. A stimulus refills the timer to Max; otherwise it
// decays toward zero. The return value is true only on the tick the timer
// reaches zero.
func (s *Suspicion) Tick(dt float64, stimulus bool) bool {
	s.clamp()
	if stimulus {
		s.Timer = s.Max
		return false
	}
	if s.Timer <= 0 {
		return false
	}
	if dt > 0 {
		s.Timer -= dt
	}
	if s.Timer <= 0 {
		s.Timer = 0
		return true
	}
	return false
}

// Reset refills the timer.
func (s *Suspicion) Reset() {
	s.clamp()
	s.Timer = s.Max
}

// Level is the timer as a fraction of Max.
func (s Suspicion) Level() float64 {
	if s.Max <= 0 {
		return 0
	}
	return s.Timer / s.Max
}

func (s *Suspicion) clamp() {
	if s.Max < 0 {
		s.Max = 0
	}
	if s.Timer < 0 {
		s.Timer = 0
	}
	if s.Timer > s.Max {
		s.Timer = s.Max
	}
}
