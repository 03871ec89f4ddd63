package flappy

import (
	"time"

	"github.com/vovakirdan/tui-flappy/internal/core"
)

// Scheduler turns irregular frame callbacks into whole fixed steps.
// Leftover time below one step carries over to the next frame.
type Scheduler struct {
	step     float64   // Fixed step, seconds
	maxFrame float64   // Largest delta accepted per frame
	acc      float64   // Unconsumed time, always in [0, step)
	last     time.Time // Baseline of the previous frame
	primed   bool      // Whether a baseline exists
}

// NewScheduler creates a scheduler for the given step and frame clamp.
func NewScheduler(step, maxFrame float64) *Scheduler {
	return &Scheduler{step: step, maxFrame: maxFrame}
}

// Advance records a frame at wall time now and returns how many fixed steps
// to run. The first frame after construction or Reset only sets the baseline.
// While not running the baseline keeps moving but nothing accumulates, so
// resuming never produces a large catch-up delta.
func (s *Scheduler) Advance(now time.Time, running bool) int {
	if !s.primed {
		s.last = now
		s.primed = true
		return 0
	}

	delta := now.Sub(s.last).Seconds()
	s.last = now

	if !running {
		return 0
	}
	return s.AdvanceDelta(delta)
}

// AdvanceDelta feeds an already measured delta (seconds) into the accumulator.
func (s *Scheduler) AdvanceDelta(delta float64) int {
	// Clamp stalls so a long pause cannot trigger a spiral of catch-up steps.
	s.acc += core.ClampF(delta, 0, s.maxFrame)

	steps := 0
	for s.acc >= s.step {
		s.acc -= s.step
		steps++
	}
	return steps
}

// Leftover returns the unconsumed time in seconds.
func (s *Scheduler) Leftover() float64 {
	return s.acc
}

// Alpha returns leftover time as a fraction of a step, for presentation
// interpolation.
func (s *Scheduler) Alpha() float64 {
	return s.acc / s.step
}

// Reset clears the accumulator and the baseline.
func (s *Scheduler) Reset() {
	s.acc = 0
	s.last = time.Time{}
	s.primed = false
}
