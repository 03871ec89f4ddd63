package flappy

import (
	"math"
	"testing"
	"time"
)

func TestSchedulerFirstFrameOnlySetsBaseline(t *testing.T) {
	s := NewScheduler(1.0/60, 0.25)
	t0 := time.Unix(1000, 0)

	if n := s.Advance(t0, true); n != 0 {
		t.Errorf("first Advance() = %d, expected 0", n)
	}
	if n := s.Advance(t0.Add(40*time.Millisecond), true); n != 2 {
		t.Errorf("Advance() after 40ms = %d, expected 2", n)
	}
}

func TestSchedulerFloorProperty(t *testing.T) {
	// Binary-exact step and deltas keep the arithmetic free of rounding.
	const step = 1.0 / 64
	s := NewScheduler(step, 0.25)

	deltas := []float64{5, 17, 1, 0, 40, 3, 300, 16, 16, 9, 255, 2}
	total := 0.0
	steps := 0
	for _, d := range deltas {
		delta := d / 1024
		total += math.Min(delta, 0.25)
		steps += s.AdvanceDelta(delta)

		want := int(math.Floor(total / step))
		if steps != want {
			t.Fatalf("after total %v: steps = %d, expected %d", total, steps, want)
		}
		if s.Leftover() < 0 || s.Leftover() >= step {
			t.Fatalf("leftover %v outside [0, step)", s.Leftover())
		}
		if got := total - float64(steps)*step; s.Leftover() != got {
			t.Fatalf("leftover = %v, expected %v", s.Leftover(), got)
		}
	}
}

func TestSchedulerClampsStalls(t *testing.T) {
	s := NewScheduler(1.0/64, 0.25)

	if n := s.AdvanceDelta(10); n != 16 {
		t.Errorf("10s stall produced %d steps, expected 16 (clamped to 0.25s)", n)
	}
	if n := s.AdvanceDelta(-1); n != 0 {
		t.Errorf("negative delta produced %d steps", n)
	}
	if s.Leftover() != 0 {
		t.Errorf("leftover = %v, expected 0", s.Leftover())
	}
}

func TestSchedulerIgnoresTimeWhileStopped(t *testing.T) {
	s := NewScheduler(1.0/60, 0.25)
	t0 := time.Unix(1000, 0)

	s.Advance(t0, false)
	if n := s.Advance(t0.Add(10*time.Second), false); n != 0 {
		t.Errorf("stopped Advance() = %d, expected 0", n)
	}
	if s.Leftover() != 0 {
		t.Errorf("stopped scheduler accumulated %v", s.Leftover())
	}

	// Only the 20ms since the last stopped frame count once running.
	if n := s.Advance(t0.Add(10*time.Second+20*time.Millisecond), true); n != 1 {
		t.Errorf("Advance() after resume = %d, expected 1", n)
	}
}

func TestSchedulerReset(t *testing.T) {
	s := NewScheduler(1.0/60, 0.25)
	t0 := time.Unix(1000, 0)

	s.Advance(t0, true)
	s.Advance(t0.Add(25*time.Millisecond), true)
	if s.Leftover() == 0 {
		t.Fatal("expected leftover before reset")
	}

	s.Reset()
	if s.Leftover() != 0 || s.Alpha() != 0 {
		t.Errorf("Reset() left leftover %v", s.Leftover())
	}
	if n := s.Advance(t0.Add(time.Second), true); n != 0 {
		t.Errorf("first Advance() after Reset = %d, expected 0", n)
	}
}
