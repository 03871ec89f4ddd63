package flappy

// Snapshot is an immutable copy of everything a presenter may draw.
// It shares no memory with the session.
type Snapshot struct {
	RunID string
	State State
	Tick  uint64
	Score int
	Best  int // Best score seen by this session, including earlier runs

	Avatar    AvatarView
	Obstacles []Obstacle

	WorldWidth  float64
	WorldHeight float64
	GroundY     float64

	// Alpha is the fraction of a step left in the accumulator.
	Alpha float64
}

// AvatarView is the avatar as presented.
type AvatarView struct {
	X, Y     float64
	Velocity float64
	Tilt     float64 // Degrees, presentation only
	Radius   float64
}

// Final returns the final score of a finished run.
func (s Snapshot) Final() (int, bool) {
	if s.State != StateGameOver {
		return 0, false
	}
	return s.Score, true
}

// Sink receives a snapshot after every frame.
// Present is called on the simulation goroutine and must not block.
type Sink interface {
	Present(Snapshot)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Snapshot)

// Present calls f(s).
func (f SinkFunc) Present(s Snapshot) {
	f(s)
}
