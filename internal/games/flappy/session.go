// Package flappy implements a deterministic side-scrolling avoider:
// a fixed-timestep integrator, a procedural obstacle spawner, collision
// and scoring, and the Idle/Running/GameOver state machine that ties them
// together. It knows nothing about terminals or networks; presenters read
// Snapshots and the leaderboard is notified through a GameOver handler.
package flappy

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-flappy/internal/config"
)

// State is the phase of a run.
type State int

const (
	StateIdle     State = iota // Waiting for the first flap
	StateRunning               // Simulation advancing
	StateGameOver              // Frozen until restart
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateGameOver:
		return "gameover"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// GameOver is emitted once per run when the avatar hits something.
type GameOver struct {
	RunID string
	Score int
	Ticks uint64 // Fixed steps the run lasted
}

// Option configures a Session.
type Option func(*Session)

// WithSeed fixes the obstacle RNG seed.
func WithSeed(seed int64) Option {
	return func(s *Session) {
		s.seed = seed
	}
}

// WithLogger sets the logger for state transitions.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSink registers a presenter. Sinks are called in registration order.
func WithSink(sink Sink) Option {
	return func(s *Session) {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
}

// WithGameOverHandler registers fn to receive the GameOver event.
func WithGameOverHandler(fn func(GameOver)) Option {
	return func(s *Session) {
		if fn != nil {
			s.onGameOver = append(s.onGameOver, fn)
		}
	}
}

// Session owns one player's simulation. It is not safe for concurrent use;
// drive it from a single goroutine.
type Session struct {
	cfg     config.FlappyConfig
	dt      float64
	groundY float64
	seed    int64

	clock     *Scheduler
	rng       *rand.Rand
	spawner   *Spawner
	body      Body
	obstacles []Obstacle
	tracker   ScoreTracker

	state State
	tick  uint64
	runID string
	best  int

	logger     *log.Logger
	sinks      []Sink
	onGameOver []func(GameOver)
}

// NewSession validates cfg and creates a session in the Idle state.
// The config is copied; later changes to the caller's value have no effect.
func NewSession(cfg config.FlappyConfig, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("flappy: %w", err)
	}

	s := &Session{
		cfg:     cfg,
		dt:      cfg.FixedStep(),
		groundY: cfg.GroundY(),
		seed:    time.Now().UnixNano(),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.clock = NewScheduler(s.dt, cfg.Timing.MaxFrame)
	s.rng = rand.New(rand.NewSource(s.seed))
	s.spawner = NewSpawner(cfg, s.rng)
	s.reset()

	s.logger.Debug("session created", "run", s.runID, "seed", s.seed)
	return s, nil
}

func (s *Session) reset() {
	s.body = NewBody(s.cfg.Player)
	s.obstacles = nil
	s.tracker.Reset()
	s.spawner.Reset()
	s.clock.Reset()
	s.state = StateIdle
	s.tick = 0
	s.runID = uuid.NewString()
}

// Config returns the session's configuration.
func (s *Session) Config() config.FlappyConfig {
	return s.cfg
}

// State returns the current phase.
func (s *Session) State() State {
	return s.state
}

// Score returns the current score.
func (s *Session) Score() int {
	return s.tracker.Score()
}

// RunID identifies the current run.
func (s *Session) RunID() string {
	return s.runID
}

// SetBest seeds the best score shown in snapshots, typically from the
// leaderboard at startup.
func (s *Session) SetBest(best int) {
	if best > s.best {
		s.best = best
	}
}

// Flap starts the run from Idle and applies the upward impulse.
// It is ignored after game over.
func (s *Session) Flap() {
	switch s.state {
	case StateIdle:
		s.state = StateRunning
		s.logger.Debug("run started", "run", s.runID)
		s.body.Impulse(s.cfg.Physics.FlapImpulse)
	case StateRunning:
		s.body.Impulse(s.cfg.Physics.FlapImpulse)
	}
}

// Restart returns a finished run to Idle with a fresh world.
// It is ignored unless the session is in GameOver.
func (s *Session) Restart() {
	if s.state != StateGameOver {
		return
	}
	prev := s.runID
	s.reset()
	s.logger.Debug("run restarted", "previous", prev, "run", s.runID)
}

// Frame advances the simulation to wall time now, runs every whole step
// that has accumulated and hands a snapshot to each sink. It returns the
// number of steps executed.
func (s *Session) Frame(now time.Time) int {
	steps := s.clock.Advance(now, s.state == StateRunning)

	ran := 0
	for ; ran < steps && s.state == StateRunning; ran++ {
		s.step()
	}

	if len(s.sinks) > 0 {
		snap := s.Snapshot()
		for _, sink := range s.sinks {
			sink.Present(snap)
		}
	}
	return ran
}

// Step runs exactly one fixed step, bypassing the wall clock.
// It does nothing unless the session is Running.
func (s *Session) Step() {
	s.step()
}

func (s *Session) step() {
	if s.state != StateRunning {
		return
	}
	s.tick++

	s.body.Integrate(s.cfg.Physics.Gravity, s.dt)

	// A freshly spawned obstacle sits at the right edge this step; it is
	// neither moved, scored nor tested until the next one.
	fresh := 0
	if o, ok := s.spawner.Tick(s.dt); ok {
		s.obstacles = append(s.obstacles, o)
		fresh = 1
	}

	prior := s.obstacles[:len(s.obstacles)-fresh]
	dx := s.cfg.Physics.ScrollSpeed * s.dt
	for i := range prior {
		prior[i].Advance(dx)
	}
	s.tracker.Update(prior, s.body.X)

	kept := s.obstacles[:0]
	for _, o := range s.obstacles {
		if !o.Gone(s.cfg.Obstacles.RemovalMargin) {
			kept = append(kept, o)
		}
	}
	s.obstacles = kept

	if s.collides(s.obstacles[:len(s.obstacles)-fresh]) {
		s.endRun()
	}
}

func (s *Session) collides(obstacles []Obstacle) bool {
	if HitsBounds(s.body, s.groundY) {
		return true
	}
	hitbox := s.body.Hitbox(s.cfg.Player.HitboxScale)
	for _, o := range obstacles {
		if HitsObstacle(hitbox, o, s.groundY) {
			return true
		}
	}
	return false
}

func (s *Session) endRun() {
	s.state = StateGameOver
	score := s.tracker.Score()
	if score > s.best {
		s.best = score
	}
	s.logger.Debug("run over", "run", s.runID, "score", score, "ticks", s.tick)

	ev := GameOver{RunID: s.runID, Score: score, Ticks: s.tick}
	for _, fn := range s.onGameOver {
		fn(ev)
	}
}

// Snapshot returns an immutable copy of the current state.
func (s *Session) Snapshot() Snapshot {
	obstacles := make([]Obstacle, len(s.obstacles))
	copy(obstacles, s.obstacles)

	p := s.cfg.Player
	return Snapshot{
		RunID: s.runID,
		State: s.state,
		Tick:  s.tick,
		Score: s.tracker.Score(),
		Best:  s.best,
		Avatar: AvatarView{
			X:        s.body.X,
			Y:        s.body.Y,
			Velocity: s.body.VY,
			Tilt:     s.body.Tilt(p.TiltDivisor, p.MinTilt, p.MaxTilt),
			Radius:   s.body.Radius,
		},
		Obstacles:   obstacles,
		WorldWidth:  s.cfg.World.Width,
		WorldHeight: s.cfg.World.Height,
		GroundY:     s.groundY,
		Alpha:       s.clock.Alpha(),
	}
}
