package flappy

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/tui-flappy/internal/config"
	"github.com/vovakirdan/tui-flappy/internal/core"
)

// epsilon absorbs accumulated float error when comparing positions and
// timers built from repeated fixed-step increments.
const epsilon = 1e-9

// Obstacle is a vertical pair of segments separated by a passable gap.
// The upper segment spans [0, GapTop], the lower spans [GapBottom, ground].
type Obstacle struct {
	ID        uint64
	X         float64 // Left edge
	Width     float64
	GapTop    float64
	GapBottom float64
	Scored    bool // Set once, when the right edge passes the avatar
}

// NewObstacle creates an obstacle. It panics on inconsistent geometry,
// which is always a programming error.
func NewObstacle(id uint64, x, width, gapTop, gapBottom float64) Obstacle {
	if width <= 0 {
		panic(fmt.Sprintf("flappy: obstacle width must be positive, got %v", width))
	}
	if gapBottom <= gapTop {
		panic(fmt.Sprintf("flappy: obstacle gap [%v, %v] is empty", gapTop, gapBottom))
	}
	return Obstacle{ID: id, X: x, Width: width, GapTop: gapTop, GapBottom: gapBottom}
}

// Right returns the x coordinate of the right edge.
func (o Obstacle) Right() float64 {
	return o.X + o.Width
}

// Upper returns the segment above the gap.
func (o Obstacle) Upper() core.Box {
	return core.NewBox(o.X, 0, o.Width, o.GapTop)
}

// Lower returns the segment below the gap, down to the ground line.
func (o Obstacle) Lower(groundY float64) core.Box {
	return core.NewBox(o.X, o.GapBottom, o.Width, groundY-o.GapBottom)
}

// Advance moves the obstacle left by dx.
func (o *Obstacle) Advance(dx float64) {
	o.X -= dx
}

// Passed reports whether the right edge is strictly left of x.
func (o Obstacle) Passed(x float64) bool {
	return o.Right() < x
}

// Gone reports whether the obstacle has scrolled at least margin units past
// the left edge of the world.
func (o Obstacle) Gone(margin float64) bool {
	return o.Right() <= -margin+epsilon
}

// Spawner decides when obstacles appear and where their gap sits.
type Spawner struct {
	cfg     config.FlappyObstacles
	worldW  float64
	groundY float64
	rng     *rand.Rand
	timer   float64 // Seconds until the next spawn
	nextID  uint64
}

// NewSpawner creates a spawner whose first obstacle appears one full
// interval after the run starts.
func NewSpawner(cfg config.FlappyConfig, rng *rand.Rand) *Spawner {
	return &Spawner{
		cfg:     cfg.Obstacles,
		worldW:  cfg.World.Width,
		groundY: cfg.GroundY(),
		rng:     rng,
		timer:   cfg.Obstacles.SpawnInterval,
		nextID:  1,
	}
}

// Tick advances the countdown by dt and returns a new obstacle when it
// expires. At most one obstacle is produced per call.
func (s *Spawner) Tick(dt float64) (Obstacle, bool) {
	s.timer -= dt
	if s.timer > epsilon {
		return Obstacle{}, false
	}
	// Keep the long-run cadence: carry the overshoot into the next interval.
	s.timer += s.cfg.SpawnInterval

	top := s.gapTop()
	o := NewObstacle(s.nextID, s.worldW, s.cfg.Width, top, top+s.cfg.GapSize)
	s.nextID++
	return o, true
}

// GapRange returns the inclusive range for a gap's top edge.
func (s *Spawner) GapRange() (lo, hi float64) {
	lo = s.cfg.TopMargin
	hi = s.groundY - s.cfg.BottomMargin - s.cfg.GapSize
	return lo, max(lo, hi)
}

func (s *Spawner) gapTop() float64 {
	lo, hi := s.GapRange()
	return lo + s.rng.Float64()*(hi-lo)
}

// Timer returns the seconds left until the next spawn.
func (s *Spawner) Timer() float64 {
	return s.timer
}

// Reset restores the full initial interval. Obstacle IDs keep counting so
// they stay unique for the lifetime of a session.
func (s *Spawner) Reset() {
	s.timer = s.cfg.SpawnInterval
}
