package flappy

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/tui-flappy/internal/config"
)

func newTestSession(t *testing.T, mutate func(*config.FlappyConfig), opts ...Option) *Session {
	t.Helper()
	cfg := config.DefaultFlappyConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewSession(cfg, append([]Option{WithSeed(12345)}, opts...)...)
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	return s
}

// hover keeps the avatar bobbing around its start height.
func hover(s *Session) {
	if s.body.Y > s.cfg.Player.StartY && s.body.VY > 0 {
		s.Flap()
	}
}

// autopilot steers towards the gap of the nearest obstacle ahead.
func autopilot(s *Session) {
	target := s.cfg.Player.StartY
	for _, o := range s.obstacles {
		if o.Right() >= s.body.X-s.body.Radius {
			target = (o.GapTop+o.GapBottom)/2 + 15
			break
		}
	}
	if s.body.Y > target && s.body.VY > 0 {
		s.Flap()
	}
}

func TestNewSessionRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultFlappyConfig()
	cfg.Physics.Gravity = -1

	if _, err := NewSession(cfg); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("NewSession() error = %v, expected ErrInvalidConfig", err)
	}
}

func TestSessionStartsIdle(t *testing.T) {
	s := newTestSession(t, nil)

	if s.State() != StateIdle {
		t.Errorf("State() = %v, expected idle", s.State())
	}
	// Steps do nothing before the first flap.
	for i := 0; i < 100; i++ {
		s.Step()
	}
	snap := s.Snapshot()
	if snap.Tick != 0 || snap.Avatar.Y != 300 || len(snap.Obstacles) != 0 {
		t.Errorf("idle session advanced: %+v", snap)
	}
}

func TestFlapReachesApexAfter21Steps(t *testing.T) {
	s := newTestSession(t, nil)

	s.Flap()
	if s.State() != StateRunning {
		t.Fatalf("State() after first flap = %v, expected running", s.State())
	}
	if s.body.VY != -350 {
		t.Fatalf("VY after flap = %v, expected -350", s.body.VY)
	}

	for i := 0; i < 21; i++ {
		s.Step()
	}
	if math.Abs(s.body.VY) > 1e-9 {
		t.Errorf("VY after 21 steps = %v, expected ~0", s.body.VY)
	}
	if s.State() != StateRunning {
		t.Errorf("State() = %v, expected running", s.State())
	}
}

func TestFallingIntoGroundEndsRunOnce(t *testing.T) {
	var events []GameOver
	s := newTestSession(t, nil, WithGameOverHandler(func(ev GameOver) {
		events = append(events, ev)
	}))

	s.Flap()
	for i := 0; i < 300 && s.State() == StateRunning; i++ {
		s.Step()
	}

	if s.State() != StateGameOver {
		t.Fatalf("State() = %v, expected gameover", s.State())
	}
	if s.body.Bottom() <= s.groundY {
		t.Errorf("run ended above ground: bottom %v", s.body.Bottom())
	}
	if len(s.obstacles) != 0 {
		t.Errorf("no obstacle should have spawned yet, got %d", len(s.obstacles))
	}

	// Further input and frames must not emit again.
	s.Step()
	s.Flap()
	s.Frame(time.Unix(0, 0))
	s.Frame(time.Unix(1, 0))

	if len(events) != 1 {
		t.Fatalf("GameOver emitted %d times, expected 1", len(events))
	}
	ev := events[0]
	if ev.RunID != s.RunID() || ev.Score != 0 || ev.Ticks != s.tick {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestCeilingEndsRun(t *testing.T) {
	s := newTestSession(t, nil)

	for i := 0; i < 300 && s.State() != StateGameOver; i++ {
		s.Flap()
		s.Step()
	}
	if s.State() != StateGameOver {
		t.Fatal("flapping into the ceiling should end the run")
	}
	if s.body.Top() >= 0 {
		t.Errorf("run ended below the ceiling: top %v", s.body.Top())
	}
}

func TestPassingObstacleScores(t *testing.T) {
	s := newTestSession(t, nil)
	s.Flap()

	// Right edge at 101: one step of scrolling carries it past x=100.
	s.obstacles = []Obstacle{NewObstacle(99, 41, 60, 240, 360)}

	s.Step()
	if s.State() != StateRunning {
		t.Fatalf("avatar inside the gap should survive, state %v", s.State())
	}
	if s.Score() != 1 || !s.obstacles[0].Scored {
		t.Fatalf("Score() = %d scored=%v, expected 1 and true", s.Score(), s.obstacles[0].Scored)
	}

	s.Step()
	if s.Score() != 1 {
		t.Errorf("obstacle scored twice, Score() = %d", s.Score())
	}
}

func TestCollisionFreezesWorld(t *testing.T) {
	s := newTestSession(t, nil)
	s.Flap()

	// Lower segment covers the avatar.
	s.obstacles = []Obstacle{NewObstacle(7, 90, 60, 100, 220)}

	s.Step()
	if s.State() != StateGameOver {
		t.Fatalf("State() = %v, expected gameover", s.State())
	}

	before := s.Snapshot()
	s.Step()
	s.Flap()
	t0 := time.Unix(50, 0)
	s.Frame(t0)
	if n := s.Frame(t0.Add(time.Second)); n != 0 {
		t.Errorf("Frame() ran %d steps after game over", n)
	}

	after := s.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("world changed after game over:\nbefore %+v\n after %+v", before, after)
	}
}

func TestFreshObstacleWaitsOneStep(t *testing.T) {
	s := newTestSession(t, nil)
	s.Flap()

	for i := 0; i < 200 && len(s.obstacles) == 0; i++ {
		hover(s)
		s.Step()
	}
	if len(s.obstacles) != 1 {
		t.Fatalf("expected one obstacle, got %d", len(s.obstacles))
	}
	if s.tick != 72 {
		t.Errorf("first spawn at tick %d, expected 72", s.tick)
	}
	if s.obstacles[0].X != 400 {
		t.Errorf("new obstacle moved in its spawn step: X = %v", s.obstacles[0].X)
	}

	s.Step()
	want := 400 - 200*s.dt
	if s.obstacles[0].X != want {
		t.Errorf("X after next step = %v, expected %v", s.obstacles[0].X, want)
	}
}

func TestSessionRemovesObstacleAfter153Steps(t *testing.T) {
	s := newTestSession(t, func(c *config.FlappyConfig) {
		c.Obstacles.SpawnInterval = 1000
	})
	s.Flap()
	s.obstacles = []Obstacle{NewObstacle(1, 400, 60, 100, 450)}

	steps := 0
	for len(s.obstacles) > 0 {
		hover(s)
		s.Step()
		steps++
		if s.State() != StateRunning {
			t.Fatalf("run ended at step %d", steps)
		}
	}
	if steps != 153 {
		t.Errorf("obstacle removed after %d steps, expected 153", steps)
	}
	if s.Score() != 1 {
		t.Errorf("Score() = %d, expected 1", s.Score())
	}
}

func TestScoreMatchesScoredObstacles(t *testing.T) {
	s := newTestSession(t, nil)
	s.Flap()

	scored := map[uint64]bool{}
	last := 0
	for i := 0; i < 3000; i++ {
		if s.State() == StateGameOver {
			s.Restart()
			s.Flap()
			scored = map[uint64]bool{}
			last = 0
		}
		autopilot(s)
		s.Step()

		snap := s.Snapshot()
		for _, o := range snap.Obstacles {
			if scored[o.ID] && !o.Scored {
				t.Fatalf("obstacle %d lost its scored flag", o.ID)
			}
			if o.Scored {
				scored[o.ID] = true
			}
		}
		if snap.Score != len(scored) {
			t.Fatalf("step %d: score %d, scored obstacles %d", i, snap.Score, len(scored))
		}
		if snap.Score < last {
			t.Fatalf("score decreased from %d to %d", last, snap.Score)
		}
		last = snap.Score
	}
}

func TestRestart(t *testing.T) {
	s := newTestSession(t, nil)

	s.Restart()
	if s.State() != StateIdle {
		t.Fatalf("Restart() from idle should be ignored")
	}

	s.Flap()
	firstRun := s.RunID()
	s.Restart()
	if s.State() != StateRunning {
		t.Fatalf("Restart() while running should be ignored")
	}

	for i := 0; i < 300 && s.State() == StateRunning; i++ {
		s.Step()
	}
	if s.State() != StateGameOver {
		t.Fatal("expected game over")
	}

	s.Restart()
	if s.State() != StateIdle {
		t.Errorf("State() after Restart = %v, expected idle", s.State())
	}
	if s.Score() != 0 || len(s.obstacles) != 0 || s.tick != 0 {
		t.Errorf("stale run state: score %d, obstacles %d, tick %d", s.Score(), len(s.obstacles), s.tick)
	}
	if s.body != NewBody(s.cfg.Player) {
		t.Errorf("body not reset: %+v", s.body)
	}
	if s.spawner.Timer() != s.cfg.Obstacles.SpawnInterval {
		t.Errorf("spawner timer = %v, expected full interval", s.spawner.Timer())
	}
	if s.RunID() == firstRun {
		t.Error("Restart() should assign a new run ID")
	}
	if n := s.Frame(time.Unix(100, 0)); n != 0 {
		t.Errorf("first Frame() after Restart ran %d steps", n)
	}
}

func TestFrameDrivesSinks(t *testing.T) {
	var got []Snapshot
	s := newTestSession(t, nil, WithSink(SinkFunc(func(snap Snapshot) {
		got = append(got, snap)
	})))

	t0 := time.Unix(100, 0)
	if n := s.Frame(t0); n != 0 {
		t.Errorf("baseline Frame() ran %d steps", n)
	}
	// Idle time is never banked.
	if n := s.Frame(t0.Add(10 * time.Second)); n != 0 {
		t.Errorf("idle Frame() ran %d steps", n)
	}

	s.Flap()
	if n := s.Frame(t0.Add(10*time.Second + 40*time.Millisecond)); n != 2 {
		t.Errorf("Frame() ran %d steps, expected 2", n)
	}

	if len(got) != 3 {
		t.Fatalf("sink received %d snapshots, expected 3", len(got))
	}
	if got[0].State != StateIdle || got[2].State != StateRunning || got[2].Tick != 2 {
		t.Errorf("unexpected snapshots: %+v / %+v", got[0], got[2])
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestSession(t, nil)
	s.Flap()
	s.obstacles = []Obstacle{NewObstacle(1, 300, 60, 100, 220)}

	snap := s.Snapshot()
	snap.Obstacles[0].X = -999

	if s.obstacles[0].X != 300 {
		t.Error("mutating a snapshot changed the session")
	}
	if snap.Avatar.Tilt != -25 {
		t.Errorf("tilt after flap = %v, expected -25", snap.Avatar.Tilt)
	}
	if _, ok := snap.Final(); ok {
		t.Error("running snapshot should have no final score")
	}
}

func TestSessionDeterminism(t *testing.T) {
	run := func() []Snapshot {
		s := newTestSession(t, nil)
		s.Flap()
		var out []Snapshot
		for i := 0; i < 1200 && s.State() == StateRunning; i++ {
			autopilot(s)
			s.Step()
			snap := s.Snapshot()
			snap.RunID = ""
			out = append(out, snap)
		}
		return out
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("runs diverged in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			t.Fatalf("runs diverged at step %d", i)
		}
	}
}
