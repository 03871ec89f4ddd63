package flappy

import (
	"math"
	"math/rand"
	"testing"

	"github.com/vovakirdan/tui-flappy/internal/config"
)

func TestNewObstaclePanicsOnBadGeometry(t *testing.T) {
	tests := []struct {
		name               string
		width, top, bottom float64
	}{
		{"zero width", 0, 100, 220},
		{"negative width", -5, 100, 220},
		{"inverted gap", 60, 220, 100},
		{"empty gap", 60, 100, 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("NewObstacle() should panic")
				}
			}()
			NewObstacle(1, 0, tc.width, tc.top, tc.bottom)
		})
	}
}

func TestObstacleSegments(t *testing.T) {
	o := NewObstacle(1, 200, 60, 150, 270)

	up := o.Upper()
	if up.MinY != 0 || up.MaxY != 150 || up.MinX != 200 || up.MaxX != 260 {
		t.Errorf("Upper() = %+v", up)
	}
	low := o.Lower(540)
	if low.MinY != 270 || low.MaxY != 540 {
		t.Errorf("Lower() = %+v, expected y 270..540", low)
	}
}

func TestObstacleRemovedAfter153Steps(t *testing.T) {
	cfg := config.DefaultFlappyConfig()
	dx := cfg.Physics.ScrollSpeed * cfg.FixedStep()

	o := NewObstacle(1, cfg.World.Width, cfg.Obstacles.Width, 100, 220)
	steps := 0
	for !o.Gone(cfg.Obstacles.RemovalMargin) {
		o.Advance(dx)
		steps++
		if steps > 1000 {
			t.Fatal("obstacle never left the world")
		}
	}
	if steps != 153 {
		t.Errorf("obstacle removed after %d steps, expected 153", steps)
	}
}

func TestSpawnerCadence(t *testing.T) {
	cfg := config.DefaultFlappyConfig()
	sp := NewSpawner(cfg, rand.New(rand.NewSource(1)))
	dt := cfg.FixedStep()

	var spawnedAt []int
	for i := 1; i <= 720; i++ {
		if _, ok := sp.Tick(dt); ok {
			spawnedAt = append(spawnedAt, i)
		}
	}

	if len(spawnedAt) != 10 {
		t.Fatalf("spawned %d obstacles in 12s, expected 10", len(spawnedAt))
	}
	for i, step := range spawnedAt {
		if want := 72 * (i + 1); step != want {
			t.Errorf("spawn %d at step %d, expected %d", i, step, want)
		}
	}
}

func TestSpawnerGapRespectsMargins(t *testing.T) {
	cfg := config.DefaultFlappyConfig()
	sp := NewSpawner(cfg, rand.New(rand.NewSource(42)))

	lo := cfg.Obstacles.TopMargin
	hi := cfg.GroundY() - cfg.Obstacles.BottomMargin - cfg.Obstacles.GapSize

	var lastID uint64
	for i := 0; i < 1000; i++ {
		o, ok := sp.Tick(cfg.Obstacles.SpawnInterval)
		if !ok {
			t.Fatalf("tick %d: a full interval should spawn", i)
		}
		if o.GapTop < lo || o.GapTop > hi {
			t.Fatalf("gap top %v outside [%v, %v]", o.GapTop, lo, hi)
		}
		if math.Abs(o.GapBottom-o.GapTop-cfg.Obstacles.GapSize) > 1e-9 {
			t.Fatalf("gap size %v, expected %v", o.GapBottom-o.GapTop, cfg.Obstacles.GapSize)
		}
		if o.X != cfg.World.Width || o.Width != cfg.Obstacles.Width || o.Scored {
			t.Fatalf("unexpected spawn %+v", o)
		}
		if o.ID <= lastID {
			t.Fatalf("IDs must increase, got %d after %d", o.ID, lastID)
		}
		lastID = o.ID
	}
}

func TestSpawnerDegenerateRange(t *testing.T) {
	cfg := config.DefaultFlappyConfig()
	cfg.Obstacles.TopMargin = 200
	cfg.Obstacles.BottomMargin = 220 // 200 + 120 + 220 = 540, no slack
	sp := NewSpawner(cfg, rand.New(rand.NewSource(7)))

	for i := 0; i < 20; i++ {
		o, _ := sp.Tick(cfg.Obstacles.SpawnInterval)
		if o.GapTop != 200 {
			t.Fatalf("gap top = %v, expected 200", o.GapTop)
		}
	}
}

func TestSpawnerReset(t *testing.T) {
	cfg := config.DefaultFlappyConfig()
	sp := NewSpawner(cfg, rand.New(rand.NewSource(1)))

	sp.Tick(0.5)
	sp.Reset()
	if sp.Timer() != cfg.Obstacles.SpawnInterval {
		t.Errorf("Timer() after Reset = %v, expected %v", sp.Timer(), cfg.Obstacles.SpawnInterval)
	}
}
