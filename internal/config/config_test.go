package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultFlappyConfig().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestEmbeddedYAMLMatchesDefaults(t *testing.T) {
	var cfg FlappyConfig
	if err := yaml.Unmarshal(DefaultFlappyYAML(), &cfg); err != nil {
		t.Fatalf("embedded YAML should parse: %v", err)
	}
	if cfg != DefaultFlappyConfig() {
		t.Errorf("embedded YAML drifted from DefaultFlappyConfig:\n got %+v\nwant %+v", cfg, DefaultFlappyConfig())
	}
}

func TestFixedStepAndGround(t *testing.T) {
	cfg := DefaultFlappyConfig()
	if cfg.FixedStep() != 1.0/60.0 {
		t.Errorf("FixedStep() = %v, expected 1/60", cfg.FixedStep())
	}
	if cfg.GroundY() != 540 {
		t.Errorf("GroundY() = %v, expected 540", cfg.GroundY())
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FlappyConfig)
		want   string
	}{
		{"negative gravity", func(c *FlappyConfig) { c.Physics.Gravity = -1000 }, "gravity"},
		{"zero gravity", func(c *FlappyConfig) { c.Physics.Gravity = 0 }, "gravity"},
		{"zero spawn interval", func(c *FlappyConfig) { c.Obstacles.SpawnInterval = 0 }, "spawn interval"},
		{"negative spawn interval", func(c *FlappyConfig) { c.Obstacles.SpawnInterval = -1 }, "spawn interval"},
		{"gap fills the world", func(c *FlappyConfig) { c.Obstacles.GapSize = 540 }, "gap size"},
		{"margins leave no room", func(c *FlappyConfig) { c.Obstacles.TopMargin = 400 }, "no room"},
		{"upward flap is positive", func(c *FlappyConfig) { c.Physics.FlapImpulse = 350 }, "flap impulse"},
		{"no scroll", func(c *FlappyConfig) { c.Physics.ScrollSpeed = 0 }, "scroll speed"},
		{"negative obstacle width", func(c *FlappyConfig) { c.Obstacles.Width = -60 }, "obstacle width"},
		{"zero steps", func(c *FlappyConfig) { c.Timing.StepsPerSecond = 0 }, "steps per second"},
		{"max frame below step", func(c *FlappyConfig) { c.Timing.MaxFrame = 0.001 }, "max frame"},
		{"hitbox too large", func(c *FlappyConfig) { c.Player.HitboxScale = 1.5 }, "hitbox"},
		{"start inside ceiling", func(c *FlappyConfig) { c.Player.StartY = 5 }, "world bounds"},
		{"ground swallows world", func(c *FlappyConfig) { c.World.GroundHeight = 600 }, "ground height"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultFlappyConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error should wrap ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q should mention %q", err, tc.want)
			}
		})
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	cfg := DefaultFlappyConfig()
	cfg.Physics.Gravity = -1
	cfg.Obstacles.SpawnInterval = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should fail")
	}
	msg := err.Error()
	if !strings.Contains(msg, "gravity") || !strings.Contains(msg, "spawn interval") {
		t.Errorf("both violations should be reported, got %q", msg)
	}
}

func TestLoadFlappyFilePartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flappy.yaml")
	data := "physics:\n  gravity: 1500\nleaderboard:\n  timeout: 2s\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFlappy(path)
	if err != nil {
		t.Fatalf("LoadFlappy() failed: %v", err)
	}
	if cfg.Physics.Gravity != 1500 {
		t.Errorf("gravity = %v, expected 1500", cfg.Physics.Gravity)
	}
	if cfg.Physics.FlapImpulse != -350 {
		t.Errorf("unset keys should keep defaults, flap impulse = %v", cfg.Physics.FlapImpulse)
	}
	if cfg.Leaderboard.Timeout != 2*time.Second {
		t.Errorf("timeout = %v, expected 2s", cfg.Leaderboard.Timeout)
	}
}

func TestLoadFlappyCustomPathErrors(t *testing.T) {
	if _, err := LoadFlappy(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing custom path should be an error")
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("physics: [not, a, map"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFlappy(path); err == nil {
		t.Error("unparseable custom path should be an error")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(DefaultFlappyConfig())
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	if !strings.Contains(string(data), "spawn_interval: 1.2") {
		t.Errorf("marshalled YAML should use snake_case keys, got:\n%s", data)
	}
}

func TestPresets(t *testing.T) {
	p, err := ParsePreset("")
	if err != nil || p != DifficultyNormal {
		t.Errorf("empty preset should be normal, got %q, %v", p, err)
	}
	if _, err := ParsePreset("nightmare"); err == nil {
		t.Error("unknown preset should fail")
	}

	for _, preset := range []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard} {
		cfg := DefaultFlappyConfig()
		ApplyFlappyPreset(&cfg, preset)
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s produced an invalid config: %v", preset, err)
		}
	}

	hard := DefaultFlappyConfig()
	ApplyFlappyPreset(&hard, DifficultyHard)
	if hard.Obstacles.GapSize >= 120 || hard.Physics.ScrollSpeed <= 200 {
		t.Errorf("hard should shrink the gap and speed up scrolling, got gap=%v speed=%v",
			hard.Obstacles.GapSize, hard.Physics.ScrollSpeed)
	}
}

func TestWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flappy.yaml")
	if err := os.WriteFile(path, []byte("physics:\n  gravity: 1000\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("physics:\n  gravity: 1234\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case r := <-w.Reloads:
		if r.Err != nil {
			t.Fatalf("reload failed: %v", r.Err)
		}
		if r.Config.Physics.Gravity != 1234 {
			t.Errorf("gravity = %v, expected 1234", r.Config.Physics.Gravity)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload observed")
	}

	if err := os.WriteFile(path, []byte("physics:\n  gravity: -5\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case r := <-w.Reloads:
		if !errors.Is(r.Err, ErrInvalidConfig) {
			t.Errorf("invalid file should report ErrInvalidConfig, got %v", r.Err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload observed for invalid file")
	}
}
