// Package config provides YAML-based game configuration loading,
// validation and difficulty presets for the arcade.
package config

import "time"

// FlappyConfig contains all tuning for the Flappy simulation.
// Distances are world units, times are seconds, angles are degrees.
type FlappyConfig struct {
	World       FlappyWorld       `yaml:"world"`
	Physics     FlappyPhysics     `yaml:"physics"`
	Player      FlappyPlayer      `yaml:"player"`
	Obstacles   FlappyObstacles   `yaml:"obstacles"`
	Timing      FlappyTiming      `yaml:"timing"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
}

// FlappyWorld defines the visible world. Y grows downward from the ceiling.
type FlappyWorld struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	GroundHeight float64 `yaml:"ground_height"` // Ground strip at the bottom of the world
}

// FlappyPhysics defines physics parameters.
type FlappyPhysics struct {
	Gravity     float64 `yaml:"gravity"`      // Downward acceleration, units/s²
	FlapImpulse float64 `yaml:"flap_impulse"` // Velocity set by a flap (negative = up)
	ScrollSpeed float64 `yaml:"scroll_speed"` // Obstacle speed to the left, units/s
}

// FlappyPlayer defines the avatar.
type FlappyPlayer struct {
	X           float64 `yaml:"x"`
	StartY      float64 `yaml:"start_y"`
	Radius      float64 `yaml:"radius"`
	HitboxScale float64 `yaml:"hitbox_scale"` // Fraction of the radius used against obstacles
	TiltDivisor float64 `yaml:"tilt_divisor"`
	MinTilt     float64 `yaml:"min_tilt"`
	MaxTilt     float64 `yaml:"max_tilt"`
}

// FlappyObstacles defines obstacle geometry and cadence.
type FlappyObstacles struct {
	Width         float64 `yaml:"width"`
	GapSize       float64 `yaml:"gap_size"`
	TopMargin     float64 `yaml:"top_margin"`     // Minimum gap top below the ceiling
	BottomMargin  float64 `yaml:"bottom_margin"`  // Minimum distance from gap bottom to the ground
	RemovalMargin float64 `yaml:"removal_margin"` // How far past the left edge an obstacle lives
	SpawnInterval float64 `yaml:"spawn_interval"`
}

// FlappyTiming defines the fixed-step clock.
type FlappyTiming struct {
	StepsPerSecond int     `yaml:"steps_per_second"`
	MaxFrame       float64 `yaml:"max_frame"` // Largest frame delta accepted, seconds
}

// LeaderboardConfig defines how scores are reported.
type LeaderboardConfig struct {
	URL     string        `yaml:"url"`     // Remote service base URL; empty uses the local database
	TopN    int           `yaml:"top_n"`   // Rows fetched at game over
	Timeout time.Duration `yaml:"timeout"` // Per-request timeout
}

// FixedStep returns the duration of one simulation step in seconds.
func (c FlappyConfig) FixedStep() float64 {
	return 1.0 / float64(c.Timing.StepsPerSecond)
}

// GroundY returns the y coordinate of the ground line.
func (c FlappyConfig) GroundY() float64 {
	return c.World.Height - c.World.GroundHeight
}
