package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/flappy.yaml
var defaultFlappyYAML []byte

// DefaultFlappyConfig returns the canonical Flappy tuning.
func DefaultFlappyConfig() FlappyConfig {
	return FlappyConfig{
		World: FlappyWorld{
			Width:        400,
			Height:       600,
			GroundHeight: 60,
		},
		Physics: FlappyPhysics{
			Gravity:     1000,
			FlapImpulse: -350,
			ScrollSpeed: 200,
		},
		Player: FlappyPlayer{
			X:           100,
			StartY:      300,
			Radius:      18,
			HitboxScale: 0.95,
			TiltDivisor: 6,
			MinTilt:     -25,
			MaxTilt:     90,
		},
		Obstacles: FlappyObstacles{
			Width:         60,
			GapSize:       120,
			TopMargin:     80,
			BottomMargin:  80,
			RemovalMargin: 50,
			SpawnInterval: 1.2,
		},
		Timing: FlappyTiming{
			StepsPerSecond: 60,
			MaxFrame:       0.25,
		},
		Leaderboard: LeaderboardConfig{
			TopN:    3,
			Timeout: 5 * time.Second,
		},
	}
}

// DefaultFlappyYAML returns the embedded default YAML.
func DefaultFlappyYAML() []byte {
	return defaultFlappyYAML
}
