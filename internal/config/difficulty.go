package config

import "fmt"

// DifficultyPreset represents a named difficulty level.
// Presets rescale the tuning before a session is built; a running session
// never changes its geometry or speed.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// presetScale holds the gap and scroll multipliers for each preset.
var presetScale = map[DifficultyPreset]struct{ gap, scroll float64 }{
	DifficultyEasy:   {gap: 1.25, scroll: 0.85},
	DifficultyNormal: {gap: 1.0, scroll: 1.0},
	DifficultyHard:   {gap: 0.85, scroll: 1.2},
}

// ParsePreset converts a CLI value to a preset. Empty means normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	if s == "" {
		return DifficultyNormal, nil
	}
	p := DifficultyPreset(s)
	if _, ok := presetScale[p]; !ok {
		return "", fmt.Errorf("unknown difficulty %q (want easy, normal or hard)", s)
	}
	return p, nil
}

// ApplyFlappyPreset modifies the config based on a difficulty preset.
func ApplyFlappyPreset(cfg *FlappyConfig, preset DifficultyPreset) {
	scale, ok := presetScale[preset]
	if !ok {
		return
	}
	cfg.Obstacles.GapSize *= scale.gap
	cfg.Physics.ScrollSpeed *= scale.scroll
}
