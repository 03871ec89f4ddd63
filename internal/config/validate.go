package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks the tuning for values the simulation cannot run with.
// All violations are reported together.
func (c FlappyConfig) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...)))
	}

	w := c.World
	if w.Width <= 0 || w.Height <= 0 {
		bad("world size must be positive, got %vx%v", w.Width, w.Height)
	}
	if w.GroundHeight < 0 || w.GroundHeight >= w.Height {
		bad("ground height %v must be within [0, %v)", w.GroundHeight, w.Height)
	}
	usable := c.GroundY()

	p := c.Physics
	if p.Gravity <= 0 {
		bad("gravity must be positive, got %v", p.Gravity)
	}
	if p.FlapImpulse >= 0 {
		bad("flap impulse must be negative (upward), got %v", p.FlapImpulse)
	}
	if p.ScrollSpeed <= 0 {
		bad("scroll speed must be positive, got %v", p.ScrollSpeed)
	}

	o := c.Obstacles
	if o.SpawnInterval <= 0 {
		bad("spawn interval must be positive, got %v", o.SpawnInterval)
	}
	if o.Width <= 0 {
		bad("obstacle width must be positive, got %v", o.Width)
	}
	if o.GapSize <= 0 || o.GapSize >= usable {
		bad("gap size %v must be within (0, %v)", o.GapSize, usable)
	}
	if o.TopMargin < 0 || o.BottomMargin < 0 || o.RemovalMargin < 0 {
		bad("margins must not be negative")
	}
	if o.TopMargin+o.GapSize+o.BottomMargin > usable {
		bad("margins %v+%v leave no room for a %v gap in %v", o.TopMargin, o.BottomMargin, o.GapSize, usable)
	}

	t := c.Timing
	if t.StepsPerSecond <= 0 {
		bad("steps per second must be positive, got %d", t.StepsPerSecond)
	} else if t.MaxFrame < c.FixedStep() {
		bad("max frame %v is shorter than one step", t.MaxFrame)
	}

	pl := c.Player
	if pl.Radius <= 0 {
		bad("player radius must be positive, got %v", pl.Radius)
	}
	if pl.HitboxScale <= 0 || pl.HitboxScale > 1 {
		bad("hitbox scale must be within (0, 1], got %v", pl.HitboxScale)
	}
	if pl.TiltDivisor <= 0 {
		bad("tilt divisor must be positive, got %v", pl.TiltDivisor)
	}
	if pl.MinTilt > pl.MaxTilt {
		bad("min tilt %v exceeds max tilt %v", pl.MinTilt, pl.MaxTilt)
	}
	if pl.X < 0 || pl.X > w.Width {
		bad("player x %v is outside the world", pl.X)
	}
	if pl.Radius > 0 && (pl.StartY-pl.Radius < 0 || pl.StartY+pl.Radius > usable) {
		bad("player would start touching the world bounds at y=%v", pl.StartY)
	}

	if c.Leaderboard.TopN < 0 {
		bad("leaderboard top_n must not be negative, got %d", c.Leaderboard.TopN)
	}

	return errors.Join(errs...)
}
