package flappy

import (
	"github.com/vovakirdan/tui-flappy/internal/config"
	"github.com/vovakirdan/tui-flappy/internal/core"
)

// Body is the avatar: a circle that only moves vertically.
type Body struct {
	X      float64 // Fixed horizontal position
	Y      float64 // Centre, world units (down is positive)
	VY     float64 // Vertical velocity, units/s
	Radius float64
}

// NewBody places the avatar at its canonical start, at rest.
func NewBody(p config.FlappyPlayer) Body {
	return Body{X: p.X, Y: p.StartY, Radius: p.Radius}
}

// Integrate applies gravity for one step (semi-implicit Euler).
func (b *Body) Integrate(gravity, dt float64) {
	b.VY += gravity * dt
	b.Y += b.VY * dt
}

// Impulse sets the vertical velocity instantly.
func (b *Body) Impulse(v float64) {
	b.VY = v
}

// Tilt returns a display angle derived from velocity. It has no effect on
// the simulation.
func (b Body) Tilt(divisor, minAngle, maxAngle float64) float64 {
	return core.ClampF(b.VY/divisor, minAngle, maxAngle)
}

// Hitbox returns the collision circle scaled by the given factor.
func (b Body) Hitbox(scale float64) core.Circle {
	return core.Circle{X: b.X, Y: b.Y, Radius: b.Radius * scale}
}

// Top returns the y coordinate of the avatar's upper edge.
func (b Body) Top() float64 {
	return b.Y - b.Radius
}

// Bottom returns the y coordinate of the avatar's lower edge.
func (b Body) Bottom() float64 {
	return b.Y + b.Radius
}
