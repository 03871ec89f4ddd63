// Package core provides fundamental types and utilities for the arcade platform.
// It contains no external dependencies (especially no Bubble Tea) to keep game
// logic pure and testable.
package core

// Rect represents an axis-aligned cell rectangle on a Screen.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Box is an axis-aligned rectangle in continuous world units.
// Min is the top-left corner; Y grows downward.
type Box struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// NewBox creates a box from its top-left corner and size.
func NewBox(x, y, w, h float64) Box {
	return Box{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 {
	return b.MaxX - b.MinX
}

// Height returns the vertical extent of the box.
func (b Box) Height() float64 {
	return b.MaxY - b.MinY
}

// ClosestPoint returns the point inside the box nearest to (x, y).
func (b Box) ClosestPoint(x, y float64) (float64, float64) {
	return ClampF(x, b.MinX, b.MaxX), ClampF(y, b.MinY, b.MaxY)
}

// Circle is a disc in world units.
type Circle struct {
	X, Y   float64 // Centre
	Radius float64
}

// Intersects reports whether the circle touches or overlaps the box.
// Contact at exactly the radius counts as a hit.
func (c Circle) Intersects(b Box) bool {
	px, py := b.ClosestPoint(c.X, c.Y)
	dx := c.X - px
	dy := c.Y - py
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
