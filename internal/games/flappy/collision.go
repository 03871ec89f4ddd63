package flappy

import "github.com/vovakirdan/tui-flappy/internal/core"

// HitsBounds reports whether the avatar, at full radius, has left the
// playable band between the ceiling and the ground line.
func HitsBounds(b Body, groundY float64) bool {
	return b.Top() < 0 || b.Bottom() > groundY
}

// HitsObstacle reports whether the hitbox touches either segment of o.
func HitsObstacle(hitbox core.Circle, o Obstacle, groundY float64) bool {
	return hitbox.Intersects(o.Upper()) || hitbox.Intersects(o.Lower(groundY))
}
