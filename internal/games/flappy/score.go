package flappy

// ScoreTracker counts obstacles the avatar has passed.
type ScoreTracker struct {
	score int
}

// Update marks every unscored obstacle whose right edge is strictly left of
// playerX and returns how many were newly scored. Each obstacle scores at
// most once.
func (t *ScoreTracker) Update(obstacles []Obstacle, playerX float64) int {
	gained := 0
	for i := range obstacles {
		o := &obstacles[i]
		if o.Scored || !o.Passed(playerX) {
			continue
		}
		o.Scored = true
		gained++
	}
	t.score += gained
	return gained
}

// Score returns the current score.
func (t *ScoreTracker) Score() int {
	return t.score
}

// Reset zeroes the score.
func (t *ScoreTracker) Reset() {
	t.score = 0
}
