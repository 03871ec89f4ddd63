package spectate

import (
	"encoding/json"

	"github.com/vovakirdan/tui-flappy/internal/games/flappy"
)

// Version tags every frame sent to spectators.
const Version = "spectate.v1"

// Frame is the JSON message broadcast for each presented snapshot.
type Frame struct {
	Version   string          `json:"version"`
	Type      string          `json:"type"`
	RunID     string          `json:"run_id"`
	State     string          `json:"state"`
	Tick      uint64          `json:"tick"`
	Score     int             `json:"score"`
	Best      int             `json:"best"`
	World     WorldFrame      `json:"world"`
	Avatar    AvatarFrame     `json:"avatar"`
	Obstacles []ObstacleFrame `json:"obstacles"`
}

type WorldFrame struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	GroundY float64 `json:"ground_y"`
}

type AvatarFrame struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Velocity float64 `json:"velocity"`
	Tilt     float64 `json:"tilt"`
	Radius   float64 `json:"radius"`
}

type ObstacleFrame struct {
	ID        uint64  `json:"id"`
	X         float64 `json:"x"`
	Width     float64 `json:"width"`
	GapTop    float64 `json:"gap_top"`
	GapBottom float64 `json:"gap_bottom"`
	Scored    bool    `json:"scored"`
}

// NewFrame converts a snapshot to its wire form.
func NewFrame(snap flappy.Snapshot) Frame {
	obstacles := make([]ObstacleFrame, 0, len(snap.Obstacles))
	for _, o := range snap.Obstacles {
		obstacles = append(obstacles, ObstacleFrame{
			ID:        o.ID,
			X:         o.X,
			Width:     o.Width,
			GapTop:    o.GapTop,
			GapBottom: o.GapBottom,
			Scored:    o.Scored,
		})
	}

	return Frame{
		Version: Version,
		Type:    "snapshot",
		RunID:   snap.RunID,
		State:   snap.State.String(),
		Tick:    snap.Tick,
		Score:   snap.Score,
		Best:    snap.Best,
		World: WorldFrame{
			Width:   snap.WorldWidth,
			Height:  snap.WorldHeight,
			GroundY: snap.GroundY,
		},
		Avatar: AvatarFrame{
			X:        snap.Avatar.X,
			Y:        snap.Avatar.Y,
			Velocity: snap.Avatar.Velocity,
			Tilt:     snap.Avatar.Tilt,
			Radius:   snap.Avatar.Radius,
		},
		Obstacles: obstacles,
	}
}

func encodeFrame(snap flappy.Snapshot) ([]byte, error) {
	return json.Marshal(NewFrame(snap))
}
