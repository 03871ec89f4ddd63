package core

// Action represents a semantic game action, abstracted from physical key presses.
// This allows the platform to map any key layout onto the same intents.
type Action int

const (
	ActionNone       Action = iota
	ActionFlap              // Space, W, Up - flap; also restarts from game over
	ActionRestart           // R - restart after game over
	ActionScoreboard        // Tab - open the leaderboard
	ActionBack              // B, Escape - leave a sub-screen
	ActionQuit              // Q, Ctrl+C - exit game/session
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionFlap:
		return "Flap"
	case ActionRestart:
		return "Restart"
	case ActionScoreboard:
		return "Scoreboard"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}
