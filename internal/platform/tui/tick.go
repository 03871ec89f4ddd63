// Package tui provides the Bubble Tea integration for the game.
// It handles the terminal UI loop, input mapping and presentation of
// simulation snapshots.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-flappy/internal/config"
)

// TickMsg is sent on every frame callback. Its time drives the
// simulation's fixed-step scheduler.
type TickMsg time.Time

// ReloadMsg carries a config file change.
type ReloadMsg config.Reload

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// waitForReload blocks on the watcher channel and delivers one reload.
// The model re-arms it after every ReloadMsg.
func waitForReload(ch <-chan config.Reload) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return ReloadMsg(r)
	}
}
