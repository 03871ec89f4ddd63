package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-flappy/internal/config"
	"github.com/vovakirdan/tui-flappy/internal/core"
	"github.com/vovakirdan/tui-flappy/internal/games/flappy"
	"github.com/vovakirdan/tui-flappy/internal/leaderboard"
)

// Options configures a game Model.
type Options struct {
	Config   config.FlappyConfig
	Preset   config.DifficultyPreset // Applied to reloaded configs as well
	Runtime  core.RuntimeConfig
	Reporter *leaderboard.Reporter // Nil plays as a guest with no reporting
	Logger   *log.Logger
	Sinks    []flappy.Sink
	Reloads  <-chan config.Reload // Config file changes; nil disables hot reload
}

// Model is the Bubble Tea model for the game screen.
type Model struct {
	opts      Options
	session   *flappy.Session
	screen    *core.Screen
	keys      KeyMap
	board     table.Model
	logger    *log.Logger
	staged    *config.FlappyConfig // Applied at the next restart
	notice    string
	showBoard bool
	showHelp  bool
	quitting  bool
}

// NewModel creates the game model and its simulation session.
func NewModel(opts Options) (Model, error) {
	if opts.Runtime.TickRate <= 0 {
		opts.Runtime.TickRate = core.DefaultConfig().TickRate
	}
	// Use time-based seed if not specified
	if opts.Runtime.Seed == 0 {
		opts.Runtime.Seed = time.Now().UnixNano()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	m := Model{
		opts:   opts,
		screen: core.NewScreen(opts.Runtime.ScreenW, opts.Runtime.ScreenH),
		keys:   DefaultKeyMap(),
		board:  newStandingsTable(opts.Runtime.ScreenW, opts.Runtime.ScreenH),
		logger: opts.Logger,
	}

	session, err := m.newSession(opts.Config)
	if err != nil {
		return Model{}, err
	}
	m.session = session
	return m, nil
}

func (m Model) newSession(cfg config.FlappyConfig) (*flappy.Session, error) {
	reporter := m.opts.Reporter
	sessionOpts := []flappy.Option{
		flappy.WithSeed(m.opts.Runtime.Seed),
		flappy.WithLogger(m.logger),
		flappy.WithGameOverHandler(func(ev flappy.GameOver) {
			m.logger.Info("game over", "run", ev.RunID, "score", ev.Score, "ticks", ev.Ticks)
			if reporter != nil {
				reporter.GameOver(ev.RunID, ev.Score)
			}
		}),
	}
	for _, sink := range m.opts.Sinks {
		sessionOpts = append(sessionOpts, flappy.WithSink(sink))
	}

	session, err := flappy.NewSession(cfg, sessionOpts...)
	if err != nil {
		return nil, err
	}
	if reporter != nil {
		session.SetBest(reporter.Best())
	}
	return session, nil
}

// Session exposes the running simulation.
func (m Model) Session() *flappy.Session {
	return m.session
}

// Init starts the frame loop and the config watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.opts.Runtime.TickRate), waitForReload(m.opts.Reloads))
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.opts.Runtime.ScreenW = msg.Width
		m.opts.Runtime.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		m.board = newStandingsTable(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		return m.handleTick(time.Time(msg))

	case ReloadMsg:
		m.handleReload(config.Reload(msg))
		return m, waitForReload(m.opts.Reloads)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Screenshot):
		m.saveScreenshot()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	}

	state := m.session.State()
	switch m.keys.Action(msg) {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit

	case core.ActionFlap:
		if m.showBoard {
			return m, nil
		}
		if state == flappy.StateGameOver {
			m.restart()
			return m, nil
		}
		m.session.Flap()

	case core.ActionRestart:
		if state == flappy.StateGameOver {
			m.restart()
		}

	case core.ActionScoreboard:
		// The board is only reachable outside of play.
		if state != flappy.StateRunning {
			m.showBoard = !m.showBoard
		}

	case core.ActionBack:
		m.showBoard = false
	}

	return m, nil
}

// restart begins a new run, switching to a staged config if one is waiting.
func (m *Model) restart() {
	m.showBoard = false
	if m.staged == nil {
		m.session.Restart()
		return
	}

	cfg := *m.staged
	m.staged = nil
	m.opts.Runtime.Seed = time.Now().UnixNano()
	session, err := m.newSession(cfg)
	if err != nil {
		// Staged configs are validated already; keep playing the old one.
		m.logger.Error("staged config rejected", "err", err)
		m.session.Restart()
		return
	}
	prevBest := m.session.Snapshot().Best
	session.SetBest(prevBest)
	m.session = session
	m.opts.Config = cfg
	m.notice = ""
	m.logger.Info("config applied", "run", session.RunID())
}

// handleTick advances the simulation to the tick's wall time.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	m.session.Frame(now)
	return m, tickCmd(m.opts.Runtime.TickRate)
}

// handleReload stages a valid config for the next run.
func (m *Model) handleReload(r config.Reload) {
	if r.Err != nil {
		m.logger.Warn("config reload ignored", "err", r.Err)
		m.notice = "config invalid, keeping current settings"
		return
	}

	cfg := r.Config
	config.ApplyFlappyPreset(&cfg, m.opts.Preset)
	if err := cfg.Validate(); err != nil {
		m.logger.Warn("config reload ignored", "err", err)
		m.notice = "config invalid, keeping current settings"
		return
	}

	m.staged = &cfg
	m.notice = "config reloaded, applies on restart"
	m.logger.Info("config staged")

	// Nothing to interrupt before the first flap.
	if m.session.State() == flappy.StateIdle {
		m.restartIdle()
	}
}

// restartIdle swaps in the staged config while no run is in progress.
func (m *Model) restartIdle() {
	cfg := *m.staged
	session, err := m.newSession(cfg)
	if err != nil {
		m.logger.Error("staged config rejected", "err", err)
		return
	}
	session.SetBest(m.session.Snapshot().Best)
	m.session = session
	m.opts.Config = cfg
	m.staged = nil
	m.notice = "config reloaded"
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.draw()

	home, err := os.UserHomeDir()
	if err != nil {
		m.logger.Warn("screenshot failed", "err", err)
		return
	}
	dir := filepath.Join(home, ".arcade", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("screenshot failed", "err", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("flappy_%s.txt", timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("screenshot failed", "err", err)
		return
	}
	m.logger.Info("screenshot saved", "path", path)
}

func (m Model) standings() (leaderboard.Standings, string) {
	if m.opts.Reporter == nil {
		return leaderboard.Standings{Best: m.session.Snapshot().Best}, ""
	}
	st := m.opts.Reporter.Standings()
	if st.RunID != m.session.RunID() {
		// Standings belong to an earlier run; only the best carries over.
		st = leaderboard.Standings{Best: m.opts.Reporter.Best()}
	}
	return st, m.opts.Reporter.Identity()
}

// draw renders the current snapshot into the screen buffer.
func (m Model) draw() {
	snap := m.session.Snapshot()
	DrawWorld(m.screen, snap)

	st, identity := m.standings()
	drawOverlay(m.screen, snap, overlay{
		identity:  identity,
		standings: st,
		notice:    m.notice,
		showHelp:  m.showHelp,
		helpText:  plainHelp(m.keys.ShortHelp()),
	})
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.showBoard {
		var best int
		var rows []leaderboard.Entry
		identity := ""
		available := false
		if m.opts.Reporter != nil {
			st := m.opts.Reporter.Standings()
			rows, best, available = st.Rows, m.opts.Reporter.Best(), st.Available
			identity = m.opts.Reporter.Identity()
		}
		return renderBoard(m.board, rows, identity, best, available, m.opts.Runtime.ScreenW)
	}

	m.draw()
	return RenderScreen(m.screen)
}

// plainHelp renders bindings as unstyled text for drawing into cells.
func plainHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}

// Run starts the Bubble Tea program and blocks until the player quits.
func Run(ctx context.Context, opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
		tea.WithContext(ctx),
	)

	_, err = p.Run()
	return err
}
