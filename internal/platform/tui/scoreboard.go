package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-flappy/internal/core"
	"github.com/vovakirdan/tui-flappy/internal/leaderboard"
	"github.com/vovakirdan/tui-flappy/internal/storage"
)

// Scoreboard layout constants
const (
	tableMinWidth = 40  // Minimum table width
	maxScores     = 100 // Max rows to load
	loadTimeout   = 5 * time.Second
)

// Scoreboard tabs
const (
	tabTop    = iota // Best score per identity
	tabRecent        // Latest local runs
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			MarginBottom(1)
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)
)

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	Refresh key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextTab, k.Refresh, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab},
		{k.Refresh, k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "left", "right", "h", "l"),
			key.WithHelp("tab", "switch view"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r", "f5"),
			key.WithHelp("ctrl+r", "refresh"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for the standalone scoreboard.
type ScoreboardModel struct {
	board    leaderboard.Service // Top scores, local or remote
	store    *storage.Store      // Recent runs; nil hides the tab
	identity string
	tab      int
	top      []leaderboard.Entry
	recent   []storage.ScoreEntry
	err      error
	table    table.Model
	help     help.Model
	keys     ScoreboardKeyMap
	width    int
	height   int
	quitting bool
}

// NewScoreboardModel creates a scoreboard over board. store may be nil.
func NewScoreboardModel(board leaderboard.Service, store *storage.Store, identity string, width, height int) ScoreboardModel {
	h := help.New()
	h.ShowAll = false

	m := ScoreboardModel{
		board:    board,
		store:    store,
		identity: identity,
		keys:     DefaultScoreboardKeyMap(),
		help:     h,
		width:    width,
		height:   height,
	}
	m.load()
	m.table = m.createTable()
	m.updateTableRows()
	return m
}

// createTable creates a new table with columns for the current tab.
func (m *ScoreboardModel) createTable() table.Model {
	tableWidth := max(m.width-8, tableMinWidth)

	var columns []table.Column
	if m.tab == tabRecent {
		columns = []table.Column{
			{Title: "Player", Width: 14},
			{Title: "Score", Width: 8},
			{Title: "Date", Width: min(tableWidth-26, 20)},
		}
	} else {
		columns = []table.Column{
			{Title: "Rank", Width: 6},
			{Title: "Player", Width: min(tableWidth-36, 20)},
			{Title: "Score", Width: 8},
			{Title: "Date", Width: 14},
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for header, help, and margins
	)
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	return s
}

// load fetches both tabs.
func (m *ScoreboardModel) load() {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	m.err = nil
	m.top, m.recent = nil, nil
	if m.board != nil {
		m.top, m.err = m.board.TopScores(ctx, maxScores)
	}
	if m.store != nil {
		recent, err := m.store.RecentRuns(ctx, "", maxScores)
		if err != nil && m.err == nil {
			m.err = err
		}
		m.recent = recent
	}
}

// updateTableRows updates the table with current scores.
func (m *ScoreboardModel) updateTableRows() {
	var rows []table.Row
	if m.tab == tabRecent {
		for _, r := range m.recent {
			rows = append(rows, table.Row{r.Identity, fmt.Sprintf("%d", r.Score), formatDate(r.CreatedAt)})
		}
	} else {
		for i, e := range m.top {
			name := e.Identity
			if e.Identity == m.identity {
				name = "* " + name
			}
			rows = append(rows, table.Row{fmt.Sprintf("#%d", i+1), name, fmt.Sprintf("%d", e.Score), formatDate(e.At)})
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m *ScoreboardModel) tabCount() int {
	if m.store == nil {
		return 1
	}
	return 2
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextTab):
			m.tab = (m.tab + 1) % m.tabCount()
			m.table = m.createTable()
			m.updateTableRows()
			return m, nil

		case key.Matches(msg, m.keys.Refresh):
			m.load()
			m.updateTableRows()
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(centerText("HIGH SCORES", m.width)))
	b.WriteString("\n\n")

	if m.tabCount() > 1 {
		tabs := []string{"Top", "Recent"}
		for i, t := range tabs {
			if i == m.tab {
				tabs[i] = activeTabStyle.Render(t)
			} else {
				tabs[i] = mutedStyle.Render(" " + t + " ")
			}
		}
		b.WriteString(centerText(strings.Join(tabs, " "), m.width))
		b.WriteString("\n\n")
	}

	b.WriteString(centerText(boxStyle.Render(m.renderTableContent()), m.width))

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// renderTableContent renders the table or empty message.
func (m ScoreboardModel) renderTableContent() string {
	if m.err != nil {
		return emptyStyle.Render("Leaderboard unavailable:\n" + m.err.Error())
	}
	if len(m.table.Rows()) == 0 {
		return emptyStyle.Render("No scores recorded yet.\nPlay a game to set a high score!")
	}
	return m.table.View()
}

// RunScoreboard runs the scoreboard screen until the user leaves.
func RunScoreboard(board leaderboard.Service, store *storage.Store, identity string, width, height int) error {
	model := NewScoreboardModel(board, store, identity, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}

// newStandingsTable builds the in-game leaderboard table.
func newStandingsTable(width, height int) table.Model {
	nameWidth := core.Clamp(width-30, 8, 20)
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Rank", Width: 6},
			{Title: "Player", Width: nameWidth},
			{Title: "Best", Width: 8},
		}),
		table.WithHeight(max(min(height-8, 12), 3)),
	)
	t.SetStyles(tableStyles())
	return t
}

// renderBoard renders the top rows followed by the player's own row when
// they are not among them.
func renderBoard(t table.Model, entries []leaderboard.Entry, identity string, best int, available bool, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(centerText("LEADERBOARD", width)))
	b.WriteString("\n\n")

	if !available {
		msg := fmt.Sprintf("Leaderboard appears after a finished run.\nYour best: %d", best)
		if identity == "" {
			msg = fmt.Sprintf("Playing as guest, scores stay local.\nBest this session: %d", best)
		}
		b.WriteString(centerText(boxStyle.Render(emptyStyle.Render(msg)), width))
	} else {
		rows := make([]table.Row, 0, len(entries)+1)
		listed := false
		for i, e := range entries {
			name := e.Identity
			if e.Identity == identity {
				name = "* " + name
				listed = true
			}
			rows = append(rows, table.Row{fmt.Sprintf("#%d", i+1), name, fmt.Sprintf("%d", e.Score)})
		}
		if !listed && identity != "" {
			rows = append(rows, table.Row{"-", "* " + identity, fmt.Sprintf("%d", best)})
		}
		t.SetRows(rows)
		b.WriteString(centerText(boxStyle.Render(t.View()), width))
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(centerText("esc back", width)))
	return b.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan 02 15:04")
}

// centerText pads text so it sits in the middle of width columns.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	pad := (width - w) / 2
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.Repeat(" ", pad) + l
	}
	return strings.Join(lines, "\n")
}
