package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-flappy/internal/core"
	"github.com/vovakirdan/tui-flappy/internal/games/flappy"
	"github.com/vovakirdan/tui-flappy/internal/leaderboard"
)

// Visual characters for rendering
const (
	PipeChar    = '█'
	PipeLipChar = '▀'
	GroundChar  = '▒'
	GrassChar   = '▔'
	WallChar    = '│'
)

// Avatar glyphs by tilt
const (
	AvatarUp    = '↗'
	AvatarLevel = '→'
	AvatarDown  = '↘'
)

// cellAspect is how many columns span the same distance as one row.
const cellAspect = 2.0

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:      lipgloss.NewStyle(),
	core.ColorRed:          lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:        lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:       lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorCyan:         lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:        lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorOrange:       lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// viewport maps world units onto screen cells. Row 0 holds the HUD; the
// field keeps the world's aspect ratio and is centred horizontally.
type viewport struct {
	scaleX, scaleY float64
	originX        int // First field column
	originY        int // First field row
	width          int // Field width in columns
	groundRow      int
	bottom         int // One past the last field row
}

func newViewport(s *core.Screen, snap flappy.Snapshot) viewport {
	rows := s.Height() - 1
	sy := float64(rows) / snap.WorldHeight
	sx := sy * cellAspect
	// Too narrow a terminal: squeeze horizontally instead of clipping.
	if snap.WorldWidth*sx > float64(s.Width()-2) {
		sx = float64(s.Width()-2) / snap.WorldWidth
	}

	width := int(math.Round(snap.WorldWidth * sx))
	v := viewport{
		scaleX:  sx,
		scaleY:  sy,
		originX: (s.Width() - width) / 2,
		originY: 1,
		width:   width,
		bottom:  s.Height(),
	}
	v.groundRow = v.row(snap.GroundY)
	return v
}

func (v viewport) col(x float64) int {
	return v.originX + int(math.Floor(x*v.scaleX))
}

func (v viewport) row(y float64) int {
	return v.originY + int(math.Floor(y*v.scaleY))
}

func (v viewport) inField(x int) bool {
	return x >= v.originX && x < v.originX+v.width
}

// DrawWorld draws the snapshot's world into the screen.
func DrawWorld(s *core.Screen, snap flappy.Snapshot) {
	s.Clear()
	if s.Width() < 4 || s.Height() < 4 || snap.WorldWidth <= 0 || snap.WorldHeight <= 0 {
		return
	}
	v := newViewport(s, snap)

	// Field walls
	for y := v.originY; y < v.bottom; y++ {
		s.SetColored(v.originX-1, y, WallChar, core.ColorWall)
		s.SetColored(v.originX+v.width, y, WallChar, core.ColorWall)
	}

	for _, o := range snap.Obstacles {
		drawObstacle(s, v, o)
	}

	// Ground
	for x := v.originX; x < v.originX+v.width; x++ {
		s.SetColored(x, v.groundRow, GrassChar, core.ColorGrass)
		for y := v.groundRow + 1; y < v.bottom; y++ {
			s.SetColored(x, y, GroundChar, core.ColorSoil)
		}
	}

	drawAvatar(s, v, snap.Avatar, snap.State)
	drawHUD(s, snap)
}

func drawObstacle(s *core.Screen, v viewport, o flappy.Obstacle) {
	x0 := v.col(o.X)
	x1 := v.originX + int(math.Ceil(o.Right()*v.scaleX))
	gapTop := v.row(o.GapTop)
	gapBottom := v.originY + int(math.Ceil(o.GapBottom*v.scaleY))

	color := core.ColorPipe
	if o.Scored {
		color = core.ColorPassed
	}

	for x := x0; x < x1; x++ {
		if !v.inField(x) {
			continue
		}
		for y := v.originY; y < gapTop; y++ {
			s.SetColored(x, y, PipeChar, color)
		}
		for y := gapBottom; y < v.groundRow; y++ {
			s.SetColored(x, y, PipeChar, color)
		}
		if gapBottom < v.groundRow {
			s.SetColored(x, gapBottom, PipeLipChar, core.ColorPipeLip)
		}
	}
}

func drawAvatar(s *core.Screen, v viewport, a flappy.AvatarView, state flappy.State) {
	glyph := AvatarLevel
	switch {
	case a.Tilt <= -10:
		glyph = AvatarUp
	case a.Tilt >= 30:
		glyph = AvatarDown
	}

	color := core.ColorAvatar
	if state == flappy.StateGameOver {
		color = core.ColorCrashed
	}

	y := core.Clamp(v.row(a.Y), v.originY, v.bottom-1)
	s.SetColored(v.col(a.X), y, glyph, color)
}

func drawHUD(s *core.Screen, snap flappy.Snapshot) {
	hud := fmt.Sprintf("Score %d", snap.Score)
	if snap.Best > 0 {
		hud = fmt.Sprintf("Score %d   Best %d", snap.Score, snap.Best)
	}
	s.DrawTextCentered(0, hud, core.ColorHUD)
}

// overlay is the text shown on top of the field outside of play.
type overlay struct {
	identity  string
	standings leaderboard.Standings
	notice    string
	showHelp  bool
	helpText  string
}

// drawOverlay draws the idle prompt or the game over panel.
func drawOverlay(s *core.Screen, snap flappy.Snapshot, o overlay) {
	var lines []string
	color := core.ColorWhite

	if snap.State == flappy.StateIdle {
		lines = []string{"SPACE to flap", "", "tab leaderboard · q quit"}
		color = core.ColorCyan
	}
	if final, ok := snap.Final(); ok {
		lines = append(lines, "GAME OVER", "", fmt.Sprintf("Score %d", final))
		lines = append(lines, standingsLines(o.standings, o.identity)...)
		lines = append(lines, "", "r/space restart · q quit")
		color = core.ColorYellow
	}
	if o.notice != "" {
		lines = append(lines, "", o.notice)
	}
	if o.showHelp && o.helpText != "" {
		lines = append(lines, "", o.helpText)
	}
	if len(lines) == 0 {
		return
	}

	width := 0
	for _, l := range lines {
		width = core.Max(width, len([]rune(l)))
	}
	width = core.Min(width+4, s.Width())
	height := core.Min(len(lines)+2, s.Height()-1)

	box := core.NewRect((s.Width()-width)/2, core.Max(1, (s.Height()-height)/2), width, height)
	s.DrawRect(box, ' ', core.ColorDefault)
	s.DrawBox(box, color)
	for i, l := range lines {
		if i+1 >= height-1 {
			break
		}
		s.DrawTextCentered(box.Y+1+i, l, color)
	}
}

// standingsLines formats the leaderboard part of the game over panel:
// the top rows, then the player's best if they are not among them.
func standingsLines(st leaderboard.Standings, identity string) []string {
	switch {
	case st.Pending:
		return []string{"", "fetching leaderboard..."}
	case !st.Available:
		lines := []string{"", fmt.Sprintf("Best %d", st.Best)}
		if identity != "" {
			lines = append(lines, "leaderboard unavailable")
		}
		return lines
	}

	lines := []string{"", "LEADERBOARD"}
	listed := false
	for i, e := range st.Rows {
		marker := " "
		if e.Identity == identity {
			marker = "*"
			listed = true
		}
		lines = append(lines, fmt.Sprintf("%s%d. %-12s %6d", marker, i+1, truncate(e.Identity, 12), e.Score))
	}
	if !listed && identity != "" {
		lines = append(lines, fmt.Sprintf("*-. %-12s %6d", truncate(identity, 12), st.Best))
	}
	return lines
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}
