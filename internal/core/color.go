package core

// Color is a palette index for a screen cell. The platform maps it to an
// ANSI 256-color code.
type Color uint8

// Palette.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorCyan
	ColorWhite
	ColorBrightGreen
	ColorBrightYellow
	ColorOrange
	ColorGray
)

// Roles the world renderer draws with.
const (
	ColorPipe    = ColorGreen
	ColorPipeLip = ColorBrightGreen
	ColorPassed  = ColorGray // Obstacles already scored
	ColorGrass   = ColorBrightGreen
	ColorSoil    = ColorOrange
	ColorAvatar  = ColorBrightYellow
	ColorCrashed = ColorRed
	ColorHUD     = ColorWhite
	ColorWall    = ColorGray
)
