package theme

import "github.com/charmbracelet/lipgloss"

// Color is an alias for lipgloss.Color for convenience
type Color = lipgloss.Color

// Brand colors
const (
	ColorPrimary   Color = "99" // Purple - app name, titles
	ColorSecondary Color = "86" // Cyan - subtitles
)

// Session status colors
const (
	ColorRunning  Color = "2"   // Green - clock running
	ColorPaused   Color = "3"   // Yellow - paused
	ColorExpiring Color = "208" // Orange - under five minutes left
	ColorExpired  Color = "1"   // Red - counted down to zero
)

// Payment colors
const (
	ColorPaid   Color = "2" // Green
	ColorUnpaid Color = "1" // Red
)

// UI semantic colors
const (
	ColorError     Color = "196" // Bright red
	ColorHighlight Color = "255" // White - emphasis
	ColorMuted     Color = "241" // Gray - secondary text
	ColorNormal    Color = "250" // Default text
	ColorSubtle    Color = "245" // Light gray - labels
	ColorVersion   Color = "240" // Dark gray
)

// Accent colors
const (
	ColorHelpGroup Color = "141" // Purple
	ColorMoney     Color = "178" // Gold - amounts
	ColorSpinner   Color = "205" // Pink
)

// Shift colors, indexed by shift number 1-3
var ShiftColors = []string{"", "214", "33", "141"}
