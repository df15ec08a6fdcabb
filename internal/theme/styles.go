package theme

import "github.com/charmbracelet/lipgloss"

// Main UI styles
var (
	HelpLabelStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	HelpShortcutStyle = lipgloss.NewStyle().
				Foreground(ColorHighlight).
				Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(1, 0)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorNormal)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(1, 0)
)

// Session status styles
var (
	RunningStyle = lipgloss.NewStyle().
			Foreground(ColorRunning)

	PausedStyle = lipgloss.NewStyle().
			Foreground(ColorPaused)

	ExpiringStyle = lipgloss.NewStyle().
			Foreground(ColorExpiring).
			Bold(true)

	ExpiredStyle = lipgloss.NewStyle().
			Foreground(ColorExpired).
			Bold(true)
)

// Payment styles
var (
	PaidStyle = lipgloss.NewStyle().
			Foreground(ColorPaid)

	UnpaidStyle = lipgloss.NewStyle().
			Foreground(ColorUnpaid).
			Bold(true)
)

// Money style
var MoneyStyle = lipgloss.NewStyle().
	Foreground(ColorMoney)

// Dialog header styles
var (
	AppNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	VersionStyle = lipgloss.NewStyle().
			Foreground(ColorVersion)
)

// Help screen styles
var (
	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	HelpGroupStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHelpGroup).
			MarginTop(1)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true).
			Width(25)
)

// Spinner style
var SpinnerStyle = lipgloss.NewStyle().
	Foreground(ColorSpinner)

// Error style
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorError).
	Bold(true)

// ShiftStyle returns a style for a shift number
func ShiftStyle(shift int) lipgloss.Style {
	if shift > 0 && shift < len(ShiftColors) {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ShiftColors[shift]))
	}
	return NormalStyle
}
