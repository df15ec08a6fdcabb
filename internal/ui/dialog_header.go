package ui

import "playtab/internal/theme"

// VersionInfo holds version information for display in UI headers.
// Populated by main.go from ldflags-injected values.
type VersionInfo struct {
	Commit  string
	Date    string
	Version string
}

// DefaultVersionInfo provides default values when version info is not available
var DefaultVersionInfo = VersionInfo{
	Commit:  "unknown",
	Date:    "unknown",
	Version: "dev",
}

// versionInfo holds the global version info set by SetVersionInfo
var versionInfo = DefaultVersionInfo

// SetVersionInfo sets the global version info (called from main.go)
func SetVersionInfo(info VersionInfo) {
	versionInfo = info
}

// renderHeader creates the header used across the application: app name
// plus an optional subtitle for dialog forms.
func renderHeader(subtitle string) string {
	result := theme.AppNameStyle.Render("Playtab")
	result += theme.VersionStyle.Render(" " + versionInfo.Version)

	if subtitle != "" {
		result += "\n\n" + theme.SubtitleStyle.Render(subtitle)
	}

	result += "\n"
	return result
}

// renderDialogHeader creates a header for dialogs with a form title.
// Only the Dialog wrapper should call this; wrap form components in
// NewDialog instead of calling it directly.
func renderDialogHeader(formTitle string) string {
	return renderHeader(formTitle)
}
