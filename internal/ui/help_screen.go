package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"playtab/internal/theme"
)

type helpGroup struct {
	title    string
	bindings []key.Binding
}

// renderHelp draws the grouped keyboard reference.
func renderHelp(keys KeyMap) string {
	groups := []helpGroup{
		{"Navigation", []key.Binding{keys.Up, keys.Down}},
		{"Sessions", []key.Binding{keys.New, keys.Pause, keys.AddTime, keys.SubTime, keys.Extend, keys.Complete, keys.Delete}},
		{"Payment", []key.Binding{keys.TogglePaid, keys.CyclePayment}},
		{"Other", []key.Binding{keys.Summary, keys.Help, keys.Quit}},
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Keyboard shortcuts"))
	b.WriteString("\n")
	for _, g := range groups {
		b.WriteString(theme.HelpGroupStyle.Render(g.title))
		b.WriteString("\n")
		for _, binding := range g.bindings {
			h := binding.Help()
			b.WriteString("  ")
			b.WriteString(theme.HelpKeyStyle.Render(h.Key))
			b.WriteString(theme.HelpDescStyle.Render(h.Desc))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(theme.MutedStyle.Render("esc to go back"))
	return b.String()
}
