package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds all dashboard key bindings, grouped the way the help
// screen presents them.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Session lifecycle
	New      key.Binding
	Pause    key.Binding
	AddTime  key.Binding
	SubTime  key.Binding
	Extend   key.Binding
	Complete key.Binding
	Delete   key.Binding

	// Billing
	TogglePaid   key.Binding
	CyclePayment key.Binding

	// Application
	Summary key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// NewKeyMap returns the default bindings.
func NewKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new session"),
		),
		Pause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause/resume"),
		),
		AddTime: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "add 5 minutes"),
		),
		SubTime: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "subtract 5 minutes"),
		),
		Extend: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "extend expired session"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "complete (checkout)"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete (void)"),
		),
		TogglePaid: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "toggle paid"),
		),
		CyclePayment: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "cash/transfer"),
		),
		Summary: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "daily summary"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
