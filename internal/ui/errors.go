package ui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"playtab/internal/domain"
)

// clearErrorMsg triggers error clearing after the configured delay.
type clearErrorMsg struct{}

// ErrorManager holds the one error line shown under the session list
// and translates store errors into operator-readable text.
type ErrorManager struct {
	current    error
	clearDelay time.Duration
}

// NewErrorManager creates an ErrorManager with the given auto-clear delay.
func NewErrorManager(clearDelay time.Duration) *ErrorManager {
	return &ErrorManager{clearDelay: clearDelay}
}

// SetError sets the error to display.
func (em *ErrorManager) SetError(err error) {
	em.current = err
}

// ClearError removes the displayed error.
func (em *ErrorManager) ClearError() {
	em.current = nil
}

// GetError returns the current error, nil when none.
func (em *ErrorManager) GetError() error {
	return em.current
}

// HasError reports whether an error is displayed.
func (em *ErrorManager) HasError() bool {
	return em.current != nil
}

// Message returns the operator-facing text for the current error.
// Benign concurrency outcomes get a calmer phrasing than raw store
// errors.
func (em *ErrorManager) Message() string {
	switch {
	case em.current == nil:
		return ""
	case errors.Is(em.current, domain.ErrSessionNotFound):
		return "session already closed on another terminal"
	case errors.Is(em.current, domain.ErrWrongMode):
		return "only fixed-block sessions have a countdown to change"
	case errors.Is(em.current, domain.ErrAlreadyPaused):
		return "session is already paused"
	case errors.Is(em.current, domain.ErrAlreadyRunning):
		return "session is already running"
	default:
		return em.current.Error()
	}
}

// ClearAfterDelay returns a tea.Cmd that emits clearErrorMsg after the
// configured delay.
func (em *ErrorManager) ClearAfterDelay() tea.Cmd {
	return tea.Tick(em.clearDelay, func(time.Time) tea.Msg {
		return clearErrorMsg{}
	})
}
