package ui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"playtab/internal/services"
)

// ExtendForm asks for the number of minutes to add after a fixed
// session ran out.
type ExtendForm struct {
	form      *huh.Form
	service   *services.SessionService
	sessionID int64
	minutes   string
	cancelled bool
	submitted bool
}

// NewExtendForm builds the extension prompt for one session.
func NewExtendForm(service *services.SessionService, sessionID int64) *ExtendForm {
	ef := &ExtendForm{
		service:   service,
		sessionID: sessionID,
		minutes:   "30",
	}

	ef.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Extend by (minutes)").
				Value(&ef.minutes).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n <= 0 {
						return fmt.Errorf("minutes must be a positive number")
					}
					return nil
				}),
		),
	).WithShowHelp(false)

	return ef
}

// Init implements tea.Model
func (ef *ExtendForm) Init() tea.Cmd {
	return ef.form.Init()
}

// Update implements tea.Model
func (ef *ExtendForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		ef.cancelled = true
		return ef, nil
	}

	form, cmd := ef.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		ef.form = f
	}

	if ef.form.State == huh.StateCompleted && !ef.submitted {
		ef.submitted = true
		minutes, _ := strconv.Atoi(ef.minutes)
		id := ef.sessionID
		svc := ef.service
		return ef, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return actionDoneMsg{err: svc.Extend(ctx, id, minutes)}
		}
	}

	return ef, cmd
}

// View implements tea.Model
func (ef *ExtendForm) View() string {
	return ef.form.View()
}

// Cancelled reports whether the operator backed out with esc.
func (ef *ExtendForm) Cancelled() bool {
	return ef.cancelled
}

// Submitted reports whether the extension request was fired.
func (ef *ExtendForm) Submitted() bool {
	return ef.submitted
}
