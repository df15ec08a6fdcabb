package ui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"playtab/internal/domain"
	"playtab/internal/services"
	"playtab/internal/theme"
)

// SessionForm collects the fields for a new session. It wraps a huh
// form and shows a spinner while the store call is in flight.
type SessionForm struct {
	form     *huh.Form
	spinner  spinner.Model
	service  *services.SessionService
	creating bool

	mode     string
	name     string
	location string
	duration string
	rate     string
	note     string

	cancelled bool
}

// NewSessionForm builds the create form. defaultRate pre-fills the
// hourly rate field for pro-rated sessions.
func NewSessionForm(service *services.SessionService, defaultRate decimal.Decimal) *SessionForm {
	sf := &SessionForm{
		service:  service,
		mode:     string(domain.ModeFixed),
		duration: "60",
		rate:     defaultRate.String(),
	}

	sf.spinner = spinner.New()
	sf.spinner.Spinner = spinner.Dot
	sf.spinner.Style = theme.SpinnerStyle

	sf.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Customer").
				Value(&sf.name).
				Validate(requireText("customer name")),
			huh.NewInput().
				Title("Table / location").
				Value(&sf.location).
				Validate(requireText("location")),
			huh.NewSelect[string]().
				Title("Billing").
				Options(
					huh.NewOption("Fixed block", string(domain.ModeFixed)),
					huh.NewOption("Pro-rated hourly", string(domain.ModeProRated)),
				).
				Value(&sf.mode),
			huh.NewInput().
				Title("Minutes (fixed)").
				Value(&sf.duration).
				Validate(sf.validateDuration),
			huh.NewInput().
				Title("Hourly rate (pro-rated)").
				Value(&sf.rate).
				Validate(sf.validateRate),
			huh.NewInput().
				Title("Note").
				Value(&sf.note),
		),
	).WithShowHelp(false)

	return sf
}

func requireText(what string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func (sf *SessionForm) validateDuration(s string) error {
	if sf.mode != string(domain.ModeFixed) {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("minutes must be a positive number")
	}
	return nil
}

func (sf *SessionForm) validateRate(s string) error {
	if sf.mode != string(domain.ModeProRated) {
		return nil
	}
	rate, err := decimal.NewFromString(s)
	if err != nil || rate.IsNegative() {
		return fmt.Errorf("rate must be a non-negative amount")
	}
	return nil
}

// Init implements tea.Model
func (sf *SessionForm) Init() tea.Cmd {
	return sf.form.Init()
}

// Update implements tea.Model
func (sf *SessionForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if sf.creating {
		var cmd tea.Cmd
		sf.spinner, cmd = sf.spinner.Update(msg)
		return sf, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		sf.cancelled = true
		return sf, nil
	}

	form, cmd := sf.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		sf.form = f
	}

	if sf.form.State == huh.StateCompleted {
		sf.creating = true
		return sf, tea.Batch(sf.spinner.Tick, sf.createCmd())
	}

	return sf, cmd
}

func (sf *SessionForm) createCmd() tea.Cmd {
	params := services.CreateSessionParams{
		Mode:          domain.Mode(sf.mode),
		Name:          sf.name,
		Location:      sf.location,
		Note:          sf.note,
		PaymentMethod: domain.PaymentTransfer,
	}
	if params.Mode == domain.ModeFixed {
		params.DurationMinutes, _ = strconv.Atoi(sf.duration)
	} else {
		params.HourlyRate, _ = decimal.NewFromString(sf.rate)
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		session, err := sf.service.Create(ctx, params)
		return sessionCreatedMsg{session: session, err: err}
	}
}

// View implements tea.Model
func (sf *SessionForm) View() string {
	if sf.creating {
		return sf.spinner.View() + " Opening session..."
	}
	return sf.form.View()
}

// Cancelled reports whether the operator backed out with esc.
func (sf *SessionForm) Cancelled() bool {
	return sf.cancelled
}
