package cmd

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"playtab/internal/domain"
	"playtab/internal/services"
)

// SessionsAddCmd opens a new session
type SessionsAddCmd struct {
	Name     string `arg:"" help:"Customer name"`
	Location string `arg:"" help:"Table or room identifier"`

	Mode    string `help:"Billing mode" enum:"fixed,prorated" default:"fixed"`
	Minutes int    `help:"Block length in minutes (fixed mode)" default:"60"`
	Rate    string `help:"Hourly rate (pro-rated mode, defaults to settings)"`
	Note    string `help:"Free-form note" default:""`
	Method  string `help:"Payment method" enum:"transfer,cash" default:"transfer"`
}

// Run executes the add command
func (s *SessionsAddCmd) Run(cli *CLI) error {
	params := services.CreateSessionParams{
		Mode:          domain.Mode(s.Mode),
		Name:          s.Name,
		Location:      s.Location,
		Note:          s.Note,
		PaymentMethod: domain.PaymentMethod(s.Method),
	}

	switch params.Mode {
	case domain.ModeFixed:
		params.DurationMinutes = s.Minutes
	case domain.ModeProRated:
		if s.Rate == "" {
			params.HourlyRate = cli.Settings().EffectiveHourlyRate()
		} else {
			rate, err := decimal.NewFromString(s.Rate)
			if err != nil {
				return fmt.Errorf("invalid rate '%s': %w", s.Rate, err)
			}
			params.HourlyRate = rate
		}
	}

	session, err := cli.Container.SessionService.Create(context.Background(), params)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	fmt.Printf("Session %d opened for %s at %s\n", session.ID, session.Name, session.Location)
	return nil
}
