package cmd

import (
	"context"
	"fmt"

	"playtab/internal/domain"
)

// SessionsPayCmd toggles the paid flag
type SessionsPayCmd struct {
	ID int64 `arg:"" help:"Session id"`
}

// Run executes the pay command
func (s *SessionsPayCmd) Run(cli *CLI) error {
	if err := cli.Container.SessionService.TogglePaid(context.Background(), s.ID); err != nil {
		return fmt.Errorf("failed to toggle paid on session %d: %w", s.ID, err)
	}
	fmt.Printf("Toggled paid flag on session %d\n", s.ID)
	return nil
}

// SessionsMethodCmd sets the payment method
type SessionsMethodCmd struct {
	ID     int64  `arg:"" help:"Session id"`
	Method string `arg:"" help:"Payment method" enum:"transfer,cash"`
}

// Run executes the method command
func (s *SessionsMethodCmd) Run(cli *CLI) error {
	method := domain.PaymentMethod(s.Method)
	if err := cli.Container.SessionService.SetPaymentMethod(context.Background(), s.ID, method); err != nil {
		return fmt.Errorf("failed to set payment method on session %d: %w", s.ID, err)
	}
	fmt.Printf("Session %d payment method set to %s\n", s.ID, s.Method)
	return nil
}
