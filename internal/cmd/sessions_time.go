package cmd

import (
	"context"
	"fmt"
)

// SessionsAddTimeCmd adds minutes to a fixed session
type SessionsAddTimeCmd struct {
	ID      int64 `arg:"" help:"Session id"`
	Minutes int   `arg:"" help:"Minutes to add"`
}

// Run executes the addtime command
func (s *SessionsAddTimeCmd) Run(cli *CLI) error {
	if err := cli.Container.SessionService.AddTime(context.Background(), s.ID, s.Minutes); err != nil {
		return fmt.Errorf("failed to add time to session %d: %w", s.ID, err)
	}
	fmt.Printf("Added %d minutes to session %d\n", s.Minutes, s.ID)
	return nil
}

// SessionsSubTimeCmd subtracts minutes from a fixed session
type SessionsSubTimeCmd struct {
	ID      int64 `arg:"" help:"Session id"`
	Minutes int   `arg:"" help:"Minutes to subtract"`
}

// Run executes the subtime command
func (s *SessionsSubTimeCmd) Run(cli *CLI) error {
	if err := cli.Container.SessionService.SubtractTime(context.Background(), s.ID, s.Minutes); err != nil {
		return fmt.Errorf("failed to subtract time from session %d: %w", s.ID, err)
	}
	fmt.Printf("Subtracted %d minutes from session %d\n", s.Minutes, s.ID)
	return nil
}

// SessionsExtendCmd extends a fixed session, reopening an expired one
type SessionsExtendCmd struct {
	ID      int64 `arg:"" help:"Session id"`
	Minutes int   `arg:"" help:"Minutes to extend by"`
}

// Run executes the extend command
func (s *SessionsExtendCmd) Run(cli *CLI) error {
	if err := cli.Container.SessionService.Extend(context.Background(), s.ID, s.Minutes); err != nil {
		return fmt.Errorf("failed to extend session %d: %w", s.ID, err)
	}
	fmt.Printf("Extended session %d by %d minutes\n", s.ID, s.Minutes)
	return nil
}
