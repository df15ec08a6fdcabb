package cmd

import (
	"context"
	"fmt"

	"playtab/internal/domain"
)

// SessionsNoteCmd sets or clears the session note
type SessionsNoteCmd struct {
	ID   int64  `arg:"" help:"Session id"`
	Note string `arg:"" optional:"" help:"Note text (omit to clear)"`
}

// Run executes the note command
func (s *SessionsNoteCmd) Run(cli *CLI) error {
	if err := cli.Container.SessionService.SetNote(context.Background(), s.ID, s.Note); err != nil {
		return fmt.Errorf("failed to set note on session %d: %w", s.ID, err)
	}
	if s.Note == "" {
		fmt.Printf("Cleared note on session %d\n", s.ID)
	} else {
		fmt.Printf("Set note on session %d\n", s.ID)
	}
	return nil
}

// SessionsShiftCmd reassigns the session to another shift
type SessionsShiftCmd struct {
	ID    int64  `arg:"" help:"Session id"`
	Shift string `arg:"" help:"Shift (1/day, 2/evening, 3/overnight)"`
}

// Run executes the shift command
func (s *SessionsShiftCmd) Run(cli *CLI) error {
	shift, err := domain.ParseShift(s.Shift)
	if err != nil {
		return err
	}
	if err := cli.Container.SessionService.SetShift(context.Background(), s.ID, shift); err != nil {
		return fmt.Errorf("failed to set shift on session %d: %w", s.ID, err)
	}
	fmt.Printf("Session %d moved to shift %s\n", s.ID, shift.Label())
	return nil
}
