package cmd

import (
	"context"
	"fmt"
)

// SessionsCloseCmd closes a session and finalizes its history record
type SessionsCloseCmd struct {
	ID int64 `arg:"" help:"Session id"`
}

// Run executes the close command
func (s *SessionsCloseCmd) Run(cli *CLI) error {
	if err := cli.Container.SessionService.Complete(context.Background(), s.ID); err != nil {
		return fmt.Errorf("failed to close session %d: %w", s.ID, err)
	}
	fmt.Printf("Session %d closed\n", s.ID)
	return nil
}

// SessionsDelCmd deletes a session, keeping a deleted history record
type SessionsDelCmd struct {
	ID    int64 `arg:"" help:"Session id"`
	Force bool  `help:"Skip confirmation prompt" short:"f"`
}

// Run executes the del command
func (s *SessionsDelCmd) Run(cli *CLI) error {
	if !s.Force {
		fmt.Printf("Delete session %d? The record is kept in history. [y/N]: ", s.ID)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := cli.Container.SessionService.Delete(context.Background(), s.ID); err != nil {
		return fmt.Errorf("failed to delete session %d: %w", s.ID, err)
	}
	fmt.Printf("Session %d deleted\n", s.ID)
	return nil
}
