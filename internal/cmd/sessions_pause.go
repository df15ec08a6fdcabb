package cmd

import (
	"context"
	"fmt"
)

// SessionsPauseCmd pauses a running session
type SessionsPauseCmd struct {
	ID int64 `arg:"" help:"Session id"`
}

// Run executes the pause command
func (s *SessionsPauseCmd) Run(cli *CLI) error {
	if err := cli.Container.SessionService.Pause(context.Background(), s.ID); err != nil {
		return fmt.Errorf("failed to pause session %d: %w", s.ID, err)
	}
	fmt.Printf("Session %d paused\n", s.ID)
	return nil
}

// SessionsResumeCmd resumes a paused session
type SessionsResumeCmd struct {
	ID int64 `arg:"" help:"Session id"`
}

// Run executes the resume command
func (s *SessionsResumeCmd) Run(cli *CLI) error {
	if err := cli.Container.SessionService.Resume(context.Background(), s.ID); err != nil {
		return fmt.Errorf("failed to resume session %d: %w", s.ID, err)
	}
	fmt.Printf("Session %d resumed\n", s.ID)
	return nil
}
