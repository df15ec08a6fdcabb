package cmd

import (
	"context"
	"fmt"
	"time"

	"playtab/internal/domain"
)

// SessionsListCmd lists active sessions
type SessionsListCmd struct{}

// Run executes the list command
func (s *SessionsListCmd) Run(cli *CLI) error {
	sessions, err := cli.Container.SessionService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No active sessions")
		return nil
	}

	now := time.Now()
	for i := range sessions {
		fmt.Println(formatSessionLine(&sessions[i], now))
	}
	return nil
}

func formatSessionLine(sess *domain.Session, now time.Time) string {
	status := "running"
	if !sess.IsRunning {
		status = "paused"
	}

	var billing string
	switch sess.Mode {
	case domain.ModeFixed:
		remaining := time.Duration(sess.RemainingSeconds(now)) * time.Second
		billing = fmt.Sprintf("%s left of %d min", domain.FormatClock(remaining), sess.Fixed.DurationMinutes)
	case domain.ModeProRated:
		billing = fmt.Sprintf("%s accrued at %s/h",
			sess.AccruedCost(now).StringFixed(2), sess.ProRated.HourlyRate.String())
	}

	paid := "unpaid"
	if sess.IsPaid {
		paid = fmt.Sprintf("paid (%s)", sess.PaymentMethod)
	}

	line := fmt.Sprintf("%3d  %-20s %-10s %-8s shift %s  %s  %s",
		sess.ID, sess.Name, sess.Location, status, sess.Shift.Label(), billing, paid)
	if sess.Note != "" {
		line += "  # " + sess.Note
	}
	return line
}
