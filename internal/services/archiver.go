package services

import (
	"context"
	"math"
	"time"

	"playtab/internal/domain"
	"playtab/internal/logging"
	"playtab/internal/ports"
)

// Archiver converts a closing session into its immutable history
// record. Archiving is idempotent: the finalize targets the unique
// in-progress row, and a miss means a concurrent client got there
// first.
type Archiver struct {
	store ports.HistoryStore
}

// NewArchiver creates a new Archiver
func NewArchiver(store ports.HistoryStore) *Archiver {
	return &Archiver{store: store}
}

// Archive finalizes the history record for a session. The final
// duration and cost are computed from start time to now, not from the
// nominal expected end.
func (a *Archiver) Archive(ctx context.Context, s domain.Session, reason domain.EndReason, now time.Time) error {
	close := domain.HistoryClose{
		EndTime:         now,
		DurationMinutes: int(math.Round(now.Sub(s.StartTime).Minutes())),
		FinalCost:       s.AccruedCost(now),
		IsPaid:          s.IsPaid,
		PaymentMethod:   s.PaymentMethod,
		Reason:          reason,
	}

	ok, err := a.store.FinalizeHistory(ctx, s.ID, close)
	if err != nil {
		return err
	}
	if !ok {
		// Already archived by another client. Expected under
		// concurrent use, nothing to do.
		logging.Logger.Debug("History already archived",
			"session_id", s.ID,
			"reason", reason)
	}
	return nil
}

// Reopen flips a session's latest history row back to in_progress,
// undoing an automatic expiry close that raced with an operator extend.
func (a *Archiver) Reopen(ctx context.Context, sessionID int64) error {
	return a.store.ReopenHistory(ctx, sessionID)
}
