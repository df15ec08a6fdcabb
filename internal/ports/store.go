package ports

import (
	"context"
	"time"

	"playtab/internal/domain"
)

// SessionStore is the shared active-session collection. Any client may
// read or write any session; the store keeps the most recent write it
// received (last write wins, no field-level merge).
type SessionStore interface {
	ListSessions(ctx context.Context) ([]domain.Session, error)
	GetSession(ctx context.Context, id int64) (*domain.Session, error)
	// CreateSession persists a new session and returns its
	// store-assigned id.
	CreateSession(ctx context.Context, s domain.Session) (int64, error)
	// UpdateSession replaces the full row. Returns
	// domain.ErrSessionNotFound when another client already removed it.
	UpdateSession(ctx context.Context, s domain.Session) error
	// RestoreSession re-inserts a row under its existing id, used when
	// an operator extend has to resurrect a session that a concurrent
	// expiry close already removed.
	RestoreSession(ctx context.Context, s domain.Session) error
	DeleteSession(ctx context.Context, id int64) error
}

// HistoryStore manages the append-mostly lifecycle records. The open
// row for a session is addressed by (session id, end_reason
// 'in_progress') and is unique.
type HistoryStore interface {
	OpenHistory(ctx context.Context, rec domain.HistoryRecord) error
	// GetOpenHistory returns the in-progress row for a session, or
	// domain.ErrNoOpenHistory.
	GetOpenHistory(ctx context.Context, sessionID int64) (*domain.HistoryRecord, error)
	// UpdateOpenHistory mutates the in-progress row in place.
	// Missing row is reported as domain.ErrNoOpenHistory.
	UpdateOpenHistory(ctx context.Context, rec domain.HistoryRecord) error
	// FinalizeHistory closes the in-progress row. It returns false when
	// no such row exists, which means a concurrent client archived
	// first; callers treat that as already satisfied.
	FinalizeHistory(ctx context.Context, sessionID int64, close domain.HistoryClose) (bool, error)
	// ReopenHistory flips the most recent terminal row for the session
	// back to in_progress, undoing an expiry close that raced with an
	// operator extend.
	ReopenHistory(ctx context.Context, sessionID int64) error
	ListHistory(ctx context.Context, businessDay time.Time, shift domain.Shift) ([]domain.HistoryRecord, error)
}

// Store is the composite remote-store interface.
type Store interface {
	SessionStore
	HistoryStore
	Close() error
}
