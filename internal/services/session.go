package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"playtab/internal/domain"
	"playtab/internal/logging"
	"playtab/internal/ports"
)

// SessionService owns the lifecycle of active sessions. Every mutation
// follows the same order: apply locally, persist, then broadcast. A
// client never announces a change it has not itself applied. Remote
// failures are returned to the operator but never corrupt what is
// already persisted; the next poll is the retry.
type SessionService struct {
	store    ports.Store
	bus      ports.Publisher
	archiver *Archiver
	now      func() time.Time
}

// NewSessionService creates a new SessionService
func NewSessionService(store ports.Store, bus ports.Publisher, archiver *Archiver) *SessionService {
	return &SessionService{
		store:    store,
		bus:      bus,
		archiver: archiver,
		now:      time.Now,
	}
}

// CreateSessionParams carries the operator input for a new session.
type CreateSessionParams struct {
	Mode            domain.Mode
	Name            string
	Location        string
	Note            string
	DurationMinutes int             // fixed mode
	HourlyRate      decimal.Decimal // pro-rated mode
	PaymentMethod   domain.PaymentMethod
}

// Create starts a new session and opens its in-progress history record.
// Invalid input is rejected before anything is persisted.
func (s *SessionService) Create(ctx context.Context, params CreateSessionParams) (*domain.Session, error) {
	now := s.now()

	var session domain.Session
	switch params.Mode {
	case domain.ModeFixed:
		session = domain.NewFixedSession(params.Name, params.Location, params.Note, params.DurationMinutes, now)
	case domain.ModeProRated:
		session = domain.NewProRatedSession(params.Name, params.Location, params.Note, params.HourlyRate, now)
	default:
		return nil, domain.ErrInvalidSession
	}
	if params.PaymentMethod != "" {
		session.PaymentMethod = params.PaymentMethod
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	id, err := s.store.CreateSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	session.ID = id

	rec := domain.OpenHistoryFor(uuid.New().String(), session)
	if err := s.store.OpenHistory(ctx, rec); err != nil {
		// The session row exists; the in-progress record will be
		// missing until the next billing-relevant edit recreates the
		// linkage. Loud but non-fatal.
		logging.Logger.Error("Failed to open history record",
			"error", err,
			"session_id", id)
	}

	s.publish()
	logging.Logger.Info("Session created",
		"session_id", id,
		"mode", session.Mode,
		"location", session.Location,
		"shift", session.Shift.Label())
	return &session, nil
}

// List returns the active collection from the store.
func (s *SessionService) List(ctx context.Context) ([]domain.Session, error) {
	return s.store.ListSessions(ctx)
}

// Get returns one active session by id.
func (s *SessionService) Get(ctx context.Context, id int64) (*domain.Session, error) {
	return s.store.GetSession(ctx, id)
}

// Pause freezes a running session.
func (s *SessionService) Pause(ctx context.Context, id int64) error {
	return s.mutate(ctx, id, false, func(sess *domain.Session, now time.Time) error {
		return sess.Pause(now)
	})
}

// Resume continues a paused session.
func (s *SessionService) Resume(ctx context.Context, id int64) error {
	return s.mutate(ctx, id, false, func(sess *domain.Session, now time.Time) error {
		return sess.Resume(now)
	})
}

// AddTime extends a fixed session by minutes.
func (s *SessionService) AddTime(ctx context.Context, id int64, minutes int) error {
	return s.adjustTime(ctx, id, minutes)
}

// SubtractTime shortens a fixed session by minutes. If nothing remains
// afterwards the session is closed as completed instead of ever going
// negative.
func (s *SessionService) SubtractTime(ctx context.Context, id int64, minutes int) error {
	return s.adjustTime(ctx, id, -minutes)
}

func (s *SessionService) adjustTime(ctx context.Context, id int64, minutes int) error {
	now := s.now()

	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return s.reportNotFound(err, id, "adjust time")
	}

	remaining, err := sess.AdjustTime(minutes, now)
	if err != nil {
		return err
	}

	if remaining <= 0 {
		return s.close(ctx, *sess, domain.EndReasonCompleted)
	}

	if err := s.store.UpdateSession(ctx, *sess); err != nil {
		return s.reportNotFound(err, id, "adjust time")
	}
	s.syncOpenHistory(ctx, *sess)
	s.publish()
	return nil
}

// Extend gives an expired fixed session a fresh block counted from now.
// If an automatic expiry close already archived and removed the
// session, both the history row and the session row are resurrected.
func (s *SessionService) Extend(ctx context.Context, id int64, minutes int) error {
	now := s.now()

	sess, err := s.store.GetSession(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return s.extendArchived(ctx, id, minutes, now)
	}
	if err != nil {
		return err
	}

	if err := sess.ExtendAfterExpiry(minutes, now); err != nil {
		return err
	}
	if err := s.store.UpdateSession(ctx, *sess); err != nil {
		return s.reportNotFound(err, id, "extend")
	}
	// Undo an expiry close that may have raced in from another client.
	if err := s.archiver.Reopen(ctx, id); err != nil && !errors.Is(err, domain.ErrNoOpenHistory) {
		logging.Logger.Warn("Failed to reopen history on extend",
			"error", err,
			"session_id", id)
	}
	s.syncOpenHistory(ctx, *sess)
	s.publish()
	return nil
}

// extendArchived rebuilds the session row from its reopened history
// record after a racing expiry close deleted it.
func (s *SessionService) extendArchived(ctx context.Context, id int64, minutes int, now time.Time) error {
	if err := s.archiver.Reopen(ctx, id); err != nil {
		return domain.ErrSessionNotFound
	}
	rec, err := s.store.GetOpenHistory(ctx, id)
	if err != nil {
		return domain.ErrSessionNotFound
	}
	if rec.Mode != domain.ModeFixed {
		return domain.ErrWrongMode
	}

	end := now.Add(time.Duration(minutes) * time.Minute)
	restored := domain.Session{
		ID:            id,
		Mode:          domain.ModeFixed,
		Name:          rec.Name,
		Location:      rec.Location,
		Note:          rec.Note,
		Shift:         rec.Shift,
		StartTime:     rec.StartTime,
		IsRunning:     true,
		IsPaid:        rec.IsPaid,
		PaymentMethod: rec.PaymentMethod,
		LastUpdated:   now,
		Fixed: &domain.FixedBilling{
			DurationMinutes: rec.DurationMinutes,
			ExpectedEnd:     &end,
		},
	}

	if err := s.store.RestoreSession(ctx, restored); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	s.publish()
	logging.Logger.Info("Session restored after expiry close",
		"session_id", id,
		"extend_minutes", minutes)
	return nil
}

// TogglePaid flips the payment flag and mirrors it onto the in-progress
// history record.
func (s *SessionService) TogglePaid(ctx context.Context, id int64) error {
	return s.mutate(ctx, id, true, func(sess *domain.Session, now time.Time) error {
		sess.TogglePaid(now)
		return nil
	})
}

// SetPaymentMethod records how the customer will settle.
func (s *SessionService) SetPaymentMethod(ctx context.Context, id int64, method domain.PaymentMethod) error {
	return s.mutate(ctx, id, true, func(sess *domain.Session, now time.Time) error {
		sess.PaymentMethod = method
		sess.LastUpdated = now
		return nil
	})
}

// SetShift overrides the shift tag assigned at creation.
func (s *SessionService) SetShift(ctx context.Context, id int64, shift domain.Shift) error {
	if !shift.Valid() {
		return fmt.Errorf("invalid shift %d", int(shift))
	}
	return s.mutate(ctx, id, true, func(sess *domain.Session, now time.Time) error {
		sess.Shift = shift
		sess.LastUpdated = now
		return nil
	})
}

// SetNote replaces the free-text note.
func (s *SessionService) SetNote(ctx context.Context, id int64, note string) error {
	return s.mutate(ctx, id, true, func(sess *domain.Session, now time.Time) error {
		sess.Note = note
		sess.LastUpdated = now
		return nil
	})
}

// Complete closes a session as finished by the operator.
func (s *SessionService) Complete(ctx context.Context, id int64) error {
	return s.closeByID(ctx, id, domain.EndReasonCompleted)
}

// Delete closes a session as discarded by the operator.
func (s *SessionService) Delete(ctx context.Context, id int64) error {
	return s.closeByID(ctx, id, domain.EndReasonDeleted)
}

// Expire archives a fixed session whose countdown reached zero. The
// coordinator's sweep calls this; the session is re-checked against the
// clock first, so an extend that won the race turns this into a no-op.
func (s *SessionService) Expire(ctx context.Context, id int64) error {
	now := s.now()

	sess, err := s.store.GetSession(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		// Another client already closed it.
		return nil
	}
	if err != nil {
		return err
	}
	if !sess.Expired(now) {
		logging.Logger.Debug("Expiry raced with extend, skipping",
			"session_id", id)
		return nil
	}

	return s.close(ctx, *sess, domain.EndReasonExpired)
}

func (s *SessionService) closeByID(ctx context.Context, id int64, reason domain.EndReason) error {
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return s.reportNotFound(err, id, string(reason))
	}
	return s.close(ctx, *sess, reason)
}

// close archives the session and removes it from the active collection.
func (s *SessionService) close(ctx context.Context, sess domain.Session, reason domain.EndReason) error {
	now := s.now()

	if err := s.archiver.Archive(ctx, sess, reason, now); err != nil {
		return fmt.Errorf("failed to archive session %d: %w", sess.ID, err)
	}

	if err := s.store.DeleteSession(ctx, sess.ID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("failed to remove session %d: %w", sess.ID, err)
	}

	s.publish()
	logging.Logger.Info("Session closed",
		"session_id", sess.ID,
		"reason", reason,
		"location", sess.Location)
	return nil
}

// mutate runs the generic load-apply-persist-broadcast cycle.
func (s *SessionService) mutate(ctx context.Context, id int64, syncHistory bool, apply func(*domain.Session, time.Time) error) error {
	now := s.now()

	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return s.reportNotFound(err, id, "mutate")
	}

	if err := apply(sess, now); err != nil {
		return err
	}

	if err := s.store.UpdateSession(ctx, *sess); err != nil {
		return s.reportNotFound(err, id, "mutate")
	}

	if syncHistory {
		s.syncOpenHistory(ctx, *sess)
	}
	s.publish()
	return nil
}

// syncOpenHistory mirrors billing-relevant session fields onto the
// in-progress history row. A missing row is a benign concurrent-edit
// outcome, anything else is reported loudly but does not roll the
// session back.
func (s *SessionService) syncOpenHistory(ctx context.Context, sess domain.Session) {
	rec := domain.OpenHistoryFor("", sess)
	if err := s.store.UpdateOpenHistory(ctx, rec); err != nil {
		if errors.Is(err, domain.ErrNoOpenHistory) {
			logging.Logger.Debug("No open history record to sync",
				"session_id", sess.ID)
			return
		}
		logging.Logger.Error("Failed to sync history record",
			"error", err,
			"session_id", sess.ID)
	}
}

func (s *SessionService) reportNotFound(err error, id int64, op string) error {
	if errors.Is(err, domain.ErrSessionNotFound) {
		// Expected when another client already closed the session.
		logging.Logger.Warn("Session gone, treating as concurrent close",
			"session_id", id,
			"op", op)
	}
	return err
}

func (s *SessionService) publish() {
	if s.bus != nil {
		s.bus.Publish(ports.Event{Kind: ports.EventMutation})
	}
}
