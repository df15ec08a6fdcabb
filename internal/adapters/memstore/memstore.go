// Package memstore is an in-memory implementation of the store ports.
// It backs the test harness and the offline mode, and emits change
// notifications so the coordinator's feed path can be exercised without
// a real remote store.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"playtab/internal/domain"
	"playtab/internal/ports"
)

// Store keeps sessions and history in maps guarded by one mutex.
type Store struct {
	mu      sync.Mutex
	nextID  int64
	session map[int64]domain.Session
	history []domain.HistoryRecord

	feedMu sync.Mutex
	feeds  []chan ports.Change
}

var _ ports.Store = (*Store)(nil)
var _ ports.ChangeFeed = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		nextID:  1,
		session: make(map[int64]domain.Session),
	}
}

func (s *Store) ListSessions(ctx context.Context) ([]domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Session, 0, len(s.session))
	for _, sess := range s.session {
		out = append(out, cloneSession(sess))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *Store) GetSession(ctx context.Context, id int64) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.session[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	c := cloneSession(sess)
	return &c, nil
}

func (s *Store) CreateSession(ctx context.Context, sess domain.Session) (int64, error) {
	s.mu.Lock()
	sess.ID = s.nextID
	s.nextID++
	s.session[sess.ID] = cloneSession(sess)
	s.mu.Unlock()

	s.notify("sessions")
	return sess.ID, nil
}

func (s *Store) UpdateSession(ctx context.Context, sess domain.Session) error {
	s.mu.Lock()
	if _, ok := s.session[sess.ID]; !ok {
		s.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	s.session[sess.ID] = cloneSession(sess)
	s.mu.Unlock()

	s.notify("sessions")
	return nil
}

func (s *Store) RestoreSession(ctx context.Context, sess domain.Session) error {
	s.mu.Lock()
	s.session[sess.ID] = cloneSession(sess)
	if sess.ID >= s.nextID {
		s.nextID = sess.ID + 1
	}
	s.mu.Unlock()

	s.notify("sessions")
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, id int64) error {
	s.mu.Lock()
	if _, ok := s.session[id]; !ok {
		s.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	delete(s.session, id)
	s.mu.Unlock()

	s.notify("sessions")
	return nil
}

func (s *Store) OpenHistory(ctx context.Context, rec domain.HistoryRecord) error {
	s.mu.Lock()
	s.history = append(s.history, rec)
	s.mu.Unlock()

	s.notify("history")
	return nil
}

func (s *Store) GetOpenHistory(ctx context.Context, sessionID int64) (*domain.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.history {
		if s.history[i].SessionID == sessionID && s.history[i].EndReason == domain.EndReasonInProgress {
			rec := s.history[i]
			return &rec, nil
		}
	}
	return nil, domain.ErrNoOpenHistory
}

func (s *Store) UpdateOpenHistory(ctx context.Context, rec domain.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.history {
		if s.history[i].SessionID == rec.SessionID && s.history[i].EndReason == domain.EndReasonInProgress {
			id := s.history[i].ID
			s.history[i] = rec
			s.history[i].ID = id
			s.history[i].EndReason = domain.EndReasonInProgress
			return nil
		}
	}
	return domain.ErrNoOpenHistory
}

func (s *Store) FinalizeHistory(ctx context.Context, sessionID int64, close domain.HistoryClose) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.history {
		if s.history[i].SessionID == sessionID && s.history[i].EndReason == domain.EndReasonInProgress {
			end := close.EndTime
			s.history[i].EndTime = &end
			s.history[i].DurationMinutes = close.DurationMinutes
			s.history[i].FinalCost = close.FinalCost
			s.history[i].IsPaid = close.IsPaid
			s.history[i].PaymentMethod = close.PaymentMethod
			s.history[i].EndReason = close.Reason
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ReopenHistory(ctx context.Context, sessionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := -1
	for i := range s.history {
		if s.history[i].SessionID != sessionID {
			continue
		}
		if latest == -1 || s.history[i].StartTime.After(s.history[latest].StartTime) {
			latest = i
		}
	}
	if latest == -1 {
		return domain.ErrNoOpenHistory
	}
	s.history[latest].EndReason = domain.EndReasonInProgress
	s.history[latest].EndTime = nil
	return nil
}

func (s *Store) ListHistory(ctx context.Context, businessDay time.Time, shift domain.Shift) ([]domain.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.HistoryRecord
	for _, rec := range s.history {
		if !rec.SessionDate.Equal(businessDay) {
			continue
		}
		if shift != domain.ShiftAll && rec.Shift != shift {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// Changes implements ports.ChangeFeed. Each subscriber gets a buffered
// channel; notifications are dropped rather than blocking a mutation.
func (s *Store) Changes(ctx context.Context) (<-chan ports.Change, error) {
	ch := make(chan ports.Change, 16)

	s.feedMu.Lock()
	s.feeds = append(s.feeds, ch)
	s.feedMu.Unlock()

	go func() {
		<-ctx.Done()
		s.feedMu.Lock()
		for i, c := range s.feeds {
			if c == ch {
				s.feeds = append(s.feeds[:i], s.feeds[i+1:]...)
				break
			}
		}
		s.feedMu.Unlock()
		close(ch)
	}()

	return ch, nil
}

func (s *Store) Close() error { return nil }

func (s *Store) notify(collection string) {
	s.feedMu.Lock()
	defer s.feedMu.Unlock()

	for _, ch := range s.feeds {
		select {
		case ch <- ports.Change{Collection: collection, At: time.Now()}:
		default:
		}
	}
}

func cloneSession(s domain.Session) domain.Session {
	c := s
	if s.Fixed != nil {
		f := *s.Fixed
		if s.Fixed.ExpectedEnd != nil {
			end := *s.Fixed.ExpectedEnd
			f.ExpectedEnd = &end
		}
		c.Fixed = &f
	}
	if s.ProRated != nil {
		p := *s.ProRated
		if s.ProRated.PausedAt != nil {
			at := *s.ProRated.PausedAt
			p.PausedAt = &at
		}
		c.ProRated = &p
	}
	return c
}
