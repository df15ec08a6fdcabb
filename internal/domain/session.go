package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Mode selects how a session is billed.
type Mode string

const (
	ModeFixed    Mode = "fixed"    // prepaid block, counts down
	ModeProRated Mode = "prorated" // metered by elapsed time
)

// PaymentMethod records how the customer settles the session.
type PaymentMethod string

const (
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCash     PaymentMethod = "cash"
)

// Session is one active billable occupancy of a room or station.
// Exactly one of Fixed / ProRated is set, matching Mode; the helpers in
// this file keep that invariant, callers never touch both arms.
type Session struct {
	ID            int64
	Mode          Mode
	Name          string
	Location      string
	Note          string
	Shift         Shift
	StartTime     time.Time
	IsRunning     bool
	IsPaid        bool
	PaymentMethod PaymentMethod
	LastUpdated   time.Time

	Fixed    *FixedBilling
	ProRated *ProRatedBilling
}

// FixedBilling holds countdown state for a prepaid block.
// ExpectedEnd is nil exactly while the session is paused; the remaining
// seconds at the moment of pausing are parked in PausedRemaining.
type FixedBilling struct {
	DurationMinutes int
	ExpectedEnd     *time.Time
	PausedRemaining int
}

// ProRatedBilling holds metering state for an hourly session. PausedAt
// is non-nil exactly while paused; TotalPause accumulates only on
// resume, so the stored fields alone reconstruct cost at any instant.
type ProRatedBilling struct {
	HourlyRate decimal.Decimal
	TotalPause time.Duration
	PausedAt   *time.Time
}

// NewFixedSession starts a prepaid countdown session.
func NewFixedSession(name, location, note string, durationMinutes int, start time.Time) Session {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	return Session{
		Mode:          ModeFixed,
		Name:          name,
		Location:      location,
		Note:          note,
		Shift:         ShiftOf(start),
		StartTime:     start,
		IsRunning:     true,
		PaymentMethod: PaymentTransfer,
		LastUpdated:   start,
		Fixed: &FixedBilling{
			DurationMinutes: durationMinutes,
			ExpectedEnd:     &end,
		},
	}
}

// NewProRatedSession starts an hourly metered session.
func NewProRatedSession(name, location, note string, hourlyRate decimal.Decimal, start time.Time) Session {
	return Session{
		Mode:          ModeProRated,
		Name:          name,
		Location:      location,
		Note:          note,
		Shift:         ShiftOf(start),
		StartTime:     start,
		IsRunning:     true,
		PaymentMethod: PaymentTransfer,
		LastUpdated:   start,
		ProRated: &ProRatedBilling{
			HourlyRate: hourlyRate,
		},
	}
}

// Validate checks the structural invariants before a session is
// persisted. Rejections happen here, before any state mutation.
func (s *Session) Validate() error {
	if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Location) == "" {
		return ErrInvalidSession
	}
	switch s.Mode {
	case ModeFixed:
		if s.Fixed == nil || s.ProRated != nil {
			return ErrInvalidSession
		}
		if s.Fixed.DurationMinutes <= 0 {
			return ErrInvalidSession
		}
	case ModeProRated:
		if s.ProRated == nil || s.Fixed != nil {
			return ErrInvalidSession
		}
		if s.ProRated.HourlyRate.IsNegative() {
			return ErrInvalidSession
		}
	default:
		return ErrInvalidSession
	}
	return nil
}

// RemainingSeconds derives the countdown of a fixed session. Paused
// sessions report the parked remainder; pro-rated sessions report 0.
func (s *Session) RemainingSeconds(now time.Time) int {
	if s.Mode != ModeFixed || s.Fixed == nil {
		return 0
	}
	if !s.IsRunning || s.Fixed.ExpectedEnd == nil {
		return s.Fixed.PausedRemaining
	}
	return RemainingSeconds(*s.Fixed.ExpectedEnd, now)
}

// AccruedCost derives the metered cost of a pro-rated session.
func (s *Session) AccruedCost(now time.Time) decimal.Decimal {
	if s.Mode != ModeProRated || s.ProRated == nil {
		return decimal.Zero
	}
	b := s.ProRated
	return AccruedCost(s.StartTime, b.HourlyRate, b.TotalPause, b.PausedAt, s.IsRunning, now)
}

// Elapsed is the display clock: billable time for pro-rated sessions,
// wall time since start for fixed ones.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s.Mode == ModeProRated && s.ProRated != nil {
		b := s.ProRated
		return BillableElapsed(s.StartTime, b.TotalPause, b.PausedAt, s.IsRunning, now)
	}
	d := now.Sub(s.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// Expired reports whether a running fixed session has counted down to
// zero. Detection is the caller's job (the sweep); the transition
// itself is archived by the service.
func (s *Session) Expired(now time.Time) bool {
	return s.Mode == ModeFixed && s.Fixed != nil && s.IsRunning &&
		s.Fixed.ExpectedEnd != nil && RemainingSeconds(*s.Fixed.ExpectedEnd, now) == 0
}

// Pause freezes the session. Fixed mode parks the remaining seconds and
// drops the expected end; pro-rated mode only records the pause
// timestamp, leaving TotalPause untouched until resume.
func (s *Session) Pause(now time.Time) error {
	if !s.IsRunning {
		return ErrAlreadyPaused
	}
	switch s.Mode {
	case ModeFixed:
		s.Fixed.PausedRemaining = s.RemainingSeconds(now)
		s.Fixed.ExpectedEnd = nil
	case ModeProRated:
		t := now
		s.ProRated.PausedAt = &t
	}
	s.IsRunning = false
	s.LastUpdated = now
	return nil
}

// Resume undoes a pause. Fixed mode recomputes the expected end from
// the parked remainder; pro-rated mode folds the pause interval into
// TotalPause so cost stays exactly where it froze.
func (s *Session) Resume(now time.Time) error {
	if s.IsRunning {
		return ErrAlreadyRunning
	}
	switch s.Mode {
	case ModeFixed:
		end := now.Add(time.Duration(s.Fixed.PausedRemaining) * time.Second)
		s.Fixed.ExpectedEnd = &end
		s.Fixed.PausedRemaining = 0
	case ModeProRated:
		if s.ProRated.PausedAt != nil {
			s.ProRated.TotalPause += now.Sub(*s.ProRated.PausedAt)
			s.ProRated.PausedAt = nil
		}
	}
	s.IsRunning = true
	s.LastUpdated = now
	return nil
}

// AdjustTime shifts a fixed session's expected end by minutes (negative
// subtracts). It returns the remaining seconds after the adjustment;
// the caller closes the session when that reaches zero instead of ever
// letting it go negative.
func (s *Session) AdjustTime(minutes int, now time.Time) (int, error) {
	if s.Mode != ModeFixed || s.Fixed == nil {
		return 0, ErrWrongMode
	}
	delta := time.Duration(minutes) * time.Minute
	if s.IsRunning && s.Fixed.ExpectedEnd != nil {
		end := s.Fixed.ExpectedEnd.Add(delta)
		s.Fixed.ExpectedEnd = &end
	} else {
		s.Fixed.PausedRemaining += minutes * 60
		if s.Fixed.PausedRemaining < 0 {
			s.Fixed.PausedRemaining = 0
		}
	}
	s.LastUpdated = now
	return s.RemainingSeconds(now), nil
}

// ExtendAfterExpiry gives an expired fixed session a fresh block,
// counted from now, and forces it back to running. The caller reopens
// the history record in case an automatic expiry close raced in.
func (s *Session) ExtendAfterExpiry(minutes int, now time.Time) error {
	if s.Mode != ModeFixed || s.Fixed == nil {
		return ErrWrongMode
	}
	end := now.Add(time.Duration(minutes) * time.Minute)
	s.Fixed.ExpectedEnd = &end
	s.Fixed.PausedRemaining = 0
	s.IsRunning = true
	s.LastUpdated = now
	return nil
}

// TogglePaid flips the payment flag independently of the running state.
func (s *Session) TogglePaid(now time.Time) {
	s.IsPaid = !s.IsPaid
	s.LastUpdated = now
}
