package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFixedSession(t *testing.T) {
	start := time.Date(2025, 3, 15, 10, 0, 0, 0, time.Local)
	s := NewFixedSession("Ali", "room-2", "", 60, start)

	require.NoError(t, s.Validate())
	assert.Equal(t, ModeFixed, s.Mode)
	assert.Nil(t, s.ProRated)
	require.NotNil(t, s.Fixed.ExpectedEnd)
	assert.Equal(t, start.Add(time.Hour), *s.Fixed.ExpectedEnd)
	assert.Equal(t, ShiftDay, s.Shift)
	assert.True(t, s.IsRunning)
	assert.Equal(t, PaymentTransfer, s.PaymentMethod)
}

func TestNewProRatedSession(t *testing.T) {
	start := time.Date(2025, 3, 15, 9, 0, 0, 0, time.Local)
	s := NewProRatedSession("Dana", "table-1", "", decimal.NewFromInt(159), start)

	require.NoError(t, s.Validate())
	assert.Equal(t, ModeProRated, s.Mode)
	assert.Nil(t, s.Fixed)
	assert.Equal(t, ShiftOvernight, s.Shift)
	assert.True(t, s.IsRunning)
}

func TestSessionValidate(t *testing.T) {
	start := time.Now()

	tests := []struct {
		name    string
		mutate  func(*Session)
		session Session
		wantErr bool
	}{
		{"valid fixed", func(s *Session) {}, NewFixedSession("a", "r", "", 30, start), false},
		{"missing name", func(s *Session) { s.Name = "  " }, NewFixedSession("a", "r", "", 30, start), true},
		{"missing location", func(s *Session) { s.Location = "" }, NewFixedSession("a", "r", "", 30, start), true},
		{"zero duration", func(s *Session) { s.Fixed.DurationMinutes = 0 }, NewFixedSession("a", "r", "", 30, start), true},
		{"both arms populated", func(s *Session) { s.ProRated = &ProRatedBilling{} }, NewFixedSession("a", "r", "", 30, start), true},
		{"negative rate", func(s *Session) { s.ProRated.HourlyRate = decimal.NewFromInt(-1) }, NewProRatedSession("a", "r", "", decimal.NewFromInt(100), start), true},
		{"unknown mode", func(s *Session) { s.Mode = "hourly" }, NewProRatedSession("a", "r", "", decimal.NewFromInt(100), start), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.session
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSession)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFixedPauseResume(t *testing.T) {
	start := time.Date(2025, 3, 15, 10, 0, 0, 0, time.Local)
	s := NewFixedSession("Ali", "room-2", "", 60, start)

	// At 10:55 five minutes remain.
	pauseAt := start.Add(55 * time.Minute)
	assert.Equal(t, 300, s.RemainingSeconds(pauseAt))

	require.NoError(t, s.Pause(pauseAt))
	assert.False(t, s.IsRunning)
	assert.Nil(t, s.Fixed.ExpectedEnd)
	assert.Equal(t, 300, s.Fixed.PausedRemaining)

	// Remaining is constant while paused, no matter how late we look.
	assert.Equal(t, 300, s.RemainingSeconds(pauseAt.Add(3*time.Hour)))

	// Resuming two minutes later pushes the end to 11:02.
	resumeAt := pauseAt.Add(2 * time.Minute)
	require.NoError(t, s.Resume(resumeAt))
	require.NotNil(t, s.Fixed.ExpectedEnd)
	assert.Equal(t, time.Date(2025, 3, 15, 11, 2, 0, 0, time.Local), *s.Fixed.ExpectedEnd)
	assert.Equal(t, 300, s.RemainingSeconds(resumeAt))
}

func TestFixedPauseResume_Errors(t *testing.T) {
	start := time.Now()
	s := NewFixedSession("a", "r", "", 30, start)

	assert.ErrorIs(t, s.Resume(start), ErrAlreadyRunning)
	require.NoError(t, s.Pause(start))
	assert.ErrorIs(t, s.Pause(start), ErrAlreadyPaused)
}

func TestProRatedPauseResume(t *testing.T) {
	start := time.Date(2025, 3, 15, 9, 0, 0, 0, time.Local)
	rate := decimal.NewFromInt(159)
	s := NewProRatedSession("Dana", "table-1", "", rate, start)

	pauseAt := start.Add(30 * time.Minute)
	costAtPause := s.AccruedCost(pauseAt)
	assert.True(t, costAtPause.Equal(decimal.RequireFromString("79.5")))

	require.NoError(t, s.Pause(pauseAt))
	// Frozen: same value long after the pause.
	assert.True(t, s.AccruedCost(pauseAt.Add(4*time.Hour)).Equal(costAtPause))

	resumeAt := pauseAt.Add(10 * time.Minute)
	require.NoError(t, s.Resume(resumeAt))
	assert.Nil(t, s.ProRated.PausedAt)
	assert.Equal(t, 10*time.Minute, s.ProRated.TotalPause)

	// Immediately after resume the cost picks up where it froze.
	assert.True(t, s.AccruedCost(resumeAt).Equal(costAtPause))

	// And keeps accruing from there.
	assert.True(t, s.AccruedCost(resumeAt.Add(30*time.Minute)).GreaterThan(costAtPause))
}

func TestAdjustTime(t *testing.T) {
	start := time.Date(2025, 3, 15, 10, 0, 0, 0, time.Local)

	t.Run("add while running", func(t *testing.T) {
		s := NewFixedSession("a", "r", "", 60, start)
		now := start.Add(55 * time.Minute)
		rem, err := s.AdjustTime(30, now)
		require.NoError(t, err)
		assert.Equal(t, 35*60, rem)
	})

	t.Run("subtract past zero reports zero", func(t *testing.T) {
		s := NewFixedSession("a", "r", "", 60, start)
		now := start.Add(55 * time.Minute) // 5 minutes left
		rem, err := s.AdjustTime(-10, now)
		require.NoError(t, err)
		assert.Equal(t, 0, rem)
	})

	t.Run("adjust while paused", func(t *testing.T) {
		s := NewFixedSession("a", "r", "", 60, start)
		now := start.Add(30 * time.Minute)
		require.NoError(t, s.Pause(now))
		rem, err := s.AdjustTime(15, now)
		require.NoError(t, err)
		assert.Equal(t, 45*60, rem)
	})

	t.Run("wrong mode", func(t *testing.T) {
		s := NewProRatedSession("a", "r", "", decimal.NewFromInt(100), start)
		_, err := s.AdjustTime(10, start)
		assert.ErrorIs(t, err, ErrWrongMode)
	})
}

func TestExtendAfterExpiry(t *testing.T) {
	start := time.Date(2025, 3, 15, 10, 0, 0, 0, time.Local)
	s := NewFixedSession("a", "r", "", 60, start)

	now := start.Add(61 * time.Minute)
	require.True(t, s.Expired(now))

	require.NoError(t, s.ExtendAfterExpiry(30, now))
	assert.True(t, s.IsRunning)
	assert.False(t, s.Expired(now))
	assert.Equal(t, 30*60, s.RemainingSeconds(now))
}

func TestExpired(t *testing.T) {
	start := time.Date(2025, 3, 15, 10, 0, 0, 0, time.Local)

	t.Run("running fixed past end", func(t *testing.T) {
		s := NewFixedSession("a", "r", "", 60, start)
		assert.False(t, s.Expired(start.Add(59*time.Minute)))
		assert.True(t, s.Expired(start.Add(60*time.Minute)))
	})

	t.Run("paused session never expires", func(t *testing.T) {
		s := NewFixedSession("a", "r", "", 60, start)
		require.NoError(t, s.Pause(start.Add(30*time.Minute)))
		assert.False(t, s.Expired(start.Add(2*time.Hour)))
	})

	t.Run("pro-rated never expires", func(t *testing.T) {
		s := NewProRatedSession("a", "r", "", decimal.NewFromInt(100), start)
		assert.False(t, s.Expired(start.Add(24*time.Hour)))
	})
}

func TestOpenHistoryFor(t *testing.T) {
	start := time.Date(2025, 3, 15, 0, 30, 0, 0, time.Local)
	s := NewProRatedSession("Dana", "table-1", "late night", decimal.NewFromInt(159), start)
	s.ID = 7

	rec := OpenHistoryFor("rec-1", s)

	assert.Equal(t, int64(7), rec.SessionID)
	assert.Equal(t, EndReasonInProgress, rec.EndReason)
	// 00:30 belongs to the previous business day.
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local), rec.SessionDate)
	assert.Equal(t, ShiftEvening, rec.Shift)
	assert.True(t, rec.HourlyRate.Equal(decimal.NewFromInt(159)))
	assert.Nil(t, rec.EndTime)
}
