package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playtab/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "playtab.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSessionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2025, 3, 15, 11, 0, 0, 0, time.UTC)

	id, err := store.CreateSession(ctx, domain.NewFixedSession("Ali", "room-2", "birthday", 60, start))
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := store.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeFixed, got.Mode)
	assert.Equal(t, "Ali", got.Name)
	assert.Equal(t, "birthday", got.Note)
	require.NotNil(t, got.Fixed)
	assert.Equal(t, 60, got.Fixed.DurationMinutes)
	require.NotNil(t, got.Fixed.ExpectedEnd)
	assert.True(t, got.Fixed.ExpectedEnd.Equal(start.Add(time.Hour)))

	// Pause state survives the trip too.
	require.NoError(t, got.Pause(start.Add(10*time.Minute)))
	require.NoError(t, store.UpdateSession(ctx, *got))

	paused, err := store.GetSession(ctx, id)
	require.NoError(t, err)
	assert.False(t, paused.IsRunning)
	assert.Nil(t, paused.Fixed.ExpectedEnd)
	assert.Equal(t, 50*60, paused.Fixed.PausedRemaining)
}

func TestProRatedRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2025, 3, 15, 11, 0, 0, 0, time.UTC)

	rate := decimal.RequireFromString("159.50")
	sess := domain.NewProRatedSession("Sam", "table-1", "", rate, start)
	require.NoError(t, sess.Pause(start.Add(30*time.Minute)))
	require.NoError(t, sess.Resume(start.Add(40*time.Minute)))

	id, err := store.CreateSession(ctx, sess)
	require.NoError(t, err)

	got, err := store.GetSession(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.ProRated)
	assert.True(t, got.ProRated.HourlyRate.Equal(rate))
	assert.Equal(t, 10*time.Minute, got.ProRated.TotalPause)
	assert.Nil(t, got.ProRated.PausedAt)
}

func TestIDsNeverReused(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	start := time.Now().UTC()

	id1, err := store.CreateSession(ctx, domain.NewFixedSession("A", "r1", "", 30, start))
	require.NoError(t, err)
	require.NoError(t, store.DeleteSession(ctx, id1))

	id2, err := store.CreateSession(ctx, domain.NewFixedSession("B", "r2", "", 30, start))
	require.NoError(t, err)
	assert.Greater(t, id2, id1, "deleting the newest row must not free its id")
}

func TestUpdateAndDeleteMissingSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess := domain.NewFixedSession("A", "r1", "", 30, time.Now().UTC())
	sess.ID = 42

	assert.ErrorIs(t, store.UpdateSession(ctx, sess), domain.ErrSessionNotFound)
	assert.ErrorIs(t, store.DeleteSession(ctx, 42), domain.ErrSessionNotFound)

	_, err := store.GetSession(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRestoreSessionKeepsID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	start := time.Now().UTC()

	sess := domain.NewFixedSession("A", "r1", "", 30, start)
	id, err := store.CreateSession(ctx, sess)
	require.NoError(t, err)
	require.NoError(t, store.DeleteSession(ctx, id))

	sess.ID = id
	require.NoError(t, store.RestoreSession(ctx, sess))

	got, err := store.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "A", got.Name)
}

func TestFinalizeHistory_SecondCloseLoses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2025, 3, 15, 11, 0, 0, 0, time.UTC)

	sess := domain.NewFixedSession("Ali", "room-2", "", 60, start)
	id, err := store.CreateSession(ctx, sess)
	require.NoError(t, err)
	sess.ID = id
	require.NoError(t, store.OpenHistory(ctx, domain.OpenHistoryFor(uuid.New().String(), sess)))

	closeArgs := domain.HistoryClose{
		EndTime:         start.Add(time.Hour),
		DurationMinutes: 60,
		FinalCost:       decimal.Zero,
		PaymentMethod:   domain.PaymentTransfer,
		Reason:          domain.EndReasonExpired,
	}

	ok, err := store.FinalizeHistory(ctx, id, closeArgs)
	require.NoError(t, err)
	assert.True(t, ok)

	closeArgs.Reason = domain.EndReasonCompleted
	ok, err = store.FinalizeHistory(ctx, id, closeArgs)
	require.NoError(t, err)
	assert.False(t, ok, "no open row left, first close must stand")

	day := domain.BusinessDayOf(start)
	records, err := store.ListHistory(ctx, day, domain.ShiftAll)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.EndReasonExpired, records[0].EndReason)
}

func TestReopenHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2025, 3, 15, 11, 0, 0, 0, time.UTC)

	sess := domain.NewFixedSession("Ali", "room-2", "", 60, start)
	id, err := store.CreateSession(ctx, sess)
	require.NoError(t, err)
	sess.ID = id
	require.NoError(t, store.OpenHistory(ctx, domain.OpenHistoryFor(uuid.New().String(), sess)))

	_, err = store.FinalizeHistory(ctx, id, domain.HistoryClose{
		EndTime:       start.Add(time.Hour),
		FinalCost:     decimal.Zero,
		PaymentMethod: domain.PaymentTransfer,
		Reason:        domain.EndReasonExpired,
	})
	require.NoError(t, err)

	require.NoError(t, store.ReopenHistory(ctx, id))

	rec, err := store.GetOpenHistory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.EndReasonInProgress, rec.EndReason)
	assert.Nil(t, rec.EndTime)

	// Reopen with no terminal row reports the absence.
	assert.ErrorIs(t, store.ReopenHistory(ctx, 999), domain.ErrNoOpenHistory)
}

func TestListHistory_FiltersByDayAndShift(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	day := time.Date(2025, 3, 15, 11, 0, 0, 0, time.UTC)    // shift 1
	night := time.Date(2025, 3, 16, 2, 0, 0, 0, time.UTC)   // shift 3, same business day
	nextDay := time.Date(2025, 3, 16, 12, 0, 0, 0, time.UTC) // next business day

	for _, start := range []time.Time{day, night, nextDay} {
		sess := domain.NewFixedSession("Ali", "room-2", "", 60, start)
		id, err := store.CreateSession(ctx, sess)
		require.NoError(t, err)
		sess.ID = id
		require.NoError(t, store.OpenHistory(ctx, domain.OpenHistoryFor(uuid.New().String(), sess)))
	}

	all, err := store.ListHistory(ctx, domain.BusinessDayOf(day), domain.ShiftAll)
	require.NoError(t, err)
	assert.Len(t, all, 2, "overnight hours belong to the previous business day")

	overnight, err := store.ListHistory(ctx, domain.BusinessDayOf(day), domain.ShiftOvernight)
	require.NoError(t, err)
	require.Len(t, overnight, 1)
	assert.True(t, overnight[0].StartTime.Equal(night))
}
