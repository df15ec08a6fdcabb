package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playtab/internal/adapters/memstore"
	"playtab/internal/domain"
)

func seedRecord(t *testing.T, store *memstore.Store, id int64, start time.Time, cost string, paid bool, method domain.PaymentMethod, reason domain.EndReason) {
	t.Helper()
	ctx := context.Background()

	sess := domain.NewProRatedSession("n", "l", "", decimal.NewFromInt(100), start)
	sess.ID = id
	require.NoError(t, store.OpenHistory(ctx, domain.OpenHistoryFor("", sess)))
	if reason == domain.EndReasonInProgress {
		return
	}
	ok, err := store.FinalizeHistory(ctx, id, domain.HistoryClose{
		EndTime:       start.Add(time.Hour),
		FinalCost:     decimal.RequireFromString(cost),
		IsPaid:        paid,
		PaymentMethod: method,
		Reason:        reason,
	})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDailySummary(t *testing.T) {
	store := memstore.New()
	svc := NewReportService(store)
	day := time.Date(2025, 3, 15, 0, 0, 0, 0, time.Local)

	// Day shift: one cash-paid, one unpaid.
	seedRecord(t, store, 1, day.Add(11*time.Hour), "100", true, domain.PaymentCash, domain.EndReasonCompleted)
	seedRecord(t, store, 2, day.Add(12*time.Hour), "50", false, domain.PaymentTransfer, domain.EndReasonCompleted)
	// Evening shift: transfer-paid expiry.
	seedRecord(t, store, 3, day.Add(20*time.Hour), "80", true, domain.PaymentTransfer, domain.EndReasonExpired)
	// Overnight (02:00 next calendar day, same business day): deleted, excluded.
	seedRecord(t, store, 4, day.Add(26*time.Hour), "999", true, domain.PaymentCash, domain.EndReasonDeleted)
	// Still running, excluded.
	seedRecord(t, store, 5, day.Add(13*time.Hour), "", false, domain.PaymentTransfer, domain.EndReasonInProgress)

	summary, err := svc.Daily(context.Background(), day)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total.Sessions)
	assert.True(t, summary.Total.Revenue.Equal(decimal.NewFromInt(230)), "got %s", summary.Total.Revenue)
	assert.True(t, summary.Total.Cash.Equal(decimal.NewFromInt(100)))
	assert.True(t, summary.Total.Transfer.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, 1, summary.Total.Unpaid)

	require.Len(t, summary.Shifts, 3)
	dayShift := summary.Shifts[0]
	assert.Equal(t, domain.ShiftDay, dayShift.Shift)
	assert.Equal(t, 2, dayShift.Sessions)
	assert.True(t, dayShift.Revenue.Equal(decimal.NewFromInt(150)))

	evening := summary.Shifts[1]
	assert.Equal(t, 1, evening.Sessions)
	assert.True(t, evening.Transfer.Equal(decimal.NewFromInt(80)))

	overnight := summary.Shifts[2]
	assert.Equal(t, 0, overnight.Sessions, "deleted sessions carry no revenue")
}

func TestRecords_ExcludesInProgress(t *testing.T) {
	store := memstore.New()
	svc := NewReportService(store)
	day := time.Date(2025, 3, 15, 0, 0, 0, 0, time.Local)

	seedRecord(t, store, 1, day.Add(11*time.Hour), "100", true, domain.PaymentCash, domain.EndReasonCompleted)
	seedRecord(t, store, 2, day.Add(12*time.Hour), "", false, domain.PaymentTransfer, domain.EndReasonInProgress)

	recs, err := svc.Records(context.Background(), day, domain.ShiftAll)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(1), recs[0].SessionID)
}
