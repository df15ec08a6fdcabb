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

func TestArchive_Idempotent(t *testing.T) {
	store := memstore.New()
	archiver := NewArchiver(store)
	ctx := context.Background()

	start := time.Date(2025, 3, 15, 12, 0, 0, 0, time.Local)
	sess := domain.NewProRatedSession("Dana", "table-1", "", decimal.NewFromInt(100), start)
	sess.ID = 1
	require.NoError(t, store.OpenHistory(ctx, domain.OpenHistoryFor("rec-1", sess)))

	now := start.Add(time.Hour)
	require.NoError(t, archiver.Archive(ctx, sess, domain.EndReasonCompleted, now))

	// A concurrent client racing to the same close: succeeds without
	// touching the already-finalized row.
	require.NoError(t, archiver.Archive(ctx, sess, domain.EndReasonDeleted, now.Add(time.Minute)))

	recs, err := store.ListHistory(ctx, domain.BusinessDayOf(start), domain.ShiftAll)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.EndReasonCompleted, recs[0].EndReason, "first close wins")
	require.NotNil(t, recs[0].EndTime)
	assert.Equal(t, now, *recs[0].EndTime)
	assert.Equal(t, 60, recs[0].DurationMinutes)
	assert.True(t, recs[0].FinalCost.Equal(decimal.NewFromInt(100)))
}

func TestArchive_SessionDateNotRecomputedFromEnd(t *testing.T) {
	store := memstore.New()
	archiver := NewArchiver(store)
	ctx := context.Background()

	// Starts 23:30, ends past the 10:00 boundary next morning: the
	// record stays bucketed under the start's business day.
	start := time.Date(2025, 3, 15, 23, 30, 0, 0, time.Local)
	sess := domain.NewProRatedSession("Dana", "table-1", "", decimal.NewFromInt(100), start)
	sess.ID = 1
	require.NoError(t, store.OpenHistory(ctx, domain.OpenHistoryFor("rec-1", sess)))

	end := time.Date(2025, 3, 16, 11, 0, 0, 0, time.Local)
	require.NoError(t, archiver.Archive(ctx, sess, domain.EndReasonCompleted, end))

	recs, err := store.ListHistory(ctx, time.Date(2025, 3, 15, 0, 0, 0, 0, time.Local), domain.ShiftAll)
	require.NoError(t, err)
	require.Len(t, recs, 1)
}
