package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRemainingSeconds(t *testing.T) {
	start := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	tests := []struct {
		name     string
		now      time.Time
		expected int
	}{
		{"five minutes left", start.Add(55 * time.Minute), 300},
		{"full hour left", start, 3600},
		{"partial second rounds up", end.Add(-1500 * time.Millisecond), 2},
		{"exactly at end", end, 0},
		{"past end clamps to zero", end.Add(10 * time.Minute), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RemainingSeconds(end, tt.now))
		})
	}
}

func TestRemainingSeconds_DecreasesWhileRunning(t *testing.T) {
	start := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)

	prev := RemainingSeconds(end, start)
	for i := 1; i <= 10; i++ {
		now := start.Add(time.Duration(i) * time.Minute)
		cur := RemainingSeconds(end, now)
		assert.Less(t, cur, prev)
		assert.GreaterOrEqual(t, cur, 0)
		prev = cur
	}
}

func TestAccruedCost(t *testing.T) {
	start := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	rate := decimal.NewFromInt(159)

	t.Run("half hour at 159 per hour", func(t *testing.T) {
		now := start.Add(30 * time.Minute)
		cost := AccruedCost(start, rate, 0, nil, true, now)
		assert.True(t, cost.Equal(decimal.RequireFromString("79.5")), "got %s", cost)
	})

	t.Run("pause excluded from billable time", func(t *testing.T) {
		now := start.Add(90 * time.Minute)
		cost := AccruedCost(start, rate, 30*time.Minute, nil, true, now)
		assert.True(t, cost.Equal(decimal.RequireFromString("159")), "got %s", cost)
	})

	t.Run("frozen at pause timestamp", func(t *testing.T) {
		pausedAt := start.Add(30 * time.Minute)
		frozen := AccruedCost(start, rate, 0, &pausedAt, false, pausedAt)
		// Clock keeps advancing, cost does not.
		later := AccruedCost(start, rate, 0, &pausedAt, false, pausedAt.Add(2*time.Hour))
		assert.True(t, frozen.Equal(later))
	})

	t.Run("never negative", func(t *testing.T) {
		cost := AccruedCost(start, rate, 2*time.Hour, nil, true, start.Add(time.Hour))
		assert.True(t, cost.Equal(decimal.Zero))
	})

	t.Run("non-decreasing while running", func(t *testing.T) {
		prev := decimal.Zero
		for i := 0; i <= 12; i++ {
			now := start.Add(time.Duration(i) * 5 * time.Minute)
			cost := AccruedCost(start, rate, 0, nil, true, now)
			assert.True(t, cost.GreaterThanOrEqual(prev), "cost regressed at %s", now)
			prev = cost
		}
	})
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		name     string
		d        time.Duration
		expected string
	}{
		{"zero", 0, "0:00"},
		{"seconds only", 42 * time.Second, "0:42"},
		{"minutes", 5*time.Minute + 3*time.Second, "5:03"},
		{"hour boundary", time.Hour, "1:00:00"},
		{"padded minutes and seconds", time.Hour + 2*time.Minute + 9*time.Second, "1:02:09"},
		{"negative clamps", -time.Minute, "0:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatClock(tt.d))
		})
	}
}
