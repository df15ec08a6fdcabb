package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Billing values are always derived from stored timestamps. Nothing in
// this package caches a "current cost" or "remaining time" counter:
// cached counters drift when a client process is suspended, a
// recomputed value cannot.

var secondsPerHour = decimal.NewFromInt(3600)

// RemainingSeconds returns the whole seconds left until expectedEnd,
// rounded up so a session only reads 0 once it has truly expired.
// Never negative; zero means expired.
func RemainingSeconds(expectedEnd, now time.Time) int {
	d := expectedEnd.Sub(now)
	if d <= 0 {
		return 0
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}

// AccruedCost computes the metered cost of a pro-rated session from its
// timestamps. While paused the clock is substituted with pausedAt, which
// freezes the value without storing it anywhere.
func AccruedCost(start time.Time, hourlyRate decimal.Decimal, totalPause time.Duration, pausedAt *time.Time, running bool, now time.Time) decimal.Decimal {
	effective := now
	if !running && pausedAt != nil {
		effective = *pausedAt
	}

	billable := effective.Sub(start) - totalPause
	if billable <= 0 {
		return decimal.Zero
	}

	cost := decimal.NewFromFloat(billable.Seconds()).
		Div(secondsPerHour).
		Mul(hourlyRate).
		Round(2)
	if cost.IsNegative() {
		return decimal.Zero
	}
	return cost
}

// BillableElapsed returns the running time of a pro-rated session,
// excluding pauses, using the same clock substitution as AccruedCost.
func BillableElapsed(start time.Time, totalPause time.Duration, pausedAt *time.Time, running bool, now time.Time) time.Duration {
	effective := now
	if !running && pausedAt != nil {
		effective = *pausedAt
	}
	elapsed := effective.Sub(start) - totalPause
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// FormatClock renders a duration as H:MM:SS, dropping the hour part
// when it is zero (M:SS).
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
