package domain

import (
	"fmt"
	"time"
)

// Shift identifies one of the three staff working windows used for
// cash-reconciliation reporting. ShiftAll is only valid as a filter.
type Shift int

const (
	ShiftAll       Shift = 0
	ShiftDay       Shift = 1 // 10:00-19:00
	ShiftEvening   Shift = 2 // 19:00-01:00
	ShiftOvernight Shift = 3 // 01:00-10:00
)

// ShiftOf classifies a clock time into a shift. It is pure: callers may
// pass historical timestamps when backfilling.
func ShiftOf(t time.Time) Shift {
	h := t.Hour()
	switch {
	case h >= 10 && h < 19:
		return ShiftDay
	case h >= 19 || h < 1:
		return ShiftEvening
	default:
		return ShiftOvernight
	}
}

// BusinessDayOf maps a timestamp to its operational business day. The
// venue's day runs 10:00 to 10:00, so everything before 10:00 belongs
// to the previous calendar date. The result is midnight-normalized in
// the timestamp's location.
func BusinessDayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	if t.Hour() < 10 {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// Valid reports whether s is a concrete shift (not the ShiftAll filter).
func (s Shift) Valid() bool {
	return s == ShiftDay || s == ShiftEvening || s == ShiftOvernight
}

// Label returns the staff-facing name of the shift.
func (s Shift) Label() string {
	switch s {
	case ShiftDay:
		return "day"
	case ShiftEvening:
		return "evening"
	case ShiftOvernight:
		return "overnight"
	case ShiftAll:
		return "all"
	default:
		return fmt.Sprintf("shift(%d)", int(s))
	}
}

// ParseShift parses "1", "2", "3" or "all" as used by CLI flags and the
// HTTP API.
func ParseShift(s string) (Shift, error) {
	switch s {
	case "1", "day":
		return ShiftDay, nil
	case "2", "evening":
		return ShiftEvening, nil
	case "3", "overnight":
		return ShiftOvernight, nil
	case "", "all":
		return ShiftAll, nil
	default:
		return ShiftAll, fmt.Errorf("invalid shift %q", s)
	}
}
