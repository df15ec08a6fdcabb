package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EndReason records how a session's lifecycle ended. A history row is
// opened as in_progress together with its session and finalized exactly
// once with one of the terminal reasons.
type EndReason string

const (
	EndReasonInProgress EndReason = "in_progress"
	EndReasonCompleted  EndReason = "completed"
	EndReasonExpired    EndReason = "expired"
	EndReasonDeleted    EndReason = "deleted"
)

// HistoryRecord is the durable, append-mostly record of one session
// lifecycle, used for reporting and receipts. SessionDate is the
// business-day bucket of the start time, assigned once at creation and
// never recomputed from the end time.
type HistoryRecord struct {
	ID              string
	SessionID       int64
	Mode            Mode
	Name            string
	Location        string
	Note            string
	Shift           Shift
	SessionDate     time.Time
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes int
	HourlyRate      decimal.Decimal
	FinalCost       decimal.Decimal
	IsPaid          bool
	PaymentMethod   PaymentMethod
	EndReason       EndReason
}

// HistoryClose carries the values written when a history row is
// finalized.
type HistoryClose struct {
	EndTime         time.Time
	DurationMinutes int
	FinalCost       decimal.Decimal
	IsPaid          bool
	PaymentMethod   PaymentMethod
	Reason          EndReason
}

// OpenHistoryFor builds the in-progress record matching a freshly
// created session. The id is the record's own key; SessionID links it
// back to the active row.
func OpenHistoryFor(id string, s Session) HistoryRecord {
	rec := HistoryRecord{
		ID:            id,
		SessionID:     s.ID,
		Mode:          s.Mode,
		Name:          s.Name,
		Location:      s.Location,
		Note:          s.Note,
		Shift:         s.Shift,
		SessionDate:   BusinessDayOf(s.StartTime),
		StartTime:     s.StartTime,
		IsPaid:        s.IsPaid,
		PaymentMethod: s.PaymentMethod,
		EndReason:     EndReasonInProgress,
	}
	if s.Mode == ModeFixed && s.Fixed != nil {
		rec.DurationMinutes = s.Fixed.DurationMinutes
	}
	if s.Mode == ModeProRated && s.ProRated != nil {
		rec.HourlyRate = s.ProRated.HourlyRate
	}
	return rec
}
