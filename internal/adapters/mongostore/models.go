package mongostore

import (
	"time"

	"github.com/shopspring/decimal"

	"playtab/internal/domain"
)

// sessionDoc is the BSON shape of one active session. Money fields are
// stored as decimal strings so no float ever touches a price.
type sessionDoc struct {
	ID              int64      `bson:"_id"`
	Mode            string     `bson:"mode"`
	Name            string     `bson:"name"`
	Location        string     `bson:"location"`
	Note            string     `bson:"note,omitempty"`
	Shift           int        `bson:"shift"`
	StartTime       time.Time  `bson:"start_time"`
	IsRunning       bool       `bson:"is_running"`
	IsPaid          bool       `bson:"is_paid"`
	PaymentMethod   string     `bson:"payment_method"`
	LastUpdated     time.Time  `bson:"last_updated"`
	DurationMinutes int        `bson:"duration_minutes,omitempty"`
	ExpectedEnd     *time.Time `bson:"expected_end,omitempty"`
	PausedRemaining int        `bson:"paused_remaining,omitempty"`
	HourlyRate      string     `bson:"hourly_rate,omitempty"`
	TotalPauseNS    int64      `bson:"total_pause_ns,omitempty"`
	PausedAt        *time.Time `bson:"paused_at,omitempty"`
}

// historyDoc is the BSON shape of one lifecycle record.
type historyDoc struct {
	ID              string     `bson:"_id"`
	SessionID       int64      `bson:"session_id"`
	Mode            string     `bson:"mode"`
	Name            string     `bson:"name"`
	Location        string     `bson:"location"`
	Note            string     `bson:"note,omitempty"`
	Shift           int        `bson:"shift"`
	SessionDate     time.Time  `bson:"session_date"`
	StartTime       time.Time  `bson:"start_time"`
	EndTime         *time.Time `bson:"end_time,omitempty"`
	DurationMinutes int        `bson:"duration_minutes"`
	HourlyRate      string     `bson:"hourly_rate"`
	FinalCost       string     `bson:"final_cost"`
	IsPaid          bool       `bson:"is_paid"`
	PaymentMethod   string     `bson:"payment_method"`
	EndReason       string     `bson:"end_reason"`
}

func sessionToDoc(s domain.Session) sessionDoc {
	doc := sessionDoc{
		ID:            s.ID,
		Mode:          string(s.Mode),
		Name:          s.Name,
		Location:      s.Location,
		Note:          s.Note,
		Shift:         int(s.Shift),
		StartTime:     s.StartTime,
		IsRunning:     s.IsRunning,
		IsPaid:        s.IsPaid,
		PaymentMethod: string(s.PaymentMethod),
		LastUpdated:   s.LastUpdated,
	}
	if s.Fixed != nil {
		doc.DurationMinutes = s.Fixed.DurationMinutes
		doc.ExpectedEnd = s.Fixed.ExpectedEnd
		doc.PausedRemaining = s.Fixed.PausedRemaining
	}
	if s.ProRated != nil {
		doc.HourlyRate = s.ProRated.HourlyRate.String()
		doc.TotalPauseNS = int64(s.ProRated.TotalPause)
		doc.PausedAt = s.ProRated.PausedAt
	}
	return doc
}

func docToSession(d sessionDoc) domain.Session {
	s := domain.Session{
		ID:            d.ID,
		Mode:          domain.Mode(d.Mode),
		Name:          d.Name,
		Location:      d.Location,
		Note:          d.Note,
		Shift:         domain.Shift(d.Shift),
		StartTime:     d.StartTime,
		IsRunning:     d.IsRunning,
		IsPaid:        d.IsPaid,
		PaymentMethod: domain.PaymentMethod(d.PaymentMethod),
		LastUpdated:   d.LastUpdated,
	}
	switch s.Mode {
	case domain.ModeFixed:
		s.Fixed = &domain.FixedBilling{
			DurationMinutes: d.DurationMinutes,
			ExpectedEnd:     d.ExpectedEnd,
			PausedRemaining: d.PausedRemaining,
		}
	case domain.ModeProRated:
		s.ProRated = &domain.ProRatedBilling{
			HourlyRate: parseDecimal(d.HourlyRate),
			TotalPause: time.Duration(d.TotalPauseNS),
			PausedAt:   d.PausedAt,
		}
	}
	return s
}

func historyToDoc(r domain.HistoryRecord) historyDoc {
	return historyDoc{
		ID:              r.ID,
		SessionID:       r.SessionID,
		Mode:            string(r.Mode),
		Name:            r.Name,
		Location:        r.Location,
		Note:            r.Note,
		Shift:           int(r.Shift),
		SessionDate:     r.SessionDate,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		DurationMinutes: r.DurationMinutes,
		HourlyRate:      r.HourlyRate.String(),
		FinalCost:       r.FinalCost.String(),
		IsPaid:          r.IsPaid,
		PaymentMethod:   string(r.PaymentMethod),
		EndReason:       string(r.EndReason),
	}
}

func docToHistory(d historyDoc) domain.HistoryRecord {
	return domain.HistoryRecord{
		ID:              d.ID,
		SessionID:       d.SessionID,
		Mode:            domain.Mode(d.Mode),
		Name:            d.Name,
		Location:        d.Location,
		Note:            d.Note,
		Shift:           domain.Shift(d.Shift),
		SessionDate:     d.SessionDate,
		StartTime:       d.StartTime,
		EndTime:         d.EndTime,
		DurationMinutes: d.DurationMinutes,
		HourlyRate:      parseDecimal(d.HourlyRate),
		FinalCost:       parseDecimal(d.FinalCost),
		IsPaid:          d.IsPaid,
		PaymentMethod:   domain.PaymentMethod(d.PaymentMethod),
		EndReason:       domain.EndReason(d.EndReason),
	}
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
