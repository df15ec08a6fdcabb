package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"playtab/internal/domain"
)

// sessionModelToDomain converts a SessionModel (GORM) to domain.Session
func sessionModelToDomain(m SessionModel) domain.Session {
	s := domain.Session{
		ID:            m.ID,
		Mode:          domain.Mode(m.Mode),
		Name:          m.Name,
		Location:      m.Location,
		Note:          m.Note,
		Shift:         domain.Shift(m.Shift),
		StartTime:     m.StartTime,
		IsRunning:     m.IsRunning,
		IsPaid:        m.IsPaid,
		PaymentMethod: domain.PaymentMethod(m.PaymentMethod),
		LastUpdated:   m.LastUpdated,
	}

	switch s.Mode {
	case domain.ModeFixed:
		s.Fixed = &domain.FixedBilling{
			DurationMinutes: m.DurationMinutes,
			ExpectedEnd:     m.ExpectedEnd,
			PausedRemaining: m.PausedRemaining,
		}
	case domain.ModeProRated:
		s.ProRated = &domain.ProRatedBilling{
			HourlyRate: parseDecimal(m.HourlyRate),
			TotalPause: time.Duration(m.TotalPauseNS),
			PausedAt:   m.PausedAt,
		}
	}
	return s
}

// domainToSessionModel converts a domain.Session to SessionModel (GORM)
func domainToSessionModel(s domain.Session) SessionModel {
	m := SessionModel{
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
		HourlyRate:    "0",
	}

	if s.Fixed != nil {
		m.DurationMinutes = s.Fixed.DurationMinutes
		m.ExpectedEnd = s.Fixed.ExpectedEnd
		m.PausedRemaining = s.Fixed.PausedRemaining
	}
	if s.ProRated != nil {
		m.HourlyRate = s.ProRated.HourlyRate.String()
		m.TotalPauseNS = int64(s.ProRated.TotalPause)
		m.PausedAt = s.ProRated.PausedAt
	}
	return m
}

// historyModelToDomain converts a HistoryModel (GORM) to domain.HistoryRecord
func historyModelToDomain(m HistoryModel) domain.HistoryRecord {
	return domain.HistoryRecord{
		ID:              m.ID,
		SessionID:       m.SessionID,
		Mode:            domain.Mode(m.Mode),
		Name:            m.Name,
		Location:        m.Location,
		Note:            m.Note,
		Shift:           domain.Shift(m.Shift),
		SessionDate:     m.SessionDate,
		StartTime:       m.StartTime,
		EndTime:         m.EndTime,
		DurationMinutes: m.DurationMinutes,
		HourlyRate:      parseDecimal(m.HourlyRate),
		FinalCost:       parseDecimal(m.FinalCost),
		IsPaid:          m.IsPaid,
		PaymentMethod:   domain.PaymentMethod(m.PaymentMethod),
		EndReason:       domain.EndReason(m.EndReason),
	}
}

// domainToHistoryModel converts a domain.HistoryRecord to HistoryModel (GORM)
func domainToHistoryModel(r domain.HistoryRecord) HistoryModel {
	return HistoryModel{
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

// parseDecimal tolerates rows written before a column existed; an
// unreadable amount becomes zero rather than poisoning a whole listing.
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
