package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"playtab/internal/domain"
	"playtab/internal/ports"
)

// ReportService aggregates finalized history records into the
// cash-reconciliation numbers the shift and business-day buckets exist
// for. It is read-only; the export collaborator consumes its output.
type ReportService struct {
	store ports.HistoryStore
}

// NewReportService creates a new ReportService
func NewReportService(store ports.HistoryStore) *ReportService {
	return &ReportService{store: store}
}

// ShiftTotals summarizes one shift of one business day.
type ShiftTotals struct {
	Shift    domain.Shift
	Sessions int
	Revenue  decimal.Decimal
	Cash     decimal.Decimal
	Transfer decimal.Decimal
	Unpaid   int
}

// DailySummary is the revenue report for one 10:00-to-10:00 business
// day, split per shift.
type DailySummary struct {
	BusinessDay time.Time
	Shifts      []ShiftTotals
	Total       ShiftTotals
}

// Records returns the finalized history rows for a business day,
// optionally narrowed to one shift.
func (r *ReportService) Records(ctx context.Context, businessDay time.Time, shift domain.Shift) ([]domain.HistoryRecord, error) {
	recs, err := r.store.ListHistory(ctx, businessDay, shift)
	if err != nil {
		return nil, err
	}

	out := recs[:0]
	for _, rec := range recs {
		if rec.EndReason == domain.EndReasonInProgress {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Daily builds the per-shift revenue summary for a business day.
// Deleted sessions are excluded from revenue; unpaid completed sessions
// are counted so the shift handover can chase them.
func (r *ReportService) Daily(ctx context.Context, businessDay time.Time) (*DailySummary, error) {
	recs, err := r.store.ListHistory(ctx, businessDay, domain.ShiftAll)
	if err != nil {
		return nil, err
	}

	summary := &DailySummary{
		BusinessDay: businessDay,
		Total:       newShiftTotals(domain.ShiftAll),
	}
	byShift := map[domain.Shift]*ShiftTotals{}
	for _, sh := range []domain.Shift{domain.ShiftDay, domain.ShiftEvening, domain.ShiftOvernight} {
		t := newShiftTotals(sh)
		byShift[sh] = &t
	}

	for _, rec := range recs {
		if rec.EndReason == domain.EndReasonInProgress || rec.EndReason == domain.EndReasonDeleted {
			continue
		}
		totals, ok := byShift[rec.Shift]
		if !ok {
			continue
		}
		addRecord(totals, rec)
		addRecord(&summary.Total, rec)
	}

	for _, sh := range []domain.Shift{domain.ShiftDay, domain.ShiftEvening, domain.ShiftOvernight} {
		summary.Shifts = append(summary.Shifts, *byShift[sh])
	}
	return summary, nil
}

func newShiftTotals(sh domain.Shift) ShiftTotals {
	return ShiftTotals{
		Shift:    sh,
		Revenue:  decimal.Zero,
		Cash:     decimal.Zero,
		Transfer: decimal.Zero,
	}
}

func addRecord(t *ShiftTotals, rec domain.HistoryRecord) {
	t.Sessions++
	t.Revenue = t.Revenue.Add(rec.FinalCost)
	if !rec.IsPaid {
		t.Unpaid++
		return
	}
	switch rec.PaymentMethod {
	case domain.PaymentCash:
		t.Cash = t.Cash.Add(rec.FinalCost)
	default:
		t.Transfer = t.Transfer.Add(rec.FinalCost)
	}
}
