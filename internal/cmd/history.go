package cmd

import (
	"context"
	"fmt"
	"time"

	"playtab/internal/domain"
)

// HistoryCmd lists finalized history records
type HistoryCmd struct {
	Day   string `help:"Business day (YYYY-MM-DD, defaults to the current one)"`
	Shift string `help:"Limit to one shift (1/day, 2/evening, 3/overnight)"`
}

// Run executes the history command
func (h *HistoryCmd) Run(cli *CLI) error {
	day, err := parseBusinessDay(h.Day)
	if err != nil {
		return err
	}

	shift := domain.ShiftAll
	if h.Shift != "" {
		shift, err = domain.ParseShift(h.Shift)
		if err != nil {
			return err
		}
	}

	recs, err := cli.Container.ReportService.Records(context.Background(), day, shift)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(recs) == 0 {
		fmt.Printf("No history for business day %s\n", day.Format("2006-01-02"))
		return nil
	}

	for _, rec := range recs {
		end := "-"
		if rec.EndTime != nil {
			end = rec.EndTime.Local().Format("15:04")
		}
		paid := "unpaid"
		if rec.IsPaid {
			paid = fmt.Sprintf("paid (%s)", rec.PaymentMethod)
		}
		fmt.Printf("%3d  %-20s %-10s shift %-9s %s-%s  %9s  %-9s %s\n",
			rec.SessionID, rec.Name, rec.Location, rec.Shift.Label(),
			rec.StartTime.Local().Format("15:04"), end,
			rec.FinalCost.StringFixed(2), rec.EndReason, paid)
	}
	return nil
}

// parseBusinessDay reads a YYYY-MM-DD value, defaulting to the business
// day the current wall clock falls in.
func parseBusinessDay(raw string) (time.Time, error) {
	if raw == "" {
		return domain.BusinessDayOf(time.Now()), nil
	}
	day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day '%s': %w", raw, err)
	}
	return day, nil
}
