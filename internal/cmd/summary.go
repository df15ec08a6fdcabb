package cmd

import (
	"context"
	"fmt"

	"playtab/internal/services"
)

// SummaryCmd shows the per-shift revenue summary for a business day
type SummaryCmd struct {
	Day string `help:"Business day (YYYY-MM-DD, defaults to the current one)"`
}

// Run executes the summary command
func (s *SummaryCmd) Run(cli *CLI) error {
	day, err := parseBusinessDay(s.Day)
	if err != nil {
		return err
	}

	summary, err := cli.Container.ReportService.Daily(context.Background(), day)
	if err != nil {
		return fmt.Errorf("failed to build summary: %w", err)
	}

	fmt.Printf("Business day %s\n\n", summary.BusinessDay.Format("2006-01-02"))
	fmt.Printf("%-12s %8s %10s %10s %10s %7s\n",
		"shift", "sessions", "revenue", "cash", "transfer", "unpaid")
	for _, t := range summary.Shifts {
		printTotals(t.Shift.Label(), t)
	}
	printTotals("total", summary.Total)
	return nil
}

func printTotals(label string, t services.ShiftTotals) {
	fmt.Printf("%-12s %8d %10s %10s %10s %7d\n",
		label, t.Sessions,
		t.Revenue.StringFixed(2), t.Cash.StringFixed(2),
		t.Transfer.StringFixed(2), t.Unpaid)
}
