package ui

import (
	"fmt"
	"strings"

	"playtab/internal/services"
	"playtab/internal/theme"
)

// renderSummary draws the per-shift revenue breakdown for one
// business day.
func renderSummary(summary *services.DailySummary) string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render(
		"Business day " + summary.BusinessDay.Format("2006-01-02")))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-12s %8s %10s %10s %10s %7s",
		"shift", "sessions", "revenue", "cash", "transfer", "unpaid")
	b.WriteString(theme.MutedStyle.Render(header))
	b.WriteString("\n")

	for _, t := range summary.Shifts {
		line := fmt.Sprintf("  %-12s %8d %10s %10s %10s %7d",
			t.Shift.Label(), t.Sessions,
			t.Revenue.StringFixed(2), t.Cash.StringFixed(2),
			t.Transfer.StringFixed(2), t.Unpaid)
		b.WriteString(theme.ShiftStyle(int(t.Shift)).Render(line))
		b.WriteString("\n")
	}

	total := summary.Total
	totalLine := fmt.Sprintf("  %-12s %8d %10s %10s %10s %7d",
		"total", total.Sessions,
		total.Revenue.StringFixed(2), total.Cash.StringFixed(2),
		total.Transfer.StringFixed(2), total.Unpaid)
	b.WriteString(theme.MoneyStyle.Render(totalLine))
	b.WriteString("\n\n")
	b.WriteString(theme.MutedStyle.Render("esc to go back"))
	return b.String()
}
