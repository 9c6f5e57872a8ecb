package runner

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"CanSlimHunter/internal/model"
)

var (
	summaryBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(0, 1)

	summaryTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED"))

	labelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Width(18)

	goodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

// RenderSummary renders the end-of-run table shown on the terminal.
func RenderSummary(rep *Report) string {
	res := rep.Result
	var b strings.Builder
	b.WriteString(summaryTitle.Render("CAN-SLIM screening summary") + "\n")
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + value + "\n")
	}

	row("Run", rep.RunID)
	row("Processed", humanize.Comma(int64(res.Processed)))
	row("Technical pass", humanize.Comma(int64(res.TechnicalPass)))
	row("Qualified", goodStyle.Render(humanize.Comma(int64(res.Qualified))))
	row("Skipped", humanize.Comma(int64(res.Skipped)))

	reasons := make([]string, 0, len(res.SkipsByReason))
	for reason := range res.SkipsByReason {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		row("  "+reason, fmt.Sprint(res.SkipsByReason[model.SkipReason(reason)]))
	}

	row(rep.Benchmark+" 1y return", fmt.Sprintf("%+.1f%%", res.BenchmarkReturn*100))
	if rep.DryRun {
		row("Alerts (dry run)", fmt.Sprint(rep.Alerts))
	} else {
		row("Notified", fmt.Sprint(rep.Notified))
		failed := fmt.Sprint(rep.NotifyFailed)
		if rep.NotifyFailed > 0 {
			failed = badStyle.Render(failed)
		}
		row("Notify failed", failed)
	}
	row("Elapsed", rep.Elapsed.Round(100*time.Millisecond).String())

	if len(res.Qualifiers) > 0 {
		syms := make([]string, len(res.Qualifiers))
		for i, q := range res.Qualifiers {
			syms[i] = q.Symbol
		}
		row("Qualifiers", goodStyle.Render(strings.Join(syms, ", ")))
	}
	return summaryBox.Render(strings.TrimRight(b.String(), "\n"))
}
