package visuals

import (
	"fmt"
	"strings"

	"github-projects-mcp/internal/stats"
)

// RenderMarkdown renders the summary as a Markdown document. Mermaid charts are
// included when withCharts is set.
func RenderMarkdown(s *stats.Summary, title string, withCharts bool) string {
	t := s.Totals
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "Development Activity Report - %s\n\n", Period(s.Window.Start, s.Window.End))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&sb, "| PRs Merged | %s |\n", Thousands(t.TotalPRs))
	fmt.Fprintf(&sb, "| Lines Added | %s |\n", Thousands(t.TotalAdditions))
	fmt.Fprintf(&sb, "| Lines Deleted | %s |\n", Thousands(t.TotalDeletions))
	fmt.Fprintf(&sb, "| Net Change | %s |\n", Signed(t.NetChange))
	fmt.Fprintf(&sb, "| Files Changed | %s |\n", Thousands(t.TotalFiles))
	fmt.Fprintf(&sb, "| Active Contributors | %d |\n\n", t.ActiveContributors)

	sb.WriteString("## Daily Code Changes\n\n")
	if withCharts {
		sb.WriteString(GenerateDailyChangesChart(s.DailyStats))
		sb.WriteString("\n\n")
	}
	sb.WriteString("| Date | PRs | Added | Deleted | Net | Authors |\n|---|---:|---:|---:|---:|---|\n")
	for _, d := range s.DailyStats {
		fmt.Fprintf(&sb, "| %s | %d | %s | %s | %s | %s |\n",
			d.Date, d.PRs, Thousands(d.Additions), Thousands(d.Deletions), Signed(d.NetChange), strings.Join(d.Authors, ", "))
	}
	if peak := s.PeakDay(); peak != nil {
		fmt.Fprintf(&sb, "\nPeak activity day: **%s** with %s lines added.\n", dayLabel(peak.Date, "January 02"), Thousands(peak.Additions))
	}
	sb.WriteString("\n")

	contributors := s.SortedContributors()
	sb.WriteString("## Contributors\n\n")
	if withCharts {
		sb.WriteString(GenerateContributorChart(contributors))
		sb.WriteString("\n\n")
	}
	sb.WriteString("| Contributor | PRs | Added | Deleted | Net | Files | Trend |\n|---|---:|---:|---:|---:|---:|---|\n")
	for _, c := range contributors {
		trend := "Refactoring"
		if c.NetChange > 0 {
			trend = "Growing"
		}
		fmt.Fprintf(&sb, "| %s | %d | %s | %s | %s | %d | %s |\n",
			c.Login, c.PRs, Thousands(c.Additions), Thousands(c.Deletions), Signed(c.NetChange), c.FilesChanged, trend)
	}
	sb.WriteString("\n")

	sb.WriteString("## PR Types\n\n")
	if withCharts {
		sb.WriteString(GeneratePRTypeChart(s))
		sb.WriteString("\n\n")
	}
	for _, kind := range s.PRTypeOrder() {
		fmt.Fprintf(&sb, "- %s: %d (%.0f%%)\n", kind, s.PRTypes[kind], s.Share(kind))
	}
	sb.WriteString("\n")

	sb.WriteString("## Highlights\n\n")
	for _, h := range buildHighlights(s) {
		fmt.Fprintf(&sb, "- **%s:** %s\n", h.Label, h.Text)
	}
	return sb.String()
}
