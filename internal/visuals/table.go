package visuals

import (
	"fmt"
	"io"

	"github-projects-mcp/internal/stats"

	"github.com/olekukonko/tablewriter"
)

// RenderTable writes a terminal summary of the analysis to w.
func RenderTable(w io.Writer, s *stats.Summary, title string) {
	t := s.Totals
	fmt.Fprintf(w, "\n%s\n", title)
	fmt.Fprintf(w, "Period: %s\n\n", Period(s.Window.Start, s.Window.End))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"PRs Merged", Thousands(t.TotalPRs)})
	table.Append([]string{"Lines Added", Thousands(t.TotalAdditions)})
	table.Append([]string{"Lines Deleted", Thousands(t.TotalDeletions)})
	table.Append([]string{"Net Change", Signed(t.NetChange)})
	table.Append([]string{"Files Changed", Thousands(t.TotalFiles)})
	table.Append([]string{"Active Contributors", fmt.Sprintf("%d", t.ActiveContributors)})
	table.Render()

	fmt.Fprintln(w)
	contributors := tablewriter.NewWriter(w)
	contributors.SetHeader([]string{"Contributor", "PRs", "Added", "Deleted", "Net", "Files"})
	for _, c := range s.SortedContributors() {
		contributors.Append([]string{
			c.Login,
			fmt.Sprintf("%d", c.PRs),
			Thousands(c.Additions),
			Thousands(c.Deletions),
			Signed(c.NetChange),
			fmt.Sprintf("%d", c.FilesChanged),
		})
	}
	contributors.Render()

	fmt.Fprintln(w)
	types := tablewriter.NewWriter(w)
	types.SetHeader([]string{"PR Type", "Count", "Share"})
	for _, kind := range s.PRTypeOrder() {
		types.Append([]string{kind, fmt.Sprintf("%d", s.PRTypes[kind]), fmt.Sprintf("%.0f%%", s.Share(kind))})
	}
	types.Render()
}
