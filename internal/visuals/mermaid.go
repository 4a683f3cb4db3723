package visuals

import (
	"fmt"
	"math"
	"strings"

	"github-projects-mcp/internal/stats"
)

// maxChartBars keeps text charts readable.
const maxChartBars = 20

// GenerateDailyChangesChart creates a Mermaid xychart-beta with daily additions and deletions.
func GenerateDailyChangesChart(days []stats.DailyStat) string {
	if len(days) == 0 {
		return ""
	}

	var labels []string
	var additions []string
	var deletions []string
	maxVal := 0

	for _, d := range days {
		labels = append(labels, fmt.Sprintf("\"%s\"", dayLabel(d.Date, "Jan 02")))
		additions = append(additions, fmt.Sprintf("%d", d.Additions))
		deletions = append(deletions, fmt.Sprintf("%d", d.Deletions))
		maxVal = max(maxVal, d.Additions, d.Deletions)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Daily Code Changes\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Lines of Code\" 0 --> %d\n", axisMax(maxVal)))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(additions, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(deletions, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateContributorChart creates a Mermaid bar chart of additions per contributor.
func GenerateContributorChart(contributors []stats.ContributorStat) string {
	if len(contributors) == 0 {
		return ""
	}

	limit := min(len(contributors), maxChartBars)

	var labels []string
	var values []string
	maxVal := 0
	for _, c := range contributors[:limit] {
		labels = append(labels, fmt.Sprintf("\"%s\"", c.Login))
		values = append(values, fmt.Sprintf("%d", c.Additions))
		maxVal = max(maxVal, c.Additions)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Contributor Impact (Top %d)\"\n", limit))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Lines Added\" 0 --> %d\n", axisMax(maxVal)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GeneratePRTypeChart creates a Mermaid pie chart of the PR type distribution.
func GeneratePRTypeChart(s *stats.Summary) string {
	order := s.PRTypeOrder()
	if len(order) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("pie title PR Types Distribution\n")
	for _, kind := range order {
		sb.WriteString(fmt.Sprintf("    \"%s\" : %d\n", kind, s.PRTypes[kind]))
	}
	sb.WriteString("```")
	return sb.String()
}

// axisMax leaves headroom above the largest value.
func axisMax(v int) int {
	return v + int(math.Max(1, math.Ceil(float64(v)*0.2)))
}
