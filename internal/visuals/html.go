package visuals

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"

	"github-projects-mcp/internal/stats"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
)

//go:embed assets
var assets embed.FS

var (
	reportTemplate = template.Must(template.ParseFS(assets, "assets/report.html.tmpl"))

	minifyOnce     sync.Once
	minifiedStyle  template.CSS
	minifiedScript template.JS
)

type statCard struct {
	Value string
	Label string
}

type contributorRow struct {
	Login        string
	PRs          int
	Additions    string
	Deletions    string
	NetChange    string
	FilesChanged int
	Trend        string
	TrendClass   string
}

type highlight struct {
	Label string
	Text  string
}

type peakDay struct {
	Date      string
	Additions string
}

type chartSeries struct {
	Daily struct {
		Labels    []string `json:"labels"`
		Additions []int    `json:"additions"`
		Deletions []int    `json:"deletions"`
	} `json:"daily"`
	Contributors struct {
		Labels    []string `json:"labels"`
		Additions []int    `json:"additions"`
	} `json:"contributors"`
	PRTypes struct {
		Labels []string `json:"labels"`
		Counts []int    `json:"counts"`
	} `json:"prTypes"`
}

type htmlView struct {
	Title        string
	Period       string
	Style        template.CSS
	Script       template.JS
	Cards        []statCard
	Peak         *peakDay
	AvgAdditions string
	Deletions    string
	Rows         []contributorRow
	Highlights   []highlight
	ChartData    chartSeries
}

// RenderHTML renders a self-contained HTML report with Chart.js charts.
func RenderHTML(s *stats.Summary, title string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("render html: nil summary")
	}
	minifyOnce.Do(loadAssets)

	t := s.Totals
	view := htmlView{
		Title:  title,
		Period: Period(s.Window.Start, s.Window.End),
		Style:  minifiedStyle,
		Script: minifiedScript,
		Cards: []statCard{
			{Value: Thousands(t.TotalPRs), Label: "PRs Merged"},
			{Value: Thousands(t.TotalAdditions), Label: "Lines Added"},
			{Value: Thousands(t.TotalDeletions), Label: "Lines Deleted"},
			{Value: Signed(t.NetChange), Label: "Net Change"},
			{Value: Thousands(t.TotalFiles), Label: "Files Changed"},
			{Value: Thousands(t.ActiveContributors), Label: "Active Contributors"},
		},
		AvgAdditions: fmt.Sprintf("%.0f", t.AvgAdditionsPerPR),
		Deletions:    Thousands(t.TotalDeletions),
		ChartData:    buildChartSeries(s),
	}

	if peak := s.PeakDay(); peak != nil {
		view.Peak = &peakDay{Date: dayLabel(peak.Date, "January 02"), Additions: Thousands(peak.Additions)}
	}

	for _, c := range s.SortedContributors() {
		row := contributorRow{
			Login:        c.Login,
			PRs:          c.PRs,
			Additions:    Thousands(c.Additions),
			Deletions:    Thousands(c.Deletions),
			NetChange:    Signed(c.NetChange),
			FilesChanged: c.FilesChanged,
			Trend:        "Refactoring",
			TrendClass:   "trend-down",
		}
		if c.NetChange > 0 {
			row.Trend, row.TrendClass = "Growing", "trend-up"
		}
		view.Rows = append(view.Rows, row)
	}

	view.Highlights = buildHighlights(s)

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

func buildHighlights(s *stats.Summary) []highlight {
	t := s.Totals
	velocity := "code optimization"
	if t.NetChange > 0 {
		velocity = "substantial growth"
	}
	return []highlight{
		{"Development Velocity", fmt.Sprintf("%s net lines indicate %s", Thousands(t.NetChange), velocity)},
		{"Quality Focus", fmt.Sprintf("%s lines deleted show active refactoring and cleanup", Thousands(t.TotalDeletions))},
		{"Team Collaboration", fmt.Sprintf("%d contributors with balanced distribution", t.ActiveContributors)},
		{"Feature-Driven", fmt.Sprintf("%.0f%% of PRs were feature implementations", s.Share(stats.TypeFeatures))},
		{"Average Impact", fmt.Sprintf("%.0f lines added per PR", t.AvgAdditionsPerPR)},
		{"Typical Size", fmt.Sprintf("median PR adds %.0f lines", t.MedianAdditionsPerPR)},
	}
}

func buildChartSeries(s *stats.Summary) chartSeries {
	var cs chartSeries
	cs.Daily.Labels = make([]string, 0, len(s.DailyStats))
	cs.Daily.Additions = make([]int, 0, len(s.DailyStats))
	cs.Daily.Deletions = make([]int, 0, len(s.DailyStats))
	cs.Contributors.Labels = make([]string, 0, len(s.Contributors))
	cs.Contributors.Additions = make([]int, 0, len(s.Contributors))
	cs.PRTypes.Labels = make([]string, 0, len(s.PRTypes))
	cs.PRTypes.Counts = make([]int, 0, len(s.PRTypes))
	for _, d := range s.DailyStats {
		cs.Daily.Labels = append(cs.Daily.Labels, dayLabel(d.Date, "Jan 02"))
		cs.Daily.Additions = append(cs.Daily.Additions, d.Additions)
		cs.Daily.Deletions = append(cs.Daily.Deletions, d.Deletions)
	}
	for _, c := range s.SortedContributors() {
		cs.Contributors.Labels = append(cs.Contributors.Labels, c.Login)
		cs.Contributors.Additions = append(cs.Contributors.Additions, c.Additions)
	}
	for _, kind := range s.PRTypeOrder() {
		cs.PRTypes.Labels = append(cs.PRTypes.Labels, kind)
		cs.PRTypes.Counts = append(cs.PRTypes.Counts, s.PRTypes[kind])
	}
	return cs
}

func loadAssets() {
	css, _ := assets.ReadFile("assets/report.css")
	js, _ := assets.ReadFile("assets/report.js")
	minifiedStyle = template.CSS(minify(string(css), api.LoaderCSS))
	minifiedScript = template.JS(minify(string(js), api.LoaderJS))
}

// minify runs esbuild over src, falling back to the original text on error.
func minify(src string, loader api.Loader) string {
	result := api.Transform(src, api.TransformOptions{
		Loader:            loader,
		MinifyWhitespace:  true,
		MinifySyntax:      true,
		MinifyIdentifiers: loader == api.LoaderJS,
	})
	if len(result.Errors) > 0 {
		log.Warn().Str("error", result.Errors[0].Text).Msg("Report asset minification failed, using source")
		return src
	}
	return string(result.Code)
}
