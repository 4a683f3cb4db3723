package stats

import (
	"sort"
	"time"

	"github-projects-mcp/internal/datetime"
	apperrors "github-projects-mcp/internal/errors"
	"github-projects-mcp/internal/github"

	"github.com/rs/zerolog/log"
)

// MsgNoPullRequests is returned when the analysis window holds no merged PRs.
const MsgNoPullRequests = "no pull requests found in the specified time period"

// Analyze aggregates the pull requests merged within [start, end]. Either
// bound may be nil. An empty selection is a NO_DATA error.
func Analyze(prs []github.PullRequest, start, end *time.Time) (*Summary, error) {
	// 1. Select merged PRs inside the window
	selected := filterByMergeTime(prs, start, end)
	if len(selected) == 0 {
		return nil, apperrors.NewNoDataError(MsgNoPullRequests)
	}
	log.Debug().Int("input", len(prs)).Int("selected", len(selected)).Msg("Analyzing pull requests")

	// 2. Aggregate
	return &Summary{
		DailyStats:   dailyStats(selected),
		Contributors: contributorStats(selected),
		PRTypes:      prTypes(selected),
		Totals:       totalStats(selected),
		Window:       observedWindow(selected),
	}, nil
}

func filterByMergeTime(prs []github.PullRequest, start, end *time.Time) []github.PullRequest {
	var out []github.PullRequest
	for _, pr := range prs {
		if pr.MergedAt == nil {
			continue
		}
		if datetime.Before(pr.MergedAt, start) || datetime.After(pr.MergedAt, end) {
			continue
		}
		out = append(out, pr)
	}
	return out
}

func observedWindow(prs []github.PullRequest) TimeWindow {
	first := datetime.NormalizeForComparison(prs[0].MergedAt)
	w := TimeWindow{Start: *first, End: *first}
	for _, pr := range prs[1:] {
		t := *datetime.NormalizeForComparison(pr.MergedAt)
		if t.Before(w.Start) {
			w.Start = t
		}
		if t.After(w.End) {
			w.End = t
		}
	}
	return w
}

func dailyStats(prs []github.PullRequest) []DailyStat {
	days := make(map[string]*DailyStat)
	authors := make(map[string]map[string]struct{})

	for _, pr := range prs {
		key := datetime.NormalizeForComparison(pr.MergedAt).Format("2006-01-02")
		d, ok := days[key]
		if !ok {
			d = &DailyStat{Date: key}
			days[key] = d
			authors[key] = make(map[string]struct{})
		}
		d.Additions += pr.Additions
		d.Deletions += pr.Deletions
		d.PRs++
		d.NetChange += pr.Additions - pr.Deletions
		d.FilesChanged += pr.ChangedFiles
		if login := pr.AuthorLogin(); login != "" {
			authors[key][login] = struct{}{}
		}
	}

	out := make([]DailyStat, 0, len(days))
	for key, d := range days {
		d.Authors = sortedKeys(authors[key])
		d.AuthorCount = len(d.Authors)
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func contributorStats(prs []github.PullRequest) map[string]ContributorStat {
	acc := make(map[string]*ContributorStat)

	for _, pr := range prs {
		login := pr.AuthorLogin()
		if login == "" {
			continue
		}
		c, ok := acc[login]
		if !ok {
			c = &ContributorStat{Login: login}
			acc[login] = c
		}
		c.PRs++
		c.Additions += pr.Additions
		c.Deletions += pr.Deletions
		c.FilesChanged += pr.ChangedFiles

		// Strict comparisons keep the first-seen value on ties.
		if c.FirstContribution == nil || datetime.Before(pr.MergedAt, c.FirstContribution) {
			c.FirstContribution = pr.MergedAt
		}
		if c.LastContribution == nil || datetime.After(pr.MergedAt, c.LastContribution) {
			c.LastContribution = pr.MergedAt
		}
	}

	out := make(map[string]ContributorStat, len(acc))
	for login, c := range acc {
		c.NetChange = c.Additions - c.Deletions
		c.AvgAdditionsPerPR = ratio(c.Additions, c.PRs)
		c.AvgDeletionsPerPR = ratio(c.Deletions, c.PRs)
		out[login] = *c
	}
	return out
}

func prTypes(prs []github.PullRequest) map[string]int {
	out := make(map[string]int)
	for _, pr := range prs {
		out[ClassifyTitle(pr.Title)]++
	}
	return out
}

func totalStats(prs []github.PullRequest) TotalStats {
	t := TotalStats{TotalPRs: len(prs)}
	authors := make(map[string]struct{})
	sizes := make([]int, 0, len(prs))
	for _, pr := range prs {
		sizes = append(sizes, pr.Additions)
		t.TotalAdditions += pr.Additions
		t.TotalDeletions += pr.Deletions
		t.TotalFiles += pr.ChangedFiles
		if login := pr.AuthorLogin(); login != "" {
			authors[login] = struct{}{}
		}
	}
	t.NetChange = t.TotalAdditions - t.TotalDeletions
	t.Contributors = sortedKeys(authors)
	t.ActiveContributors = len(t.Contributors)
	t.AvgAdditionsPerPR = ratio(t.TotalAdditions, t.TotalPRs)
	t.AvgDeletionsPerPR = ratio(t.TotalDeletions, t.TotalPRs)
	t.AvgFilesPerPR = ratio(t.TotalFiles, t.TotalPRs)
	t.MedianAdditionsPerPR = Median(sizes)
	return t
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
