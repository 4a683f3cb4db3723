package stats

import (
	"sort"
	"time"
)

// DailyStat aggregates the pull requests merged on one UTC calendar day.
type DailyStat struct {
	Date         string   `json:"date" yaml:"date"`
	Additions    int      `json:"additions" yaml:"additions"`
	Deletions    int      `json:"deletions" yaml:"deletions"`
	PRs          int      `json:"prs" yaml:"prs"`
	NetChange    int      `json:"net_change" yaml:"net_change"`
	FilesChanged int      `json:"files_changed" yaml:"files_changed"`
	AuthorCount  int      `json:"author_count" yaml:"author_count"`
	Authors      []string `json:"authors" yaml:"authors"`
}

// ContributorStat aggregates one author's merged pull requests.
type ContributorStat struct {
	Login             string     `json:"login" yaml:"login"`
	PRs               int        `json:"prs" yaml:"prs"`
	Additions         int        `json:"additions" yaml:"additions"`
	Deletions         int        `json:"deletions" yaml:"deletions"`
	FilesChanged      int        `json:"files_changed" yaml:"files_changed"`
	FirstContribution *time.Time `json:"first_contribution" yaml:"first_contribution"`
	LastContribution  *time.Time `json:"last_contribution" yaml:"last_contribution"`
	NetChange         int        `json:"net_change" yaml:"net_change"`
	AvgAdditionsPerPR float64    `json:"avg_additions_per_pr" yaml:"avg_additions_per_pr"`
	AvgDeletionsPerPR float64    `json:"avg_deletions_per_pr" yaml:"avg_deletions_per_pr"`
}

// TotalStats are the headline numbers of a summary.
type TotalStats struct {
	TotalPRs           int      `json:"total_prs" yaml:"total_prs"`
	TotalAdditions     int      `json:"total_additions" yaml:"total_additions"`
	TotalDeletions     int      `json:"total_deletions" yaml:"total_deletions"`
	NetChange          int      `json:"net_change" yaml:"net_change"`
	TotalFiles         int      `json:"total_files" yaml:"total_files"`
	ActiveContributors int      `json:"active_contributors" yaml:"active_contributors"`
	Contributors       []string `json:"contributors" yaml:"contributors"`
	AvgAdditionsPerPR  float64  `json:"avg_additions_per_pr" yaml:"avg_additions_per_pr"`
	AvgDeletionsPerPR  float64  `json:"avg_deletions_per_pr" yaml:"avg_deletions_per_pr"`
	AvgFilesPerPR      float64  `json:"avg_files_per_pr" yaml:"avg_files_per_pr"`

	MedianAdditionsPerPR float64 `json:"median_additions_per_pr" yaml:"median_additions_per_pr"`
}

// TimeWindow is the span actually covered by the analysed merges.
type TimeWindow struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// Summary is the result of Analyze. It is not modified after construction.
type Summary struct {
	DailyStats   []DailyStat                `json:"daily_stats" yaml:"daily_stats"`
	Contributors map[string]ContributorStat `json:"contributor_stats" yaml:"contributor_stats"`
	PRTypes      map[string]int             `json:"pr_type_counts" yaml:"pr_type_counts"`
	Totals       TotalStats                 `json:"total_stats" yaml:"total_stats"`
	Window       TimeWindow                 `json:"time_window" yaml:"time_window"`
}

// SortedContributors lists contributors by additions descending, then login.
func (s *Summary) SortedContributors() []ContributorStat {
	out := make([]ContributorStat, 0, len(s.Contributors))
	for _, c := range s.Contributors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Additions != out[j].Additions {
			return out[i].Additions > out[j].Additions
		}
		return out[i].Login < out[j].Login
	})
	return out
}

// PRTypeOrder lists the PR types present in the summary in classification order.
func (s *Summary) PRTypeOrder() []string {
	var out []string
	for _, t := range TypeOrder {
		if s.PRTypes[t] > 0 {
			out = append(out, t)
		}
	}
	return out
}

// PeakDay returns the first day with the most additions, or nil when there are no days.
func (s *Summary) PeakDay() *DailyStat {
	if len(s.DailyStats) == 0 {
		return nil
	}
	peak := 0
	for i, d := range s.DailyStats {
		if d.Additions > s.DailyStats[peak].Additions {
			peak = i
		}
	}
	day := s.DailyStats[peak]
	return &day
}

// Share returns the percentage of analysed PRs classified as prType.
func (s *Summary) Share(prType string) float64 {
	if s.Totals.TotalPRs == 0 {
		return 0
	}
	return float64(s.PRTypes[prType]) / float64(s.Totals.TotalPRs) * 100
}
