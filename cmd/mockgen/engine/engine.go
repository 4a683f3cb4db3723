package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github-projects-mcp/internal/github"
)

// GeneratorConfig controls the synthetic pull request history.
type GeneratorConfig struct {
	Owner    string
	Name     string
	Scenario string // "mild", "burst" or "drift"
	Count    int
	Days     int
	Seed     int64
	Now      time.Time
}

var (
	authors  = []string{"alice", "bob", "carol", "dave", "erin", "frank"}
	prefixes = []string{"feat", "fix", "refactor", "chore", "docs", "test", "Bump"}
	branches = []string{"main", "main", "main", "develop"}
)

// Generate builds Count pull request nodes spread over the last Days days.
// Roughly four in five are merged; the rest are open or closed unmerged.
func Generate(cfg GeneratorConfig) []github.PullRequestDTO {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Days <= 0 {
		cfg.Days = 30
	}
	if cfg.Owner == "" {
		cfg.Owner = "acme"
	}
	if cfg.Name == "" {
		cfg.Name = "widgets"
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	now := cfg.Now.UTC().Truncate(time.Second)
	start := now.AddDate(0, 0, -cfg.Days)
	span := now.Sub(start)

	nodes := make([]github.PullRequestDTO, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		n := i + 1
		progress := float64(i) / math.Max(float64(cfg.Count), 1)

		// 1. Creation time: evenly spread, except "burst" which piles half the PRs into the last week
		created := start.Add(time.Duration(progress * float64(span)))
		if cfg.Scenario == "burst" && rng.Float64() < 0.5 {
			created = now.AddDate(0, 0, -7).Add(time.Duration(rng.Float64() * float64(7*24*time.Hour)))
		}

		// 2. Size: Weibull-distributed additions; "drift" grows PRs over time
		k, lambda := 1.2, 120.0
		if cfg.Scenario == "drift" {
			lambda = 60 + 300*progress
		}
		additions := int(weibullSample(rng, k, lambda))
		deletions := int(float64(additions) * (0.1 + rng.Float64()*0.9))
		files := 1 + additions/40 + rng.Intn(3)

		// 3. Outcome
		author := authors[rng.Intn(len(authors))]
		title := fmt.Sprintf("%s: change %d", prefixes[rng.Intn(len(prefixes))], n)
		state := github.StateMerged
		var mergedAt, closedAt *string
		leadTime := time.Duration(1+rng.Intn(72)) * time.Hour
		finished := created.Add(leadTime)
		roll := rng.Float64()
		switch {
		case finished.After(now) || roll < 0.12:
			state = github.StateOpen
			finished = created
		case roll < 0.2:
			state = github.StateClosed
			closedAt = stamp(finished)
		default:
			mergedAt = stamp(finished)
			closedAt = stamp(finished)
		}

		dto := github.PullRequestDTO{
			ID:           fmt.Sprintf("PR_mock_%d", n),
			Number:       n,
			Title:        title,
			URL:          fmt.Sprintf("https://github.com/%s/%s/pull/%d", cfg.Owner, cfg.Name, n),
			State:        state,
			CreatedAt:    stamp(created),
			UpdatedAt:    stamp(finished),
			ClosedAt:     closedAt,
			MergedAt:     mergedAt,
			Merged:       mergedAt != nil,
			Author:       &github.ActorDTO{Login: author, URL: "https://github.com/" + author},
			Repository:   &github.RepositoryDTO{NameWithOwner: cfg.Owner + "/" + cfg.Name, URL: fmt.Sprintf("https://github.com/%s/%s", cfg.Owner, cfg.Name)},
			BaseRefName:  branches[rng.Intn(len(branches))],
			HeadRefName:  fmt.Sprintf("%s/change-%d", author, n),
			Additions:    additions,
			Deletions:    deletions,
			ChangedFiles: files,
		}
		if rng.Float64() < 0.3 {
			dto.Labels.Nodes = []github.LabelDTO{{Name: "enhancement", Color: "a2eeef"}}
		}
		nodes = append(nodes, dto)
	}
	return nodes
}

func stamp(t time.Time) *string {
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

// Save writes the nodes as connection pages page-001.json, page-002.json, ...
// into outDir/<owner>/<name>, newest first as the GraphQL query orders them.
func Save(outDir, owner, name string, nodes []github.PullRequestDTO, pageSize int) (int, error) {
	if pageSize <= 0 {
		pageSize = 50
	}
	dir := filepath.Join(outDir, owner, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}

	ordered := make([]github.PullRequestDTO, len(nodes))
	for i, n := range nodes {
		ordered[len(nodes)-1-i] = n
	}

	pages := 0
	for offset := 0; offset < len(ordered) || pages == 0; offset += pageSize {
		end := min(offset+pageSize, len(ordered))
		pages++

		conn := github.ConnectionDTO{Nodes: make([]json.RawMessage, 0, end-offset)}
		for _, n := range ordered[offset:end] {
			raw, err := json.Marshal(n)
			if err != nil {
				return pages, err
			}
			conn.Nodes = append(conn.Nodes, raw)
		}
		if end < len(ordered) {
			next := github.PageFileName(pages + 1)
			cursor := next[:len(next)-len(filepath.Ext(next))]
			conn.PageInfo = github.PageInfoDTO{HasNextPage: true, EndCursor: &cursor}
		}

		data, err := json.MarshalIndent(conn, "", "  ")
		if err != nil {
			return pages, err
		}
		if err := os.WriteFile(filepath.Join(dir, github.PageFileName(pages)), data, 0644); err != nil {
			return pages, err
		}
	}
	return pages, nil
}
