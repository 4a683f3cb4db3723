package github

import (
	"time"
)

// Actor is an issue or pull request author, assignee or reviewer.
type Actor struct {
	Login string `json:"login"`
	URL   string `json:"profile_url"`
}

// Label is a repository label attached to an issue or pull request.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// RepositoryRef identifies the repository a record belongs to.
type RepositoryRef struct {
	FullName string `json:"full_name"`
	URL      string `json:"url"`
}

// ReviewSummary is the state of a single review on a pull request.
type ReviewSummary struct {
	State       string `json:"state"`
	AuthorLogin string `json:"author_login,omitempty"`
}

// Iteration is a dated work cycle of a project board.
// A partial iteration carries only its ID.
type Iteration struct {
	ID           string     `json:"id"`
	Title        *string    `json:"title"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	DurationDays *int       `json:"duration_days"`
}

// IsPartial reports whether only the ID is known.
func (it Iteration) IsPartial() bool {
	return it.Title == nil && it.StartDate == nil && it.EndDate == nil && it.DurationDays == nil
}

// Issue is a project item backed by a repository issue.
type Issue struct {
	ID        string        `json:"id"`
	Number    int           `json:"number"`
	Title     string        `json:"title"`
	URL       string        `json:"url"`
	State     string        `json:"state"`
	Body      string        `json:"body"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	ClosedAt  *time.Time    `json:"closed_at"`
	Author    Actor         `json:"author"`
	Assignees []Actor       `json:"assignees"`
	Labels    []Label       `json:"labels"`
	Repo      RepositoryRef `json:"repo"`
	Iteration *Iteration    `json:"iteration"`
	Parent    *Issue        `json:"parent"`
}

// PullRequest states reported by the GraphQL API.
const (
	StateOpen   = "OPEN"
	StateClosed = "CLOSED"
	StateMerged = "MERGED"
)

// PullRequest is a repository pull request, either loaded through a project
// item or directly from the repository.
type PullRequest struct {
	ID           string          `json:"id"`
	Number       int             `json:"number"`
	Title        string          `json:"title"`
	URL          string          `json:"url"`
	State        string          `json:"state"`
	Body         *string         `json:"body"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	ClosedAt     *time.Time      `json:"closed_at"`
	MergedAt     *time.Time      `json:"merged_at"`
	Merged       bool            `json:"merged"`
	Author       *Actor          `json:"author"`
	Assignees    []Actor         `json:"assignees"`
	Labels       []Label         `json:"labels"`
	Repo         RepositoryRef   `json:"repo"`
	BaseRef      string          `json:"base_ref"`
	HeadRef      string          `json:"head_ref"`
	Additions    int             `json:"additions"`
	Deletions    int             `json:"deletions"`
	ChangedFiles int             `json:"changed_files"`
	Reviews      []ReviewSummary `json:"reviews"`
	Iteration    *Iteration      `json:"iteration"`
}

// AuthorLogin returns the author's login or an empty string for ghost authors.
func (pr PullRequest) AuthorLogin() string {
	if pr.Author == nil {
		return ""
	}
	return pr.Author.Login
}
