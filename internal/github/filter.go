package github

import (
	"fmt"
	"regexp"
	"time"

	"github-projects-mcp/internal/datetime"
	apperrors "github-projects-mcp/internal/errors"
)

// FilterInput carries the raw, caller supplied filter criteria. Empty fields
// impose no constraint.
type FilterInput struct {
	Title         string
	State         string
	IterationID   string
	Author        string
	BaseRef       string
	MergedOnly    bool
	MergedAfter   string
	MergedBefore  string
	UpdatedAfter  string
	UpdatedBefore string
	CreatedAfter  string
	CreatedBefore string
}

// IssueFilter is the compound predicate applied to project issues.
type IssueFilter struct {
	Title         *regexp.Regexp
	State         string
	IterationID   string
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// PRFilter is the compound predicate applied to pull requests.
type PRFilter struct {
	Title         *regexp.Regexp
	State         string
	IterationID   string
	Author        string
	BaseRef       string
	MergedOnly    bool
	MergedAfter   *time.Time
	MergedBefore  *time.Time
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// NewIssueFilter validates and compiles in.
func NewIssueFilter(in FilterInput) (*IssueFilter, error) {
	f := &IssueFilter{State: in.State, IterationID: in.IterationID}

	var err error
	if f.Title, err = compileTitle(in.Title); err != nil {
		return nil, err
	}
	bounds := []struct {
		name string
		raw  string
		dst  **time.Time
	}{
		{"updated_after", in.UpdatedAfter, &f.UpdatedAfter},
		{"updated_before", in.UpdatedBefore, &f.UpdatedBefore},
		{"created_after", in.CreatedAfter, &f.CreatedAfter},
		{"created_before", in.CreatedBefore, &f.CreatedBefore},
	}
	for _, b := range bounds {
		if *b.dst, err = parseBound(b.name, b.raw); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// NewPRFilter validates and compiles in.
func NewPRFilter(in FilterInput) (*PRFilter, error) {
	f := &PRFilter{
		State:       in.State,
		IterationID: in.IterationID,
		Author:      in.Author,
		BaseRef:     in.BaseRef,
		MergedOnly:  in.MergedOnly,
	}

	var err error
	if f.Title, err = compileTitle(in.Title); err != nil {
		return nil, err
	}
	bounds := []struct {
		name string
		raw  string
		dst  **time.Time
	}{
		{"merged_after", in.MergedAfter, &f.MergedAfter},
		{"merged_before", in.MergedBefore, &f.MergedBefore},
		{"updated_after", in.UpdatedAfter, &f.UpdatedAfter},
		{"updated_before", in.UpdatedBefore, &f.UpdatedBefore},
		{"created_after", in.CreatedAfter, &f.CreatedAfter},
		{"created_before", in.CreatedBefore, &f.CreatedBefore},
	}
	for _, b := range bounds {
		if *b.dst, err = parseBound(b.name, b.raw); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Match reports whether issue satisfies every supplied criterion.
func (f *IssueFilter) Match(issue Issue) bool {
	if f == nil {
		return true
	}
	if f.Title != nil && !f.Title.MatchString(issue.Title) {
		return false
	}
	if f.IterationID != "" && (issue.Iteration == nil || issue.Iteration.ID != f.IterationID) {
		return false
	}
	if f.State != "" && issue.State != f.State {
		return false
	}
	if !withinLenient(&issue.UpdatedAt, f.UpdatedAfter, f.UpdatedBefore) {
		return false
	}
	return withinLenient(&issue.CreatedAt, f.CreatedAfter, f.CreatedBefore)
}

// Match reports whether pr satisfies every supplied criterion.
func (f *PRFilter) Match(pr PullRequest) bool {
	if f == nil {
		return true
	}
	if f.Title != nil && !f.Title.MatchString(pr.Title) {
		return false
	}
	if f.State != "" && pr.State != f.State {
		return false
	}
	if f.MergedOnly && !pr.Merged {
		return false
	}
	if f.IterationID != "" && (pr.Iteration == nil || pr.Iteration.ID != f.IterationID) {
		return false
	}
	if !withinStrict(pr.MergedAt, f.MergedAfter, f.MergedBefore) {
		return false
	}
	if !withinLenient(&pr.UpdatedAt, f.UpdatedAfter, f.UpdatedBefore) {
		return false
	}
	if !withinLenient(&pr.CreatedAt, f.CreatedAfter, f.CreatedBefore) {
		return false
	}
	if f.Author != "" && pr.AuthorLogin() != f.Author {
		return false
	}
	if f.BaseRef != "" && pr.BaseRef != f.BaseRef {
		return false
	}
	return true
}

// withinStrict applies inclusive bounds and rejects a missing timestamp
// whenever a bound is set. Used for merge times.
func withinStrict(ts, after, before *time.Time) bool {
	if after == nil && before == nil {
		return true
	}
	if ts == nil {
		return false
	}
	return withinLenient(ts, after, before)
}

// withinLenient applies inclusive bounds; a bound only excludes when both
// sides are present. Used for update and creation times.
func withinLenient(ts, after, before *time.Time) bool {
	if datetime.Before(ts, after) {
		return false
	}
	return !datetime.After(ts, before)
}

func compileTitle(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid title pattern %q", pattern), err)
	}
	return re, nil
}

func parseBound(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t := datetime.Parse(raw)
	if t == nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s: unrecognised date %q", name, raw), nil)
	}
	return t, nil
}
