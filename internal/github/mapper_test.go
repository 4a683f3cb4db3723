package github

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	apperrors "github-projects-mcp/internal/errors"
)

const prContentJSON = `{
  "id": "PR_1",
  "number": 42,
  "title": "feat: add widgets",
  "url": "https://github.com/acme/app/pull/42",
  "state": "MERGED",
  "body": "adds widgets",
  "createdAt": "2025-01-01T09:00:00Z",
  "updatedAt": "2025-01-03T10:00:00Z",
  "closedAt": "2025-01-02T11:00:00Z",
  "mergedAt": "2025-01-02T11:00:00Z",
  "merged": true,
  "author": {"login": "alice", "url": "https://github.com/alice"},
  "assignees": {"nodes": [{"login": "bob", "url": "https://github.com/bob"}]},
  "labels": {"nodes": [{"name": "enhancement", "color": "a2eeef"}]},
  "repository": {"nameWithOwner": "acme/app", "url": "https://github.com/acme/app"},
  "baseRefName": "main",
  "headRefName": "feature/widgets",
  "additions": 120,
  "deletions": 30,
  "changedFiles": 7,
  "reviews": {"nodes": [{"state": "APPROVED", "author": {"login": "carol"}}, {"state": "COMMENTED", "author": null}]}
}`

func envelope(content string, fieldValues string) json.RawMessage {
	return json.RawMessage(`{"content": ` + content + `, "fieldValues": {"nodes": ` + fieldValues + `}}`)
}

func TestMapPullRequest_PathsAgree(t *testing.T) {
	direct, ok, err := DecodePullRequestNode(json.RawMessage(prContentJSON))
	if err != nil || !ok {
		t.Fatalf("direct decode failed: ok=%v err=%v", ok, err)
	}

	enveloped, ok, err := DecodePullRequestItem(envelope(prContentJSON, `[{}, {"iterationId": "it-7", "field": {"id": "F1", "name": "Sprint"}}]`))
	if err != nil || !ok {
		t.Fatalf("enveloped decode failed: ok=%v err=%v", ok, err)
	}

	if enveloped.Iteration == nil || enveloped.Iteration.ID != "it-7" {
		t.Fatalf("expected partial iteration it-7, got %+v", enveloped.Iteration)
	}
	if !enveloped.Iteration.IsPartial() {
		t.Errorf("expected partial iteration, got %+v", enveloped.Iteration)
	}
	if direct.Iteration != nil {
		t.Errorf("direct path must not carry an iteration, got %+v", direct.Iteration)
	}

	// Apart from the iteration, both paths produce the same record.
	enveloped.Iteration = nil
	a, _ := json.Marshal(direct)
	b, _ := json.Marshal(enveloped)
	if string(a) != string(b) {
		t.Errorf("paths disagree:\n direct:    %s\n enveloped: %s", a, b)
	}

	if direct.Number != 42 || direct.Additions != 120 || direct.Deletions != 30 || direct.ChangedFiles != 7 {
		t.Errorf("unexpected counters: %+v", direct)
	}
	if direct.AuthorLogin() != "alice" || direct.Repo.FullName != "acme/app" || direct.BaseRef != "main" {
		t.Errorf("unexpected fields: %+v", direct)
	}
	if len(direct.Reviews) != 2 || direct.Reviews[0].AuthorLogin != "carol" || direct.Reviews[1].AuthorLogin != "" {
		t.Errorf("unexpected reviews: %+v", direct.Reviews)
	}
	if direct.MergedAt == nil || !direct.MergedAt.Equal(time.Date(2025, 1, 2, 11, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected mergedAt: %v", direct.MergedAt)
	}
}

func TestMapPullRequest_MissingUpdatedAt(t *testing.T) {
	content := strings.Replace(prContentJSON, `"updatedAt": "2025-01-03T10:00:00Z",`, ``, 1)

	_, _, directErr := DecodePullRequestNode(json.RawMessage(content))
	_, _, envErr := DecodePullRequestItem(envelope(content, `[]`))

	for name, err := range map[string]error{"direct": directErr, "enveloped": envErr} {
		if !apperrors.Is(err, apperrors.ErrCodeValidation) {
			t.Errorf("%s: expected validation error, got %v", name, err)
			continue
		}
		if !strings.Contains(err.Error(), MsgMissingTimestamps) {
			t.Errorf("%s: unexpected message %q", name, err.Error())
		}
	}
	if directErr.Error() != envErr.Error() {
		t.Errorf("paths should fail identically: %q vs %q", directErr, envErr)
	}
}

func TestMapPullRequest_UnparseableCreatedAt(t *testing.T) {
	content := strings.Replace(prContentJSON, `"2025-01-01T09:00:00Z"`, `"soon"`, 1)
	if _, _, err := DecodePullRequestNode(json.RawMessage(content)); !apperrors.Is(err, apperrors.ErrCodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestMapPullRequest_PermissiveDefaults(t *testing.T) {
	pr, ok, err := DecodePullRequestNode(json.RawMessage(`{"createdAt": "2025-01-01", "updatedAt": "2025-01-01"}`))
	if err != nil || !ok {
		t.Fatalf("decode failed: ok=%v err=%v", ok, err)
	}
	if pr.Author != nil || pr.Body != nil || pr.MergedAt != nil || pr.Merged {
		t.Errorf("expected empty optionals, got %+v", pr)
	}
	if pr.Assignees == nil || pr.Labels == nil || pr.Reviews == nil {
		t.Error("list fields must default to empty, not nil")
	}
}

func TestDecodeItems_SkipEmptyContent(t *testing.T) {
	for _, raw := range []json.RawMessage{
		envelope(`{}`, `[]`),
		envelope(`null`, `[]`),
		json.RawMessage(`{"fieldValues": {"nodes": []}}`),
	} {
		if _, ok, err := DecodePullRequestItem(raw); ok || err != nil {
			t.Errorf("expected skip for %s, got ok=%v err=%v", raw, ok, err)
		}
		if _, ok, err := DecodeIssueItem(raw); ok || err != nil {
			t.Errorf("expected skip for %s, got ok=%v err=%v", raw, ok, err)
		}
	}
	if _, ok, err := DecodePullRequestNode(json.RawMessage(`null`)); ok || err != nil {
		t.Errorf("expected skip for null node, got ok=%v err=%v", ok, err)
	}
}

const issueContentJSON = `{
  "id": "I_1",
  "number": 7,
  "title": "[EPIC] Billing",
  "url": "https://github.com/acme/app/issues/7",
  "state": "OPEN",
  "body": "epic body",
  "createdAt": "2025-02-01T08:00:00Z",
  "updatedAt": "2025-02-02T08:00:00+02:00",
  "closedAt": null,
  "author": {"login": "dora", "url": "https://github.com/dora"},
  "assignees": {"nodes": []},
  "labels": {"nodes": [{"name": "epic", "color": "000000"}]},
  "repository": {"nameWithOwner": "acme/app", "url": "https://github.com/acme/app"},
  "parent": {
    "id": "I_0",
    "title": "Roadmap",
    "state": "OPEN",
    "createdAt": "2025-01-01",
    "updatedAt": "2025-01-05"
  }
}`

func TestMapIssue(t *testing.T) {
	fv := `[
	  {"iterationId": "it-other", "field": {"id": "F2", "name": "Release"}},
	  {"iterationId": "it-1", "field": {"id": "F1", "name": "Iteration"}}
	]`
	issue, ok, err := DecodeIssueItem(envelope(issueContentJSON, fv))
	if err != nil || !ok {
		t.Fatalf("decode failed: ok=%v err=%v", ok, err)
	}

	if issue.Iteration == nil || issue.Iteration.ID != "it-1" {
		t.Errorf("expected iteration it-1 from the Iteration field, got %+v", issue.Iteration)
	}
	if issue.Author.Login != "dora" || len(issue.Labels) != 1 || issue.Repo.FullName != "acme/app" {
		t.Errorf("unexpected fields: %+v", issue)
	}
	if issue.ClosedAt != nil {
		t.Errorf("expected nil closedAt, got %v", issue.ClosedAt)
	}
	if !issue.UpdatedAt.Equal(time.Date(2025, 2, 2, 6, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected updatedAt: %v", issue.UpdatedAt)
	}
	if issue.Parent == nil || issue.Parent.ID != "I_0" || issue.Parent.Title != "Roadmap" {
		t.Fatalf("expected parent I_0, got %+v", issue.Parent)
	}
	if issue.Parent.Parent != nil || issue.Parent.Iteration != nil {
		t.Errorf("parent chain should terminate: %+v", issue.Parent)
	}
}

func TestMapIssue_NoIterationField(t *testing.T) {
	issue, _, err := DecodeIssueItem(envelope(issueContentJSON, `[{"iterationId": "it-9", "field": {"name": "Sprint"}}, {}]`))
	if err != nil {
		t.Fatal(err)
	}
	if issue.Iteration != nil {
		t.Errorf("only the field named Iteration links an issue, got %+v", issue.Iteration)
	}
}

func TestMapIssue_ParentDepthCap(t *testing.T) {
	leaf := IssueContentDTO{ID: "leaf"}
	created, updated := "2025-01-01", "2025-01-02"
	node := &leaf
	node.CreatedAt, node.UpdatedAt = &created, &updated
	for i := 0; i < maxParentDepth+4; i++ {
		node.Parent = &IssueContentDTO{ID: "p", CreatedAt: &created, UpdatedAt: &updated}
		node = node.Parent
	}

	issue, err := mapIssueContent(leaf, 0)
	if err != nil {
		t.Fatal(err)
	}
	depth := 0
	for p := issue.Parent; p != nil; p = p.Parent {
		depth++
	}
	if depth != maxParentDepth-1 {
		t.Errorf("expected parent chain of %d, got %d", maxParentDepth-1, depth)
	}
}

func TestMapIssue_ParentMissingTimestamps(t *testing.T) {
	content := strings.Replace(issueContentJSON, `"updatedAt": "2025-01-05"`, `"updatedAt": null`, 1)
	if _, _, err := DecodeIssueItem(envelope(content, `[]`)); !apperrors.Is(err, apperrors.ErrCodeValidation) {
		t.Errorf("expected validation error from parent, got %v", err)
	}
}

func TestMapIteration_Inference(t *testing.T) {
	str := func(s string) *string { return &s }
	num := func(n int) *int { return &n }
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name         string
		in           IterationDTO
		wantEnd      *time.Time
		wantDuration *int
	}{
		{
			name:         "end from start and duration",
			in:           IterationDTO{ID: "a", StartDate: str("2025-03-03"), Duration: num(14)},
			wantEnd:      ptr(day(17)),
			wantDuration: num(14),
		},
		{
			name:         "duration from start and end",
			in:           IterationDTO{ID: "b", StartDate: str("2025-03-03"), EndDate: str("2025-03-10")},
			wantEnd:      ptr(day(10)),
			wantDuration: num(7),
		},
		{
			name:         "partial day floors",
			in:           IterationDTO{ID: "c", StartDate: str("2025-03-03T00:00:00Z"), EndDate: str("2025-03-05T23:00:00Z")},
			wantEnd:      ptr(time.Date(2025, 3, 5, 23, 0, 0, 0, time.UTC)),
			wantDuration: num(2),
		},
		{
			name:         "explicit values kept",
			in:           IterationDTO{ID: "d", StartDate: str("2025-03-03"), EndDate: str("2025-03-10"), Duration: num(5)},
			wantEnd:      ptr(day(10)),
			wantDuration: num(5),
		},
		{
			name:         "zero duration counts as missing",
			in:           IterationDTO{ID: "e", StartDate: str("2025-03-03"), EndDate: str("2025-03-06"), Duration: num(0)},
			wantEnd:      ptr(day(6)),
			wantDuration: num(3),
		},
		{
			name:         "nothing to infer",
			in:           IterationDTO{ID: "f", Duration: num(14)},
			wantEnd:      nil,
			wantDuration: num(14),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := MapIteration(tt.in)
			if it.ID != tt.in.ID {
				t.Errorf("id = %q", it.ID)
			}
			switch {
			case tt.wantEnd == nil && it.EndDate != nil:
				t.Errorf("expected no end date, got %v", it.EndDate)
			case tt.wantEnd != nil && (it.EndDate == nil || !it.EndDate.Equal(*tt.wantEnd)):
				t.Errorf("end = %v, want %v", it.EndDate, tt.wantEnd)
			}
			if it.DurationDays == nil || *it.DurationDays != *tt.wantDuration {
				t.Errorf("duration = %v, want %d", it.DurationDays, *tt.wantDuration)
			}
		})
	}
}

func TestIterationsFromFields(t *testing.T) {
	var fields []IterationFieldDTO
	raw := `[
	  {},
	  {"id": "F0", "name": "Status"},
	  {"id": "F1", "name": "Iteration", "configuration": {"iterations": [
	    {"id": "i1", "title": "Sprint 1", "startDate": "2025-01-06", "duration": 14},
	    {"id": "i2", "title": "Sprint 2", "startDate": "2025-01-20", "duration": 14}
	  ]}}
	]`
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		t.Fatal(err)
	}
	its := IterationsFromFields(fields)
	if len(its) != 2 {
		t.Fatalf("expected 2 iterations, got %d", len(its))
	}
	if its[1].Title == nil || *its[1].Title != "Sprint 2" {
		t.Errorf("unexpected title: %v", its[1].Title)
	}
	if its[0].EndDate == nil || !its[0].EndDate.Equal(time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end date: %v", its[0].EndDate)
	}
}

func ptr[T any](v T) *T { return &v }
