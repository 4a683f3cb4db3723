package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github-projects-mcp/internal/config"
	apperrors "github-projects-mcp/internal/errors"
	"github-projects-mcp/internal/github"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// mockClient serves canned pages. Unimplemented methods panic through the
// embedded nil interface.
type mockClient struct {
	github.Client
	details    json.RawMessage
	iterations []github.Iteration
	itemPages  map[github.ItemKind][]github.Page
	repoPages  []github.Page
	err        error
	calls      int
}

func (m *mockClient) ProjectDetails(_ context.Context, org string, number int) (json.RawMessage, error) {
	m.calls++
	return m.details, m.err
}

func (m *mockClient) ProjectIterations(_ context.Context, org string, number int) ([]github.Iteration, error) {
	m.calls++
	return m.iterations, m.err
}

func (m *mockClient) ProjectItemsPage(_ context.Context, kind github.ItemKind, org string, number int, cursor string) (github.Page, error) {
	m.calls++
	if m.err != nil {
		return github.Page{}, m.err
	}
	return pageAt(m.itemPages[kind], cursor), nil
}

func (m *mockClient) RepoPullRequestsPage(_ context.Context, owner, name, cursor string) (github.Page, error) {
	m.calls++
	if m.err != nil {
		return github.Page{}, m.err
	}
	return pageAt(m.repoPages, cursor), nil
}

// pageAt resolves cursors of the form "c<N>" to the N-th page.
func pageAt(pages []github.Page, cursor string) github.Page {
	idx := 0
	if cursor != "" {
		fmt.Sscanf(cursor, "c%d", &idx)
	}
	p := pages[idx]
	p.HasNextPage = idx+1 < len(pages)
	p.EndCursor = fmt.Sprintf("c%d", idx+1)
	return p
}

func prJSON(n int, title, state, author, mergedAt string, additions int) string {
	merged := "null"
	if mergedAt != "" {
		merged = fmt.Sprintf("%q", mergedAt)
	}
	return fmt.Sprintf(`{"id":"PR_%d","number":%d,"title":%q,"state":%q,"merged":%t,
		"createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-05T00:00:00Z","mergedAt":%s,
		"author":{"login":%q},"baseRefName":"main","additions":%d,"deletions":1,"changedFiles":2}`,
		n, n, title, state, mergedAt != "", merged, author, additions)
}

func nodes(items ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(items))
	for i, it := range items {
		out[i] = json.RawMessage(it)
	}
	return out
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		GitHub:   github.Config{Token: "ghp_test"},
		MaxPages: 10,
	}
}

func newTestServer(client github.Client) *Server {
	s := NewServer(testConfig(), client, nil, "test")
	s.now = func() time.Time { return time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC) }
	return s
}

func resultText(t *testing.T, res *sdk.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	tc, ok := res.Content[0].(*sdk.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func TestHandlers_MissingTokenFailsBeforeNetwork(t *testing.T) {
	client := &mockClient{}
	s := NewServer(&config.AppConfig{}, client, nil, "test")
	ctx := context.Background()

	checks := map[string]func() error{
		"get_project_details": func() error {
			_, _, err := s.handleGetProjectDetails(ctx, nil, ProjectArgs{Organization: "acme", ProjectNumber: 1})
			return err
		},
		"get_project_iterations": func() error {
			_, _, err := s.handleGetProjectIterations(ctx, nil, ProjectArgs{Organization: "acme", ProjectNumber: 1})
			return err
		},
		"get_repo_issues": func() error {
			_, _, err := s.handleGetRepoIssues(ctx, nil, ProjectIssuesArgs{Organization: "acme", ProjectNumber: 1})
			return err
		},
		"get_project_prs": func() error {
			_, _, err := s.handleGetProjectPRs(ctx, nil, ProjectPRsArgs{Organization: "acme", ProjectNumber: 1})
			return err
		},
		"get_repo_prs": func() error {
			_, _, err := s.handleGetRepoPRs(ctx, nil, RepoPRsArgs{Owner: "acme", Name: "widgets"})
			return err
		},
		"generate_pr_analytics_report": func() error {
			_, _, err := s.handleGenerateReport(ctx, nil, ReportArgs{Owner: "acme", Name: "widgets"})
			return err
		},
		"verify_github_token": func() error {
			_, _, err := s.handleVerifyToken(ctx, nil, VerifyTokenArgs{})
			return err
		},
	}

	for name, call := range checks {
		if err := call(); !apperrors.Is(err, apperrors.ErrCodeConfiguration) {
			t.Errorf("%s: expected CONFIGURATION, got %v", name, err)
		}
	}
	if client.calls != 0 {
		t.Errorf("expected no remote calls, got %d", client.calls)
	}
}

func TestHandleGetRepoPRs_FiltersAcrossPages(t *testing.T) {
	client := &mockClient{repoPages: []github.Page{
		{Nodes: nodes(prJSON(1, "feat: a", "MERGED", "alice", "2025-01-10T00:00:00Z", 10), prJSON(2, "wip", "OPEN", "bob", "", 3))},
		{Nodes: nodes(prJSON(3, "fix: b", "MERGED", "alice", "2025-01-11T00:00:00Z", 4))},
	}}
	s := newTestServer(client)

	res, _, err := s.handleGetRepoPRs(context.Background(), nil, RepoPRsArgs{Owner: "acme", Name: "widgets", Author: "alice", MergedOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var prs []github.PullRequest
	if err := json.Unmarshal([]byte(resultText(t, res)), &prs); err != nil {
		t.Fatalf("result is not a JSON list: %v", err)
	}
	if len(prs) != 2 || prs[0].Number != 1 || prs[1].Number != 3 {
		t.Errorf("unexpected result: %+v", prs)
	}
	if client.calls != 2 {
		t.Errorf("expected 2 page fetches, got %d", client.calls)
	}
}

func TestHandleGetRepoPRs_EmptyIsJSONList(t *testing.T) {
	client := &mockClient{repoPages: []github.Page{{Nodes: nodes()}}}
	s := newTestServer(client)

	res, _, err := s.handleGetRepoPRs(context.Background(), nil, RepoPRsArgs{Owner: "acme", Name: "widgets"})
	if err != nil {
		t.Fatal(err)
	}
	if got := resultText(t, res); got != "[]" {
		t.Errorf("expected empty JSON list, got %q", got)
	}
}

func TestHandleGetRepoPRs_InvalidFilter(t *testing.T) {
	client := &mockClient{}
	s := newTestServer(client)

	_, _, err := s.handleGetRepoPRs(context.Background(), nil, RepoPRsArgs{Owner: "acme", Name: "widgets", MergedAfter: "someday"})
	if !apperrors.Is(err, apperrors.ErrCodeValidation) {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
	if client.calls != 0 {
		t.Error("invalid filters must be rejected before fetching")
	}
}

func TestHandleGetRepoPRs_UpstreamFailure(t *testing.T) {
	upstream := apperrors.NewUpstreamProtocolError("repo_pull_requests: Could not resolve to a Repository", nil)
	s := newTestServer(&mockClient{err: upstream})

	res, _, err := s.handleGetRepoPRs(context.Background(), nil, RepoPRsArgs{Owner: "acme", Name: "missing"})
	if res != nil {
		t.Error("no partial result expected")
	}
	if !apperrors.Is(err, apperrors.ErrCodeUpstreamProtocol) {
		t.Fatalf("expected UPSTREAM_PROTOCOL, got %v", err)
	}
}

func TestHandleGetRepoIssues(t *testing.T) {
	issue := func(n int, title, iteration string) string {
		return fmt.Sprintf(`{"content":{"id":"I_%d","number":%d,"title":%q,"state":"OPEN",
			"createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-02T00:00:00Z"},
			"fieldValues":{"nodes":[{"iterationId":%q,"field":{"name":"Iteration"}}]}}`, n, n, title, iteration)
	}
	client := &mockClient{itemPages: map[github.ItemKind][]github.Page{
		github.ItemIssues: {
			{Nodes: nodes(issue(1, "Bug: crash", "it-1"), `{"content":{}}`, issue(2, "Bug: leak", "it-2"))},
		},
	}}
	s := newTestServer(client)

	res, _, err := s.handleGetRepoIssues(context.Background(), nil, ProjectIssuesArgs{Organization: "acme", ProjectNumber: 3, Title: "Bug", IterationID: "it-2"})
	if err != nil {
		t.Fatal(err)
	}
	var issues []github.Issue
	if err := json.Unmarshal([]byte(resultText(t, res)), &issues); err != nil {
		t.Fatal(err)
	}
	if len(issues) != 1 || issues[0].Title != "Bug: leak" {
		t.Errorf("unexpected issues: %+v", issues)
	}
}

func TestHandleGetProjectPRs_CarriesIteration(t *testing.T) {
	item := fmt.Sprintf(`{"content":%s,"fieldValues":{"nodes":[{},{"iterationId":"it-9"}]}}`,
		prJSON(5, "feat: x", "MERGED", "alice", "2025-01-10T00:00:00Z", 1))
	client := &mockClient{itemPages: map[github.ItemKind][]github.Page{
		github.ItemPullRequests: {{Nodes: nodes(item)}},
	}}
	s := newTestServer(client)

	res, _, err := s.handleGetProjectPRs(context.Background(), nil, ProjectPRsArgs{Organization: "acme", ProjectNumber: 3, IterationID: "it-9"})
	if err != nil {
		t.Fatal(err)
	}
	var prs []github.PullRequest
	if err := json.Unmarshal([]byte(resultText(t, res)), &prs); err != nil {
		t.Fatal(err)
	}
	if len(prs) != 1 || prs[0].Iteration == nil || prs[0].Iteration.ID != "it-9" {
		t.Errorf("unexpected prs: %+v", prs)
	}
}

func TestHandleGetProjectDetails_Indented(t *testing.T) {
	client := &mockClient{details: json.RawMessage(`{"organization":{"projectV2":{"title":"Roadmap"}}}`)}
	s := newTestServer(client)

	res, _, err := s.handleGetProjectDetails(context.Background(), nil, ProjectArgs{Organization: "acme", ProjectNumber: 1})
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "\n") || !strings.Contains(text, `"title": "Roadmap"`) {
		t.Errorf("expected indented JSON, got %s", text)
	}
}

func TestHandleGetProjectIterations(t *testing.T) {
	title := "Sprint 1"
	client := &mockClient{iterations: []github.Iteration{{ID: "it-1", Title: &title}}}
	s := newTestServer(client)

	res, _, err := s.handleGetProjectIterations(context.Background(), nil, ProjectArgs{Organization: "acme", ProjectNumber: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, res), `"Sprint 1"`) {
		t.Errorf("iteration missing: %s", resultText(t, res))
	}
}

func TestHandleGenerateReport(t *testing.T) {
	client := &mockClient{repoPages: []github.Page{
		{Nodes: nodes(
			prJSON(1, "feat: dashboards", "MERGED", "alice", "2025-01-10T00:00:00Z", 1200),
			prJSON(2, "fix: typo", "MERGED", "bob", "2025-01-12T00:00:00Z", 3),
			prJSON(3, "chore: ancient", "MERGED", "bob", "2024-06-01T00:00:00Z", 50),
		)},
	}}
	s := newTestServer(client)

	res, _, err := s.handleGenerateReport(context.Background(), nil, ReportArgs{Owner: "acme", Name: "widgets", ReportTitle: "Widgets Q1"})
	if err != nil {
		t.Fatal(err)
	}
	html := resultText(t, res)
	if !strings.Contains(html, "<html") || !strings.Contains(html, "Widgets Q1") {
		t.Error("expected an HTML document with the requested title")
	}
	if !strings.Contains(html, "1,203") {
		t.Error("expected total additions of the 30 day window with a thousands separator")
	}

	res, _, err = s.handleGenerateReport(context.Background(), nil, ReportArgs{Owner: "acme", Name: "widgets", Format: "markdown"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(resultText(t, res), "# Pull Request Analytics Report") {
		t.Errorf("expected markdown with default title, got %.80s", resultText(t, res))
	}
}

func TestHandleGenerateReport_NoData(t *testing.T) {
	client := &mockClient{repoPages: []github.Page{{Nodes: nodes(prJSON(1, "wip", "OPEN", "bob", "", 1))}}}
	s := newTestServer(client)

	_, _, err := s.handleGenerateReport(context.Background(), nil, ReportArgs{Owner: "acme", Name: "widgets"})
	if !apperrors.Is(err, apperrors.ErrCodeNoData) {
		t.Fatalf("expected NO_DATA, got %v", err)
	}
}

func TestHandleGenerateReport_BadFormat(t *testing.T) {
	s := newTestServer(&mockClient{})
	_, _, err := s.handleGenerateReport(context.Background(), nil, ReportArgs{Owner: "acme", Name: "widgets", Format: "pdf"})
	if !apperrors.Is(err, apperrors.ErrCodeValidation) {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestHandleGetRepoPRs_PageLimit(t *testing.T) {
	pages := make([]github.Page, 5)
	for i := range pages {
		pages[i] = github.Page{Nodes: nodes()}
	}
	client := &mockClient{repoPages: pages}
	s := newTestServer(client)
	s.cfg.MaxPages = 2

	_, _, err := s.handleGetRepoPRs(context.Background(), nil, RepoPRsArgs{Owner: "acme", Name: "widgets"})
	if !apperrors.Is(err, apperrors.ErrCodePageLimit) {
		t.Fatalf("expected PAGE_LIMIT, got %v", err)
	}
}
