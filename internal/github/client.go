package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github-projects-mcp/internal/errors"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/rs/zerolog/log"
)

// ItemKind selects which content type a project items query returns.
type ItemKind int

const (
	ItemIssues ItemKind = iota
	ItemPullRequests
)

func (k ItemKind) String() string {
	if k == ItemPullRequests {
		return "pull_requests"
	}
	return "issues"
}

// RepoPullRequestSource serves pages of direct repository pull request nodes.
type RepoPullRequestSource interface {
	RepoPullRequestsPage(ctx context.Context, owner, name, cursor string) (Page, error)
}

// Client is the interface for reading GitHub projects and repositories.
type Client interface {
	RepoPullRequestSource
	ProjectDetails(ctx context.Context, org string, number int) (json.RawMessage, error)
	ProjectIterations(ctx context.Context, org string, number int) ([]Iteration, error)
	ProjectItemsPage(ctx context.Context, kind ItemKind, org string, number int, cursor string) (Page, error)
}

// Config holds the authentication and connection settings for GitHub.
type Config struct {
	Token   string
	Host    string
	Timeout time.Duration

	// Transport overrides the HTTP round tripper (tests).
	Transport http.RoundTripper
}

type graphQLClient struct {
	gql *api.GraphQLClient
}

// NewClient creates a GraphQL backed client.
func NewClient(cfg Config) (Client, error) {
	if cfg.Token == "" {
		return nil, apperrors.NewConfigurationError("no GitHub Personal Access Token provided, this must be set via GITHUB_PAT")
	}
	if cfg.Host == "" {
		cfg.Host = "github.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	gql, err := api.NewGraphQLClient(api.ClientOptions{
		AuthToken: cfg.Token,
		Host:      cfg.Host,
		Timeout:   cfg.Timeout,
		Transport: cfg.Transport,
		Headers:   map[string]string{"Accept": "application/vnd.github+json"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GitHub GraphQL client: %w", err)
	}
	return &graphQLClient{gql: gql}, nil
}

func (c *graphQLClient) do(ctx context.Context, op, query string, vars map[string]interface{}, out interface{}) error {
	start := time.Now()
	err := c.gql.DoWithContext(ctx, query, vars, out)
	log.Debug().Str("op", op).Dur("elapsed", time.Since(start)).Err(err).Msg("GraphQL request")
	if err != nil {
		return classifyError(op, err)
	}
	return nil
}

// classifyError maps go-gh failures onto the error taxonomy.
func classifyError(op string, err error) error {
	var gqlErr *api.GraphQLError
	if errors.As(err, &gqlErr) {
		msgs := make([]string, 0, len(gqlErr.Errors))
		for _, e := range gqlErr.Errors {
			msgs = append(msgs, e.Message)
		}
		return apperrors.NewUpstreamProtocolError(fmt.Sprintf("%s: GitHub API error: %s", op, strings.Join(msgs, "; ")), err)
	}

	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
			return &apperrors.AppError{
				Code:    apperrors.ErrCodeUnauthorized,
				Message: fmt.Sprintf("%s: GitHub rejected the token (HTTP %d)", op, httpErr.StatusCode),
				Err:     err,
			}
		}
		return apperrors.NewUpstreamProtocolError(fmt.Sprintf("%s: GitHub returned HTTP %d", op, httpErr.StatusCode), err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTransportError(op+": request cancelled", err)
	}
	return apperrors.NewTransportError(fmt.Sprintf("%s: failed to reach GitHub", op), err)
}

func cursorVar(cursor string) interface{} {
	if cursor == "" {
		return nil
	}
	return cursor
}

func (c *graphQLClient) ProjectDetails(ctx context.Context, org string, number int) (json.RawMessage, error) {
	var data json.RawMessage
	vars := map[string]interface{}{"org": org, "number": number}
	if err := c.do(ctx, "project_details", projectDetailsQuery, vars, &data); err != nil {
		return nil, err
	}

	var probe struct {
		Organization *struct {
			ProjectV2 json.RawMessage `json:"projectV2"`
		} `json:"organization"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, apperrors.NewUpstreamProtocolError("project_details: unexpected response shape", err)
	}
	if probe.Organization == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("organization %q", org))
	}
	if isNull(probe.Organization.ProjectV2) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("project %s/%d", org, number))
	}
	return data, nil
}

func (c *graphQLClient) ProjectIterations(ctx context.Context, org string, number int) ([]Iteration, error) {
	var data struct {
		Organization *struct {
			ProjectV2 *struct {
				Fields struct {
					Nodes []IterationFieldDTO `json:"nodes"`
				} `json:"fields"`
			} `json:"projectV2"`
		} `json:"organization"`
	}
	vars := map[string]interface{}{"org": org, "number": number}
	if err := c.do(ctx, "project_iterations", projectIterationsQuery, vars, &data); err != nil {
		return nil, err
	}
	if data.Organization == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("organization %q", org))
	}
	if data.Organization.ProjectV2 == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("project %s/%d", org, number))
	}
	return IterationsFromFields(data.Organization.ProjectV2.Fields.Nodes), nil
}

// IterationsFromFields maps the iterations of every field named "Iteration".
func IterationsFromFields(fields []IterationFieldDTO) []Iteration {
	iterations := make([]Iteration, 0)
	for _, field := range fields {
		if field.Name != iterationFieldName || field.Configuration == nil {
			continue
		}
		for _, it := range field.Configuration.Iterations {
			iterations = append(iterations, MapIteration(it))
		}
	}
	return iterations
}

func (c *graphQLClient) ProjectItemsPage(ctx context.Context, kind ItemKind, org string, number int, cursor string) (Page, error) {
	query := projectIssuesQuery
	if kind == ItemPullRequests {
		query = projectPullRequestsQuery
	}

	var data struct {
		Organization *struct {
			ProjectV2 *struct {
				Items ConnectionDTO `json:"items"`
			} `json:"projectV2"`
		} `json:"organization"`
	}
	vars := map[string]interface{}{"org": org, "number": number, "after": cursorVar(cursor)}
	if err := c.do(ctx, "project_"+kind.String(), query, vars, &data); err != nil {
		return Page{}, err
	}
	if data.Organization == nil {
		return Page{}, apperrors.NewNotFoundError(fmt.Sprintf("organization %q", org))
	}
	if data.Organization.ProjectV2 == nil {
		return Page{}, apperrors.NewNotFoundError(fmt.Sprintf("project %s/%d", org, number))
	}
	return data.Organization.ProjectV2.Items.ToPage(), nil
}

func (c *graphQLClient) RepoPullRequestsPage(ctx context.Context, owner, name, cursor string) (Page, error) {
	var data struct {
		Repository *struct {
			PullRequests ConnectionDTO `json:"pullRequests"`
		} `json:"repository"`
	}
	vars := map[string]interface{}{"owner": owner, "name": name, "after": cursorVar(cursor)}
	if err := c.do(ctx, "repo_pull_requests", repoPullRequestsQuery, vars, &data); err != nil {
		return Page{}, err
	}
	if data.Repository == nil {
		return Page{}, apperrors.NewNotFoundError(fmt.Sprintf("repository %s/%s", owner, name))
	}
	return data.Repository.PullRequests.ToPage(), nil
}

// ProjectItemsFetcher binds a project items query to the PageFetcher contract.
func ProjectItemsFetcher(c Client, kind ItemKind, org string, number int) PageFetcher {
	return func(ctx context.Context, cursor string) (Page, error) {
		return c.ProjectItemsPage(ctx, kind, org, number, cursor)
	}
}

// RepoPullRequestsFetcher binds a repository pull request query to the PageFetcher contract.
func RepoPullRequestsFetcher(src RepoPullRequestSource, owner, name string) PageFetcher {
	return func(ctx context.Context, cursor string) (Page, error) {
		return src.RepoPullRequestsPage(ctx, owner, name, cursor)
	}
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}
