package mcp

import (
	"encoding/json"
	"fmt"

	"github-projects-mcp/internal/github"
	"github-projects-mcp/internal/report"

	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProjectArgs identifies an organization-owned Projects v2 board.
type ProjectArgs struct {
	Organization  string `json:"organization" jsonschema:"GitHub organization login that owns the project"`
	ProjectNumber int    `json:"project_number" jsonschema:"Project number as shown in the project URL"`
}

// ProjectIssuesArgs filters the issues of a project.
type ProjectIssuesArgs struct {
	Organization  string `json:"organization" jsonschema:"GitHub organization login that owns the project"`
	ProjectNumber int    `json:"project_number" jsonschema:"Project number as shown in the project URL"`
	Title         string `json:"title,omitempty" jsonschema:"Regular expression matched against the start of the issue title"`
	State         string `json:"state,omitempty" jsonschema:"Issue state"`
	IterationID   string `json:"iteration_id,omitempty" jsonschema:"Only issues assigned to this iteration ID"`
	UpdatedAfter  string `json:"updated_after,omitempty" jsonschema:"Only issues updated on or after this date (ISO-8601)"`
	UpdatedBefore string `json:"updated_before,omitempty" jsonschema:"Only issues updated on or before this date (ISO-8601)"`
	CreatedAfter  string `json:"created_after,omitempty" jsonschema:"Only issues created on or after this date (ISO-8601)"`
	CreatedBefore string `json:"created_before,omitempty" jsonschema:"Only issues created on or before this date (ISO-8601)"`
}

func (a ProjectIssuesArgs) filter() github.FilterInput {
	return github.FilterInput{
		Title:         a.Title,
		State:         a.State,
		IterationID:   a.IterationID,
		UpdatedAfter:  a.UpdatedAfter,
		UpdatedBefore: a.UpdatedBefore,
		CreatedAfter:  a.CreatedAfter,
		CreatedBefore: a.CreatedBefore,
	}
}

// ProjectPRsArgs filters the pull requests attached to a project.
type ProjectPRsArgs struct {
	Organization  string `json:"organization" jsonschema:"GitHub organization login that owns the project"`
	ProjectNumber int    `json:"project_number" jsonschema:"Project number as shown in the project URL"`
	Title         string `json:"title,omitempty" jsonschema:"Regular expression matched against the start of the pull request title"`
	State         string `json:"state,omitempty" jsonschema:"Pull request state"`
	IterationID   string `json:"iteration_id,omitempty" jsonschema:"Only pull requests assigned to this iteration ID"`
	MergedAfter   string `json:"merged_after,omitempty" jsonschema:"Only pull requests merged on or after this date (ISO-8601)"`
	MergedBefore  string `json:"merged_before,omitempty" jsonschema:"Only pull requests merged on or before this date (ISO-8601)"`
	UpdatedAfter  string `json:"updated_after,omitempty" jsonschema:"Only pull requests updated on or after this date (ISO-8601)"`
	UpdatedBefore string `json:"updated_before,omitempty" jsonschema:"Only pull requests updated on or before this date (ISO-8601)"`
	Author        string `json:"author,omitempty" jsonschema:"Author login"`
	MergedOnly    bool   `json:"merged_only,omitempty" jsonschema:"Only merged pull requests"`
}

func (a ProjectPRsArgs) filter() github.FilterInput {
	return github.FilterInput{
		Title:         a.Title,
		State:         a.State,
		IterationID:   a.IterationID,
		MergedAfter:   a.MergedAfter,
		MergedBefore:  a.MergedBefore,
		UpdatedAfter:  a.UpdatedAfter,
		UpdatedBefore: a.UpdatedBefore,
		Author:        a.Author,
		MergedOnly:    a.MergedOnly,
	}
}

// RepoPRsArgs filters the pull requests of a repository.
type RepoPRsArgs struct {
	Owner         string `json:"owner" jsonschema:"Repository owner (user or organization login)"`
	Name          string `json:"name" jsonschema:"Repository name"`
	Title         string `json:"title,omitempty" jsonschema:"Regular expression matched against the start of the pull request title"`
	State         string `json:"state,omitempty" jsonschema:"Pull request state"`
	MergedAfter   string `json:"merged_after,omitempty" jsonschema:"Only pull requests merged on or after this date (ISO-8601)"`
	MergedBefore  string `json:"merged_before,omitempty" jsonschema:"Only pull requests merged on or before this date (ISO-8601)"`
	UpdatedAfter  string `json:"updated_after,omitempty" jsonschema:"Only pull requests updated on or after this date (ISO-8601)"`
	UpdatedBefore string `json:"updated_before,omitempty" jsonschema:"Only pull requests updated on or before this date (ISO-8601)"`
	CreatedAfter  string `json:"created_after,omitempty" jsonschema:"Only pull requests created on or after this date (ISO-8601)"`
	CreatedBefore string `json:"created_before,omitempty" jsonschema:"Only pull requests created on or before this date (ISO-8601)"`
	Author        string `json:"author,omitempty" jsonschema:"Author login"`
	MergedOnly    bool   `json:"merged_only,omitempty" jsonschema:"Only merged pull requests"`
	BaseRef       string `json:"base_ref,omitempty" jsonschema:"Base branch name"`
}

func (a RepoPRsArgs) filter() github.FilterInput {
	return github.FilterInput{
		Title:         a.Title,
		State:         a.State,
		MergedAfter:   a.MergedAfter,
		MergedBefore:  a.MergedBefore,
		UpdatedAfter:  a.UpdatedAfter,
		UpdatedBefore: a.UpdatedBefore,
		CreatedAfter:  a.CreatedAfter,
		CreatedBefore: a.CreatedBefore,
		Author:        a.Author,
		MergedOnly:    a.MergedOnly,
		BaseRef:       a.BaseRef,
	}
}

// ReportArgs selects the pull requests of a repository report.
type ReportArgs struct {
	Owner         string `json:"owner" jsonschema:"Repository owner (user or organization login)"`
	Name          string `json:"name" jsonschema:"Repository name"`
	Title         string `json:"title,omitempty" jsonschema:"Regular expression matched against the start of the pull request title"`
	State         string `json:"state,omitempty" jsonschema:"Pull request state"`
	MergedAfter   string `json:"merged_after,omitempty" jsonschema:"Start of the analysed merge window (ISO-8601). Default: 30 days ago"`
	MergedBefore  string `json:"merged_before,omitempty" jsonschema:"End of the analysed merge window (ISO-8601). Default: now"`
	UpdatedAfter  string `json:"updated_after,omitempty" jsonschema:"Only pull requests updated on or after this date (ISO-8601)"`
	UpdatedBefore string `json:"updated_before,omitempty" jsonschema:"Only pull requests updated on or before this date (ISO-8601)"`
	CreatedAfter  string `json:"created_after,omitempty" jsonschema:"Only pull requests created on or after this date (ISO-8601)"`
	CreatedBefore string `json:"created_before,omitempty" jsonschema:"Only pull requests created on or before this date (ISO-8601)"`
	Author        string `json:"author,omitempty" jsonschema:"Author login"`
	MergedOnly    bool   `json:"merged_only,omitempty" jsonschema:"Only merged pull requests"`
	BaseRef       string `json:"base_ref,omitempty" jsonschema:"Base branch name"`
	ReportTitle   string `json:"report_title,omitempty" jsonschema:"Heading of the rendered report"`
	Format        string `json:"format,omitempty" jsonschema:"Output format of the report"`
}

func (a ReportArgs) filter() github.FilterInput {
	return RepoPRsArgs{
		Owner:         a.Owner,
		Name:          a.Name,
		Title:         a.Title,
		State:         a.State,
		MergedAfter:   a.MergedAfter,
		MergedBefore:  a.MergedBefore,
		UpdatedAfter:  a.UpdatedAfter,
		UpdatedBefore: a.UpdatedBefore,
		CreatedAfter:  a.CreatedAfter,
		CreatedBefore: a.CreatedBefore,
		Author:        a.Author,
		MergedOnly:    a.MergedOnly,
		BaseRef:       a.BaseRef,
	}.filter()
}

// VerifyTokenArgs takes no input; the configured token is checked.
type VerifyTokenArgs struct{}

var (
	issueStates = []any{github.StateOpen, github.StateClosed}
	prStates    = []any{github.StateOpen, github.StateClosed, github.StateMerged}
)

func (s *Server) registerTools() {
	sdk.AddTool(s.srv, &sdk.Tool{
		Name:        "get_project_details",
		Description: "Get the metadata of a GitHub Projects v2 board (title, description, fields, item count) owned by an organization.",
		InputSchema: schemaFor[ProjectArgs](nil),
	}, s.handleGetProjectDetails)

	sdk.AddTool(s.srv, &sdk.Tool{
		Name:        "get_project_iterations",
		Description: "List the iterations of a project's iteration fields, with start date, end date and duration filled in.",
		InputSchema: schemaFor[ProjectArgs](nil),
	}, s.handleGetProjectIterations)

	sdk.AddTool(s.srv, &sdk.Tool{
		Name:        "get_repo_issues",
		Description: "List the issues of a project, optionally filtered by title prefix pattern, state, iteration and update/creation dates.",
		InputSchema: schemaFor[ProjectIssuesArgs](func(sc *jsonschema.Schema) {
			setEnum(sc, "state", issueStates...)
		}),
	}, s.handleGetRepoIssues)

	sdk.AddTool(s.srv, &sdk.Tool{
		Name:        "get_project_prs",
		Description: "List the pull requests attached to a project, with their iteration, optionally filtered by title, state, iteration, author and merge/update dates.",
		InputSchema: schemaFor[ProjectPRsArgs](func(sc *jsonschema.Schema) {
			setEnum(sc, "state", prStates...)
		}),
	}, s.handleGetProjectPRs)

	sdk.AddTool(s.srv, &sdk.Tool{
		Name:        "get_repo_prs",
		Description: "List the pull requests of a repository, optionally filtered by title, state, author, base branch and merge/update/creation dates.",
		InputSchema: schemaFor[RepoPRsArgs](func(sc *jsonschema.Schema) {
			setEnum(sc, "state", prStates...)
		}),
	}, s.handleGetRepoPRs)

	sdk.AddTool(s.srv, &sdk.Tool{
		Name: "generate_pr_analytics_report",
		Description: "Analyze the pull requests of a repository merged within a window (default: the last 30 days) and render a report " +
			"with daily additions/deletions, contributor breakdown, PR-type distribution and key insights. " +
			"Fails when no pull request was merged in the window.",
		InputSchema: schemaFor[ReportArgs](func(sc *jsonschema.Schema) {
			setEnum(sc, "state", prStates...)
			setEnum(sc, "format", string(report.FormatHTML), string(report.FormatMarkdown))
			setDefault(sc, "format", string(report.FormatHTML))
			setDefault(sc, "report_title", report.DefaultTitle)
		}),
	}, s.handleGenerateReport)

	sdk.AddTool(s.srv, &sdk.Tool{
		Name:        "verify_github_token",
		Description: "Check that the configured GitHub personal access token is well-formed and accepted by GitHub.",
		InputSchema: schemaFor[VerifyTokenArgs](nil),
	}, s.handleVerifyToken)
}

// schemaFor infers the input schema of T and lets the caller refine it.
func schemaFor[T any](refine func(*jsonschema.Schema)) *jsonschema.Schema {
	sc, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("inferring input schema for %T: %v", *new(T), err))
	}
	if refine != nil {
		refine(sc)
	}
	return sc
}

func setEnum(sc *jsonschema.Schema, prop string, values ...any) {
	if p, ok := sc.Properties[prop]; ok {
		p.Enum = values
	}
}

func setDefault(sc *jsonschema.Schema, prop string, value any) {
	p, ok := sc.Properties[prop]
	if !ok {
		return
	}
	if raw, err := json.Marshal(value); err == nil {
		p.Default = raw
	}
}
