package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github-projects-mcp/internal/github"
	"github-projects-mcp/internal/report"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

func (s *Server) handleGetProjectDetails(ctx context.Context, req *sdk.CallToolRequest, args ProjectArgs) (*sdk.CallToolResult, any, error) {
	if err := s.requireToken(); err != nil {
		return nil, nil, err
	}
	s.notify(ctx, req, "Fetching project %s/%d", args.Organization, args.ProjectNumber)

	raw, err := s.client.ProjectDetails(ctx, args.Organization, args.ProjectNumber)
	if err != nil {
		return nil, nil, s.fail("get_project_details", err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, nil, fmt.Errorf("formatting project details: %w", err)
	}
	return textResult(out.String()), nil, nil
}

func (s *Server) handleGetProjectIterations(ctx context.Context, req *sdk.CallToolRequest, args ProjectArgs) (*sdk.CallToolResult, any, error) {
	if err := s.requireToken(); err != nil {
		return nil, nil, err
	}
	s.notify(ctx, req, "Fetching iterations of project %s/%d", args.Organization, args.ProjectNumber)

	iterations, err := s.client.ProjectIterations(ctx, args.Organization, args.ProjectNumber)
	if err != nil {
		return nil, nil, s.fail("get_project_iterations", err)
	}
	s.notify(ctx, req, "Found %d iterations", len(iterations))
	return jsonResult(iterations)
}

func (s *Server) handleGetRepoIssues(ctx context.Context, req *sdk.CallToolRequest, args ProjectIssuesArgs) (*sdk.CallToolResult, any, error) {
	if err := s.requireToken(); err != nil {
		return nil, nil, err
	}
	filter, err := github.NewIssueFilter(args.filter())
	if err != nil {
		return nil, nil, err
	}

	issues, err := github.Collect(ctx,
		github.ProjectItemsFetcher(s.client, github.ItemIssues, args.Organization, args.ProjectNumber),
		github.DecodeIssueItem,
		filter.Match,
		s.collectOptions(ctx, req),
	)
	if err != nil {
		return nil, nil, s.fail("get_repo_issues", err)
	}
	s.notify(ctx, req, "Found %d matching issues", len(issues))
	return jsonResult(issues)
}

func (s *Server) handleGetProjectPRs(ctx context.Context, req *sdk.CallToolRequest, args ProjectPRsArgs) (*sdk.CallToolResult, any, error) {
	if err := s.requireToken(); err != nil {
		return nil, nil, err
	}
	filter, err := github.NewPRFilter(args.filter())
	if err != nil {
		return nil, nil, err
	}

	prs, err := github.Collect(ctx,
		github.ProjectItemsFetcher(s.client, github.ItemPullRequests, args.Organization, args.ProjectNumber),
		github.DecodePullRequestItem,
		filter.Match,
		s.collectOptions(ctx, req),
	)
	if err != nil {
		return nil, nil, s.fail("get_project_prs", err)
	}
	s.notify(ctx, req, "Found %d matching pull requests", len(prs))
	return jsonResult(prs)
}

func (s *Server) handleGetRepoPRs(ctx context.Context, req *sdk.CallToolRequest, args RepoPRsArgs) (*sdk.CallToolResult, any, error) {
	if err := s.requireToken(); err != nil {
		return nil, nil, err
	}
	filter, err := github.NewPRFilter(args.filter())
	if err != nil {
		return nil, nil, err
	}

	prs, err := github.Collect(ctx,
		github.RepoPullRequestsFetcher(s.client, args.Owner, args.Name),
		github.DecodePullRequestNode,
		filter.Match,
		s.collectOptions(ctx, req),
	)
	if err != nil {
		return nil, nil, s.fail("get_repo_prs", err)
	}
	s.notify(ctx, req, "Found %d matching pull requests", len(prs))
	return jsonResult(prs)
}

func (s *Server) handleGenerateReport(ctx context.Context, req *sdk.CallToolRequest, args ReportArgs) (*sdk.CallToolResult, any, error) {
	if err := s.requireToken(); err != nil {
		return nil, nil, err
	}
	format, err := report.ParseFormat(args.Format)
	if err != nil {
		return nil, nil, err
	}
	s.notify(ctx, req, "Generating %s report for %s/%s", format, args.Owner, args.Name)

	opts := s.collectOptions(ctx, req)
	rep, err := report.Generate(ctx, s.client, report.Request{
		Owner:         args.Owner,
		Name:          args.Name,
		Filter:        args.filter(),
		Title:         args.ReportTitle,
		Format:        format,
		MermaidCharts: s.cfg.EnableMermaidCharts,
	}, report.Options{
		MaxPages: opts.MaxPages,
		Now:      s.now,
		OnPage:   opts.OnPage,
	})
	if err != nil {
		return nil, nil, s.fail("generate_pr_analytics_report", err)
	}

	log.Info().
		Str("repo", args.Owner+"/"+args.Name).
		Int("prs", rep.Summary.Totals.TotalPRs).
		Int("contributors", rep.Summary.Totals.ActiveContributors).
		Msg("Analytics report generated")
	return textResult(rep.Document), nil, nil
}

func (s *Server) handleVerifyToken(ctx context.Context, req *sdk.CallToolRequest, _ VerifyTokenArgs) (*sdk.CallToolResult, any, error) {
	if err := s.requireToken(); err != nil {
		return nil, nil, err
	}
	identity, err := s.verifier.Verify(ctx, s.cfg.GitHub.Token)
	if err != nil {
		return nil, nil, s.fail("verify_github_token", err)
	}
	s.notify(ctx, req, "Token belongs to %s", identity.Login)
	return jsonResult(identity)
}
