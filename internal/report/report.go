// Package report runs the fetch, analyze and render pipeline behind the
// analytics tool and the report command.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "github-projects-mcp/internal/errors"
	"github-projects-mcp/internal/github"
	"github-projects-mcp/internal/stats"
	"github-projects-mcp/internal/visuals"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultTitle is used when the caller supplies no report title.
	DefaultTitle = "Pull Request Analytics Report"
	// DefaultLookback is the merge window applied when no lower bound is given.
	DefaultLookback = 30 * 24 * time.Hour
)

// Format selects the rendering of a summary.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{FormatHTML, FormatMarkdown, FormatTable, FormatJSON, FormatYAML}

// ParseFormat resolves a format name; empty means HTML.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatHTML, nil
	}
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "md" {
		return FormatMarkdown, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", apperrors.NewValidationError(fmt.Sprintf("unsupported report format %q", s), nil)
}

// Extension is the file extension used when a report is written to disk.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatTable:
		return "txt"
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "html"
	}
}

// Request describes one repository report.
type Request struct {
	Owner         string
	Name          string
	Filter        github.FilterInput
	Title         string
	Format        Format
	MermaidCharts bool
}

// Options carries the pipeline's tunables.
type Options struct {
	MaxPages int
	// Now anchors the default merge window. Nil means time.Now.
	Now func() time.Time
	// OnPage is forwarded to the fetch loop for progress narration.
	OnPage func(page int, cursor string)
}

// Report is a rendered analytics report.
type Report struct {
	Owner    string
	Name     string
	Format   Format
	Summary  *stats.Summary
	Document string
}

// Generate fetches the repository's pull requests, aggregates the merged ones
// inside the window and renders the summary.
func Generate(ctx context.Context, src github.RepoPullRequestSource, req Request, opts Options) (*Report, error) {
	// 1. Resolve defaults
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	filterIn := WithDefaultWindow(req.Filter, now())
	title := req.Title
	if title == "" {
		title = DefaultTitle
	}
	format := req.Format
	if format == "" {
		format = FormatHTML
	}

	// 2. Build the filter
	filter, err := github.NewPRFilter(filterIn)
	if err != nil {
		return nil, err
	}

	// 3. Fetch and filter every page
	prs, err := github.Collect(ctx,
		github.RepoPullRequestsFetcher(src, req.Owner, req.Name),
		github.DecodePullRequestNode,
		filter.Match,
		github.CollectOptions{MaxPages: opts.MaxPages, OnPage: opts.OnPage},
	)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("repo", req.Owner+"/"+req.Name).Int("matched", len(prs)).Msg("Pull requests collected for report")

	// 4. Aggregate
	summary, err := stats.Analyze(prs, filter.MergedAfter, filter.MergedBefore)
	if err != nil {
		return nil, err
	}

	// 5. Render
	doc, err := Render(summary, title, format, req.MermaidCharts)
	if err != nil {
		return nil, err
	}

	return &Report{
		Owner:    req.Owner,
		Name:     req.Name,
		Format:   format,
		Summary:  summary,
		Document: doc,
	}, nil
}

// WithDefaultWindow fills missing merge bounds with [now-30d, now].
func WithDefaultWindow(in github.FilterInput, now time.Time) github.FilterInput {
	if in.MergedAfter == "" {
		in.MergedAfter = now.Add(-DefaultLookback).UTC().Format(time.RFC3339Nano)
	}
	if in.MergedBefore == "" {
		in.MergedBefore = now.UTC().Format(time.RFC3339Nano)
	}
	return in
}

// Render turns a summary into a document of the given format.
func Render(s *stats.Summary, title string, format Format, withCharts bool) (string, error) {
	switch format {
	case FormatHTML, "":
		return visuals.RenderHTML(s, title)
	case FormatMarkdown:
		return visuals.RenderMarkdown(s, title, withCharts), nil
	case FormatTable:
		var buf bytes.Buffer
		visuals.RenderTable(&buf, s, title)
		return buf.String(), nil
	case FormatJSON:
		out, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding summary: %w", err)
		}
		return string(out), nil
	case FormatYAML:
		out, err := yaml.Marshal(s)
		if err != nil {
			return "", fmt.Errorf("encoding summary: %w", err)
		}
		return string(out), nil
	default:
		return "", apperrors.NewValidationError(fmt.Sprintf("unsupported report format %q", format), nil)
	}
}

// FileName builds a unique file name for a repository report.
func FileName(owner, name string, format Format) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s-%s.%s", owner, name, id, format.Extension())
}
