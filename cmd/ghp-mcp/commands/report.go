package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	apperrors "github-projects-mcp/internal/errors"
	"github-projects-mcp/internal/github"
	"github-projects-mcp/internal/report"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentReports bounds how many repositories are fetched at once.
const maxConcurrentReports = 4

var reportOpts struct {
	since    string
	until    string
	title    string
	format   string
	outDir   string
	open     bool
	fixtures string
}

var reportCmd = &cobra.Command{
	Use:   "report OWNER/NAME...",
	Short: "Render pull request analytics reports for one or more repositories",
	Long: `Fetches the merged pull requests of each repository within the window
(default: the last 30 days), aggregates them and renders one report per repository.
File formats are written to --out; the table format is printed to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(reportOpts.format)
		if err != nil {
			return err
		}

		repos := make([][2]string, 0, len(args))
		for _, arg := range args {
			owner, name, ok := strings.Cut(arg, "/")
			if !ok || owner == "" || name == "" {
				return apperrors.NewValidationError(fmt.Sprintf("repository %q must be OWNER/NAME", arg), nil)
			}
			repos = append(repos, [2]string{owner, name})
		}

		source, err := reportSource()
		if err != nil {
			return err
		}

		outDir := reportOpts.outDir
		if outDir == "" {
			outDir = cfg.ReportDir
		}
		if format != report.FormatTable {
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("creating report directory: %w", err)
			}
		}

		var (
			mu      sync.Mutex
			written []string
		)
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(maxConcurrentReports)
		for _, repo := range repos {
			owner, name := repo[0], repo[1]
			g.Go(func() error {
				rep, err := report.Generate(ctx, source, report.Request{
					Owner: owner,
					Name:  name,
					Filter: github.FilterInput{
						MergedAfter:  reportOpts.since,
						MergedBefore: reportOpts.until,
					},
					Title:         reportOpts.title,
					Format:        format,
					MermaidCharts: cfg.EnableMermaidCharts,
				}, report.Options{
					MaxPages: cfg.MaxPages,
					OnPage: func(page int, cursor string) {
						log.Debug().Str("repo", owner+"/"+name).Int("page", page).Msg("Fetching page")
					},
				})
				if err != nil {
					return fmt.Errorf("%s/%s: %w", owner, name, err)
				}

				if format == report.FormatTable {
					mu.Lock()
					defer mu.Unlock()
					_, err := fmt.Fprintln(cmd.OutOrStdout(), rep.Document)
					return err
				}

				path := filepath.Join(outDir, report.FileName(owner, name, format))
				if err := os.WriteFile(path, []byte(rep.Document), 0644); err != nil {
					return fmt.Errorf("writing report: %w", err)
				}
				log.Info().Str("repo", owner+"/"+name).Str("path", path).Int("prs", rep.Summary.Totals.TotalPRs).Msg("Report written")

				mu.Lock()
				written = append(written, path)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for _, path := range written {
			fmt.Fprintln(cmd.OutOrStdout(), path)
			if reportOpts.open {
				if err := browser.OpenFile(path); err != nil {
					log.Warn().Err(err).Str("path", path).Msg("Failed to open report")
				}
			}
		}
		return nil
	},
}

// reportSource picks offline fixtures when --fixtures is set, the GraphQL API otherwise.
func reportSource() (github.RepoPullRequestSource, error) {
	if reportOpts.fixtures != "" {
		log.Info().Str("dir", reportOpts.fixtures).Msg("Reading pull requests from fixtures")
		return github.FixtureSource{Dir: reportOpts.fixtures}, nil
	}
	return github.NewClient(cfg.GitHub)
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&reportOpts.since, "since", "", "start of the merge window (default: 30 days ago)")
	f.StringVar(&reportOpts.until, "until", "", "end of the merge window (default: now)")
	f.StringVar(&reportOpts.title, "title", report.DefaultTitle, "report title")
	f.StringVarP(&reportOpts.format, "format", "f", string(report.FormatHTML), "html, markdown, table, json or yaml")
	f.StringVarP(&reportOpts.outDir, "out", "o", "", "output directory (default: DATA_PATH/reports)")
	f.BoolVar(&reportOpts.open, "open", false, "open written reports with the system viewer")
	f.StringVar(&reportOpts.fixtures, "fixtures", "", "read pull request pages from a mockgen fixture directory instead of GitHub")
	rootCmd.AddCommand(reportCmd)
}
