package commands

import (
	"context"
	"fmt"
	"os"

	"github-projects-mcp/internal/config"
	"github-projects-mcp/internal/github"
	"github-projects-mcp/internal/logging"
	"github-projects-mcp/internal/mcp"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "ghp-mcp",
	Short: "GHP-MCP is an MCP Server for GitHub Projects and pull request analytics",
	Long: `An MCP Server that exposes GitHub Projects v2 issues, iterations and pull requests
as tools, and turns a repository's merged pull requests into an analytics report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Error().Err(err).Msg("Failed to load configuration")
			return err
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("GHP-MCP starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return newMCPServer().Start(cmd.Context())
	},
}

// newMCPServer wires the GraphQL client into the tool server. A missing
// token leaves the client nil so tools report the configuration error.
func newMCPServer() *mcp.Server {
	var client github.Client
	if cfg.HasToken() {
		c, err := github.NewClient(cfg.GitHub)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create GitHub client")
		} else {
			client = c
		}
	}
	return mcp.NewServer(cfg, client, github.NewVerifier(cfg.APIURL), Version)
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
