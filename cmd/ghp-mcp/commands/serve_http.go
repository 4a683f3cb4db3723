package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github-projects-mcp/internal/api"
	"github-projects-mcp/internal/github"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var httpAddr string

var serveHTTPCmd = &cobra.Command{
	Use:   "serve-http",
	Short: "Serve MCP over streamable HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.HTTP.Addr
		if httpAddr != "" {
			addr = httpAddr
		}
		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}

		server := newMCPServer()
		var source github.RepoPullRequestSource
		if c, err := github.NewClient(cfg.GitHub); err == nil {
			source = c
		}

		var verifier api.TokenVerifier
		if cfg.HTTP.RequireAuth {
			verifier = github.NewVerifier(cfg.APIURL)
		}
		router := api.SetupRoutes(api.NewHandler(cfg, source), server.Handler(), verifier)

		srv := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("addr", addr).Bool("auth", cfg.HTTP.RequireAuth).Msg("MCP HTTP server listening")
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			log.Info().Msg("Shutting down MCP HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	serveHTTPCmd.Flags().StringVar(&httpAddr, "addr", "", "listen address (default from MCP_HTTP_ADDR)")
	rootCmd.AddCommand(serveHTTPCmd)
}
