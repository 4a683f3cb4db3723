package mcp

import (
	"context"
	"net/http"
	"time"

	"github-projects-mcp/internal/config"
	"github-projects-mcp/internal/github"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "ghp-mcp"

// Server exposes the GitHub project and pull request tools over MCP.
type Server struct {
	cfg      *config.AppConfig
	client   github.Client
	verifier *github.Verifier
	now      func() time.Time

	srv *sdk.Server
}

// NewServer creates a new MCP server and registers every tool.
// client may be nil when no token is configured; tools then fail with a
// configuration error before touching the network.
func NewServer(cfg *config.AppConfig, client github.Client, verifier *github.Verifier, version string) *Server {
	if cfg == nil {
		cfg = &config.AppConfig{}
	}
	if verifier == nil {
		verifier = github.NewVerifier(cfg.APIURL)
	}
	s := &Server{
		cfg:      cfg,
		client:   client,
		verifier: verifier,
		now:      time.Now,
	}
	s.srv = sdk.NewServer(&sdk.Implementation{Name: ServerName, Version: version}, nil)
	s.registerTools()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *sdk.Server {
	return s.srv
}

// Start serves MCP over stdin/stdout until the client disconnects or ctx ends.
func (s *Server) Start(ctx context.Context) error {
	log.Info().Msg("MCP Server starting Stdio loop")
	return s.srv.Run(ctx, &sdk.StdioTransport{})
}

// Handler serves MCP over the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server {
		return s.srv
	}, nil)
}
