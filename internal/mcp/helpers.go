package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github-projects-mcp/internal/errors"
	"github-projects-mcp/internal/github"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// MsgMissingToken is returned by every tool when no access token is configured.
const MsgMissingToken = "GITHUB_PAT is not configured"

func (s *Server) requireToken() error {
	if !s.cfg.HasToken() || s.client == nil {
		return apperrors.NewConfigurationError(MsgMissingToken)
	}
	return nil
}

func (s *Server) collectOptions(ctx context.Context, req *sdk.CallToolRequest) github.CollectOptions {
	return github.CollectOptions{
		MaxPages: s.cfg.MaxPages,
		OnPage: func(page int, cursor string) {
			log.Debug().Int("page", page).Str("cursor", cursor).Msg("Fetching page")
			s.notify(ctx, req, "Fetching page %d", page)
		},
	}
}

// notify sends a best-effort progress message to the calling client.
func (s *Server) notify(ctx context.Context, req *sdk.CallToolRequest, format string, args ...any) {
	if req == nil || req.Session == nil {
		return
	}
	err := req.Session.Log(ctx, &sdk.LoggingMessageParams{
		Level:  "info",
		Logger: ServerName,
		Data:   fmt.Sprintf(format, args...),
	})
	if err != nil {
		log.Debug().Err(err).Msg("Failed to deliver progress notification")
	}
}

func (s *Server) fail(tool string, err error) error {
	log.Error().Err(err).Str("tool", tool).Str("code", string(apperrors.CodeOf(err))).Msg("Tool call failed")
	return err
}

func textResult(text string) *sdk.CallToolResult {
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: text}},
	}
}

func jsonResult(data any) (*sdk.CallToolResult, any, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encoding result: %w", err)
	}
	return textResult(string(out)), nil, nil
}
