package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github-projects-mcp/internal/errors"

	"github.com/google/go-github/v57/github"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	MsgInvalidTokenFormat = "Invalid GitHub Personal Access Token format"
	MsgInvalidToken       = "Invalid or expired GitHub Personal Access Token"
)

// verifyTimeout bounds a shared lookup, which outlives any single caller's context.
const verifyTimeout = 30 * time.Second

var tokenPrefixes = []string{"github_pat_", "ghp_", "gho_"}

// TokenIdentity is the result of a successful token verification.
type TokenIdentity struct {
	Valid bool   `json:"valid"`
	Login string `json:"login"`
}

// Verifier checks personal access tokens against the GitHub REST API.
// Concurrent checks of the same token share one request.
type Verifier struct {
	// BaseURL overrides the REST endpoint (GitHub Enterprise, tests).
	BaseURL string
	// HTTPClient is the base client the OAuth2 transport wraps.
	HTTPClient *http.Client

	group singleflight.Group
}

// NewVerifier creates a Verifier for the given REST base URL; empty means api.github.com.
func NewVerifier(baseURL string) *Verifier {
	return &Verifier{BaseURL: baseURL}
}

// Verify checks the token's format, then resolves the authenticated user.
func (v *Verifier) Verify(ctx context.Context, token string) (*TokenIdentity, error) {
	if !HasTokenPrefix(token) {
		return nil, apperrors.NewUnauthorizedError(MsgInvalidTokenFormat)
	}

	ch := v.group.DoChan(token, func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), verifyTimeout)
		defer cancel()
		return v.lookup(lctx, token)
	})

	select {
	case <-ctx.Done():
		return nil, apperrors.NewTransportError("Failed to verify GitHub token", ctx.Err())
	case res := <-ch:
		if res.Shared {
			log.Debug().Msg("Token verification shared with concurrent caller")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*TokenIdentity), nil
	}
}

func (v *Verifier) lookup(ctx context.Context, token string) (*TokenIdentity, error) {
	if v.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, v.HTTPClient)
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	if v.BaseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(v.BaseURL, "/") + "/")
		if err != nil {
			return nil, apperrors.NewConfigurationError(fmt.Sprintf("invalid GitHub API URL %q", v.BaseURL))
		}
		client.BaseURL = u
	}

	user, resp, err := client.Users.Get(ctx, "")
	if resp != nil && resp.StatusCode != http.StatusOK {
		log.Debug().Int("status", resp.StatusCode).Msg("Token rejected by GitHub")
		return nil, apperrors.NewUnauthorizedError(MsgInvalidToken)
	}
	if err != nil {
		return nil, apperrors.NewTransportError("Failed to verify GitHub token", err)
	}
	return &TokenIdentity{Valid: true, Login: user.GetLogin()}, nil
}

// HasTokenPrefix reports whether token looks like a GitHub personal or OAuth token.
func HasTokenPrefix(token string) bool {
	for _, p := range tokenPrefixes {
		if strings.HasPrefix(token, p) {
			return true
		}
	}
	return false
}
