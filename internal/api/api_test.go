package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github-projects-mcp/internal/config"
	apperrors "github-projects-mcp/internal/errors"
	"github-projects-mcp/internal/github"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	valid map[string]string
	calls int
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (*github.TokenIdentity, error) {
	f.calls++
	login, ok := f.valid[token]
	if !ok {
		return nil, apperrors.NewUnauthorizedError(github.MsgInvalidToken)
	}
	return &github.TokenIdentity{Valid: true, Login: login}, nil
}

type singlePageSource struct {
	nodes []json.RawMessage
	err   error
}

func (s singlePageSource) RepoPullRequestsPage(context.Context, string, string, string) (github.Page, error) {
	if s.err != nil {
		return github.Page{}, s.err
	}
	return github.Page{Nodes: s.nodes}, nil
}

func mergedPR(n int, mergedAt string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"id":"PR_%d","number":%d,"title":"feat: %d","state":"MERGED","merged":true,
		"createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-02T00:00:00Z","mergedAt":%q,
		"author":{"login":"alice"},"additions":10,"deletions":2,"changedFiles":1}`, n, n, n, mergedAt))
}

var mcpStub = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("mcp"))
})

func TestHealthCheck(t *testing.T) {
	router := SetupRoutes(NewHandler(nil, nil), mcpStub, &fakeVerifier{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestID_PropagatesCallerID(t *testing.T) {
	router := SetupRoutes(NewHandler(nil, nil), mcpStub, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestBearerAuth(t *testing.T) {
	verifier := &fakeVerifier{valid: map[string]string{"ghp_good": "octocat"}}
	router := SetupRoutes(NewHandler(nil, nil), mcpStub, verifier)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic ghp_good", http.StatusUnauthorized},
		{"rejected token", "Bearer ghp_bad", http.StatusUnauthorized},
		{"accepted token", "Bearer ghp_good", http.StatusAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{}`))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestBearerAuth_ErrorBody(t *testing.T) {
	router := SetupRoutes(NewHandler(nil, nil), mcpStub, &fakeVerifier{})

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer ghp_unknown")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
	assert.Equal(t, github.MsgInvalidToken, body.Error.Message)
}

func TestMCPRoute_OpenWithoutVerifier(t *testing.T) {
	router := SetupRoutes(NewHandler(nil, nil), mcpStub, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "mcp", w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	router := SetupRoutes(NewHandler(nil, nil), mcpStub, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/mcp", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Mcp-Session-Id")
}

func TestGetRepoReport(t *testing.T) {
	src := singlePageSource{nodes: []json.RawMessage{mergedPR(1, "2024-03-05T10:00:00Z"), mergedPR(2, "2024-03-06T10:00:00Z")}}
	router := SetupRoutes(NewHandler(&config.AppConfig{}, src), mcpStub, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/repos/acme/widgets/report?since=2024-03-01&until=2024-03-31&format=markdown&title=March", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.True(t, strings.HasPrefix(w.Body.String(), "# March"))
}

func TestGetRepoReport_Errors(t *testing.T) {
	tests := []struct {
		name       string
		handler    *Handler
		query      string
		wantStatus int
	}{
		{"no token", NewHandler(nil, nil), "", http.StatusInternalServerError},
		{"bad format", NewHandler(nil, singlePageSource{}), "?format=pdf", http.StatusBadRequest},
		{"bad date", NewHandler(nil, singlePageSource{}), "?since=yesterday-ish", http.StatusBadRequest},
		{"no data", NewHandler(nil, singlePageSource{}), "?since=2024-01-01&until=2024-01-31", http.StatusUnprocessableEntity},
		{"missing repo", NewHandler(nil, singlePageSource{err: apperrors.NewNotFoundError("repository acme/widgets")}), "", http.StatusNotFound},
		{"network", NewHandler(nil, singlePageSource{err: apperrors.NewTransportError("dial", nil)}), "", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := SetupRoutes(tt.handler, mcpStub, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/repos/acme/widgets/report"+tt.query, nil))
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}
