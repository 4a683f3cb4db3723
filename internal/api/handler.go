package api

import (
	"errors"
	"net/http"

	"github-projects-mcp/internal/config"
	apperrors "github-projects-mcp/internal/errors"
	"github-projects-mcp/internal/github"
	"github-projects-mcp/internal/report"

	"github.com/gin-gonic/gin"
)

// Handler handles API requests
type Handler struct {
	cfg    *config.AppConfig
	source github.RepoPullRequestSource
}

// NewHandler creates a new API handler. source may be nil when no token is
// configured; report requests then fail with a configuration error.
func NewHandler(cfg *config.AppConfig, source github.RepoPullRequestSource) *Handler {
	if cfg == nil {
		cfg = &config.AppConfig{}
	}
	return &Handler{cfg: cfg, source: source}
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GetRepoReport renders the analytics report of a repository
// GET /api/v1/repos/:owner/:name/report?since=&until=&title=&format=&author=&base_ref=
func (h *Handler) GetRepoReport(c *gin.Context) {
	if h.source == nil {
		respondError(c, apperrors.NewConfigurationError("GITHUB_PAT is not configured"))
		return
	}

	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, err)
		return
	}

	rep, err := report.Generate(c.Request.Context(), h.source, report.Request{
		Owner: c.Param("owner"),
		Name:  c.Param("name"),
		Filter: github.FilterInput{
			MergedAfter:  c.Query("since"),
			MergedBefore: c.Query("until"),
			Author:       c.Query("author"),
			BaseRef:      c.Query("base_ref"),
		},
		Title:         c.Query("title"),
		Format:        format,
		MermaidCharts: h.cfg.EnableMermaidCharts,
	}, report.Options{MaxPages: h.cfg.MaxPages})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, contentType(format), []byte(rep.Document))
}

func contentType(f report.Format) string {
	switch f {
	case report.FormatHTML:
		return "text/html; charset=utf-8"
	case report.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case report.FormatJSON:
		return "application/json; charset=utf-8"
	case report.FormatYAML:
		return "application/yaml; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// StatusFor maps an error code onto an HTTP status.
func StatusFor(code apperrors.ErrCode) int {
	switch code {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeNoData:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeUpstreamProtocol:
		return http.StatusBadGateway
	case apperrors.ErrCodeTransport:
		return http.StatusServiceUnavailable
	case apperrors.ErrCodePageLimit:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(StatusFor(appErr.Code), gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": err.Error(),
		},
	})
}
