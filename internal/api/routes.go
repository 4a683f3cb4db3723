// Package api serves the MCP streamable HTTP transport and a small REST
// surface for rendered reports.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the HTTP routes. When verifier is non-nil every route
// except /health requires a valid bearer token.
func SetupRoutes(handler *Handler, mcpHandler http.Handler, verifier TokenVerifier) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(Recovery())
	router.Use(RequestID())
	router.Use(Logger())
	router.Use(CORS())

	// Health check
	router.GET("/health", handler.HealthCheck)

	protected := router.Group("/")
	if verifier != nil {
		protected.Use(BearerAuth(verifier))
	}
	{
		protected.Any("/mcp", gin.WrapH(mcpHandler))

		v1 := protected.Group("/api/v1")
		v1.GET("/repos/:owner/:name/report", handler.GetRepoReport)
	}

	return router
}
