package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github-projects-mcp/internal/github"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// DefaultMaxPages is the pagination safety cap when GITHUB_MAX_PAGES is unset.
const DefaultMaxPages = 1000

// AppConfig holds the complete application configuration.
type AppConfig struct {
	GitHub github.Config
	// APIURL overrides the REST endpoint used for token verification.
	APIURL   string
	MaxPages int

	DataPath            string
	LogDir              string
	ReportDir           string
	EnableMermaidCharts bool

	HTTP HTTPConfig
}

// HTTPConfig configures the streamable HTTP transport.
type HTTPConfig struct {
	Addr        string
	RequireAuth bool
}

// HasToken reports whether a GitHub token is configured.
func (c *AppConfig) HasToken() bool {
	return c != nil && c.GitHub.Token != ""
}

// Load loads the configuration from .env files and environment variables.
// A missing token is not an error here; tools refuse to run without one.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve data paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	reportDir := filepath.Join(dataPath, "reports")

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}

	timeoutSecs := getEnvInt("GITHUB_REQUEST_TIMEOUT_SECONDS", 30)

	cfg := &AppConfig{
		GitHub: github.Config{
			Token:   getEnv("GITHUB_PAT", ""),
			Host:    getEnv("GITHUB_HOST", "github.com"),
			Timeout: time.Duration(timeoutSecs) * time.Second,
		},
		APIURL:              getEnv("GITHUB_API_URL", ""),
		MaxPages:            getEnvInt("GITHUB_MAX_PAGES", DefaultMaxPages),
		DataPath:            dataPath,
		LogDir:              logDir,
		ReportDir:           reportDir,
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
		HTTP: HTTPConfig{
			Addr:        getEnv("MCP_HTTP_ADDR", ":8080"),
			RequireAuth: getEnvBool("MCP_HTTP_REQUIRE_AUTH", false),
		},
	}

	if !cfg.HasToken() {
		log.Warn().Msg("GITHUB_PAT is not set; every tool call will fail until it is configured")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil && intVal >= 0 {
			return intVal
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring invalid integer setting")
	}
	return fallback
}
