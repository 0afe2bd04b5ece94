// Package config loads server configuration from environment variables.
//
// main.go stays minimal: it calls config.Load() and hands the result to the
// server. All defaulting, parsing, and "is this set?" logic lives here, and
// a .env file in the working directory is honoured for local development —
// godotenv loads it into the process environment before we read anything,
// but real environment variables always win.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	Port   int
	DBPath string

	// JWTSecret signs session tokens. Required — there are no
	// unauthenticated features worth starting without it.
	JWTSecret string

	// GitHub OAuth. Optional; when the client ID is empty the OAuth routes
	// are not registered and email/password is the only way in.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	// AI gateway (OpenAI-compatible). Required for mock tests and
	// interviews.
	AIBaseURL string
	AIAPIKey  string
	AIModel   string

	// UploadDir is the root for stored resume files.
	UploadDir string

	// SandboxEnabled turns the Docker practice sandbox on. Off by default;
	// the run endpoint answers 503 when off or when Docker is unreachable.
	SandboxEnabled bool
}

// Load reads configuration, applying defaults for everything optional.
// The only hard requirement is JWT_SECRET.
func Load() (*Config, error) {
	// Ignore the error: a missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               8080,
		DBPath:             "data/preptracker.db",
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  os.Getenv("GITHUB_CALLBACK_URL"),
		AIBaseURL:          os.Getenv("AI_BASE_URL"),
		AIAPIKey:           os.Getenv("AI_API_KEY"),
		AIModel:            os.Getenv("AI_MODEL"),
		UploadDir:          "data/uploads",
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("config: invalid PORT value %q", portStr)
		}
		cfg.Port = port
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := os.Getenv("SANDBOX_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid SANDBOX_ENABLED value %q", v)
		}
		cfg.SandboxEnabled = enabled
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET must be set (try: openssl rand -hex 32)")
	}
	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}
	if cfg.AIModel == "" {
		cfg.AIModel = "gpt-4o-mini"
	}

	return cfg, nil
}
