// Package config resolves runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvAppEnv         = "APP_ENV"
	EnvAPIBaseURL     = "API_BASE_URL"
	EnvPlagwiseURL    = "PLAGWISE_API_URL"
	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvPlagwiseEmail  = "PLAGWISE_EMAIL"
	EnvPlagwiseAPIKey = "PLAGWISE_API_KEY"
)

// Per-environment base URL defaults. Production talks to the deployed backend
// directly; development expects a local instance.
const (
	devAPIBaseURL  = "http://localhost:3000/api"
	prodAPIBaseURL = "https://article-backend.vercel.app/api"

	defaultPlagwiseURL = "https://plagwise.com/api"

	defaultTimeout = 5 * time.Second
)

// Vendor account defaults baked into the deployed client. Overridable via env;
// see DESIGN.md for the secret-handling caveat.
const (
	defaultPlagwiseEmail  = "753818188@qq.com"
	defaultPlagwiseAPIKey = "QAJhXdh1AhdA7lbQhp79dnYh35pMsw8542"
)

// Config is the resolved runtime configuration.
type Config struct {
	Environment    string // "development" or "production"
	APIBaseURL     string
	PlagwiseURL    string
	RequestTimeout time.Duration

	PlagwiseEmail  string
	PlagwiseAPIKey string
}

// Load reads a .env file if one is present, then resolves configuration from
// the environment. Unset values fall back to per-environment defaults.
func Load() *Config {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	env := getenv(EnvAppEnv, "development")

	apiURL := devAPIBaseURL
	if env == "production" {
		apiURL = prodAPIBaseURL
	}

	timeout := defaultTimeout
	if v := os.Getenv(EnvRequestTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			timeout = d
		}
	}

	return &Config{
		Environment:    env,
		APIBaseURL:     getenv(EnvAPIBaseURL, apiURL),
		PlagwiseURL:    getenv(EnvPlagwiseURL, defaultPlagwiseURL),
		RequestTimeout: timeout,
		PlagwiseEmail:  getenv(EnvPlagwiseEmail, defaultPlagwiseEmail),
		PlagwiseAPIKey: getenv(EnvPlagwiseAPIKey, defaultPlagwiseAPIKey),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
