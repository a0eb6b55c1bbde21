// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultMaxBodyBytes is the request body cap when MAX_BODY_BYTES is unset (1 MiB).
const DefaultMaxBodyBytes int64 = 1 << 20

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// JWTSecret is the HMAC key for bearer tokens. Required.
	JWTSecret string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MaxBodyBytes caps request bodies. Defaults to DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// MigrateOnStart applies pending goose migrations before serving.
	MigrateOnStart bool
}

// LoadDotEnv reads KEY=value pairs from the given files (".env" when none are
// named) into the process environment. Variables already set win, and
// missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config.LoadDotEnv: %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first malformed value.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	maxBody, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", strconv.FormatInt(DefaultMaxBodyBytes, 10)), 10, 64)
	if err != nil || maxBody <= 0 {
		return Config{}, fmt.Errorf("MAX_BODY_BYTES must be a positive integer, got %q", os.Getenv("MAX_BODY_BYTES"))
	}
	cfg.MaxBodyBytes = maxBody

	migrate, err := strconv.ParseBool(getEnv("MIGRATE_ON_START", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("MIGRATE_ON_START must be a boolean, got %q", os.Getenv("MIGRATE_ON_START"))
	}
	cfg.MigrateOnStart = migrate

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
