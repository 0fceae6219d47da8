// Package config loads and validates application configuration from
// environment variables, plus an optional YAML settings file for the
// display and bucketing constants that deployments tune.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// SourceURL is where the meeting data lives: either a JSON feed (an
	// array of row objects) or a Google Sheet export URL. Required.
	SourceURL string

	// SourceTimezone is the IANA zone applied to rows that do not carry
	// their own. Defaults to "America/New_York".
	SourceTimezone string

	// RefreshCron is an optional cron expression for scheduled full
	// re-loads of the source. Empty disables scheduled refresh; the data
	// set then lives for the life of the process.
	RefreshCron string

	// SettingsFile is the path to an optional YAML settings file
	// (see Settings). Empty means built-in defaults.
	SettingsFile string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		SourceTimezone: getEnv("SOURCE_TIMEZONE", "America/New_York"),
		RefreshCron:    os.Getenv("SOURCE_REFRESH_CRON"),
		SettingsFile:   os.Getenv("SETTINGS_FILE"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CORSOrigins:    splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	var missing []string

	cfg.SourceURL = os.Getenv("SOURCE_URL")
	if cfg.SourceURL == "" {
		missing = append(missing, "SOURCE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

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
