// ABOUTME: Configuration loader for the booking CLI
// ABOUTME: Reads an optional .env file, then environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is used when BOOKING_API_URL is not set
const DefaultAPIURL = "http://localhost:8080/api"

type Config struct {
	// Backend
	APIURL      string
	HTTPTimeout time.Duration // per-request transport timeout (default 30s)

	// Local state
	ConfigDir string // holds state.json and debug.log

	// Logging
	LogLevel  string // debug, info, warn, error (default: info)
	LogFormat string // text, json (default: text)
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set are not overridden. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// Load builds the configuration from the environment.
// It is meant to be called once at startup; values are not re-read later.
func Load() (*Config, error) {
	cfg := &Config{
		APIURL:      NormalizeAPIURL(getEnv("BOOKING_API_URL", DefaultAPIURL)),
		HTTPTimeout: time.Duration(getEnvInt("BOOKING_HTTP_TIMEOUT", 30)) * time.Second,
		ConfigDir:   getEnv("BOOKING_CONFIG_DIR", DefaultConfigDir()),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
	}

	if err := ValidateAPIURL(cfg.APIURL); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout < time.Second || cfg.HTTPTimeout > 10*time.Minute {
		return nil, fmt.Errorf("BOOKING_HTTP_TIMEOUT must be between 1 and 600 seconds, got %d", int(cfg.HTTPTimeout.Seconds()))
	}

	return cfg, nil
}

// NormalizeAPIURL adds a missing http:// scheme and drops trailing slashes
func NormalizeAPIURL(raw string) string {
	return strings.TrimRight(ensureScheme(raw), "/")
}

// ValidateAPIURL checks that raw is an absolute http(s) URL
func ValidateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid API URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid API URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid API URL %q: missing host", raw)
	}
	return nil
}

// DefaultConfigDir returns the default config directory following the XDG base directory layout
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "booking")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "booking")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// ensureScheme adds http:// prefix if the URL has no scheme
func ensureScheme(raw string) string {
	if raw == "" {
		return raw
	}
	if !strings.Contains(raw, "://") {
		return "http://" + raw
	}
	return raw
}
