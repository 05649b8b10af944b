// ABOUTME: Tests for the root command and global flag handling
// ABOUTME: Verifies configuration precedence between flags, environment, and defaults

package cmd

import (
	"testing"

	"github.com/onlinebooking/booking-cli/internal/config"
)

// resetFlags clears the global flag values after a test
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		apiURL, configDir, logLevel, logFormat = "", "", "", ""
		jsonOutput, yamlOutput = false, false
	})
}

func TestLoadConfig_Default(t *testing.T) {
	resetFlags(t)
	t.Setenv("BOOKING_API_URL", "")
	t.Setenv("BOOKING_CONFIG_DIR", t.TempDir())

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != config.DefaultAPIURL {
		t.Errorf("expected default URL %s, got %s", config.DefaultAPIURL, cfg.APIURL)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	resetFlags(t)
	t.Setenv("BOOKING_API_URL", "backend.example.com/api/")
	t.Setenv("BOOKING_CONFIG_DIR", t.TempDir())

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://backend.example.com/api" {
		t.Errorf("expected normalized env URL, got %s", cfg.APIURL)
	}
}

func TestLoadConfig_FlagOverridesEnv(t *testing.T) {
	resetFlags(t)
	t.Setenv("BOOKING_API_URL", "http://backend.example.com/api")
	t.Setenv("BOOKING_CONFIG_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "warn")

	dir := t.TempDir()
	apiURL = "https://flag-override.example.com/api"
	configDir = dir
	logLevel = "debug"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "https://flag-override.example.com/api" {
		t.Errorf("expected flag to override env, got %s", cfg.APIURL)
	}
	if cfg.ConfigDir != dir {
		t.Errorf("expected config dir %s, got %s", dir, cfg.ConfigDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.LogLevel)
	}
}

func TestLoadConfig_InvalidFlagURL(t *testing.T) {
	resetFlags(t)
	t.Setenv("BOOKING_CONFIG_DIR", t.TempDir())
	apiURL = "ftp://files.example.com"

	if _, err := loadConfig(); err == nil {
		t.Error("expected error for non-http scheme")
	}
}

func TestOutputFlags(t *testing.T) {
	resetFlags(t)
	if machineOutput() {
		t.Error("expected human output by default")
	}

	jsonOutput = true
	if !IsJSONOutput() || !machineOutput() {
		t.Error("expected JSON output")
	}

	jsonOutput, yamlOutput = false, true
	if !IsYAMLOutput() || !machineOutput() {
		t.Error("expected YAML output")
	}
}
