// ABOUTME: Root command for the booking CLI
// ABOUTME: Handles global flags and configuration precedence (flag > env > default)

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/onlinebooking/booking-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	apiURL     string
	jsonOutput bool
	yamlOutput bool
	configDir  string
	logLevel   string
	logFormat  string
)

// logOutput receives CLI diagnostics; stdout is reserved for command output
var logOutput io.Writer = os.Stderr

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "booking",
	Short: "Terminal client for the Online Booking platform",
	Long: `booking is a command-line and terminal UI client for the Online Booking platform.

Sign in once with 'booking login'; the session token is kept in the config
directory and sent with every request until you log out or it is rejected.

Environment Variables:
  BOOKING_API_URL       Backend API URL (default: http://localhost:8080/api)
  BOOKING_HTTP_TIMEOUT  Request timeout in seconds (default: 30)
  BOOKING_CONFIG_DIR    Directory for state.json and debug.log (default: ~/.config/booking)
  LOG_LEVEL             debug, info, warn, error (default: info)
  LOG_FORMAT            text or json (default: text)

A .env file in the working directory is read first.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides BOOKING_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().BoolVar(&yamlOutput, "yaml", false, "Output YAML instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory for local state (overrides BOOKING_CONFIG_DIR)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (overrides LOG_FORMAT)")
	rootCmd.MarkFlagsMutuallyExclusive("json", "yaml")
}

// loadConfig reads .env and the environment, then applies flag overrides
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if apiURL != "" {
		cfg.APIURL = config.NormalizeAPIURL(apiURL)
		if err := config.ValidateAPIURL(cfg.APIURL); err != nil {
			return nil, err
		}
	}
	if configDir != "" {
		cfg.ConfigDir = configDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if cfg.ConfigDir == "" {
		return nil, fmt.Errorf("cannot determine config directory; set BOOKING_CONFIG_DIR or --config-dir")
	}
	return cfg, nil
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// IsYAMLOutput returns whether YAML output is requested
func IsYAMLOutput() bool {
	return yamlOutput
}
