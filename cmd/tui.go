// ABOUTME: Interactive terminal UI command
// ABOUTME: Logs to debug.log in the config directory while the TUI owns the terminal

package cmd

import (
	"fmt"

	"github.com/onlinebooking/booking-cli/internal/logger"
	"github.com/onlinebooking/booking-cli/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal UI",
	Long: `Open the full-screen booking client.

The stored session is restored first; without one the login form is shown.
Diagnostics are written to debug.log in the config directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, closeLog, err := logger.OpenFile(cfg.ConfigDir, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to open debug log: %w", err)
	}
	defer closeLog()

	rt := wireRuntime(cfg, log)
	log.Info("Starting TUI", "api_url", cfg.APIURL, "degraded_store", rt.store.Degraded())

	return tui.Run(tui.Deps{
		Client:  rt.client,
		Session: rt.session,
		Guard:   rt.guard,
		Store:   rt.store,
		Log:     log,
	})
}
