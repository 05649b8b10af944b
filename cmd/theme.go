// ABOUTME: Theme command showing or setting the persisted color scheme
// ABOUTME: The choice is shared with the terminal UI

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:       "theme [dark|light]",
	Short:     "Show or set the color scheme",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"dark", "light"},
	Run: func(cmd *cobra.Command, args []string) {
		choice := ""
		if len(args) == 1 {
			choice = args[0]
		}
		exitCode := runTheme(os.Stdout, choice)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
}

// runTheme prints the theme, or sets it when choice is given, and returns exit code
func runTheme(w io.Writer, choice string) int {
	rt, code := setupRuntime(w)
	if rt == nil {
		return code
	}

	switch strings.ToLower(choice) {
	case "":
	case "dark":
		rt.store.SetDarkMode(true)
	case "light":
		rt.store.SetDarkMode(false)
	default:
		fmt.Fprintf(w, "Error: unknown theme %q (want dark or light)\n", choice)
		return exitDenied
	}

	name := "light"
	if rt.store.DarkMode() {
		name = "dark"
	}
	if err := writeOutput(w, map[string]string{"theme": name}, func() string { return "Theme: " + name }); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}
