// ABOUTME: Whoami command for the booking CLI
// ABOUTME: Restores the stored session and shows the signed-in identity

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/onlinebooking/booking-cli/internal/client"
	"github.com/onlinebooking/booking-cli/internal/guard"
	"github.com/onlinebooking/booking-cli/internal/session"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Long: `Verify the stored session with the backend and show who you are signed in as.

Exit codes:
  0 - Signed in
  1 - Not logged in (or the stored session was rejected)
  2 - Error (connectivity, backend failure)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runWhoami(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// whoamiOutput is the machine-readable form of whoami
type whoamiOutput struct {
	User      *client.User `json:"user" yaml:"user"`
	Backend   string       `json:"backend" yaml:"backend"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// runWhoami shows the current identity and returns exit code
func runWhoami(ctx context.Context, w io.Writer) int {
	rt, code := setupRuntime(w)
	if rt == nil {
		return code
	}
	if code := rt.authorize(ctx, w, guard.Dashboard); code != exitOK {
		return code
	}

	out := whoamiOutput{User: rt.session.State().Identity, Backend: rt.cfg.APIURL}
	if token, ok := rt.store.Token(); ok {
		if exp, ok := session.TokenExpiry(token); ok {
			out.ExpiresAt = &exp
		}
	}

	if err := writeOutput(w, out, func() string { return formatWhoamiHuman(out) }); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

// formatWhoamiHuman formats the identity for human readability
func formatWhoamiHuman(out whoamiOutput) string {
	u := out.User
	var b strings.Builder
	fmt.Fprintf(&b, "User:     %s (%s %s)\n", u.Username, u.FirstName, u.LastName)
	fmt.Fprintf(&b, "Email:    %s\n", u.Email)
	fmt.Fprintf(&b, "Role:     %s\n", u.Role)
	if u.CustomerSupportID != "" {
		fmt.Fprintf(&b, "Support:  %s\n", u.CustomerSupportID)
	}
	fmt.Fprintf(&b, "Backend:  %s", out.Backend)
	if out.ExpiresAt != nil {
		fmt.Fprintf(&b, "\nSession:  expires %s", humanize.Time(*out.ExpiresAt))
	}
	return b.String()
}
