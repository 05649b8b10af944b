// ABOUTME: Login and logout commands for the booking CLI
// ABOUTME: Prompts for missing credentials and persists the session token

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/onlinebooking/booking-cli/internal/client"
	"github.com/onlinebooking/booking-cli/internal/session"
	"github.com/spf13/cobra"
)

var (
	loginUsername      string
	loginPassword      string
	loginPasswordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	Long: `Sign in to the booking backend. The returned token is stored in the config
directory and attached to every later request.

Missing username or password are prompted for interactively.

Exit codes:
  0 - Logged in
  1 - Credentials rejected
  2 - Error (connectivity, backend failure)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		creds := client.Credentials{Username: loginUsername, Password: loginPassword}
		if loginPasswordStdin {
			password, err := readPassword(os.Stdin)
			if err != nil {
				fmt.Fprintf(os.Stdout, "Error: %v\n", err)
				os.Exit(exitError)
			}
			creds.Password = password
		}
		if creds.Username == "" || creds.Password == "" {
			if err := promptCredentials(&creds); err != nil {
				fmt.Fprintf(os.Stdout, "Error: %v\n", err)
				os.Exit(exitDenied)
			}
		}

		exitCode := runLogin(ctx, os.Stdout, creds)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runLogout(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prefer --password-stdin)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")
	loginCmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
}

// runLogin signs in and returns exit code
func runLogin(ctx context.Context, w io.Writer, creds client.Credentials) int {
	rt, code := setupRuntime(w)
	if rt == nil {
		return code
	}
	return rt.login(ctx, w, creds)
}

// login settles the stored session first so a sign-in always starts from a
// resolved state, then signs in with creds
func (rt *runtime) login(ctx context.Context, w io.Writer, creds client.Credentials) int {
	rt.session.Start(ctx)

	res := rt.session.Login(ctx, creds)
	if !res.OK {
		fmt.Fprintf(w, "Error: %s\n", res.Message)
		if res.Err != nil {
			return exitCodeFor(res.Err)
		}
		return exitDenied
	}

	if rt.store.Degraded() {
		rt.log.Warn("Session token could not be saved; it will not outlive this command")
	}

	identity := rt.session.State().Identity
	if err := writeOutput(w, identity, func() string {
		return fmt.Sprintf("%s Logged in as %s (%s)", res.Message, identity.Username, identity.Role)
	}); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

// runLogout clears the stored session and returns exit code
func runLogout(w io.Writer) int {
	rt, code := setupRuntime(w)
	if rt == nil {
		return code
	}
	rt.session.Logout()
	fmt.Fprintln(w, session.MsgLoggedOut)
	return exitOK
}

// promptCredentials asks for whichever of username and password is missing
func promptCredentials(creds *client.Credentials) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&creds.Username).
				Validate(requiredField("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&creds.Password).
				Validate(requiredField("password")),
		),
	)
	return form.Run()
}

// readPassword reads one line from r
func readPassword(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return "", errors.New("no password on stdin")
	}
	return strings.TrimRight(scanner.Text(), "\r"), nil
}

// requiredField returns a huh validator rejecting blank input
func requiredField(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
