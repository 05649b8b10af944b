// ABOUTME: Profile commands for the signed-in user
// ABOUTME: Updates name and email in place and changes the password

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/onlinebooking/booking-cli/internal/client"
	"github.com/onlinebooking/booking-cli/internal/guard"
	"github.com/onlinebooking/booking-cli/internal/session"
	"github.com/spf13/cobra"
)

var (
	profileUpdate  client.ProfileUpdate
	passwordChange client.PasswordChange
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your profile",
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change your name or email",
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runProfileUpdate(ctx, os.Stdout, profileUpdate)
		})
	},
}

var profilePasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	Run: func(cmd *cobra.Command, args []string) {
		change := passwordChange
		if change.CurrentPassword == "" || change.NewPassword == "" {
			if err := promptPasswordChange(&change); err != nil {
				fmt.Fprintf(os.Stdout, "Error: %v\n", err)
				os.Exit(exitDenied)
			}
		}
		runWithSignals(func(ctx context.Context) int {
			return runPasswordChange(ctx, os.Stdout, change)
		})
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileUpdateCmd, profilePasswordCmd)

	profileUpdateCmd.Flags().StringVar(&profileUpdate.FirstName, "first-name", "", "New first name")
	profileUpdateCmd.Flags().StringVar(&profileUpdate.LastName, "last-name", "", "New last name")
	profileUpdateCmd.Flags().StringVar(&profileUpdate.Email, "email", "", "New email address")
	profileUpdateCmd.MarkFlagsOneRequired("first-name", "last-name", "email")

	profilePasswordCmd.Flags().StringVar(&passwordChange.CurrentPassword, "current", "", "Current password")
	profilePasswordCmd.Flags().StringVar(&passwordChange.NewPassword, "new", "", "New password (at least 6 characters)")
}

// runProfileUpdate saves profile changes and returns exit code
func runProfileUpdate(ctx context.Context, w io.Writer, update client.ProfileUpdate) int {
	rt, code := setupRuntime(w)
	if rt == nil {
		return code
	}
	if code := rt.authorize(ctx, w, guard.Profile); code != exitOK {
		return code
	}

	if err := rt.client.UpdateProfile(ctx, update); err != nil {
		return reportError(w, err)
	}
	rt.session.UpdateIdentity(session.IdentityPatch{
		FirstName: update.FirstName,
		LastName:  update.LastName,
		Email:     update.Email,
	})

	identity := rt.session.State().Identity
	if err := writeOutput(w, identity, func() string {
		return fmt.Sprintf("Profile updated: %s %s <%s>", identity.FirstName, identity.LastName, identity.Email)
	}); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

// runPasswordChange changes the password and returns exit code
func runPasswordChange(ctx context.Context, w io.Writer, change client.PasswordChange) int {
	rt, code := setupRuntime(w)
	if rt == nil {
		return code
	}
	if code := rt.authorize(ctx, w, guard.Profile); code != exitOK {
		return code
	}

	if err := rt.client.ChangePassword(ctx, change); err != nil {
		return reportError(w, err)
	}
	fmt.Fprintln(w, "Password changed successfully")
	return exitOK
}

func promptPasswordChange(change *client.PasswordChange) error {
	var confirm string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Current password").EchoMode(huh.EchoModePassword).
				Value(&change.CurrentPassword).Validate(requiredField("current password")),
			huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).
				Value(&change.NewPassword).Validate(requiredField("new password")),
			huh.NewInput().Title("Confirm new password").EchoMode(huh.EchoModePassword).
				Value(&confirm).
				Validate(func(s string) error {
					if s != change.NewPassword {
						return fmt.Errorf("passwords do not match")
					}
					return nil
				}),
		),
	)
	return form.Run()
}
