// ABOUTME: Register command for the booking CLI
// ABOUTME: Creates an account without starting a session

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/onlinebooking/booking-cli/internal/client"
	"github.com/spf13/cobra"
)

var registration client.Registration

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Long: `Create a customer or business account. Registration does not log you in;
run 'booking login' afterwards.

Missing fields are prompted for interactively.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		reg := registration
		reg.Role = client.Role(strings.ToUpper(string(reg.Role)))
		if reg.Username == "" || reg.Password == "" || reg.Email == "" || reg.FirstName == "" || reg.LastName == "" {
			if err := promptRegistration(&reg); err != nil {
				fmt.Fprintf(os.Stdout, "Error: %v\n", err)
				os.Exit(exitDenied)
			}
		}

		exitCode := runRegister(ctx, os.Stdout, reg)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVar(&registration.FirstName, "first-name", "", "First name")
	registerCmd.Flags().StringVar(&registration.LastName, "last-name", "", "Last name")
	registerCmd.Flags().StringVar(&registration.Username, "username", "", "Username (3-20 characters)")
	registerCmd.Flags().StringVar(&registration.Email, "email", "", "Email address")
	registerCmd.Flags().StringVar(&registration.Password, "password", "", "Password (at least 6 characters)")
	registerCmd.Flags().StringVar((*string)(&registration.Role), "role", string(client.RoleCustomer), "Account type: CUSTOMER or BUSINESS")
}

// runRegister creates the account and returns exit code
func runRegister(ctx context.Context, w io.Writer, reg client.Registration) int {
	rt, code := setupRuntime(w)
	if rt == nil {
		return code
	}

	res := rt.session.Register(ctx, reg)
	if !res.OK {
		fmt.Fprintf(w, "Error: %s\n", res.Message)
		if res.Err != nil {
			return exitCodeFor(res.Err)
		}
		return exitDenied
	}
	fmt.Fprintln(w, res.Message)
	return exitOK
}

// promptRegistration fills in missing registration fields
func promptRegistration(reg *client.Registration) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("First name").Value(&reg.FirstName).Validate(requiredField("first name")),
			huh.NewInput().Title("Last name").Value(&reg.LastName).Validate(requiredField("last name")),
			huh.NewInput().Title("Username").Value(&reg.Username).Validate(requiredField("username")),
			huh.NewInput().Title("Email").Value(&reg.Email).Validate(requiredField("email")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&reg.Password).Validate(requiredField("password")),
			huh.NewSelect[client.Role]().
				Title("Account type").
				Options(
					huh.NewOption("Customer", client.RoleCustomer),
					huh.NewOption("Business", client.RoleBusiness),
				).
				Value(&reg.Role),
		),
	)
	return form.Run()
}
