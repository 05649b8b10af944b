// ABOUTME: Payment commands wrapping the platform's payment intents
// ABOUTME: Create, confirm, cancel, and inspect an intent by id

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/onlinebooking/booking-cli/internal/client"
	"github.com/onlinebooking/booking-cli/internal/guard"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	payAmount      string
	payCurrency    string
	payDescription string
)

var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Create and manage payments",
}

var payIntentCmd = &cobra.Command{
	Use:     "intent",
	Short:   "Create a payment intent",
	Example: `  booking pay intent --amount 35.00 --description "Haircut"`,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runPayIntent(ctx, os.Stdout, payAmount, payCurrency, payDescription)
		})
	},
}

var payConfirmCmd = &cobra.Command{
	Use:   "confirm INTENT_ID",
	Short: "Confirm a payment intent",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runPayAction(ctx, os.Stdout, payConfirm, args[0])
		})
	},
}

var payCancelCmd = &cobra.Command{
	Use:   "cancel INTENT_ID",
	Short: "Cancel a payment intent",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runPayAction(ctx, os.Stdout, payCancel, args[0])
		})
	},
}

var payStatusCmd = &cobra.Command{
	Use:   "status INTENT_ID",
	Short: "Show the status of a payment intent",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runPayAction(ctx, os.Stdout, payStatus, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(payCmd)
	payCmd.AddCommand(payIntentCmd, payConfirmCmd, payCancelCmd, payStatusCmd)

	payIntentCmd.Flags().StringVar(&payAmount, "amount", "", "Amount in major units, e.g. 35.00")
	payIntentCmd.Flags().StringVar(&payCurrency, "currency", "usd", "Three-letter currency code")
	payIntentCmd.Flags().StringVar(&payDescription, "description", "", "What the payment is for")
	payIntentCmd.MarkFlagRequired("amount")
}

// payOp selects which intent action runPayAction performs
type payOp int

const (
	payConfirm payOp = iota
	payCancel
	payStatus
)

// runPayIntent creates a payment intent and returns exit code
func runPayIntent(ctx context.Context, w io.Writer, amount, currency, description string) int {
	value, err := decimal.NewFromString(amount)
	if err != nil {
		fmt.Fprintf(w, "Error: invalid amount %q\n", amount)
		return exitDenied
	}

	rt, code := setupRuntime(w)
	if rt == nil {
		return code
	}
	if code := rt.authorize(ctx, w, guard.Payment); code != exitOK {
		return code
	}

	req := client.PaymentRequest{Amount: value, Currency: strings.ToLower(currency), Description: description}
	intent, err := rt.client.CreatePaymentIntent(ctx, req)
	if err != nil {
		return reportError(w, err)
	}
	if err := writeOutput(w, intent, func() string {
		return fmt.Sprintf("Payment intent %s created for %s %s\nClient secret: %s",
			intent.PaymentIntentID, value.StringFixed(2), strings.ToUpper(req.Currency), intent.ClientSecret)
	}); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

// runPayAction confirms, cancels, or inspects an intent and returns exit code
func runPayAction(ctx context.Context, w io.Writer, op payOp, intentID string) int {
	rt, code := setupRuntime(w)
	if rt == nil {
		return code
	}
	if code := rt.authorize(ctx, w, guard.Payment); code != exitOK {
		return code
	}

	var status *client.PaymentStatus
	var err error
	switch op {
	case payConfirm:
		status, err = rt.client.ConfirmPayment(ctx, intentID)
	case payCancel:
		status, err = rt.client.CancelPayment(ctx, intentID)
	default:
		status, err = rt.client.PaymentStatus(ctx, intentID)
	}
	if err != nil {
		return reportError(w, err)
	}
	if status.PaymentIntentID == "" {
		status.PaymentIntentID = intentID
	}

	if err := writeOutput(w, status, func() string { return formatPaymentHuman(status) }); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

// formatPaymentHuman shows an intent status with its amount in major units
func formatPaymentHuman(s *client.PaymentStatus) string {
	line := fmt.Sprintf("Payment %s: %s", s.PaymentIntentID, s.Status)
	if s.Amount > 0 {
		line += fmt.Sprintf(" (%s %s)", decimal.New(s.Amount, -2).StringFixed(2), strings.ToUpper(s.Currency))
	}
	return line
}
