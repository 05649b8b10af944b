// ABOUTME: Booking commands: list, create, cancel, reschedule, and the admin listing
// ABOUTME: Each subcommand restores the session and passes the route guard first

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/onlinebooking/booking-cli/internal/client"
	"github.com/onlinebooking/booking-cli/internal/guard"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// bookingFlags holds the create and reschedule flag values
type bookingFlags struct {
	service     string
	description string
	at          string
	duration    int
	price       string
	notes       string
	status      string
}

var bookingOpts bookingFlags

var bookingsCmd = &cobra.Command{
	Use:     "bookings",
	Aliases: []string{"booking"},
	Short:   "Manage your bookings",
}

var bookingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your bookings",
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runBookingsList(ctx, os.Stdout, bookingOpts.status)
		})
	},
}

var bookingsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Book a service",
	Example: `  booking bookings create --service "Haircut" --at 2026-11-02T14:30 --duration 45 --price 35.00`,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runBookingCreate(ctx, os.Stdout, bookingOpts)
		})
	},
}

var bookingsCancelCmd = &cobra.Command{
	Use:   "cancel ID",
	Short: "Cancel one of your bookings",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runBookingCancel(ctx, os.Stdout, args[0])
		})
	},
}

var bookingsRescheduleCmd = &cobra.Command{
	Use:   "reschedule ID",
	Short: "Move one of your bookings to a new time",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runBookingReschedule(ctx, os.Stdout, args[0], bookingOpts.at)
		})
	},
}

var bookingsAllCmd = &cobra.Command{
	Use:   "all",
	Short: "List every booking on the platform (admin only)",
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runBookingsAll(ctx, os.Stdout)
		})
	},
}

func init() {
	rootCmd.AddCommand(bookingsCmd)
	bookingsCmd.AddCommand(bookingsListCmd, bookingsCreateCmd, bookingsCancelCmd, bookingsRescheduleCmd, bookingsAllCmd)

	bookingsListCmd.Flags().StringVar(&bookingOpts.status, "status", "", "Only show bookings with this status (PENDING, CONFIRMED, RESCHEDULED, COMPLETED, CANCELLED)")

	f := bookingsCreateCmd.Flags()
	f.StringVar(&bookingOpts.service, "service", "", "Service name")
	f.StringVar(&bookingOpts.description, "description", "", "Service description")
	f.StringVar(&bookingOpts.at, "at", "", "Date and time, e.g. 2026-11-02T14:30")
	f.IntVar(&bookingOpts.duration, "duration", 60, "Duration in minutes")
	f.StringVar(&bookingOpts.price, "price", "", "Price, e.g. 35.00")
	f.StringVar(&bookingOpts.notes, "notes", "", "Notes for the provider")
	bookingsCreateCmd.MarkFlagRequired("service")
	bookingsCreateCmd.MarkFlagRequired("at")
	bookingsCreateCmd.MarkFlagRequired("price")

	bookingsRescheduleCmd.Flags().StringVar(&bookingOpts.at, "at", "", "New date and time, e.g. 2026-11-03T09:00")
	bookingsRescheduleCmd.MarkFlagRequired("at")
}

// runWithSignals runs fn with a context cancelled on SIGINT/SIGTERM and exits non-zero on failure
func runWithSignals(fn func(ctx context.Context) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := fn(ctx)
	cancel()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// runBookingsList lists the caller's bookings and returns exit code
func runBookingsList(ctx context.Context, w io.Writer, statusFilter string) int {
	var status client.BookingStatus
	if statusFilter != "" {
		parsed, err := client.ParseBookingStatus(statusFilter)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitDenied
		}
		status = parsed
	}

	rt, code := setupRuntime(w)
	if rt == nil {
		return code
	}
	if code := rt.authorize(ctx, w, guard.Booking); code != exitOK {
		return code
	}

	var bookings []client.Booking
	var err error
	if status != "" {
		bookings, err = rt.client.BookingsByStatus(ctx, status)
	} else {
		bookings, err = rt.client.MyBookings(ctx)
	}
	if err != nil {
		return reportError(w, err)
	}
	return printBookings(w, bookings)
}

// runBookingsAll lists all bookings for an admin and returns exit code
func runBookingsAll(ctx context.Context, w io.Writer) int {
	rt, code := setupRuntime(w)
	if rt == nil {
		return code
	}
	if code := rt.authorize(ctx, w, guard.Admin); code != exitOK {
		return code
	}

	bookings, err := rt.client.AllBookings(ctx)
	if err != nil {
		return reportError(w, err)
	}
	return printBookings(w, bookings)
}

// runBookingCreate books a service and returns exit code
func runBookingCreate(ctx context.Context, w io.Writer, opts bookingFlags) int {
	req, err := opts.request()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitDenied
	}

	rt, code := setupRuntime(w)
	if rt == nil {
		return code
	}
	if code := rt.authorize(ctx, w, guard.Booking); code != exitOK {
		return code
	}

	booking, err := rt.client.CreateBooking(ctx, req)
	if err != nil {
		return reportError(w, err)
	}
	if err := writeOutput(w, booking, func() string {
		return fmt.Sprintf("Booking #%d %s: %s on %s for %s",
			booking.ID, booking.Status, booking.ServiceName, formatWhen(booking.BookingDateTime), booking.Price.StringFixed(2))
	}); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

// runBookingCancel cancels the booking with the given id and returns exit code
func runBookingCancel(ctx context.Context, w io.Writer, rawID string) int {
	id, err := parseBookingID(rawID)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitDenied
	}

	rt, code := setupRuntime(w)
	if rt == nil {
		return code
	}
	if code := rt.authorize(ctx, w, guard.Booking); code != exitOK {
		return code
	}

	if err := rt.client.CancelBooking(ctx, id); err != nil {
		return reportError(w, err)
	}
	result := bookingUpdate{ID: id, Status: client.BookingCancelled}
	if err := writeOutput(w, result, func() string { return fmt.Sprintf("Booking #%d cancelled", id) }); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

// runBookingReschedule moves a booking to at and returns exit code
func runBookingReschedule(ctx context.Context, w io.Writer, rawID, at string) int {
	id, err := parseBookingID(rawID)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitDenied
	}
	when, err := client.ParseLocalDateTime(at)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitDenied
	}

	rt, code := setupRuntime(w)
	if rt == nil {
		return code
	}
	if code := rt.authorize(ctx, w, guard.Booking); code != exitOK {
		return code
	}

	if err := rt.client.RescheduleBooking(ctx, id, when); err != nil {
		return reportError(w, err)
	}
	result := bookingUpdate{ID: id, Status: client.BookingRescheduled, BookingDateTime: when}
	if err := writeOutput(w, result, func() string {
		return fmt.Sprintf("Booking #%d rescheduled to %s", id, formatWhen(when))
	}); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

// bookingUpdate is the machine-readable result of cancel and reschedule
type bookingUpdate struct {
	ID              int64                `json:"id" yaml:"id"`
	Status          client.BookingStatus `json:"status" yaml:"status"`
	BookingDateTime client.LocalDateTime `json:"bookingDateTime,omitzero" yaml:"bookingDateTime,omitempty"`
}

// request converts flag values into a booking request
func (o bookingFlags) request() (client.BookingRequest, error) {
	when, err := client.ParseLocalDateTime(o.at)
	if err != nil {
		return client.BookingRequest{}, err
	}
	price, err := decimal.NewFromString(o.price)
	if err != nil {
		return client.BookingRequest{}, fmt.Errorf("invalid price %q", o.price)
	}
	return client.BookingRequest{
		BookingDateTime:    when,
		DurationMinutes:    o.duration,
		ServiceName:        o.service,
		ServiceDescription: o.description,
		Price:              price,
		Notes:              o.notes,
	}, nil
}

func parseBookingID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid booking id %q", raw)
	}
	return id, nil
}

// printBookings writes bookings as a table, JSON, or YAML
func printBookings(w io.Writer, bookings []client.Booking) int {
	if bookings == nil {
		bookings = []client.Booking{}
	}
	if err := writeOutput(w, bookings, func() string { return formatBookingsHuman(bookings) }); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

// formatBookingsHuman renders bookings as a bordered table
func formatBookingsHuman(bookings []client.Booking) string {
	if len(bookings) == 0 {
		return "No bookings found"
	}

	rows := make([][]string, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, []string{
			strconv.FormatInt(b.ID, 10),
			b.ServiceName,
			formatWhen(b.BookingDateTime),
			fmt.Sprintf("%d min", b.DurationMinutes),
			b.Price.StringFixed(2),
			string(b.Status),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "SERVICE", "WHEN", "DURATION", "PRICE", "STATUS").
		Rows(rows...)
	return t.String() + fmt.Sprintf("\n%d booking(s)", len(bookings))
}

// formatWhen shows a booking time with a relative hint, e.g. "Mon Nov 2 14:30 (3 days from now)"
func formatWhen(t client.LocalDateTime) string {
	if t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", t.Format("Mon Jan 2 2006 15:04"), humanize.Time(t.Time))
}
