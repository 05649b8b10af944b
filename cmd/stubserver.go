// ABOUTME: Hidden command serving the in-memory backend for local demos
// ABOUTME: Prints the seeded demo accounts and shuts down cleanly on SIGINT/SIGTERM

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/onlinebooking/booking-cli/internal/logger"
	"github.com/onlinebooking/booking-cli/internal/stubapi"
	"github.com/spf13/cobra"
)

var (
	stubAddr     string
	stubTokenTTL time.Duration
)

var stubServerCmd = &cobra.Command{
	Use:    "stub-server",
	Short:  "Serve an in-memory booking backend",
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if err := runStubServer(ctx, os.Stdout, stubAddr, stubTokenTTL); err != nil {
			fmt.Fprintf(os.Stdout, "Error: %v\n", err)
			os.Exit(exitError)
		}
	},
}

func init() {
	rootCmd.AddCommand(stubServerCmd)
	stubServerCmd.Flags().StringVar(&stubAddr, "addr", "127.0.0.1:8080", "Listen address")
	stubServerCmd.Flags().DurationVar(&stubTokenTTL, "token-ttl", 24*time.Hour, "Lifetime of issued access tokens")
}

// runStubServer serves until ctx is done, then drains in-flight requests
func runStubServer(ctx context.Context, w io.Writer, addr string, ttl time.Duration) error {
	level, format := "info", "text"
	if logLevel != "" {
		level = logLevel
	}
	if logFormat != "" {
		format = logFormat
	}
	log := logger.New(logOutput, level, format)

	srv, err := stubapi.New(stubapi.WithLogger(log), stubapi.WithTokenTTL(ttl))
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Fprintf(w, "Booking backend listening on http://%s%s\n", addr, stubapi.APIPrefix)
	fmt.Fprintln(w, "Demo accounts:")
	for _, demo := range stubapi.DemoAccounts {
		fmt.Fprintf(w, "  %-8s %-12s %s\n", demo.Username, demo.Password, demo.Role)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
