// ABOUTME: Entry point for the booking CLI
// ABOUTME: Terminal client for signing in, managing bookings, and paying

package main

import (
	"fmt"
	"os"

	"github.com/onlinebooking/booking-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
