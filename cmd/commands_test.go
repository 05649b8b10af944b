// ABOUTME: End-to-end tests for the CLI commands against the in-memory backend
// ABOUTME: Checks output text, machine formats, and exit codes for each command

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/onlinebooking/booking-cli/internal/client"
	"github.com/onlinebooking/booking-cli/internal/logger"
	"github.com/onlinebooking/booking-cli/internal/session"
	"github.com/onlinebooking/booking-cli/internal/stubapi"
	"golang.org/x/crypto/bcrypt"
)

// setupBackend points the CLI at a fresh stub backend and config directory
func setupBackend(t *testing.T, opts ...stubapi.Option) {
	t.Helper()
	opts = append([]stubapi.Option{stubapi.WithPasswordCost(bcrypt.MinCost), stubapi.WithLogger(logger.Discard())}, opts...)
	srv, err := stubapi.New(opts...)
	if err != nil {
		t.Fatalf("failed to create stub backend: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	resetFlags(t)
	prevOutput := logOutput
	logOutput = io.Discard
	t.Cleanup(func() { logOutput = prevOutput })

	t.Setenv("BOOKING_API_URL", "")
	t.Setenv("BOOKING_CONFIG_DIR", "")
	apiURL = ts.URL + stubapi.APIPrefix
	configDir = t.TempDir()
}

func mustLogin(t *testing.T, username, password string) {
	t.Helper()
	var buf bytes.Buffer
	if code := runLogin(t.Context(), &buf, client.Credentials{Username: username, Password: password}); code != exitOK {
		t.Fatalf("login as %s failed with %d: %s", username, code, buf.String())
	}
}

func futureSlot(d time.Duration) string {
	return time.Now().Add(d).Format("2006-01-02T15:04")
}

func TestLogin_Success(t *testing.T) {
	setupBackend(t)

	var buf bytes.Buffer
	code := runLogin(t.Context(), &buf, client.Credentials{Username: "jdoe", Password: "secret123"})
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "Logged in as jdoe (CUSTOMER)") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	setupBackend(t)

	var buf bytes.Buffer
	code := runLogin(t.Context(), &buf, client.Credentials{Username: "jdoe", Password: "nope"})
	if code != exitDenied {
		t.Errorf("expected exit %d, got %d", exitDenied, code)
	}
	if !strings.Contains(buf.String(), "Error: Bad credentials") {
		t.Errorf("expected backend message, got %s", buf.String())
	}
}

func TestLogin_StateTransitions(t *testing.T) {
	setupBackend(t)
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected config error: %v", err)
	}
	rt := wireRuntime(cfg, logger.Discard())

	var seen []session.Status
	rt.session.OnChange(func(c session.Change) { seen = append(seen, c.State.Status) })

	var buf bytes.Buffer
	if code := rt.login(t.Context(), &buf, client.Credentials{Username: "jdoe", Password: "wrong"}); code != exitDenied {
		t.Fatalf("expected exit %d, got %d", exitDenied, code)
	}
	if got := rt.session.State().Status; got != session.Anonymous {
		t.Errorf("expected failed login to leave the session Anonymous, got %s", got)
	}

	if code := rt.login(t.Context(), &buf, client.Credentials{Username: "jdoe", Password: "secret123"}); code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, buf.String())
	}
	want := []session.Status{session.Anonymous, session.Anonymous, session.Authenticated}
	if len(seen) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("transition %d: expected %s, got %s", i, want[i], seen[i])
		}
	}
}

func TestLogin_BackendUnreachable(t *testing.T) {
	resetFlags(t)
	prevOutput := logOutput
	logOutput = io.Discard
	t.Cleanup(func() { logOutput = prevOutput })
	t.Setenv("BOOKING_API_URL", "")
	apiURL = "http://127.0.0.1:1/api"
	configDir = t.TempDir()

	var buf bytes.Buffer
	code := runLogin(t.Context(), &buf, client.Credentials{Username: "jdoe", Password: "secret123"})
	if code != exitError {
		t.Errorf("expected exit %d, got %d: %s", exitError, code, buf.String())
	}
}

func TestWhoami(t *testing.T) {
	setupBackend(t)

	var buf bytes.Buffer
	if code := runWhoami(t.Context(), &buf); code != exitDenied {
		t.Errorf("expected exit %d before login, got %d", exitDenied, code)
	}
	if !strings.Contains(buf.String(), "not logged in") {
		t.Errorf("expected not-logged-in message, got %s", buf.String())
	}

	mustLogin(t, "jdoe", "secret123")
	buf.Reset()
	if code := runWhoami(t.Context(), &buf); code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, buf.String())
	}
	for _, want := range []string{"User:", "jdoe", "Role:", "CUSTOMER", "Support:", "Session:"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in output:\n%s", want, buf.String())
		}
	}
}

func TestWhoami_JSON(t *testing.T) {
	setupBackend(t)
	mustLogin(t, "acme", "business123")
	jsonOutput = true

	var buf bytes.Buffer
	if code := runWhoami(t.Context(), &buf); code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, buf.String())
	}

	var out struct {
		User      client.User `json:"user"`
		Backend   string      `json:"backend"`
		ExpiresAt *time.Time  `json:"expires_at"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.User.Role != client.RoleBusiness {
		t.Errorf("expected BUSINESS, got %s", out.User.Role)
	}
	if out.ExpiresAt == nil {
		t.Error("expected token expiry")
	}
}

func TestLogout(t *testing.T) {
	setupBackend(t)
	mustLogin(t, "jdoe", "secret123")

	var buf bytes.Buffer
	if code := runLogout(&buf); code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}

	buf.Reset()
	if code := runWhoami(t.Context(), &buf); code != exitDenied {
		t.Errorf("expected logged out session, got %d: %s", code, buf.String())
	}
}

func TestExpiredTokenEndsSession(t *testing.T) {
	setupBackend(t, stubapi.WithTokenTTL(-time.Minute))
	mustLogin(t, "jdoe", "secret123")

	var buf bytes.Buffer
	if code := runBookingsList(t.Context(), &buf, ""); code != exitDenied {
		t.Errorf("expected exit %d, got %d: %s", exitDenied, code, buf.String())
	}
	if !strings.Contains(buf.String(), "not logged in") {
		t.Errorf("expected expired session to read as logged out, got %s", buf.String())
	}
}

func TestBookingsLifecycle(t *testing.T) {
	setupBackend(t)
	mustLogin(t, "jdoe", "secret123")

	var buf bytes.Buffer
	if code := runBookingsList(t.Context(), &buf, ""); code != exitOK {
		t.Fatalf("list failed with %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "No bookings found") {
		t.Errorf("expected empty list, got %s", buf.String())
	}

	buf.Reset()
	opts := bookingFlags{service: "Haircut", at: futureSlot(72 * time.Hour), duration: 45, price: "35"}
	if code := runBookingCreate(t.Context(), &buf, opts); code != exitOK {
		t.Fatalf("create failed with %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "Booking #1") || !strings.Contains(buf.String(), "35.00") {
		t.Errorf("unexpected create output: %s", buf.String())
	}

	buf.Reset()
	if code := runBookingReschedule(t.Context(), &buf, "1", futureSlot(96*time.Hour)); code != exitOK {
		t.Fatalf("reschedule failed with %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "Booking #1 rescheduled") {
		t.Errorf("unexpected reschedule output: %s", buf.String())
	}

	buf.Reset()
	if code := runBookingsList(t.Context(), &buf, "rescheduled"); code != exitOK {
		t.Fatalf("filtered list failed with %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "Haircut") || !strings.Contains(buf.String(), "1 booking(s)") {
		t.Errorf("unexpected filtered list: %s", buf.String())
	}

	buf.Reset()
	if code := runBookingCancel(t.Context(), &buf, "1"); code != exitOK {
		t.Fatalf("cancel failed with %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "Booking #1 cancelled") {
		t.Errorf("unexpected cancel output: %s", buf.String())
	}
}

func TestBookingsList_JSONEmptyArray(t *testing.T) {
	setupBackend(t)
	mustLogin(t, "jdoe", "secret123")
	jsonOutput = true

	var buf bytes.Buffer
	if code := runBookingsList(t.Context(), &buf, ""); code != exitOK {
		t.Fatalf("list failed with %d: %s", code, buf.String())
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty JSON array, got %s", buf.String())
	}
}

func TestBookingInputErrors(t *testing.T) {
	setupBackend(t)

	tests := []struct {
		name string
		run  func(w io.Writer) int
		want string
	}{
		{"unknown status", func(w io.Writer) int { return runBookingsList(context.Background(), w, "archived") }, "Error:"},
		{"bad id", func(w io.Writer) int { return runBookingCancel(context.Background(), w, "abc") }, `invalid booking id "abc"`},
		{"bad time", func(w io.Writer) int { return runBookingReschedule(context.Background(), w, "1", "tomorrow") }, "invalid date-time"},
		{"bad price", func(w io.Writer) int {
			return runBookingCreate(context.Background(), w, bookingFlags{service: "X", at: futureSlot(time.Hour), duration: 30, price: "lots"})
		}, `invalid price "lots"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if code := tt.run(&buf); code != exitDenied {
				t.Errorf("expected exit %d, got %d", exitDenied, code)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected %q in %s", tt.want, buf.String())
			}
		})
	}
}

func TestBookingsAll_RoleDenied(t *testing.T) {
	setupBackend(t)
	mustLogin(t, "jdoe", "secret123")

	var buf bytes.Buffer
	if code := runBookingsAll(t.Context(), &buf); code != exitDenied {
		t.Errorf("expected exit %d, got %d", exitDenied, code)
	}
	if !strings.Contains(buf.String(), "insufficient role") || !strings.Contains(buf.String(), "ADMIN") {
		t.Errorf("expected role message, got %s", buf.String())
	}
}

func TestBookingsAll_Admin(t *testing.T) {
	setupBackend(t)
	mustLogin(t, "jdoe", "secret123")

	var buf bytes.Buffer
	opts := bookingFlags{service: "Massage", at: futureSlot(48 * time.Hour), duration: 60, price: "80"}
	if code := runBookingCreate(t.Context(), &buf, opts); code != exitOK {
		t.Fatalf("create failed with %d: %s", code, buf.String())
	}

	mustLogin(t, "admin", "admin123")
	buf.Reset()
	if code := runBookingsAll(t.Context(), &buf); code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "Massage") {
		t.Errorf("expected other users' bookings, got %s", buf.String())
	}
}

func TestPayFlow(t *testing.T) {
	setupBackend(t)
	mustLogin(t, "jdoe", "secret123")

	var buf bytes.Buffer
	jsonOutput = true
	if code := runPayIntent(t.Context(), &buf, "25.50", "USD", "deposit"); code != exitOK {
		t.Fatalf("intent failed with %d: %s", code, buf.String())
	}
	var intent client.PaymentIntent
	if err := json.Unmarshal(buf.Bytes(), &intent); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	jsonOutput = false

	buf.Reset()
	if code := runPayAction(t.Context(), &buf, payStatus, intent.PaymentIntentID); code != exitOK {
		t.Fatalf("status failed with %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "requires_payment_method") || !strings.Contains(buf.String(), "25.50 USD") {
		t.Errorf("unexpected status output: %s", buf.String())
	}

	buf.Reset()
	if code := runPayAction(t.Context(), &buf, payConfirm, intent.PaymentIntentID); code != exitOK {
		t.Fatalf("confirm failed with %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "succeeded") {
		t.Errorf("unexpected confirm output: %s", buf.String())
	}

	buf.Reset()
	if code := runPayAction(t.Context(), &buf, payCancel, intent.PaymentIntentID); code != exitDenied {
		t.Errorf("expected cancelling a paid intent to fail, got %d: %s", code, buf.String())
	}
}

func TestPayIntent_InvalidAmount(t *testing.T) {
	setupBackend(t)

	var buf bytes.Buffer
	if code := runPayIntent(t.Context(), &buf, "x", "usd", ""); code != exitDenied {
		t.Errorf("expected exit %d, got %d", exitDenied, code)
	}
	if !strings.Contains(buf.String(), `invalid amount "x"`) {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestProfileUpdateAndPassword(t *testing.T) {
	setupBackend(t)
	mustLogin(t, "jdoe", "secret123")

	var buf bytes.Buffer
	update := client.ProfileUpdate{FirstName: "Janet", Email: "janet@example.com"}
	if code := runProfileUpdate(t.Context(), &buf, update); code != exitOK {
		t.Fatalf("update failed with %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "Profile updated: Janet") {
		t.Errorf("unexpected update output: %s", buf.String())
	}

	buf.Reset()
	change := client.PasswordChange{CurrentPassword: "secret123", NewPassword: "newsecret1"}
	if code := runPasswordChange(t.Context(), &buf, change); code != exitOK {
		t.Fatalf("password change failed with %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "Password changed successfully") {
		t.Errorf("unexpected output: %s", buf.String())
	}

	buf.Reset()
	if code := runLogin(t.Context(), &buf, client.Credentials{Username: "jdoe", Password: "newsecret1"}); code != exitOK {
		t.Errorf("expected login with new password, got %d: %s", code, buf.String())
	}
}

func TestRegisterThenLogin(t *testing.T) {
	setupBackend(t)

	reg := client.Registration{
		FirstName: "Sam",
		LastName:  "Lee",
		Username:  "samlee",
		Email:     "sam@example.com",
		Password:  "secret123",
		Role:      client.RoleBusiness,
	}
	var buf bytes.Buffer
	if code := runRegister(t.Context(), &buf, reg); code != exitOK {
		t.Fatalf("register failed with %d: %s", code, buf.String())
	}

	buf.Reset()
	if code := runRegister(t.Context(), &buf, reg); code != exitDenied {
		t.Errorf("expected duplicate registration to fail, got %d", code)
	}
	if !strings.Contains(buf.String(), "Username is already taken") {
		t.Errorf("expected backend message, got %s", buf.String())
	}

	mustLogin(t, "samlee", "secret123")
}

func TestTheme(t *testing.T) {
	setupBackend(t)

	var buf bytes.Buffer
	if code := runTheme(&buf, "dark"); code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	buf.Reset()
	if code := runTheme(&buf, ""); code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if strings.TrimSpace(buf.String()) != "Theme: dark" {
		t.Errorf("expected persisted dark theme, got %s", buf.String())
	}

	buf.Reset()
	if code := runTheme(&buf, "neon"); code != exitDenied {
		t.Errorf("expected exit %d, got %d", exitDenied, code)
	}
}

func TestStubServer_ShutsDownOnCancel(t *testing.T) {
	resetFlags(t)
	prevOutput := logOutput
	logOutput = io.Discard
	t.Cleanup(func() { logOutput = prevOutput })

	ctx, cancel := context.WithCancel(t.Context())
	var buf bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- runStubServer(ctx, &buf, "127.0.0.1:0", time.Hour)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	if !strings.Contains(buf.String(), "admin") || !strings.Contains(buf.String(), "listening") {
		t.Errorf("expected banner with demo accounts, got %s", buf.String())
	}
}
