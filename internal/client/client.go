// ABOUTME: Authenticated HTTP dispatcher for the booking backend API
// ABOUTME: Attaches the bearer token to every call and turns 401s into an Unauthorized event

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/onlinebooking/booking-cli/internal/credstore"
)

// maxErrorBody caps how much of an error response is read for its message
const maxErrorBody = 64 << 10

// Unauthorized is emitted once for every response with status 401.
// Token is the bearer credential the failing request carried ("" if none).
type Unauthorized struct {
	Method string
	Path   string
	Token  string
}

// Client is the single choke point for backend calls
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      credstore.Store
	log        *slog.Logger

	mu        sync.Mutex
	listeners []func(Unauthorized)
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the transport timeout for each request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a new API client for baseURL reading credentials from store
func New(baseURL string, store credstore.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		store: store,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnUnauthorized registers fn to be called synchronously for each 401 response,
// after the credential store has been cleared.
func (c *Client) OnUnauthorized(fn func(Unauthorized)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Do sends method path with body encoded as JSON and decodes a 2xx response into out.
// body and out may be nil. Errors are *TransportError, *AuthorizationError,
// *ValidationError or *UnexpectedError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	// Read the token per request; never keep a copy beyond this call
	token, hasToken := c.store.Token()
	if hasToken {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug("HTTP request", "method", method, "path", path, "request_id", requestID, "authenticated", hasToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	c.log.Debug("HTTP response", "method", method, "path", path, "request_id", requestID, "status", resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized {
		return c.handleUnauthorized(resp, method, path, token)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UnexpectedError{Status: resp.StatusCode, Err: fmt.Errorf("invalid response from backend: %w", err)}
	}
	return nil
}

// handleUnauthorized clears the credential store before notifying listeners,
// so anything reacting to the event never sees the rejected token.
func (c *Client) handleUnauthorized(resp *http.Response, method, path, token string) error {
	message := readErrorMessage(resp)

	if token != "" && c.store.ClearTokenIf(token) {
		c.log.Info("Cleared rejected credential", "path", path)
	}

	c.mu.Lock()
	listeners := make([]func(Unauthorized), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	ev := Unauthorized{Method: method, Path: path, Token: token}
	for _, fn := range listeners {
		fn(ev)
	}

	return &AuthorizationError{Path: path, Message: message}
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return &TransportError{Message: "request canceled", Err: err}
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TransportError{Message: "request timed out", Err: err}
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Message: "request timed out", Err: err}
	}
	return &TransportError{Message: fmt.Sprintf("cannot connect to backend at %s", c.baseURL), Err: err}
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	message := readErrorMessage(resp)
	if resp.StatusCode >= 500 {
		return &UnexpectedError{Status: resp.StatusCode, Message: message}
	}
	return &ValidationError{Status: resp.StatusCode, Message: message}
}

// errorBody covers both {"message": ...} and {"error": ...} payloads
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// readErrorMessage extracts a user-facing message from an error response.
// JSON bodies use "message" (or "error"); short plain-text bodies are used verbatim.
func readErrorMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil {
		if eb.Message != "" {
			return eb.Message
		}
		return eb.Error
	}
	var quoted string
	if err := json.Unmarshal(data, &quoted); err == nil {
		return quoted
	}

	text := strings.TrimSpace(string(data))
	if strings.HasPrefix(text, "<") || len(text) > 500 {
		// HTML error pages and dumps are not messages
		return ""
	}
	return text
}
