// ABOUTME: Request logging, bearer token authentication, and role checks for the stub backend
// ABOUTME: Middleware compose with chain in declaration order (first is outermost)

package stubapi

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/onlinebooking/booking-cli/internal/client"
)

// chain applies middleware so that chain(h, a, b) runs as a(b(h))
func chain(h http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequest logs each request with the caller's X-Request-ID, or a fresh one
func (s *Server) logRequest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		s.log.Info("Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

type contextKey string

const accountKey contextKey = "account"

// requireAuth rejects requests without a valid bearer token for a known account
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.log.Debug("Auth rejected: missing bearer token", "path", r.URL.Path)
			writeMessage(w, http.StatusUnauthorized, "Full authentication is required to access this resource")
			return
		}

		username, err := s.parseToken(token)
		if err != nil {
			s.log.Debug("Auth rejected: invalid token", "path", r.URL.Path, "error", err)
			writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		s.mu.RLock()
		acct := s.accounts[username]
		s.mu.RUnlock()
		if acct == nil {
			writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), accountKey, acct)))
	}
}

// requireRole returns middleware admitting only the listed roles (any role when empty).
// Must run after requireAuth.
func requireRole(log *slog.Logger, roles ...client.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			acct := accountFrom(r)
			if len(roles) > 0 && !slices.Contains(roles, acct.user.Role) {
				log.Warn("Role authorization denied",
					"path", r.URL.Path,
					"method", r.Method,
					"required_roles", roles,
					"user_role", acct.user.Role,
					"username", acct.user.Username,
				)
				writeMessage(w, http.StatusForbidden, "Access Denied")
				return
			}
			next(w, r)
		}
	}
}

// accountFrom returns the authenticated account stored by requireAuth
func accountFrom(r *http.Request) *account {
	acct, _ := r.Context().Value(accountKey).(*account)
	return acct
}
