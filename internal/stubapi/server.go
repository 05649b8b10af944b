// ABOUTME: In-memory stand-in for the booking backend used by tests and local demos
// ABOUTME: Serves the auth, booking, payment, and profile endpoints under /api

package stubapi

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/onlinebooking/booking-cli/internal/client"
	"golang.org/x/crypto/bcrypt"
)

// APIPrefix is the path every endpoint is served under
const APIPrefix = "/api"

// DemoAccount is a user seeded into every new server
type DemoAccount struct {
	Username string
	Password string
	Role     client.Role
}

// DemoAccounts are available for sign-in as soon as the server starts
var DemoAccounts = []DemoAccount{
	{Username: "admin", Password: "admin123", Role: client.RoleAdmin},
	{Username: "jdoe", Password: "secret123", Role: client.RoleCustomer},
	{Username: "acme", Password: "business123", Role: client.RoleBusiness},
}

type account struct {
	user         client.User
	passwordHash []byte
}

type paymentIntent struct {
	id          string
	secret      string
	amount      int64
	currency    string
	description string
	status      string
}

// Server holds all backend state in memory
type Server struct {
	secret       []byte
	tokenTTL     time.Duration
	passwordCost int
	log          *slog.Logger
	now          func() time.Time

	mu          sync.RWMutex
	accounts    map[string]*account // by username
	nextUserID  int64
	bookings    map[int64]*client.Booking
	nextBooking int64
	intents     map[string]*paymentIntent
}

// Option customizes a Server
type Option func(*Server)

// WithTokenTTL sets the lifetime of issued access tokens
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

// WithLogger sets the request logger
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithPasswordCost sets the bcrypt cost for stored passwords
func WithPasswordCost(cost int) Option {
	return func(s *Server) { s.passwordCost = cost }
}

// WithSecret sets the HMAC key for access tokens (random by default)
func WithSecret(secret []byte) Option {
	return func(s *Server) { s.secret = secret }
}

// New creates a server seeded with DemoAccounts
func New(opts ...Option) (*Server, error) {
	s := &Server{
		tokenTTL:     24 * time.Hour,
		passwordCost: bcrypt.DefaultCost,
		log:          slog.Default(),
		now:          time.Now,
		accounts:     make(map[string]*account),
		bookings:     make(map[int64]*client.Booking),
		intents:      make(map[string]*paymentIntent),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.secret) == 0 {
		s.secret = make([]byte, 32)
		if _, err := rand.Read(s.secret); err != nil {
			return nil, fmt.Errorf("failed to generate token secret: %w", err)
		}
	}

	for _, demo := range DemoAccounts {
		_, err := s.addAccount(client.Registration{
			FirstName: demo.Username,
			LastName:  "Demo",
			Username:  demo.Username,
			Email:     demo.Username + "@example.com",
			Password:  demo.Password,
			Role:      demo.Role,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed account %s: %w", demo.Username, err)
		}
	}
	return s, nil
}

// route defines an endpoint and who may call it
type route struct {
	method  string
	path    string
	handler http.HandlerFunc
	public  bool
	roles   []client.Role // empty means any authenticated role
}

// members are the roles the booking endpoints accept
var members = []client.Role{client.RoleCustomer, client.RoleBusiness}

func (s *Server) routes() []route {
	return []route{
		// Auth
		{method: http.MethodPost, path: "/auth/signin", handler: s.signIn, public: true},
		{method: http.MethodPost, path: "/auth/signup", handler: s.signUp, public: true},
		{method: http.MethodPost, path: "/auth/signout", handler: s.signOut, public: true},
		{method: http.MethodGet, path: "/auth/me", handler: s.me},

		// Bookings
		{method: http.MethodPost, path: "/booking/create", handler: s.createBooking, roles: members},
		{method: http.MethodGet, path: "/booking/my-bookings", handler: s.myBookings, roles: members},
		{method: http.MethodGet, path: "/booking/my-bookings/{status}", handler: s.myBookingsByStatus, roles: members},
		{method: http.MethodPut, path: "/booking/{id}/cancel", handler: s.cancelBooking, roles: members},
		{method: http.MethodPut, path: "/booking/{id}/reschedule", handler: s.rescheduleBooking, roles: members},
		{method: http.MethodGet, path: "/booking/admin/all", handler: s.allBookings, roles: []client.Role{client.RoleAdmin}},

		// Payments
		{method: http.MethodPost, path: "/stripe/create-payment-intent", handler: s.createPaymentIntent},
		{method: http.MethodPost, path: "/stripe/confirm-payment", handler: s.confirmPayment},
		{method: http.MethodPost, path: "/stripe/cancel-payment", handler: s.cancelPayment},
		{method: http.MethodGet, path: "/stripe/payment-status", handler: s.paymentStatus},

		// Profile
		{method: http.MethodPut, path: "/user/profile", handler: s.updateProfile},
		{method: http.MethodPut, path: "/user/change-password", handler: s.changePassword},
	}
}

// Handler returns the HTTP handler serving every route under APIPrefix
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, r := range s.routes() {
		middlewares := []func(http.HandlerFunc) http.HandlerFunc{s.logRequest}
		if !r.public {
			middlewares = append(middlewares, s.requireAuth, requireRole(s.log, r.roles...))
		}
		mux.HandleFunc(r.method+" "+APIPrefix+r.path, chain(r.handler, middlewares...))
	}
	return mux
}

func (s *Server) addAccount(reg client.Registration) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.passwordCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUserID++
	acct := &account{
		user: client.User{
			ID:        s.nextUserID,
			Username:  reg.Username,
			Email:     reg.Email,
			FirstName: reg.FirstName,
			LastName:  reg.LastName,
			Role:      reg.Role,
		},
		passwordHash: hash,
	}
	if reg.Role == client.RoleCustomer {
		acct.user.CustomerSupportID = fmt.Sprintf("CS-%06d", acct.user.ID)
	}
	s.accounts[reg.Username] = acct
	return acct, nil
}

// messageResponse is the JSON error and notice body
type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeText mirrors the plain-text bodies the booking and payment endpoints return
func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(text))
}
