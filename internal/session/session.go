// ABOUTME: Session manager owning the login state machine and in-memory identity
// ABOUTME: Guards async login/rehydration results with generation tickets

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/onlinebooking/booking-cli/internal/client"
	"github.com/onlinebooking/booking-cli/internal/credstore"
)

const (
	MsgLoginSuccess    = "Login successful!"
	MsgLoginFailed     = "Login failed"
	MsgRegisterSuccess = "Registration successful! Please login."
	MsgRegisterFailed  = "Registration failed"
	MsgLoggedOut       = "Logged out successfully"
	MsgSessionExpired  = "Session expired. Please login again."
	msgSuperseded      = "superseded by a newer request"
)

// API is the subset of the backend client the session needs
type API interface {
	SignIn(ctx context.Context, creds client.Credentials) (*client.SignInResponse, error)
	SignUp(ctx context.Context, reg client.Registration) error
	Me(ctx context.Context) (*client.User, error)
}

// Status is the session variant
type Status int

const (
	Unknown Status = iota
	Authenticated
	Anonymous
)

func (s Status) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// State is a snapshot of the session. Identity is non-nil only when Authenticated.
type State struct {
	Status   Status
	Identity *client.User
}

// Role returns the identity's role, or "" when not authenticated
func (s State) Role() client.Role {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}

// Cause names what triggered a state change
type Cause string

const (
	CauseRehydrated      Cause = "rehydrated"
	CauseLogin           Cause = "login"
	CauseLogout          Cause = "logout"
	CauseUnauthorized    Cause = "unauthorized"
	CauseIdentityUpdated Cause = "identity-updated"
)

// Change is delivered to OnChange listeners after the state has been published
type Change struct {
	State State
	Cause Cause
}

// Result reports the outcome of Login or Register.
// Superseded means a newer Login, Logout or forced logout made this result stale;
// it wrote neither the store nor the state.
type Result struct {
	OK         bool
	Message    string
	Superseded bool
	Err        error
}

// IdentityPatch holds locally edited identity fields; empty fields are left as they are
type IdentityPatch struct {
	FirstName string
	LastName  string
	Email     string
}

// Manager is the single owner of session state
type Manager struct {
	api   API
	store credstore.Store
	log   *slog.Logger
	now   func() time.Time

	mu         sync.Mutex
	state      State
	token      string // token the session is bound to; "" when none
	generation uint64
	listeners  []func(Change)
}

// New creates a manager in the Unknown state
func New(api API, store credstore.Store, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		api:   api,
		store: store,
		log:   log,
		now:   time.Now,
		state: State{Status: Unknown},
	}
}

// State returns a copy of the current session state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// OnChange registers fn to be called after every state transition
func (m *Manager) OnChange(fn func(Change)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Start rehydrates the session from the stored token. It blocks on the
// "who am I" call when a token is present.
func (m *Manager) Start(ctx context.Context) {
	token, ok := m.store.Token()

	m.mu.Lock()
	m.generation++
	ticket := m.generation
	if ok {
		m.token = token
	}
	m.mu.Unlock()

	if !ok {
		m.log.Debug("No stored token, session is anonymous")
		m.settleAnonymous(ticket, "", CauseRehydrated)
		return
	}

	if exp, ok := TokenExpiry(token); ok && !exp.After(m.now()) {
		m.log.Info("Stored token expired, skipping rehydration", "expired", exp)
		m.store.ClearTokenIf(token)
		m.settleAnonymous(ticket, token, CauseRehydrated)
		return
	}

	user, err := m.api.Me(ctx)
	if err != nil {
		m.log.Warn("Session rehydration failed", "error", err)
		m.store.ClearTokenIf(token)
		m.settleAnonymous(ticket, token, CauseRehydrated)
		return
	}

	m.mu.Lock()
	if ticket != m.generation {
		m.mu.Unlock()
		m.log.Debug("Discarding stale rehydration result", "ticket", ticket)
		return
	}
	m.state = State{Status: Authenticated, Identity: cloneUser(user)}
	change, listeners := m.changeLocked(CauseRehydrated)
	m.mu.Unlock()

	m.log.Info("Session restored", "username", user.Username, "role", user.Role)
	notify(listeners, change)
}

// Login signs in with creds. On success the token is persisted before the
// identity is published, and listeners run after both.
func (m *Manager) Login(ctx context.Context, creds client.Credentials) Result {
	m.mu.Lock()
	m.generation++
	ticket := m.generation
	m.mu.Unlock()

	resp, err := m.api.SignIn(ctx, creds)
	if err != nil {
		m.log.Warn("Login failed", "username", creds.Username, "error", err)
		return Result{
			Message:    client.UserMessage(err, MsgLoginFailed),
			Superseded: !m.isCurrent(ticket),
			Err:        err,
		}
	}

	m.mu.Lock()
	if ticket != m.generation {
		m.mu.Unlock()
		m.log.Debug("Discarding stale login result", "username", creds.Username, "ticket", ticket)
		return Result{Message: msgSuperseded, Superseded: true}
	}
	m.store.SetToken(resp.AccessToken)
	m.token = resp.AccessToken
	user := resp.User
	m.state = State{Status: Authenticated, Identity: &user}
	change, listeners := m.changeLocked(CauseLogin)
	m.mu.Unlock()

	m.log.Info("Login succeeded", "username", user.Username, "role", user.Role)
	notify(listeners, change)
	return Result{OK: true, Message: MsgLoginSuccess}
}

// Register creates an account. It never changes the session state.
func (m *Manager) Register(ctx context.Context, reg client.Registration) Result {
	if err := m.api.SignUp(ctx, reg); err != nil {
		m.log.Warn("Registration failed", "username", reg.Username, "error", err)
		return Result{Message: client.UserMessage(err, MsgRegisterFailed), Err: err}
	}
	m.log.Info("Registration succeeded", "username", reg.Username, "role", reg.Role)
	return Result{OK: true, Message: MsgRegisterSuccess}
}

// Logout clears the stored token and settles Anonymous. Calling it again is harmless.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.generation++
	m.store.ClearToken()
	m.token = ""
	changed := m.state.Status != Anonymous
	m.state = State{Status: Anonymous}
	change, listeners := m.changeLocked(CauseLogout)
	m.mu.Unlock()

	if changed {
		m.log.Info("Logged out")
		notify(listeners, change)
	}
}

// UpdateIdentity merges patch into the current identity without a backend call.
// It returns false, changing nothing, unless the session is Authenticated.
func (m *Manager) UpdateIdentity(patch IdentityPatch) bool {
	m.mu.Lock()
	if m.state.Status != Authenticated {
		m.mu.Unlock()
		return false
	}
	user := *m.state.Identity
	if patch.FirstName != "" {
		user.FirstName = patch.FirstName
	}
	if patch.LastName != "" {
		user.LastName = patch.LastName
	}
	if patch.Email != "" {
		user.Email = patch.Email
	}
	m.state.Identity = &user
	change, listeners := m.changeLocked(CauseIdentityUpdated)
	m.mu.Unlock()

	notify(listeners, change)
	return true
}

// HandleUnauthorized consumes the dispatcher's 401 event. Only a rejection of
// the token this session is bound to ends the session.
func (m *Manager) HandleUnauthorized(ev client.Unauthorized) {
	m.mu.Lock()
	if ev.Token == "" || ev.Token != m.token {
		m.mu.Unlock()
		m.log.Debug("Ignoring 401 for a token the session does not hold", "path", ev.Path)
		return
	}
	cause := CauseUnauthorized
	if m.state.Status == Unknown {
		// the stored token was rejected during rehydration
		cause = CauseRehydrated
	}
	m.generation++
	m.token = ""
	m.state = State{Status: Anonymous}
	change, listeners := m.changeLocked(cause)
	m.mu.Unlock()

	m.log.Warn("Session ended by backend", "method", ev.Method, "path", ev.Path)
	notify(listeners, change)
}

// settleAnonymous moves to Anonymous if ticket is still current and the
// session is still bound to token.
func (m *Manager) settleAnonymous(ticket uint64, token string, cause Cause) {
	m.mu.Lock()
	if ticket != m.generation || m.token != token {
		m.mu.Unlock()
		return
	}
	m.token = ""
	m.state = State{Status: Anonymous}
	change, listeners := m.changeLocked(cause)
	m.mu.Unlock()

	notify(listeners, change)
}

func (m *Manager) isCurrent(ticket uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ticket == m.generation
}

func (m *Manager) snapshot() State {
	return State{Status: m.state.Status, Identity: cloneUser(m.state.Identity)}
}

// changeLocked must be called with m.mu held
func (m *Manager) changeLocked(cause Cause) (Change, []func(Change)) {
	listeners := make([]func(Change), len(m.listeners))
	copy(listeners, m.listeners)
	return Change{State: m.snapshot(), Cause: cause}, listeners
}

func notify(listeners []func(Change), change Change) {
	for _, fn := range listeners {
		fn(change)
	}
}

func cloneUser(u *client.User) *client.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// TokenExpiry reads the exp claim of a JWT without verifying it.
// Opaque tokens report ok=false.
func TokenExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
