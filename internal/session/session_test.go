package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/onlinebooking/booking-cli/internal/client"
	"github.com/onlinebooking/booking-cli/internal/credstore"
	"github.com/onlinebooking/booking-cli/internal/logger"
)

// fakeAPI lets tests script each backend call
type fakeAPI struct {
	mu      sync.Mutex
	meCalls int

	signIn func(ctx context.Context, creds client.Credentials) (*client.SignInResponse, error)
	signUp func(ctx context.Context, reg client.Registration) error
	me     func(ctx context.Context) (*client.User, error)
}

func (f *fakeAPI) SignIn(ctx context.Context, creds client.Credentials) (*client.SignInResponse, error) {
	return f.signIn(ctx, creds)
}

func (f *fakeAPI) SignUp(ctx context.Context, reg client.Registration) error {
	return f.signUp(ctx, reg)
}

func (f *fakeAPI) Me(ctx context.Context) (*client.User, error) {
	f.mu.Lock()
	f.meCalls++
	f.mu.Unlock()
	return f.me(ctx)
}

func signInAs(token string, user client.User) func(context.Context, client.Credentials) (*client.SignInResponse, error) {
	return func(context.Context, client.Credentials) (*client.SignInResponse, error) {
		return &client.SignInResponse{AccessToken: token, TokenType: "Bearer", User: user}, nil
	}
}

// newBackend wires a real client and manager against an httptest server
func newBackend(t *testing.T, handler http.HandlerFunc) (*Manager, *credstore.MemoryStore, *client.Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := credstore.NewMemory()
	c := client.New(server.URL, store, client.WithLogger(logger.Discard()))
	m := New(c, store, logger.Discard())
	c.OnUnauthorized(m.HandleUnauthorized)
	return m, store, c
}

func jdoeHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/signin":
			var creds client.Credentials
			json.NewDecoder(r.Body).Decode(&creds)
			if creds.Username != "jdoe" || creds.Password != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"message":"Invalid username or password"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"accessToken":"tok123","id":1,"username":"jdoe","email":"j@x.com","firstName":"J","lastName":"D","role":"CUSTOMER"}`))
		case "/auth/me":
			if r.Header.Get("Authorization") != "Bearer tok123" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"id":1,"username":"jdoe","email":"j@x.com","firstName":"J","lastName":"D","role":"CUSTOMER"}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestLogin_PublishesIdentityAndPersistsToken(t *testing.T) {
	m, store, _ := newBackend(t, jdoeHandler(t))
	m.Start(context.Background())

	if got := m.State().Status; got != Anonymous {
		t.Fatalf("expected anonymous after start without token, got %s", got)
	}

	res := m.Login(context.Background(), client.Credentials{Username: "jdoe", Password: "secret"})
	if !res.OK {
		t.Fatalf("expected login to succeed, got %+v", res)
	}
	if res.Message != MsgLoginSuccess {
		t.Errorf("expected %q, got %q", MsgLoginSuccess, res.Message)
	}

	state := m.State()
	if state.Status != Authenticated {
		t.Fatalf("expected authenticated, got %s", state.Status)
	}
	want := client.User{ID: 1, Username: "jdoe", Email: "j@x.com", FirstName: "J", LastName: "D", Role: client.RoleCustomer}
	if *state.Identity != want {
		t.Errorf("expected identity %+v, got %+v", want, *state.Identity)
	}
	if token, ok := store.Token(); !ok || token != "tok123" {
		t.Errorf("expected stored token tok123, got %q (%v)", token, ok)
	}
}

func TestLogin_RoleMatchesResponse(t *testing.T) {
	for _, role := range []client.Role{client.RoleCustomer, client.RoleBusiness, client.RoleAdmin} {
		t.Run(string(role), func(t *testing.T) {
			api := &fakeAPI{signIn: signInAs("t-"+string(role), client.User{ID: 7, Username: "u", Role: role})}
			m := New(api, credstore.NewMemory(), logger.Discard())

			m.Login(context.Background(), client.Credentials{Username: "u", Password: "p"})

			if got := m.State().Role(); got != role {
				t.Errorf("expected role %s, got %s", role, got)
			}
		})
	}
}

func TestLoginThenLogout(t *testing.T) {
	tests := []struct {
		name   string
		logins int
	}{
		{"single login", 1},
		{"repeated logins", 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := credstore.NewMemory()
			api := &fakeAPI{signIn: signInAs("tok", client.User{ID: 1, Username: "u", Role: client.RoleCustomer})}
			m := New(api, store, logger.Discard())

			for i := 0; i < tc.logins; i++ {
				m.Login(context.Background(), client.Credentials{Username: "u", Password: "p"})
			}
			m.Logout()

			state := m.State()
			if state.Status != Anonymous || state.Identity != nil {
				t.Errorf("expected anonymous without identity, got %+v", state)
			}
			if _, ok := store.Token(); ok {
				t.Error("expected store to hold no token after logout")
			}
		})
	}
}

func TestLogout_Idempotent(t *testing.T) {
	store := credstore.NewMemory()
	m := New(&fakeAPI{}, store, logger.Discard())
	m.Start(context.Background())

	var changes int
	m.OnChange(func(Change) { changes++ })

	m.Logout()
	m.Logout()

	if got := m.State().Status; got != Anonymous {
		t.Errorf("expected anonymous, got %s", got)
	}
	if changes != 0 {
		t.Errorf("expected no change notifications when already anonymous, got %d", changes)
	}
}

func TestLogin_FailureMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"backend message", &client.ValidationError{Status: 400, Message: "Bad credentials"}, "Bad credentials"},
		{"no message", &client.UnexpectedError{Status: 500}, MsgLoginFailed},
		{"transport failure", &client.TransportError{Message: "cannot connect"}, MsgLoginFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{signIn: func(context.Context, client.Credentials) (*client.SignInResponse, error) {
				return nil, tc.err
			}}
			m := New(api, credstore.NewMemory(), logger.Discard())
			m.Start(context.Background())

			res := m.Login(context.Background(), client.Credentials{Username: "u", Password: "p"})

			if res.OK {
				t.Fatal("expected failure")
			}
			if res.Message != tc.want {
				t.Errorf("expected message %q, got %q", tc.want, res.Message)
			}
			if !errors.Is(res.Err, tc.err) {
				t.Errorf("expected underlying error to be kept, got %v", res.Err)
			}
			if got := m.State().Status; got != Anonymous {
				t.Errorf("expected state to stay anonymous, got %s", got)
			}
		})
	}
}

func TestLogin_BadCredentialsAgainstBackend(t *testing.T) {
	m, store, _ := newBackend(t, jdoeHandler(t))
	m.Start(context.Background())

	res := m.Login(context.Background(), client.Credentials{Username: "jdoe", Password: "wrong"})

	if res.OK || res.Superseded {
		t.Fatalf("expected a plain failure, got %+v", res)
	}
	if res.Message != "Invalid username or password" {
		t.Errorf("expected backend message, got %q", res.Message)
	}
	if _, ok := store.Token(); ok {
		t.Error("expected no token after failed login")
	}
}

func TestUnauthorized_AnyEndpointEndsSession(t *testing.T) {
	endpoints := []struct {
		name string
		call func(*client.Client) error
	}{
		{"me", func(c *client.Client) error { _, err := c.Me(context.Background()); return err }},
		{"bookings", func(c *client.Client) error { _, err := c.MyBookings(context.Background()); return err }},
		{"payment status", func(c *client.Client) error {
			_, err := c.PaymentStatus(context.Background(), "pi_1")
			return err
		}},
		{"profile", func(c *client.Client) error {
			return c.UpdateProfile(context.Background(), client.ProfileUpdate{FirstName: "Jo"})
		}},
	}

	for _, ep := range endpoints {
		t.Run(ep.name, func(t *testing.T) {
			m, store, c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/auth/signin" {
					w.Write([]byte(`{"accessToken":"tok123","id":1,"username":"jdoe","role":"CUSTOMER"}`))
					return
				}
				w.WriteHeader(http.StatusUnauthorized)
			})
			m.Start(context.Background())
			m.Login(context.Background(), client.Credentials{Username: "jdoe", Password: "secret"})

			var causes []Cause
			m.OnChange(func(ch Change) { causes = append(causes, ch.Cause) })

			err := ep.call(c)
			if !client.IsUnauthorized(err) {
				t.Fatalf("expected authorization error, got %v", err)
			}

			if got := m.State().Status; got != Anonymous {
				t.Errorf("expected anonymous, got %s", got)
			}
			if _, ok := store.Token(); ok {
				t.Error("expected store to be cleared")
			}
			if len(causes) != 1 || causes[0] != CauseUnauthorized {
				t.Errorf("expected exactly one unauthorized change, got %v", causes)
			}
		})
	}
}

func TestStart_StoredTokenRejected(t *testing.T) {
	m, store, _ := newBackend(t, jdoeHandler(t))
	store.SetToken("expired-token")

	m.Start(context.Background())

	if got := m.State().Status; got != Anonymous {
		t.Errorf("expected anonymous, got %s", got)
	}
	if _, ok := store.Token(); ok {
		t.Error("expected store to end empty")
	}
}

func TestStart_RestoresSession(t *testing.T) {
	m, store, _ := newBackend(t, jdoeHandler(t))
	store.SetToken("tok123")

	var got Change
	m.OnChange(func(ch Change) { got = ch })
	m.Start(context.Background())

	state := m.State()
	if state.Status != Authenticated || state.Identity.Username != "jdoe" {
		t.Fatalf("expected restored jdoe session, got %+v", state)
	}
	if got.Cause != CauseRehydrated {
		t.Errorf("expected rehydrated cause, got %q", got.Cause)
	}
	if token, _ := store.Token(); token != "tok123" {
		t.Errorf("expected token to be kept, got %q", token)
	}
}

func TestStart_TransportFailureClearsToken(t *testing.T) {
	store := credstore.NewMemory()
	store.SetToken("opaque")
	api := &fakeAPI{me: func(context.Context) (*client.User, error) {
		return nil, &client.TransportError{Message: "cannot connect"}
	}}
	m := New(api, store, logger.Discard())

	m.Start(context.Background())

	if got := m.State().Status; got != Anonymous {
		t.Errorf("expected anonymous, got %s", got)
	}
	if _, ok := store.Token(); ok {
		t.Error("expected token to be cleared after failed rehydration")
	}
}

func TestStart_ExpiredJWTSkipsRoundTrip(t *testing.T) {
	token := signedToken(t, time.Now().Add(-time.Hour))
	store := credstore.NewMemory()
	store.SetToken(token)
	api := &fakeAPI{me: func(context.Context) (*client.User, error) {
		t.Error("expected no who-am-I call for an expired token")
		return nil, errors.New("unreachable")
	}}
	m := New(api, store, logger.Discard())

	m.Start(context.Background())

	if got := m.State().Status; got != Anonymous {
		t.Errorf("expected anonymous, got %s", got)
	}
	if _, ok := store.Token(); ok {
		t.Error("expected expired token to be cleared")
	}
	if api.meCalls != 0 {
		t.Errorf("expected 0 who-am-I calls, got %d", api.meCalls)
	}
}

func TestStart_UnexpiredJWTIsVerifiedWithBackend(t *testing.T) {
	store := credstore.NewMemory()
	store.SetToken(signedToken(t, time.Now().Add(time.Hour)))
	api := &fakeAPI{me: func(context.Context) (*client.User, error) {
		return &client.User{ID: 3, Username: "admin", Role: client.RoleAdmin}, nil
	}}
	m := New(api, store, logger.Discard())

	m.Start(context.Background())

	if got := m.State().Role(); got != client.RoleAdmin {
		t.Errorf("expected admin session, got %q", got)
	}
	if api.meCalls != 1 {
		t.Errorf("expected 1 who-am-I call, got %d", api.meCalls)
	}
}

func TestConcurrentLogins_LastIssuedWins(t *testing.T) {
	gates := map[string]chan struct{}{
		"alice": make(chan struct{}),
		"bob":   make(chan struct{}),
	}
	started := make(chan string, 2)
	api := &fakeAPI{signIn: func(_ context.Context, creds client.Credentials) (*client.SignInResponse, error) {
		started <- creds.Username
		<-gates[creds.Username]
		return &client.SignInResponse{
			AccessToken: "tok-" + creds.Username,
			User:        client.User{Username: creds.Username, Role: client.RoleCustomer},
		}, nil
	}}
	store := credstore.NewMemory()
	m := New(api, store, logger.Discard())
	m.Start(context.Background())

	first := make(chan Result, 1)
	second := make(chan Result, 1)

	go func() { first <- m.Login(context.Background(), client.Credentials{Username: "alice", Password: "p"}) }()
	<-started
	go func() { second <- m.Login(context.Background(), client.Credentials{Username: "bob", Password: "p"}) }()
	<-started

	// second-issued resolves first
	close(gates["bob"])
	bobResult := <-second
	close(gates["alice"])
	aliceResult := <-first

	if !bobResult.OK {
		t.Errorf("expected last-issued login to succeed, got %+v", bobResult)
	}
	if aliceResult.OK || !aliceResult.Superseded {
		t.Errorf("expected first-issued login to be superseded, got %+v", aliceResult)
	}

	state := m.State()
	if state.Identity == nil || state.Identity.Username != "bob" {
		t.Errorf("expected bob's session, got %+v", state.Identity)
	}
	if token, _ := store.Token(); token != "tok-bob" {
		t.Errorf("expected tok-bob to be stored, got %q", token)
	}
}

func TestLogout_SupersedesInflightLogin(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	api := &fakeAPI{signIn: func(context.Context, client.Credentials) (*client.SignInResponse, error) {
		close(started)
		<-release
		return &client.SignInResponse{AccessToken: "late", User: client.User{Username: "u"}}, nil
	}}
	store := credstore.NewMemory()
	m := New(api, store, logger.Discard())

	done := make(chan Result, 1)
	go func() { done <- m.Login(context.Background(), client.Credentials{Username: "u", Password: "p"}) }()
	<-started
	m.Logout()
	close(release)

	if res := <-done; !res.Superseded {
		t.Errorf("expected superseded login, got %+v", res)
	}
	if got := m.State().Status; got != Anonymous {
		t.Errorf("expected anonymous, got %s", got)
	}
	if _, ok := store.Token(); ok {
		t.Error("expected no token to be written by a superseded login")
	}
}

func TestLogin_TokenStoredBeforeListenersRun(t *testing.T) {
	store := credstore.NewMemory()
	api := &fakeAPI{signIn: signInAs("tok-order", client.User{Username: "u", Role: client.RoleCustomer})}
	m := New(api, store, logger.Discard())

	var sawToken string
	var sawStatus Status
	m.OnChange(func(ch Change) {
		sawToken, _ = store.Token()
		sawStatus = m.State().Status
	})

	m.Login(context.Background(), client.Credentials{Username: "u", Password: "p"})

	if sawToken != "tok-order" {
		t.Errorf("expected listener to observe stored token, got %q", sawToken)
	}
	if sawStatus != Authenticated {
		t.Errorf("expected listener to observe authenticated state, got %s", sawStatus)
	}
}

func TestRegister_DoesNotChangeState(t *testing.T) {
	api := &fakeAPI{signUp: func(context.Context, client.Registration) error { return nil }}
	m := New(api, credstore.NewMemory(), logger.Discard())
	m.Start(context.Background())

	res := m.Register(context.Background(), client.Registration{Username: "newbie"})

	if !res.OK || res.Message != MsgRegisterSuccess {
		t.Errorf("expected registration success, got %+v", res)
	}
	if got := m.State().Status; got != Anonymous {
		t.Errorf("expected anonymous after registration, got %s", got)
	}
}

func TestRegister_Failure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"taken", &client.ValidationError{Status: 400, Message: "Error: Username is already taken!"}, "Error: Username is already taken!"},
		{"no body", &client.ValidationError{Status: 400}, MsgRegisterFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{signUp: func(context.Context, client.Registration) error { return tc.err }}
			m := New(api, credstore.NewMemory(), logger.Discard())

			res := m.Register(context.Background(), client.Registration{})
			if res.OK || res.Message != tc.want {
				t.Errorf("expected failure %q, got %+v", tc.want, res)
			}
		})
	}
}

func TestUpdateIdentity(t *testing.T) {
	api := &fakeAPI{signIn: signInAs("tok", client.User{ID: 1, Username: "jdoe", FirstName: "J", LastName: "D", Email: "j@x.com", Role: client.RoleCustomer})}
	m := New(api, credstore.NewMemory(), logger.Discard())

	if m.UpdateIdentity(IdentityPatch{FirstName: "Nobody"}) {
		t.Error("expected no-op while not authenticated")
	}
	if m.State().Identity != nil {
		t.Error("expected no identity to be created")
	}

	m.Login(context.Background(), client.Credentials{Username: "jdoe", Password: "p"})

	var cause Cause
	m.OnChange(func(ch Change) { cause = ch.Cause })

	if !m.UpdateIdentity(IdentityPatch{FirstName: "Jane", Email: "jane@x.com"}) {
		t.Fatal("expected update to apply")
	}

	id := m.State().Identity
	if id.FirstName != "Jane" || id.Email != "jane@x.com" {
		t.Errorf("expected merged fields, got %+v", id)
	}
	if id.LastName != "D" || id.Role != client.RoleCustomer {
		t.Errorf("expected untouched fields kept, got %+v", id)
	}
	if cause != CauseIdentityUpdated {
		t.Errorf("expected identity-updated cause, got %q", cause)
	}
}

func TestStateIsACopy(t *testing.T) {
	api := &fakeAPI{signIn: signInAs("tok", client.User{Username: "jdoe", Role: client.RoleCustomer})}
	m := New(api, credstore.NewMemory(), logger.Discard())
	m.Login(context.Background(), client.Credentials{Username: "jdoe", Password: "p"})

	m.State().Identity.Role = client.RoleAdmin

	if got := m.State().Role(); got != client.RoleCustomer {
		t.Errorf("expected callers not to mutate session identity, got %s", got)
	}
}

func TestHandleUnauthorized_IgnoresForeignTokens(t *testing.T) {
	store := credstore.NewMemory()
	api := &fakeAPI{signIn: signInAs("current", client.User{Username: "u", Role: client.RoleCustomer})}
	m := New(api, store, logger.Discard())
	m.Login(context.Background(), client.Credentials{Username: "u", Password: "p"})

	m.HandleUnauthorized(client.Unauthorized{Path: "/booking/my-bookings", Token: "stale"})
	m.HandleUnauthorized(client.Unauthorized{Path: "/auth/signin"})

	if got := m.State().Status; got != Authenticated {
		t.Errorf("expected session to survive unrelated 401s, got %s", got)
	}

	m.HandleUnauthorized(client.Unauthorized{Path: "/booking/my-bookings", Token: "current"})
	if got := m.State().Status; got != Anonymous {
		t.Errorf("expected session to end, got %s", got)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(90 * time.Minute).Truncate(time.Second)

	got, ok := TokenExpiry(signedToken(t, exp))
	if !ok || !got.Equal(exp) {
		t.Errorf("expected expiry %v, got %v (%v)", exp, got, ok)
	}

	for _, opaque := range []string{"tok123", "", strings.Repeat("x", 40)} {
		if _, ok := TokenExpiry(opaque); ok {
			t.Errorf("expected no expiry for opaque token %q", opaque)
		}
	}
}

func TestStatusString(t *testing.T) {
	tests := map[Status]string{Unknown: "unknown", Authenticated: "authenticated", Anonymous: "anonymous"}
	for status, want := range tests {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", status, got, want)
		}
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "jdoe",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}
