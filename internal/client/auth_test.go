package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onlinebooking/booking-cli/internal/credstore"
)

func TestSignIn_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/signin" || r.Method != http.MethodPost {
			t.Errorf("expected POST /auth/signin, got %s %s", r.Method, r.URL.Path)
		}
		var creds Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Username != "jdoe" || creds.Password != "secret" {
			t.Errorf("unexpected credentials %+v", creds)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"accessToken":"tok123","tokenType":"Bearer","id":1,"username":"jdoe","email":"j@x.com","firstName":"J","lastName":"D","role":"CUSTOMER"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, credstore.NewMemory())
	resp, err := c.SignIn(context.Background(), Credentials{Username: "jdoe", Password: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.AccessToken != "tok123" {
		t.Errorf("expected tok123, got %s", resp.AccessToken)
	}
	if resp.ID != 1 || resp.Role != RoleCustomer || resp.Email != "j@x.com" {
		t.Errorf("unexpected identity %+v", resp.User)
	}
}

func TestSignIn_MissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1,"username":"jdoe"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, credstore.NewMemory())
	_, err := c.SignIn(context.Background(), Credentials{Username: "jdoe", Password: "secret"})

	var unexpErr *UnexpectedError
	if !errors.As(err, &unexpErr) {
		t.Fatalf("expected UnexpectedError, got %v", err)
	}
}

func TestSignIn_RejectsEmptyCredentialsWithoutRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	c := newTestClient(server.URL, credstore.NewMemory())
	_, err := c.SignIn(context.Background(), Credentials{Username: "jdoe"})

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if valErr.Message != "password is required" {
		t.Errorf("unexpected message %q", valErr.Message)
	}
	if called {
		t.Error("expected no request for invalid credentials")
	}
}

func TestSignUp_Validation(t *testing.T) {
	c := newTestClient("http://localhost:99999", credstore.NewMemory())

	tests := []struct {
		name string
		reg  Registration
	}{
		{"missing names", Registration{Username: "jdoe", Email: "j@x.com", Password: "secret1", Role: RoleCustomer}},
		{"bad email", Registration{FirstName: "J", LastName: "D", Username: "jdoe", Email: "nope", Password: "secret1", Role: RoleCustomer}},
		{"short password", Registration{FirstName: "J", LastName: "D", Username: "jdoe", Email: "j@x.com", Password: "123", Role: RoleCustomer}},
		{"admin self-registration", Registration{FirstName: "J", LastName: "D", Username: "jdoe", Email: "j@x.com", Password: "secret1", Role: RoleAdmin}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := c.SignUp(context.Background(), tc.reg)
			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestSignUp_Success(t *testing.T) {
	var got Registration
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte("User registered successfully!"))
	}))
	defer server.Close()

	c := newTestClient(server.URL, credstore.NewMemory())
	reg := Registration{FirstName: "Jane", LastName: "Doe", Username: "jdoe", Email: "j@x.com", Password: "secret1", Role: RoleBusiness}
	if err := c.SignUp(context.Background(), reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != reg {
		t.Errorf("expected %+v sent, got %+v", reg, got)
	}
}

func TestMe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(User{ID: 7, Username: "admin", Role: RoleAdmin})
	}))
	defer server.Close()

	store := credstore.NewMemory()
	store.SetToken("tok")
	c := newTestClient(server.URL, store)

	user, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 7 || user.Role != RoleAdmin {
		t.Errorf("unexpected user %+v", user)
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleCustomer, RoleBusiness, RoleAdmin} {
		if !r.Valid() {
			t.Errorf("expected %s to be valid", r)
		}
	}
	if Role("GUEST").Valid() {
		t.Error("expected GUEST to be invalid")
	}
}
