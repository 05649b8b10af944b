// ABOUTME: Stub auth endpoints: sign in, sign up, sign out, and current user
// ABOUTME: Issues HS256 access tokens and checks bcrypt password hashes

package stubapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/onlinebooking/booking-cli/internal/client"
	"golang.org/x/crypto/bcrypt"
)

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var creds client.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if creds.Username == "" || creds.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	s.mu.RLock()
	acct := s.accounts[creds.Username]
	var user client.User
	var hash []byte
	if acct != nil {
		user, hash = acct.user, acct.passwordHash
	}
	s.mu.RUnlock()

	if acct == nil || bcrypt.CompareHashAndPassword(hash, []byte(creds.Password)) != nil {
		s.log.Warn("Authentication failed", "username", creds.Username)
		writeMessage(w, http.StatusUnauthorized, "Bad credentials")
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		s.log.Error("Failed to issue token", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, client.SignInResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        user,
	})
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var reg client.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if reg.Role == "" {
		reg.Role = client.RoleCustomer
	}
	if msg := checkRegistration(reg); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}

	s.mu.RLock()
	_, taken := s.accounts[reg.Username]
	emailTaken := s.emailInUseLocked(reg.Email, "")
	s.mu.RUnlock()

	if taken {
		writeMessage(w, http.StatusBadRequest, "Error: Username is already taken!")
		return
	}
	if emailTaken {
		writeMessage(w, http.StatusBadRequest, "Error: Email is already in use!")
		return
	}

	if _, err := s.addAccount(reg); err != nil {
		s.log.Error("Failed to create account", "username", reg.Username, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to create account")
		return
	}
	s.log.Info("Account created", "username", reg.Username, "role", reg.Role)
	writeMessage(w, http.StatusOK, "User registered successfully!")
}

// signOut is stateless; tokens stay valid until they expire
func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "User signed out successfully!")
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	acct := accountFrom(r)
	s.mu.RLock()
	user := acct.user
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, user)
}

// checkRegistration mirrors the backend's bean validation on sign-up
func checkRegistration(reg client.Registration) string {
	switch {
	case reg.Username == "" || reg.Email == "" || reg.Password == "":
		return "Username, email and password are required"
	case len(reg.Username) < 3 || len(reg.Username) > 20:
		return "Username must be between 3 and 20 characters"
	case !strings.Contains(reg.Email, "@"):
		return "Email must be valid"
	case len(reg.Password) < 6:
		return "Password must be at least 6 characters"
	case reg.Role != client.RoleCustomer && reg.Role != client.RoleBusiness:
		return "Role must be CUSTOMER or BUSINESS"
	}
	return ""
}

// emailInUseLocked reports whether another account than except uses email.
// Caller holds s.mu.
func (s *Server) emailInUseLocked(email, except string) bool {
	for username, acct := range s.accounts {
		if username != except && strings.EqualFold(acct.user.Email, email) {
			return true
		}
	}
	return false
}

func (s *Server) issueToken(user client.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.Username,
		"uid":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
		"jti":  uuid.NewString(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// parseToken verifies token and returns its subject
func (s *Server) parseToken(token string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	parsed, err := parser.Parse(token, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	subject, err := parsed.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", errors.New("token has no subject")
	}
	return subject, nil
}

// IssueToken mints an access token for username, for seeding clients in tests
func (s *Server) IssueToken(username string) (string, error) {
	s.mu.RLock()
	acct := s.accounts[username]
	var user client.User
	if acct != nil {
		user = acct.user
	}
	s.mu.RUnlock()
	if acct == nil {
		return "", fmt.Errorf("unknown account %q", username)
	}
	return s.issueToken(user)
}
