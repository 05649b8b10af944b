// ABOUTME: Stub profile endpoints for editing names, email, and password
// ABOUTME: Changes apply to the authenticated account only

package stubapi

import (
	"encoding/json"
	"net/http"

	"github.com/onlinebooking/booking-cli/internal/client"
	"golang.org/x/crypto/bcrypt"
)

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	acct := accountFrom(r)

	var update client.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	if update.Email != "" && s.emailInUseLocked(update.Email, acct.user.Username) {
		s.mu.Unlock()
		writeMessage(w, http.StatusBadRequest, "Error: Email is already in use!")
		return
	}
	if update.FirstName != "" {
		acct.user.FirstName = update.FirstName
	}
	if update.LastName != "" {
		acct.user.LastName = update.LastName
	}
	if update.Email != "" {
		acct.user.Email = update.Email
	}
	user := acct.user
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	acct := accountFrom(r)

	var change client.PasswordChange
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(change.NewPassword) < 6 {
		writeMessage(w, http.StatusBadRequest, "New password must be at least 6 characters")
		return
	}

	s.mu.RLock()
	current := acct.passwordHash
	s.mu.RUnlock()
	if bcrypt.CompareHashAndPassword(current, []byte(change.CurrentPassword)) != nil {
		writeMessage(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(change.NewPassword), s.passwordCost)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid new password")
		return
	}

	s.mu.Lock()
	acct.passwordHash = hash
	s.mu.Unlock()

	s.log.Info("Password changed", "username", acct.user.Username)
	writeMessage(w, http.StatusOK, "Password changed successfully")
}
