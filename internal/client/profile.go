// ABOUTME: Profile endpoints for the signed-in user
// ABOUTME: Updates name and email and changes the password

package client

import (
	"context"
	"net/http"
)

// ProfileUpdate is the body of PUT /user/profile; empty fields are left unchanged
type ProfileUpdate struct {
	FirstName string `json:"firstName,omitempty" validate:"max=50"`
	LastName  string `json:"lastName,omitempty" validate:"max=50"`
	Email     string `json:"email,omitempty" validate:"omitempty,email,max=50"`
}

// PasswordChange is the body of PUT /user/change-password
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=40"`
}

// UpdateProfile calls PUT /user/profile
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	if err := validate(update); err != nil {
		return err
	}
	return c.Do(ctx, http.MethodPut, "/user/profile", update, nil)
}

// ChangePassword calls PUT /user/change-password
func (c *Client) ChangePassword(ctx context.Context, change PasswordChange) error {
	if err := validate(change); err != nil {
		return err
	}
	return c.Do(ctx, http.MethodPut, "/user/change-password", change, nil)
}
