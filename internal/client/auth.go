// ABOUTME: Authentication endpoints: sign in, sign up, and current user lookup
// ABOUTME: Defines the user and role wire types shared with the session layer

package client

import (
	"context"
	"net/http"
)

// Role is the platform role of a user
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleBusiness Role = "BUSINESS"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleBusiness, RoleAdmin:
		return true
	}
	return false
}

// User is the identity returned by /auth/signin and /auth/me
type User struct {
	ID                int64  `json:"id" yaml:"id"`
	Username          string `json:"username" yaml:"username"`
	Email             string `json:"email" yaml:"email"`
	FirstName         string `json:"firstName" yaml:"firstName"`
	LastName          string `json:"lastName" yaml:"lastName"`
	Role              Role   `json:"role" yaml:"role"`
	CustomerSupportID string `json:"customerSupportId,omitempty" yaml:"customerSupportId,omitempty"`
}

// Credentials is the sign-in request body
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignInResponse carries the access token plus the user's identity
type SignInResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType,omitempty"`
	User
}

// Registration is the sign-up request body
type Registration struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Username  string `json:"username" validate:"required,min=3,max=20"`
	Email     string `json:"email" validate:"required,email,max=50"`
	Password  string `json:"password" validate:"required,min=6,max=40"`
	Role      Role   `json:"role" validate:"required,oneof=CUSTOMER BUSINESS"`
}

// SignIn calls POST /auth/signin
func (c *Client) SignIn(ctx context.Context, creds Credentials) (*SignInResponse, error) {
	if err := validate(creds); err != nil {
		return nil, err
	}

	var resp SignInResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/signin", creds, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &UnexpectedError{Status: http.StatusOK, Message: "sign-in response did not include an access token"}
	}
	return &resp, nil
}

// SignUp calls POST /auth/signup. It has no session side effect.
func (c *Client) SignUp(ctx context.Context, reg Registration) error {
	if err := validate(reg); err != nil {
		return err
	}
	return c.Do(ctx, http.MethodPost, "/auth/signup", reg, nil)
}

// Me calls GET /auth/me with the stored credential
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
