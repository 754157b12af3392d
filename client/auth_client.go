// Package client provides the REST client for connecting to the meetborg backend API.
// This file contains the auth endpoints.
package client

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// RegisterRequest is the body for account registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// LoginRequest is the body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the bearer token issued by login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is the authenticated user's profile.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

// FirstUserResponse reports whether any account exists yet.
type FirstUserResponse struct {
	IsFirstUser bool `json:"is_first_user"`
}

// Register creates a new account. The first registered account becomes
// the superuser.
func (c *Client) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	var user User
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/register",
		body:   req,
	}, &user)
	if err != nil {
		return nil, fmt.Errorf("registering: %w", err)
	}
	return &user, nil
}

// Login exchanges username/password for a bearer token and replaces the
// session credential with it.
func (c *Client) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	var token TokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   req,
	}, &token)
	if err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}

	c.session.Replace(token.AccessToken)
	return &token, nil
}

// GetProfile retrieves the authenticated user's profile.
func (c *Client) GetProfile(ctx context.Context) (*User, error) {
	var user User
	err := c.do(ctx, request{
		method:        http.MethodGet,
		path:          "/auth/me",
		authenticated: true,
	}, &user)
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return &user, nil
}

// CheckFirstUser reports whether the backend has no accounts yet.
// This endpoint is unauthenticated.
func (c *Client) CheckFirstUser(ctx context.Context) (*FirstUserResponse, error) {
	var resp FirstUserResponse
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/first-user",
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("checking first user: %w", err)
	}
	return &resp, nil
}
