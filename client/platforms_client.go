// Package client provides the REST client for connecting to the meetborg backend API.
// This file contains the platform-credential endpoints.
package client

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// CredentialStatus is the connection status of a platform credential.
type CredentialStatus string

// Platform credential statuses.
const (
	CredentialActive   CredentialStatus = "active"
	CredentialInactive CredentialStatus = "inactive"
	CredentialError    CredentialStatus = "error"
)

// PlatformCredential is a stored meeting-platform account.
// The secret is write-only: the backend never returns it and the client
// never re-reads it after submission.
type PlatformCredential struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	PlatformType Platform         `json:"platform_type"`
	Email        string           `json:"email"`
	Status       CredentialStatus `json:"status"`
	ErrorMessage *string          `json:"error_message"`
	LastTestedAt *time.Time       `json:"last_tested_at"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// PlatformCredentialCreateRequest is the body for registering a credential.
type PlatformCredentialCreateRequest struct {
	PlatformType Platform `json:"platform_type"`
	Email        string   `json:"email"`
	Password     string   `json:"password,omitempty"`
}

// PlatformCredentialListResponse is the list envelope returned by the backend.
type PlatformCredentialListResponse struct {
	Platforms []PlatformCredential `json:"platforms"`
	Total     int                  `json:"total"`
}

// TestConnectionResponse is the result of a credential connection test.
type TestConnectionResponse struct {
	Success bool             `json:"success"`
	Status  CredentialStatus `json:"status"`
	Message string           `json:"message"`
}

// ListPlatformCredentials lists the current user's platform credentials.
func (c *Client) ListPlatformCredentials(ctx context.Context) (*PlatformCredentialListResponse, error) {
	var resp PlatformCredentialListResponse
	err := c.do(ctx, request{
		method:        http.MethodGet,
		path:          "/platforms",
		authenticated: true,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("listing platform credentials: %w", err)
	}
	return &resp, nil
}

// CreatePlatformCredential registers a platform account.
func (c *Client) CreatePlatformCredential(ctx context.Context, req *PlatformCredentialCreateRequest) (*PlatformCredential, error) {
	var cred PlatformCredential
	err := c.do(ctx, request{
		method:        http.MethodPost,
		path:          "/platforms",
		body:          req,
		authenticated: true,
	}, &cred)
	if err != nil {
		return nil, fmt.Errorf("creating platform credential: %w", err)
	}
	return &cred, nil
}

// DeletePlatformCredential removes a platform credential.
func (c *Client) DeletePlatformCredential(ctx context.Context, id string) error {
	err := c.do(ctx, request{
		method:        http.MethodDelete,
		path:          "/platforms/" + id,
		authenticated: true,
	}, nil)
	if err != nil {
		return fmt.Errorf("deleting platform credential %s: %w", id, err)
	}
	return nil
}

// TestPlatformCredential asks the backend to verify a credential against the
// platform and refresh its connection status.
func (c *Client) TestPlatformCredential(ctx context.Context, id string) (*TestConnectionResponse, error) {
	var resp TestConnectionResponse
	err := c.do(ctx, request{
		method:        http.MethodPost,
		path:          "/platforms/" + id + "/test",
		authenticated: true,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("testing platform credential %s: %w", id, err)
	}
	return &resp, nil
}
