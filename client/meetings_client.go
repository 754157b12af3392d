// Package client provides the REST client for connecting to the meetborg backend API.
// This file contains the meeting endpoints and the platform-detection endpoint.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Platform identifies a conferencing platform derived from a meeting URL.
type Platform string

// Known platforms.
const (
	PlatformGoogleMeet     Platform = "google_meet"
	PlatformZoom           Platform = "zoom"
	PlatformMicrosoftTeams Platform = "microsoft_teams"
	PlatformWebex          Platform = "webex"
	PlatformJitsi          Platform = "jitsi"
	PlatformOther          Platform = "other"
)

// IsKnown reports whether p is one of the platforms the backend can emit.
func (p Platform) IsKnown() bool {
	switch p {
	case PlatformGoogleMeet, PlatformZoom, PlatformMicrosoftTeams,
		PlatformWebex, PlatformJitsi, PlatformOther:
		return true
	default:
		return false
	}
}

// IsCredentialPlatform reports whether the backend accepts bot credentials
// for p. Detection covers more platforms than the bot can sign in to.
func (p Platform) IsCredentialPlatform() bool {
	switch p {
	case PlatformGoogleMeet, PlatformZoom, PlatformMicrosoftTeams:
		return true
	default:
		return false
	}
}

// DisplayName returns a human-readable platform name.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformGoogleMeet:
		return "Google Meet"
	case PlatformZoom:
		return "Zoom"
	case PlatformMicrosoftTeams:
		return "Microsoft Teams"
	case PlatformWebex:
		return "Cisco Webex"
	case PlatformJitsi:
		return "Jitsi Meet"
	default:
		return "Other Platform"
	}
}

// MeetingStatus is the lifecycle status of a meeting record.
type MeetingStatus string

// Meeting lifecycle statuses.
const (
	StatusScheduled  MeetingStatus = "scheduled"
	StatusInProgress MeetingStatus = "in_progress"
	StatusCompleted  MeetingStatus = "completed"
	StatusCancelled  MeetingStatus = "cancelled"
	StatusFailed     MeetingStatus = "failed"
)

// IsKnown reports whether s is one of the statuses the backend can emit.
func (s MeetingStatus) IsKnown() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether s is terminal from the client's perspective:
// no client action transitions out of it, only a fresh backend sync can.
func (s MeetingStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusFailed:
		return true
	default:
		return false
	}
}

// Meeting is a meeting record as returned by the backend.
type Meeting struct {
	ID              string        `json:"id"`
	URL             string        `json:"url"`
	Platform        Platform      `json:"platform"`
	MeetingCode     *string       `json:"meeting_code"`
	Title           string        `json:"title"`
	ScheduledTime   *time.Time    `json:"scheduled_time"`
	DurationMinutes int           `json:"duration_minutes"`
	Purpose         *string       `json:"purpose"`
	Status          MeetingStatus `json:"status"`
	UserID          string        `json:"user_id"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	JoinAttemptedAt *time.Time    `json:"join_attempted_at"`
	// JoinSuccessful is "success", "failed", or null; the backend stores it
	// as a nullable string rather than a bool.
	JoinSuccessful *string `json:"join_successful"`
	RecordingPath  *string `json:"recording_path,omitempty"`
	AudioPath      *string `json:"audio_path,omitempty"`
}

// MeetingCreateRequest is the body for creating a meeting.
type MeetingCreateRequest struct {
	URL             string     `json:"url"`
	Title           string     `json:"title"`
	ScheduledTime   *time.Time `json:"scheduled_time,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
	Purpose         string     `json:"purpose,omitempty"`
}

// MeetingUpdateRequest is the body for updating a meeting.
type MeetingUpdateRequest struct {
	Title           *string        `json:"title,omitempty"`
	ScheduledTime   *time.Time     `json:"scheduled_time,omitempty"`
	DurationMinutes *int           `json:"duration_minutes,omitempty"`
	Purpose         *string        `json:"purpose,omitempty"`
	Status          *MeetingStatus `json:"status,omitempty"`
}

// MeetingListResponse is the list envelope returned by the backend.
type MeetingListResponse struct {
	Meetings []Meeting `json:"meetings"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// MeetingListParams are the optional query parameters for ListMeetings.
type MeetingListParams struct {
	// StatusFilter restricts results to one status ("" for all).
	StatusFilter MeetingStatus
	// Skip is the pagination offset.
	Skip int
	// Limit caps the number of results (0 uses the backend default).
	Limit int
}

// JoinResponse is the acknowledgement returned when a join is triggered.
type JoinResponse struct {
	Message   string   `json:"message"`
	MeetingID string   `json:"meeting_id"`
	URL       string   `json:"url"`
	Platform  Platform `json:"platform"`
}

// PlatformDetection is the normalized result of URL classification.
type PlatformDetection struct {
	Platform    Platform `json:"platform"`
	MeetingCode *string  `json:"meeting_code"`
	IsValid     bool     `json:"is_valid"`
	Message     string   `json:"message"`
}

// CreateMeeting creates a new meeting record.
func (c *Client) CreateMeeting(ctx context.Context, req *MeetingCreateRequest) (*Meeting, error) {
	var meeting Meeting
	err := c.do(ctx, request{
		method:        http.MethodPost,
		path:          "/meetings",
		body:          req,
		authenticated: true,
	}, &meeting)
	if err != nil {
		return nil, fmt.Errorf("creating meeting: %w", err)
	}
	return &meeting, nil
}

// ListMeetings lists meetings for the current user.
func (c *Client) ListMeetings(ctx context.Context, params *MeetingListParams) (*MeetingListResponse, error) {
	query := url.Values{}
	if params != nil {
		if params.StatusFilter != "" {
			query.Set("status_filter", string(params.StatusFilter))
		}
		if params.Skip > 0 {
			query.Set("skip", strconv.Itoa(params.Skip))
		}
		if params.Limit > 0 {
			query.Set("limit", strconv.Itoa(params.Limit))
		}
	}

	var resp MeetingListResponse
	err := c.do(ctx, request{
		method:        http.MethodGet,
		path:          "/meetings",
		query:         query,
		authenticated: true,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("listing meetings: %w", err)
	}
	return &resp, nil
}

// GetMeeting retrieves a single meeting by id.
func (c *Client) GetMeeting(ctx context.Context, id string) (*Meeting, error) {
	var meeting Meeting
	err := c.do(ctx, request{
		method:        http.MethodGet,
		path:          "/meetings/" + id,
		authenticated: true,
	}, &meeting)
	if err != nil {
		return nil, fmt.Errorf("getting meeting %s: %w", id, err)
	}
	return &meeting, nil
}

// UpdateMeeting updates a meeting record.
func (c *Client) UpdateMeeting(ctx context.Context, id string, req *MeetingUpdateRequest) (*Meeting, error) {
	var meeting Meeting
	err := c.do(ctx, request{
		method:        http.MethodPut,
		path:          "/meetings/" + id,
		body:          req,
		authenticated: true,
	}, &meeting)
	if err != nil {
		return nil, fmt.Errorf("updating meeting %s: %w", id, err)
	}
	return &meeting, nil
}

// DeleteMeeting deletes a meeting record.
func (c *Client) DeleteMeeting(ctx context.Context, id string) error {
	err := c.do(ctx, request{
		method:        http.MethodDelete,
		path:          "/meetings/" + id,
		authenticated: true,
	}, nil)
	if err != nil {
		return fmt.Errorf("deleting meeting %s: %w", id, err)
	}
	return nil
}

// TriggerJoin asks the backend to begin bot automation for a meeting.
// The authoritative status comes from the next list/refresh, not from this call.
func (c *Client) TriggerJoin(ctx context.Context, id string) (*JoinResponse, error) {
	var resp JoinResponse
	err := c.do(ctx, request{
		method:        http.MethodPost,
		path:          "/meetings/" + id + "/join",
		authenticated: true,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("triggering join for meeting %s: %w", id, err)
	}
	return &resp, nil
}

// DetectPlatform classifies a meeting URL. This endpoint is unauthenticated.
func (c *Client) DetectPlatform(ctx context.Context, meetingURL string) (*PlatformDetection, error) {
	query := url.Values{}
	query.Set("url", meetingURL)

	var resp PlatformDetection
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/meetings/detect-platform",
		query:  query,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("detecting platform: %w", err)
	}
	return &resp, nil
}
