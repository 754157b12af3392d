package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mberrors "github.com/VyankateshKulkarni13/meetborg/pkg/errors"
)

// newTestClient builds a Client pointed at a httptest server.
func newTestClient(t *testing.T, handler http.Handler, token string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/api/v1", NewSession(token), nil)
	require.NoError(t, err)
	return c, srv
}

func TestNewValidatesBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"absolute http", "http://localhost:8000/api/v1", false},
		{"absolute https", "https://meetborg.example.com/api/v1", false},
		{"trailing slash trimmed", "http://localhost:8000/api/v1/", false},
		{"relative path", "/api/v1", true},
		{"empty", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.baseURL, nil, nil)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBearerHeaderAttached(t *testing.T) {
	var gotAuth, gotRequestID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode(MeetingListResponse{})
	})

	c, _ := newTestClient(t, handler, "session-token-123")

	_, err := c.ListMeetings(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "Bearer session-token-123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestAuthenticatedCallFailsFastWithoutToken(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	c, _ := newTestClient(t, handler, "")

	_, err := c.ListMeetings(context.Background(), nil)
	assert.True(t, mberrors.IsUnauthorized(err))
	assert.False(t, called, "no network call should be made without a token")
}

func TestUnauthorizedInvalidatesSession(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
	})

	c, _ := newTestClient(t, handler, "expired-token")
	require.True(t, c.Session().Authenticated())

	_, err := c.ListMeetings(context.Background(), nil)
	assert.True(t, mberrors.IsUnauthorized(err))
	assert.False(t, c.Session().Authenticated(), "session should be invalidated on 401")
}

func TestValidationErrorFieldMessages(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[
			{"loc":["body","title"],"msg":"field required","type":"value_error.missing"},
			{"loc":["body","duration_minutes"],"msg":"ensure this value is less than or equal to 480","type":"value_error"}
		]}`))
	})

	c, _ := newTestClient(t, handler, "token-abc")

	_, err := c.CreateMeeting(context.Background(), &MeetingCreateRequest{URL: "https://meet.google.com/abc-defg-hij"})
	require.Error(t, err)
	assert.True(t, mberrors.IsValidation(err))

	var ve *mberrors.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 2)
	assert.Equal(t, "title", ve.Fields[0].Field)
	assert.Equal(t, "field required", ve.Fields[0].Message)
	assert.Equal(t, "duration_minutes", ve.Fields[1].Field)
}

func TestStringDetailBecomesValidationError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Username already registered"})
	})

	c, _ := newTestClient(t, handler, "")

	_, err := c.Register(context.Background(), &RegisterRequest{Username: "dup", Password: "password123"})
	require.Error(t, err)
	assert.True(t, mberrors.IsValidation(err))
	assert.Contains(t, err.Error(), "Username already registered")
}

func TestValidationWithoutDetailStillRenders(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	c, _ := newTestClient(t, handler, "token-abc")

	_, err := c.CreateMeeting(context.Background(), &MeetingCreateRequest{URL: "https://meet.google.com/abc-defg-hij"})
	require.Error(t, err)
	assert.True(t, mberrors.IsValidation(err))
	assert.Contains(t, err.Error(), "validation error")
}

func TestNotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Meeting not found"})
	})

	c, _ := newTestClient(t, handler, "token-abc")

	_, err := c.GetMeeting(context.Background(), "missing-id")
	assert.True(t, mberrors.IsNotFound(err))
}

func TestServerErrorDefaultsMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	c, _ := newTestClient(t, handler, "token-abc")

	_, err := c.ListMeetings(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, mberrors.IsRequestFailed(err))

	var re *mberrors.RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "operation failed", re.Message)
	assert.Equal(t, http.StatusInternalServerError, re.StatusCode)
}

func TestTransportFailureIsRequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close() // connection refused from here on

	c, err := New(base+"/api/v1", NewSession("token-abc"), nil)
	require.NoError(t, err)

	_, err = c.ListMeetings(context.Background(), nil)
	assert.True(t, mberrors.IsRequestFailed(err))
}

func TestLoginReplacesSessionToken(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/login", r.URL.Path)

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "operator", req.Username)

		json.NewEncoder(w).Encode(TokenResponse{AccessToken: "fresh-token", TokenType: "bearer"})
	})

	c, _ := newTestClient(t, handler, "")

	token, err := c.Login(context.Background(), &LoginRequest{Username: "operator", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token.AccessToken)
	assert.Equal(t, "fresh-token", c.Session().Token())
}

func TestSessionReplaceAndInvalidate(t *testing.T) {
	s := NewSession("")
	assert.False(t, s.Authenticated())

	s.Replace("tok-1")
	assert.True(t, s.Authenticated())
	assert.Equal(t, "tok-1", s.Token())

	s.Invalidate()
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Token())
}

func TestDetectPlatformUnauthenticated(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/meetings/detect-platform", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		url := r.URL.Query().Get("url")
		if url == "https://meet.google.com/abc-defg-hij" {
			code := "abc-defg-hij"
			json.NewEncoder(w).Encode(PlatformDetection{
				Platform:    PlatformGoogleMeet,
				MeetingCode: &code,
				IsValid:     true,
				Message:     "Detected: Google Meet",
			})
			return
		}
		json.NewEncoder(w).Encode(PlatformDetection{
			Platform: PlatformOther,
			IsValid:  false,
			Message:  "Could not detect platform",
		})
	})

	c, _ := newTestClient(t, handler, "")

	det, err := c.DetectPlatform(context.Background(), "https://meet.google.com/abc-defg-hij")
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "detect-platform must not send credentials")
	assert.Equal(t, PlatformGoogleMeet, det.Platform)
	require.NotNil(t, det.MeetingCode)
	assert.Equal(t, "abc-defg-hij", *det.MeetingCode)
	assert.True(t, det.IsValid)

	det, err = c.DetectPlatform(context.Background(), "https://example.com/random")
	require.NoError(t, err)
	assert.False(t, det.IsValid)
	assert.Equal(t, PlatformOther, det.Platform)
}

func TestListMeetingsQueryParams(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "scheduled", q.Get("status_filter"))
		assert.Equal(t, "20", q.Get("skip"))
		assert.Equal(t, "10", q.Get("limit"))
		json.NewEncoder(w).Encode(MeetingListResponse{Page: 3, PageSize: 10})
	})

	c, _ := newTestClient(t, handler, "token-abc")

	resp, err := c.ListMeetings(context.Background(), &MeetingListParams{
		StatusFilter: StatusScheduled,
		Skip:         20,
		Limit:        10,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Page)
}

func TestCreateThenListRoundTrip(t *testing.T) {
	var stored *Meeting
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/meetings", func(w http.ResponseWriter, r *http.Request) {
		var req MeetingCreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		code := "abc-defg-hij"
		stored = &Meeting{
			ID:              "m-1",
			URL:             req.URL,
			Platform:        PlatformGoogleMeet,
			MeetingCode:     &code,
			Title:           req.Title,
			DurationMinutes: req.DurationMinutes,
			Status:          StatusScheduled,
			UserID:          "u-1",
			CreatedAt:       time.Now().UTC(),
			UpdatedAt:       time.Now().UTC(),
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(stored)
	})
	mux.HandleFunc("GET /api/v1/meetings", func(w http.ResponseWriter, r *http.Request) {
		resp := MeetingListResponse{Total: 0, Page: 1, PageSize: 50}
		if stored != nil {
			resp.Meetings = []Meeting{*stored}
			resp.Total = 1
		}
		json.NewEncoder(w).Encode(resp)
	})

	c, _ := newTestClient(t, mux, "token-abc")
	ctx := context.Background()

	created, err := c.CreateMeeting(ctx, &MeetingCreateRequest{
		URL:             "https://meet.google.com/abc-defg-hij",
		Title:           "Sprint review",
		DurationMinutes: 45,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, created.Status)
	assert.Equal(t, 45, created.DurationMinutes)

	list, err := c.ListMeetings(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list.Meetings, 1)
	assert.Equal(t, 45, list.Meetings[0].DurationMinutes)
	assert.Equal(t, StatusScheduled, list.Meetings[0].Status)
}

func TestDeleteMeeting(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/meetings/m-9", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	c, _ := newTestClient(t, handler, "token-abc")
	assert.NoError(t, c.DeleteMeeting(context.Background(), "m-9"))
}

func TestTriggerJoin(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/meetings/m-2/join", r.URL.Path)
		json.NewEncoder(w).Encode(JoinResponse{
			Message:   "Join triggered successfully",
			MeetingID: "m-2",
			URL:       "https://zoom.us/j/123456789",
			Platform:  PlatformZoom,
		})
	})

	c, _ := newTestClient(t, handler, "token-abc")

	resp, err := c.TriggerJoin(context.Background(), "m-2")
	require.NoError(t, err)
	assert.Equal(t, "m-2", resp.MeetingID)
	assert.Equal(t, PlatformZoom, resp.Platform)
}

func TestPlatformHelpers(t *testing.T) {
	assert.True(t, Platform("google_meet").IsKnown())
	assert.False(t, Platform("skype").IsKnown())
	assert.Equal(t, "Google Meet", PlatformGoogleMeet.DisplayName())
	assert.Equal(t, "Other Platform", PlatformOther.DisplayName())

	// Detection knows more platforms than the bot holds credentials for.
	for _, p := range []Platform{PlatformGoogleMeet, PlatformZoom, PlatformMicrosoftTeams} {
		assert.True(t, p.IsCredentialPlatform(), string(p))
	}
	for _, p := range []Platform{PlatformWebex, PlatformJitsi, PlatformOther} {
		assert.False(t, p.IsCredentialPlatform(), string(p))
	}
}

func TestMeetingStatusHelpers(t *testing.T) {
	for _, s := range []MeetingStatus{StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled, StatusFailed} {
		assert.True(t, s.IsKnown(), string(s))
	}
	assert.False(t, MeetingStatus("paused").IsKnown())

	assert.False(t, StatusScheduled.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}
