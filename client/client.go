// Package client provides the REST client for connecting to the meetborg backend API.
// It handles request construction, bearer authentication, and decoding backend
// responses into typed results and typed errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	mberrors "github.com/VyankateshKulkarni13/meetborg/pkg/errors"
	"github.com/VyankateshKulkarni13/meetborg/pkg/logging"
)

// Default client settings.
const (
	DefaultTimeout = 30 * time.Second

	tracerName = "meetborg-cli/client"
)

// Session holds the bearer credential for the current CLI session.
// It is injected into the Client at construction; there is no package-level
// token state. The Client invalidates the session when the backend reports
// the credential is no longer accepted.
type Session struct {
	mu    sync.RWMutex
	token string
}

// NewSession creates a session holding the given bearer token.
// An empty token creates an unauthenticated session.
func NewSession(token string) *Session {
	return &Session{token: token}
}

// Token returns the current bearer token ("" when unauthenticated).
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Replace swaps in a new bearer token (after login or refresh).
func (s *Session) Replace(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Invalidate clears the bearer token. Called when the backend returns 401.
func (s *Session) Invalidate() {
	s.Replace("")
}

// Authenticated reports whether the session currently holds a token.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Options configures the Client behavior.
type Options struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration

	// HTTPClient overrides the underlying transport (for testing).
	HTTPClient *http.Client

	// Logger receives debug logging of request/response metadata.
	Logger logging.Logger
}

// DefaultOptions returns Options with default values.
func DefaultOptions() *Options {
	return &Options{
		Timeout: DefaultTimeout,
	}
}

// Client is the typed wrapper around the meetborg backend REST API.
type Client struct {
	baseURL *url.URL
	httpc   *http.Client
	session *Session
	log     logging.Logger
	tracer  trace.Tracer
}

// New creates a Client for the given API base URL (including the version
// prefix, e.g. "http://localhost:8000/api/v1") and session.
func New(baseURL string, session *Session, opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if session == nil {
		session = NewSession("")
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: opts.Timeout}
	}

	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	return &Client{
		baseURL: u,
		httpc:   httpc,
		session: session,
		log:     log,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// Session returns the injected session object.
func (c *Client) Session() *Session {
	return c.session
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// request describes one backend call.
type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	// authenticated operations attach the bearer token and fail fast with
	// ErrUnauthorized when the session holds none.
	authenticated bool
}

// do executes a request and decodes a successful JSON response into out.
// Non-success responses are mapped to the client error taxonomy:
// 401 -> ErrUnauthorized (and the session is invalidated),
// 400/422 -> ValidationError with field messages,
// 404 -> ErrNotFound, anything else -> RequestFailed.
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	ctx, span := c.tracer.Start(ctx, req.method+" "+req.path)
	defer span.End()

	var token string
	if req.authenticated {
		token = c.session.Token()
		if token == "" {
			return fmt.Errorf("no session token: %w", mberrors.ErrUnauthorized)
		}
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + req.path
	if req.query != nil {
		u.RawQuery = req.query.Encode()
	}

	var bodyReader io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), bodyReader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.log.WithContext(context.WithValue(ctx, logging.RequestIDKey, requestID))
	log.Debug("api request",
		logging.F("method", req.method),
		logging.F("path", req.path),
	)

	start := time.Now()
	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		log.Debug("api transport failure", logging.Err(err))
		return fmt.Errorf("%s %s: %w", req.method, req.path, mberrors.NewRequestError(0, err.Error()))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	log.Debug("api response",
		logging.F("status", resp.StatusCode),
		logging.F("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// errorEnvelope matches the backend's error body. The detail field is either
// a plain string or a list of field-level validation entries.
type errorEnvelope struct {
	Detail json.RawMessage `json:"detail"`
}

// validationEntry is one entry of a field-level validation detail list.
type validationEntry struct {
	Loc []interface{} `json:"loc"`
	Msg string        `json:"msg"`
}

// decodeError maps a non-success response to a typed error.
func (c *Client) decodeError(statusCode int, body []byte) error {
	switch statusCode {
	case http.StatusUnauthorized:
		c.session.Invalidate()
		return fmt.Errorf("session rejected by backend: %w", mberrors.ErrUnauthorized)

	case http.StatusNotFound:
		if msg := detailMessage(body); msg != "" {
			return fmt.Errorf("%s: %w", msg, mberrors.ErrNotFound)
		}
		return mberrors.ErrNotFound

	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if ve := decodeValidationError(body); ve != nil {
			return ve
		}
		return mberrors.NewValidationError(detailMessage(body))

	default:
		return mberrors.NewRequestError(statusCode, detailMessage(body))
	}
}

// decodeValidationError extracts field-level messages from a detail list.
// Returns nil when the body is not a validation detail list.
func decodeValidationError(body []byte) *mberrors.ValidationError {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return nil
	}

	var entries []validationEntry
	if err := json.Unmarshal(env.Detail, &entries); err != nil || len(entries) == 0 {
		return nil
	}

	ve := &mberrors.ValidationError{}
	for _, e := range entries {
		field := ""
		// loc is ["body", "field_name", ...]; the last string element names the field.
		for i := len(e.Loc) - 1; i >= 0; i-- {
			if s, ok := e.Loc[i].(string); ok && s != "body" && s != "query" {
				field = s
				break
			}
		}
		ve.Fields = append(ve.Fields, mberrors.FieldError{Field: field, Message: e.Msg})
	}
	return ve
}

// detailMessage extracts a plain-string detail from an error body.
// Returns "" when no usable message is present.
func detailMessage(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return ""
	}

	var msg string
	if err := json.Unmarshal(env.Detail, &msg); err != nil {
		return ""
	}
	return msg
}
