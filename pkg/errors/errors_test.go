package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelHelpers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
		want    bool
	}{
		{"unauthorized direct", ErrUnauthorized, IsUnauthorized, true},
		{"unauthorized wrapped", fmt.Errorf("calling /auth/me: %w", ErrUnauthorized), IsUnauthorized, true},
		{"unauthorized mismatch", ErrRequestFailed, IsUnauthorized, false},
		{"validation direct", ErrValidation, IsValidation, true},
		{"request failed wrapped", fmt.Errorf("deleting meeting: %w", ErrRequestFailed), IsRequestFailed, true},
		{"local precondition", fmt.Errorf("create: %w", ErrLocalPrecondition), IsLocalPrecondition, true},
		{"not found", ErrNotFound, IsNotFound, true},
		{"invalid state", ErrInvalidState, IsInvalidState, true},
		{"nil error", nil, IsUnauthorized, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.checker(tc.err); got != tc.want {
				t.Errorf("checker(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	ve := NewValidationError("title is required", "url is required")

	if !errors.Is(ve, ErrValidation) {
		t.Error("ValidationError should match ErrValidation")
	}
	if errors.Is(ve, ErrRequestFailed) {
		t.Error("ValidationError should not match ErrRequestFailed")
	}

	want := "title is required, url is required"
	if ve.Error() != want {
		t.Errorf("Error() = %q, want %q", ve.Error(), want)
	}
}

func TestValidationErrorFieldMessages(t *testing.T) {
	ve := &ValidationError{Fields: []FieldError{
		{Field: "duration_minutes", Message: "must be between 1 and 480"},
		{Message: "url is not a meeting link"},
	}}

	want := "duration_minutes: must be between 1 and 480, url is not a meeting link"
	if ve.Error() != want {
		t.Errorf("Error() = %q, want %q", ve.Error(), want)
	}
}

func TestValidationErrorEmpty(t *testing.T) {
	ve := &ValidationError{}
	if ve.Error() != "validation error" {
		t.Errorf("empty ValidationError should fall back to sentinel text, got %q", ve.Error())
	}
}

func TestNewValidationErrorDropsEmptyMessages(t *testing.T) {
	ve := NewValidationError("")
	if len(ve.Fields) != 0 {
		t.Errorf("empty message should be dropped, got %d fields", len(ve.Fields))
	}
	if ve.Error() != "validation error" {
		t.Errorf("Error() = %q, want sentinel text", ve.Error())
	}

	ve = NewValidationError("", "title is required", "")
	if len(ve.Fields) != 1 || ve.Fields[0].Message != "title is required" {
		t.Errorf("non-empty messages should survive, got %+v", ve.Fields)
	}
}

func TestRequestErrorDefaults(t *testing.T) {
	e := NewRequestError(500, "")
	if !errors.Is(e, ErrRequestFailed) {
		t.Error("RequestError should match ErrRequestFailed")
	}
	if e.Message != "operation failed" {
		t.Errorf("default message = %q, want %q", e.Message, "operation failed")
	}
	if e.Error() != "operation failed (status 500)" {
		t.Errorf("Error() = %q", e.Error())
	}
}

func TestRequestErrorTransport(t *testing.T) {
	e := NewRequestError(0, "connection refused")
	if e.Error() != "connection refused" {
		t.Errorf("Error() = %q, want message without status", e.Error())
	}
}

func TestWrappedChains(t *testing.T) {
	inner := NewValidationError("scheduled_time must be in the future")
	outer := fmt.Errorf("creating meeting: %w", inner)

	if !IsValidation(outer) {
		t.Error("wrapped ValidationError should still match ErrValidation")
	}

	var ve *ValidationError
	if !errors.As(outer, &ve) {
		t.Fatal("errors.As should recover the ValidationError")
	}
	if len(ve.Fields) != 1 {
		t.Errorf("recovered %d fields, want 1", len(ve.Fields))
	}
}
