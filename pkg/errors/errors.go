// Package errors provides common domain error types for the meetborg CLI.
//
// This package defines sentinel errors for the client-side error taxonomy:
// unauthorized sessions, user-correctable validation problems, generic
// request failures, and local precondition rejections that never reach the
// network. Using typed errors enables consistent handling with errors.Is().
//
// Usage:
//
//	import mberrors "github.com/VyankateshKulkarni13/meetborg/pkg/errors"
//
//	// Return a domain error
//	return nil, mberrors.ErrUnauthorized
//
//	// Check for domain errors
//	if mberrors.IsUnauthorized(err) {
//	    // clear credentials and ask the user to log in again
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - common sentinel errors for client conditions.
var (
	// ErrUnauthorized indicates the session credential is missing or expired.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation indicates a user-correctable input problem.
	ErrValidation = errors.New("validation error")

	// ErrRequestFailed indicates a generic backend or network failure.
	ErrRequestFailed = errors.New("operation failed")

	// ErrLocalPrecondition indicates an operation was rejected locally,
	// before any network call was made.
	ErrLocalPrecondition = errors.New("local precondition not met")

	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState indicates the operation is not valid for the current state.
	ErrInvalidState = errors.New("invalid state")
)

// IsUnauthorized reports whether any error in err's chain is ErrUnauthorized.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsRequestFailed reports whether any error in err's chain is ErrRequestFailed.
func IsRequestFailed(err error) bool {
	return errors.Is(err, ErrRequestFailed)
}

// IsLocalPrecondition reports whether any error in err's chain is ErrLocalPrecondition.
func IsLocalPrecondition(err error) bool {
	return errors.Is(err, ErrLocalPrecondition)
}

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidState reports whether any error in err's chain is ErrInvalidState.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// FieldError is a single field-level validation message from the backend.
type FieldError struct {
	// Field is the input field the message refers to ("" when unknown).
	Field string
	// Message is the backend's message, surfaced verbatim.
	Message string
}

func (f FieldError) String() string {
	if f.Field == "" {
		return f.Message
	}
	return f.Field + ": " + f.Message
}

// ValidationError carries one or more field-level messages from the backend.
// It wraps ErrValidation so errors.Is(err, ErrValidation) holds.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError from plain messages. Empty
// messages are dropped so a detail-less backend response still renders as
// ErrValidation's text rather than an empty string.
func NewValidationError(messages ...string) *ValidationError {
	ve := &ValidationError{}
	for _, m := range messages {
		if m == "" {
			continue
		}
		ve.Fields = append(ve.Fields, FieldError{Message: m})
	}
	return ve
}

// Error returns all field messages joined for display.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, ", ")
}

// Unwrap makes ValidationError match ErrValidation in errors.Is checks.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// RequestError is a generic backend failure with a display message.
// It wraps ErrRequestFailed so errors.Is(err, ErrRequestFailed) holds.
type RequestError struct {
	// StatusCode is the HTTP status from the backend (0 for transport errors).
	StatusCode int
	// Message is the display message; defaults to "operation failed".
	Message string
}

// NewRequestError builds a RequestError, defaulting the message.
func NewRequestError(statusCode int, message string) *RequestError {
	if message == "" {
		message = ErrRequestFailed.Error()
	}
	return &RequestError{StatusCode: statusCode, Message: message}
}

func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

// Unwrap makes RequestError match ErrRequestFailed in errors.Is checks.
func (e *RequestError) Unwrap() error {
	return ErrRequestFailed
}
