package service

import (
	"errors"
	"fmt"
)

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUpstream is returned when a dependency such as the object store fails
	ErrUpstream = errors.New("upstream failure")
)

// Error is a service error with a message safe to show to clients. Kind is
// one of the sentinels above, so errors.Is works on it.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func invalidInput(format string, args ...any) error {
	return newError(ErrInvalidInput, format, args...)
}

func conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

// duplicateKey reports a write rejected by a unique index after the
// service-level uniqueness check passed
func duplicateKey() error {
	return invalidInput("Duplicate key error")
}

func upstream(format string, args ...any) error {
	return newError(ErrUpstream, format, args...)
}

// Message returns the client-facing message of err, or fallback when err
// carries none
func Message(err error, fallback string) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return fallback
}
