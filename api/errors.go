package api

import (
	"errors"
	"fmt"
)

// Error types for classifying API failures. Every client operation
// surfaces exactly one of these; nothing is retried automatically.

// ErrUnauthenticated indicates an authenticated operation was attempted
// without a session. The client returns it before issuing any request.
var ErrUnauthenticated = errors.New("not authenticated")

// ValidationError indicates a required input was missing. It is raised
// client-side, before any request is sent.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// AuthError carries the server's message for a rejected login or
// registration (bad credentials, duplicate username/email).
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("authentication failed (status %d)", e.Status)
}

// APIError is a generic non-2xx response from an authenticated endpoint.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.Status)
}

// NetworkError is a transport-level failure: the request never produced
// a response.
type NetworkError struct {
	err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.err)
}

func (e *NetworkError) Unwrap() error {
	return e.err
}

// TimeoutError indicates the request exceeded its deadline. Kept distinct
// from NetworkError so callers can suggest raising the configured timeout.
type TimeoutError struct {
	err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out: %v", e.err)
}

func (e *TimeoutError) Unwrap() error {
	return e.err
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsAuth reports whether err is a rejected login or registration.
func IsAuth(err error) bool {
	var a *AuthError
	return errors.As(err, &a)
}

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool {
	var t *TimeoutError
	return errors.As(err, &t)
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var n *NetworkError
	return errors.As(err, &n)
}
