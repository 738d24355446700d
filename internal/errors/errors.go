package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types for the events client
var (
	// Kinds. Every typed error below matches exactly one of these via errors.Is.
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("request timed out")
	ErrAPI           = errors.New("api error")
	ErrNetwork       = errors.New("network error")

	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoRefreshToken   = errors.New("no refresh token")

	// Input errors
	ErrInvalidRequest = errors.New("invalid request")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrClosed   = errors.New("closed")
)

// ConfigurationError reports a client that cannot issue requests at all, e.g. no base URL.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// TimeoutError is returned when a request was aborted by its own deadline.
type TimeoutError struct {
	Path string
}

func (e *TimeoutError) Error() string {
	if e.Path == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out: %s", e.Path)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// APIError is a non-2xx response with the best message that could be extracted from its body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Is(target error) bool { return target == ErrAPI }

// Unauthorized reports whether the server rejected the credentials.
func (e *APIError) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

// NetworkError wraps a transport failure that was not a timeout.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// StatusCode returns the HTTP status carried by an APIError in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
