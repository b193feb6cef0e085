package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors
var (
	// ErrUnauthorized is returned when a protected endpoint rejects the
	// access token with a 401.
	ErrUnauthorized = errors.New("unauthorized")
)

// Error represents a non-2xx response from the backend carrying a
// backend-supplied message.
type Error struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("api: request failed with status %d", e.StatusCode)
}

// Unwrap maps 401 responses onto ErrUnauthorized so callers can use
// errors.Is without inspecting status codes.
func (e *Error) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// IsUnauthorized reports whether err is a 401 from the backend. Transport
// failures are never unauthorized.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
