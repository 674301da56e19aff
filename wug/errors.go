package wug

import (
	"errors"
	"fmt"
)

// Sentinel errors for session lifecycle failures.
var (
	// ErrNotConnected is returned when a resource call is made before
	// Connect has obtained a token.
	ErrNotConnected = errors.New("wug: not connected, call Connect first")

	// ErrSessionExpired is returned when the access token has expired and
	// the refresh grant was rejected by the server.
	ErrSessionExpired = errors.New("wug: session expired, reconnect required")
)

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("wug: server returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("wug: server returned %d: %s", e.StatusCode, e.Message)
}

// Transient reports whether the error is worth retrying.
func (e *APIError) Transient() bool {
	switch e.StatusCode {
	case 429, 502, 503, 504:
		return true
	}
	return false
}

// errorEnvelope matches the error body shape used by the API.
type errorEnvelope struct {
	Error *APIError `json:"error"`
}

// tokenError matches the OAuth-style error body of the token endpoint.
type tokenError struct {
	Err         string `json:"error"`
	Description string `json:"error_description"`
}
