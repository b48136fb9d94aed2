package gemini

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error variables
var (
	// ErrNoAPIKey indicates the API key is missing
	ErrNoAPIKey = errors.New("API key is required")

	// ErrBlocked indicates the prompt or the reply was stopped by a safety filter
	ErrBlocked = errors.New("response blocked")

	// ErrMalformedEvent indicates a stream event that could not be parsed
	ErrMalformedEvent = errors.New("malformed stream event")

	// ErrStreamClosed indicates the stream has been closed
	ErrStreamClosed = errors.New("stream closed")
)

// ErrorResponse matches the Google API error envelope:
// {"error":{"code":429,"message":"...","status":"RESOURCE_EXHAUSTED"}}
type ErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// APIError represents an error response from the Gemini API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// IsRateLimit returns true if this is a rate limit or quota error.
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Status == "RESOURCE_EXHAUSTED"
}

// IsAuthError returns true if this is an authentication error.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized ||
		e.StatusCode == http.StatusForbidden ||
		e.Status == "UNAUTHENTICATED" ||
		e.Status == "PERMISSION_DENIED"
}

// BlockedError carries the reason a prompt or candidate was blocked.
type BlockedError struct {
	Reason string
}

// Error implements the error interface.
func (e *BlockedError) Error() string {
	return fmt.Sprintf("response blocked: %s", e.Reason)
}

// Is implements error matching.
func (e *BlockedError) Is(target error) bool {
	return target == ErrBlocked
}
