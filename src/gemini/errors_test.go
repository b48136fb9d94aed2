package gemini

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name        string
		err         *APIError
		expectedMsg string
		isRateLimit bool
		isAuthError bool
	}{
		{
			name:        "basic error",
			err:         &APIError{StatusCode: 400, Message: "Bad request"},
			expectedMsg: "API error 400: Bad request",
		},
		{
			name:        "error with status",
			err:         &APIError{StatusCode: 400, Status: "INVALID_ARGUMENT", Message: "bad temperature"},
			expectedMsg: "API error 400 (INVALID_ARGUMENT): bad temperature",
		},
		{
			name:        "rate limit by code",
			err:         &APIError{StatusCode: 429, Message: "slow down"},
			expectedMsg: "API error 429: slow down",
			isRateLimit: true,
		},
		{
			name:        "quota exhausted",
			err:         &APIError{StatusCode: 200, Status: "RESOURCE_EXHAUSTED", Message: "quota"},
			expectedMsg: "API error 200 (RESOURCE_EXHAUSTED): quota",
			isRateLimit: true,
		},
		{
			name:        "unauthorized",
			err:         &APIError{StatusCode: 401, Message: "Unauthorized"},
			expectedMsg: "API error 401: Unauthorized",
			isAuthError: true,
		},
		{
			name:        "permission denied",
			err:         &APIError{StatusCode: 403, Status: "PERMISSION_DENIED", Message: "API key not valid"},
			expectedMsg: "API error 403 (PERMISSION_DENIED): API key not valid",
			isAuthError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedMsg, tt.err.Error())
			assert.Equal(t, tt.isRateLimit, tt.err.IsRateLimit())
			assert.Equal(t, tt.isAuthError, tt.err.IsAuthError())
		})
	}
}

func TestBlockedError(t *testing.T) {
	err := fmt.Errorf("send: %w", &BlockedError{Reason: "SAFETY"})
	assert.True(t, errors.Is(err, ErrBlocked))
	assert.Equal(t, "send: response blocked: SAFETY", err.Error())

	var blocked *BlockedError
	assert.True(t, errors.As(err, &blocked))
	assert.Equal(t, "SAFETY", blocked.Reason)
}
