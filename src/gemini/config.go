package gemini

import (
	"log/slog"
	"net/http"
	"time"
)

// Config holds configuration for the Gemini client
type Config struct {
	APIKey  string        // Gemini API key
	BaseURL string        // Base URL of the Generative Language API
	Logger  *slog.Logger  // Logger for debugging
	Timeout time.Duration // Timeout for non-streaming calls; streams are never cut off
	// HTTPClient overrides the transport, mainly for tests
	HTTPClient *http.Client
}
