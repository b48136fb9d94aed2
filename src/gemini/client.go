// Package gemini is a minimal client for the Gemini Generative Language REST API:
// streamed generateContent calls and model listing.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elee1766/gemchat/src/aisdk"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultTimeout = 30 * time.Second
	DefaultModel   = "gemini-2.5-flash"
)

var _ aisdk.Provider = (*Client)(nil)

// Client is the Gemini API client. It is created once per process and shared by
// every chat session.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Gemini API client.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	// no client-wide timeout: a streamed reply may legitimately take minutes
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "gemini_client")

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// newRequest creates a new HTTP request with the appropriate headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	url := c.config.BaseURL + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-goog-api-key", c.config.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// handleError processes error responses from the API.
func (c *Client) handleError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read error response: %w", err)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		// Return a basic API error if we can't parse the response
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Status:     errResp.Error.Status,
		Message:    errResp.Error.Message,
	}
}

// streamGenerateContent posts req and returns the open SSE response body.
func (c *Client) streamGenerateContent(ctx context.Context, model string, req *generateContentRequest) (io.ReadCloser, error) {
	logger := c.logger.With("method", "streamGenerateContent", "model", model)

	body, err := json.Marshal(req)
	if err != nil {
		logger.Error("failed to marshal request", "error", err)
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	if c.logger.Enabled(ctx, slog.LevelDebug) {
		logger.Debug("sending request", "contents", len(req.Contents), "bytes", len(body))
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/models/"+model+":streamGenerateContent?alt=sse", body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, fmt.Errorf("network error: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		logger.Error("received error response", "status_code", resp.StatusCode)
		return nil, c.handleError(resp)
	}

	return resp.Body, nil
}

// Model returns a handle on the named model. No request is made.
func (c *Client) Model(name string) *Model {
	if name == "" {
		name = DefaultModel
	}
	name = strings.TrimPrefix(name, "models/")
	return &Model{
		client: c,
		info:   &aisdk.ModelInfo{ID: name, DisplayName: name},
	}
}
