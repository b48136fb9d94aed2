package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/elee1766/gemchat/src/aisdk"
)

const generateContentMethod = "generateContent"

// modelsResponse represents one page of the models.list response
type modelsResponse struct {
	Models        []modelResource `json:"models"`
	NextPageToken string          `json:"nextPageToken"`
}

type modelResource struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName"`
	Description                string   `json:"description"`
	InputTokenLimit            int      `json:"inputTokenLimit"`
	OutputTokenLimit           int      `json:"outputTokenLimit"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

func (m modelResource) info() *aisdk.ModelInfo {
	return &aisdk.ModelInfo{
		ID:               strings.TrimPrefix(m.Name, "models/"),
		DisplayName:      m.DisplayName,
		Description:      m.Description,
		InputTokenLimit:  m.InputTokenLimit,
		OutputTokenLimit: m.OutputTokenLimit,
		Methods:          m.SupportedGenerationMethods,
	}
}

// GetModels implements aisdk.Provider.
func (c *Client) GetModels(ctx context.Context) ([]*aisdk.ModelInfo, error) {
	return c.ListModels(ctx)
}

// ListModels returns every model visible to the API key, following pagination.
func (c *Client) ListModels(ctx context.Context) ([]*aisdk.ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var (
		models []*aisdk.ModelInfo
		token  string
	)
	for {
		page, err := c.listModelsPage(ctx, token)
		if err != nil {
			return nil, err
		}
		for _, m := range page.Models {
			models = append(models, m.info())
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}

	c.logger.Debug("listed models", "count", len(models))
	return models, nil
}

func (c *Client) listModelsPage(ctx context.Context, token string) (*modelsResponse, error) {
	path := "/models?pageSize=1000"
	if token != "" {
		path += "&pageToken=" + url.QueryEscape(token)
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleError(resp)
	}

	var page modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &page, nil
}

// ChatModels filters models down to those that support generateContent.
func ChatModels(models []*aisdk.ModelInfo) []*aisdk.ModelInfo {
	var out []*aisdk.ModelInfo
	for _, m := range models {
		if slices.Contains(m.Methods, generateContentMethod) {
			out = append(out, m)
		}
	}
	return out
}
