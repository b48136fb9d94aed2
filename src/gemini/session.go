package gemini

import (
	"context"
	"strings"

	"github.com/elee1766/gemchat/src/aisdk"
)

var (
	_ aisdk.Model       = (*Model)(nil)
	_ aisdk.ChatSession = (*ChatSession)(nil)
)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

// Model is a client bound to a specific model.
type Model struct {
	client *Client
	info   *aisdk.ModelInfo
}

// GetModelInfo returns the model information
func (m *Model) GetModelInfo() *aisdk.ModelInfo {
	return m.info
}

// StartChat seeds a new chat session with history and params. Nothing is sent
// until the first SendStream.
func (m *Model) StartChat(history []aisdk.Message, params aisdk.GenerationParams) aisdk.ChatSession {
	return &ChatSession{
		model:   m,
		history: aisdk.CloneMessages(history),
		params:  params,
	}
}

// ChatSession replays its history with every request, like the SDK chat
// sessions of the official clients.
type ChatSession struct {
	model   *Model
	history []aisdk.Message
	params  aisdk.GenerationParams
}

// History returns a copy of the replay history.
func (s *ChatSession) History() []aisdk.Message {
	return aisdk.CloneMessages(s.history)
}

// Params returns the generation parameters the session was started with.
func (s *ChatSession) Params() aisdk.GenerationParams {
	return s.params
}

// SendStream sends text and streams the reply. The exchange is appended to the
// history only if the stream completes without error.
func (s *ChatSession) SendStream(ctx context.Context, text string, params aisdk.GenerationParams) (aisdk.StreamInterface, error) {
	if params == (aisdk.GenerationParams{}) {
		params = s.params
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	req := buildRequest(s.history, text, params)
	body, err := s.model.client.streamGenerateContent(ctx, s.model.info.ID, req)
	if err != nil {
		return nil, err
	}

	return newSSEStream(body, func(reply string) {
		s.history = append(s.history, aisdk.UserMessage(text), aisdk.AssistantMessage(reply))
	}), nil
}

// buildRequest translates the conversation into Gemini contents; assistant
// turns are sent with the "model" role.
func buildRequest(history []aisdk.Message, text string, params aisdk.GenerationParams) *generateContentRequest {
	contents := make([]content, 0, len(history)+1)
	for _, m := range history {
		contents = append(contents, content{
			Role:  m.Role.ModelRole(),
			Parts: []part{{Text: m.Content}},
		})
	}
	contents = append(contents, content{
		Role:  aisdk.RoleUser.ModelRole(),
		Parts: []part{{Text: text}},
	})

	temperature := params.Temperature
	return &generateContentRequest{
		Contents: contents,
		GenerationConfig: &generationConfig{
			Temperature:     &temperature,
			MaxOutputTokens: params.MaxOutputTokens,
		},
	}
}

// joinParts concatenates the text of every part, the way response.text does.
func joinParts(parts []string) string {
	return strings.Join(parts, "")
}
