// Package aisdk defines the message and model-session contracts shared by the chat
// front-ends, the Gemini client and the persistence layer.
package aisdk

import (
	"errors"
	"fmt"
	"math"
)

// Role tags who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ModelRole translates a conversation role into the role name the remote API
// expects in a replayed history.
func (r Role) ModelRole() string {
	if r == RoleUser {
		return "user"
	}
	return "model"
}

// ParseRole converts a stored role string back into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown message role %q", s)
	}
	return r, nil
}

// Message is a single entry of a conversation. Messages are never edited after
// they are appended.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a message authored by the user.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds a message authored by the model.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// CloneMessages returns a copy of msgs that does not share its backing array.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Generation parameter bounds accepted by the remote API.
const (
	MinTemperature     = 0.0
	MaxTemperature     = 1.0
	TemperatureStep    = 0.05
	MinMaxOutputTokens = 50
	MaxMaxOutputTokens = 65000
	MaxOutputTokenStep = 50

	DefaultTemperature     = 0.7
	DefaultMaxOutputTokens = 65000
)

var (
	ErrTemperatureRange = errors.New("temperature out of range")
	ErrMaxTokensRange   = errors.New("max output tokens out of range")
)

// GenerationParams are bound to a model session when it is started. Changing
// them requires a new session.
type GenerationParams struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens"`
}

// DefaultGenerationParams returns the parameters used when nothing else is configured.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		Temperature:     DefaultTemperature,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

// Validate checks both parameters against the API bounds.
func (p GenerationParams) Validate() error {
	if math.IsNaN(p.Temperature) || p.Temperature < MinTemperature || p.Temperature > MaxTemperature {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrTemperatureRange, p.Temperature, MinTemperature, MaxTemperature)
	}
	if p.MaxOutputTokens < MinMaxOutputTokens || p.MaxOutputTokens > MaxMaxOutputTokens {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrMaxTokensRange, p.MaxOutputTokens, MinMaxOutputTokens, MaxMaxOutputTokens)
	}
	return nil
}

// SnapTemperature rounds t to the nearest 0.05 step. The result is not range checked.
func SnapTemperature(t float64) float64 {
	steps := math.Round(t / TemperatureStep)
	// round again to drop float noise like 0.7000000000000001
	return math.Round(steps*TemperatureStep*100) / 100
}

// SnapMaxOutputTokens rounds n to the nearest multiple of 50. The result is not range checked.
func SnapMaxOutputTokens(n int) int {
	return int(math.Round(float64(n)/MaxOutputTokenStep)) * MaxOutputTokenStep
}

// StreamChunk is one text fragment of a streamed model reply.
type StreamChunk struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// ModelInfo describes a model offered by the remote API.
type ModelInfo struct {
	ID               string   `json:"id"`
	DisplayName      string   `json:"display_name"`
	Description      string   `json:"description,omitempty"`
	InputTokenLimit  int      `json:"input_token_limit"`
	OutputTokenLimit int      `json:"output_token_limit"`
	Methods          []string `json:"supported_generation_methods,omitempty"`
}
