package aisdk

import (
	"context"
)

// Provider lists models and hands out clients bound to one of them.
type Provider interface {
	GetModels(ctx context.Context) ([]*ModelInfo, error)
}

// Model starts chat sessions against a single remote model.
type Model interface {
	// StartChat seeds a new remote context with history and params. It does not
	// perform any network round trip.
	StartChat(history []Message, params GenerationParams) ChatSession
	GetModelInfo() *ModelInfo
}

// ChatSession is one live conversational context. The session replays its
// history on every send and extends it only after a reply completes.
type ChatSession interface {
	// SendStream sends text and returns the reply as a lazy, finite stream of
	// fragments. The stream cannot be restarted.
	SendStream(ctx context.Context, text string, params GenerationParams) (StreamInterface, error)
	History() []Message
	Params() GenerationParams
}

// StreamInterface defines the interface for reading streaming responses.
type StreamInterface interface {
	// Read reads the next chunk from the stream. It returns io.EOF once the
	// remote side signals completion.
	Read() (*StreamChunk, error)

	// Close closes the stream.
	Close() error
}
