// Package session owns the conversation state of one chat front-end and decides,
// once per interaction cycle, when the model session has to be rebuilt and what
// happens to the visible conversation when it is.
package session

import (
	"github.com/elee1766/gemchat/src/aisdk"
	"github.com/google/uuid"
)

// SessionContext is the conversation state owned by a Controller.
type SessionContext struct {
	// ID correlates log records of one process run.
	ID uuid.UUID

	Messages []aisdk.Message
	// ThreadID is nil while the conversation has never been saved.
	ThreadID *int64
	// ChatName is the name typed by the user, possibly not yet saved.
	ChatName string

	// LoadingChat marks that the model session was dropped because a thread was
	// loaded, not because a parameter changed.
	LoadingChat bool
	// ConfirmDelete is set between a delete request and its confirmation.
	ConfirmDelete bool
}

// NewSessionContext returns an empty, unsaved conversation.
func NewSessionContext() *SessionContext {
	return &SessionContext{ID: uuid.New()}
}

// Saved reports whether the conversation is bound to a stored thread.
func (c *SessionContext) Saved() bool {
	return c.ThreadID != nil
}

// Named reports whether a chat name is known.
func (c *SessionContext) Named() bool {
	return c.ChatName != ""
}

// InputDisabled reports whether new messages are currently refused.
func (c *SessionContext) InputDisabled() bool {
	return c.LoadingChat || c.ConfirmDelete
}

// needsName reports whether the conversation would be lost if it were replaced:
// it holds messages, was never saved, and has no name to save it under.
func (c *SessionContext) needsName() bool {
	return len(c.Messages) > 0 && !c.Saved() && !c.Named()
}

// reset empties the conversation and unbinds it from any thread.
func (c *SessionContext) reset() {
	c.Messages = nil
	c.ThreadID = nil
	c.ChatName = ""
	c.ConfirmDelete = false
}
