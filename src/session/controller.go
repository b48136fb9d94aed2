package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/elee1766/gemchat/src/aisdk"
	"github.com/elee1766/gemchat/src/storage"
)

// Policy selects what happens to the visible conversation when the model
// session is rebuilt.
type Policy int

const (
	// Stateless discards the conversation on every rebuild.
	Stateless Policy = iota
	// Persisting keeps the conversation across a rebuild caused by loading a
	// thread and discards it only on a genuine parameter change.
	Persisting
)

func (p Policy) String() string {
	if p == Persisting {
		return "persisting"
	}
	return "stateless"
}

// Store is the part of the thread store the controller needs.
type Store interface {
	CreateOrReplace(ctx context.Context, threadID *int64, name string, msgs []aisdk.Message) (int64, error)
	Load(ctx context.Context, threadID int64) (string, []aisdk.Message, error)
	ListAll(ctx context.Context) ([]storage.ThreadSummary, error)
	Delete(ctx context.Context, threadID int64) error
}

var _ Store = (*storage.ThreadStore)(nil)

// Outcome reports what a reconciliation did.
type Outcome struct {
	// Rebuilt is set when a new model session was started.
	Rebuilt bool
	// Cleared is set when the conversation was discarded before the rebuild.
	Cleared bool
	// Refresh is set when the visible conversation changed and must be redrawn.
	Refresh bool
}

// FragmentFunc is called after every streamed fragment with the accumulated
// reply so far and the fragment itself.
type FragmentFunc func(buffer, fragment string)

// Exchange is the result of one Send.
type Exchange struct {
	// Response is the assistant message appended to the conversation. On a
	// remote failure it is the error text, never the partial reply.
	Response string
	// Err is the remote failure, if any. It has already been recovered from.
	Err error
	// Saved is set when the conversation was auto-saved.
	Saved bool
	// Hint is set when the conversation holds messages but cannot be auto-saved
	// because it has no name.
	Hint bool
	// Reconciled is what the reconcile run ahead of the send did. A caller
	// that skipped Reconcile learns about a cleared conversation here.
	Reconciled Outcome
}

// Controller reconciles the model session with the generation parameters and
// keeps the conversation, the model session and the thread store consistent.
// It is not safe for concurrent use.
type Controller struct {
	model  aisdk.Model
	store  Store
	policy Policy
	logger *slog.Logger

	sc      *SessionContext
	current aisdk.ChatSession
	// last is nil until the first rebuild
	last *aisdk.GenerationParams
}

// New creates a controller over an empty conversation. store may be nil for
// the stateless front-end.
func New(model aisdk.Model, store Store, policy Policy, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	sc := NewSessionContext()
	return &Controller{
		model:  model,
		store:  store,
		policy: policy,
		logger: logger.With("component", "session_controller", "session_id", sc.ID.String(), "policy", policy.String()),
		sc:     sc,
	}
}

// Policy returns the rebuild policy.
func (c *Controller) Policy() Policy {
	return c.policy
}

// Snapshot returns a copy of the conversation state for rendering.
func (c *Controller) Snapshot() SessionContext {
	snap := *c.sc
	snap.Messages = aisdk.CloneMessages(c.sc.Messages)
	if c.sc.ThreadID != nil {
		id := *c.sc.ThreadID
		snap.ThreadID = &id
	}
	return snap
}

// AppliedParams returns the parameters of the current model session, and false
// if no session was ever built.
func (c *Controller) AppliedParams() (aisdk.GenerationParams, bool) {
	if c.last == nil {
		return aisdk.GenerationParams{}, false
	}
	return *c.last, true
}

// HasSession reports whether a model session is live.
func (c *Controller) HasSession() bool {
	return c.current != nil
}

// Reconcile runs once per interaction cycle with the parameters currently
// selected by the user.
func (c *Controller) Reconcile(params aisdk.GenerationParams) Outcome {
	changed := c.last != nil && *c.last != params
	if c.current != nil && !changed {
		return Outcome{}
	}

	out := Outcome{Rebuilt: true}
	switch c.policy {
	case Stateless:
		out.Cleared = true
	case Persisting:
		out.Cleared = changed && !c.sc.LoadingChat
	}
	if out.Cleared {
		out.Refresh = len(c.sc.Messages) > 0
		c.sc.Messages = nil
	}

	c.current = c.model.StartChat(c.sc.Messages, params)
	applied := params
	c.last = &applied

	if c.sc.LoadingChat {
		// the load-induced rebuild is consumed
		c.sc.LoadingChat = false
		out.Refresh = true
	}

	c.logger.Debug("model session rebuilt",
		"temperature", params.Temperature,
		"max_output_tokens", params.MaxOutputTokens,
		"params_changed", changed,
		"cleared", out.Cleared,
		"history", len(c.sc.Messages))

	return out
}

// Send reconciles with params, appends text as a user message, streams the
// reply and appends it. A remote failure is recovered: the reply becomes an error message and the
// failure is reported in Exchange.Err. The returned error is reserved for
// refused sends and for auto-save failures.
func (c *Controller) Send(ctx context.Context, text string, params aisdk.GenerationParams, onFragment FragmentFunc) (*Exchange, error) {
	if c.sc.InputDisabled() {
		return nil, ErrInputDisabled
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	reconciled := c.Reconcile(params)

	logger := c.logger.With("method", "Send")
	c.sc.Messages = append(c.sc.Messages, aisdk.UserMessage(text))

	var buf strings.Builder
	stream, err := c.current.SendStream(ctx, text, params)
	if err == nil {
		err = aisdk.StreamToCallback(stream, func(chunk *aisdk.StreamChunk) error {
			buf.WriteString(chunk.Text)
			if onFragment != nil {
				onFragment(buf.String(), chunk.Text)
			}
			return nil
		})
	}

	ex := &Exchange{Response: buf.String(), Reconciled: reconciled}
	if err != nil {
		logger.Warn("model call failed", "error", err, "partial_bytes", buf.Len())
		ex.Err = err
		ex.Response = "Error: " + err.Error()
	}
	c.sc.Messages = append(c.sc.Messages, aisdk.AssistantMessage(ex.Response))

	if c.store == nil {
		return ex, nil
	}
	if !c.sc.Named() {
		ex.Hint = true
		return ex, nil
	}
	// an interrupted reply is still saved
	if err := c.save(context.WithoutCancel(ctx)); err != nil {
		return ex, err
	}
	ex.Saved = true
	return ex, nil
}

// save writes the whole conversation under the current name, creating the
// thread on first save.
func (c *Controller) save(ctx context.Context) error {
	if c.store == nil {
		return ErrNoStore
	}
	id, err := c.store.CreateOrReplace(ctx, c.sc.ThreadID, c.sc.ChatName, c.sc.Messages)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyName) {
			return ErrNameRequired
		}
		return fmt.Errorf("failed to save chat: %w", err)
	}
	created := c.sc.ThreadID == nil
	c.sc.ThreadID = &id
	c.logger.Info("chat saved", "thread_id", id, "messages", len(c.sc.Messages), "created", created)
	return nil
}
