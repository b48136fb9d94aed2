package session

import (
	"context"
	"fmt"

	"github.com/elee1766/gemchat/src/storage"
)

// StartNew saves the conversation if it has a name and replaces it with an
// empty, unsaved one. An unnamed, unsaved conversation with messages blocks the
// action with ErrNameRequired.
func (c *Controller) StartNew(ctx context.Context) error {
	if c.sc.needsName() {
		return ErrNameRequired
	}
	if len(c.sc.Messages) > 0 && c.store != nil {
		if err := c.save(ctx); err != nil {
			return err
		}
	}

	c.sc.reset()
	c.current = nil
	c.logger.Debug("started new chat")
	return nil
}

// Load replaces the conversation with a stored thread. Loading the active
// thread is a no-op. The model session is dropped under LoadingChat so the
// next reconciliation keeps the loaded messages.
func (c *Controller) Load(ctx context.Context, threadID int64) error {
	if c.store == nil {
		return ErrNoStore
	}
	if c.sc.ThreadID != nil && *c.sc.ThreadID == threadID {
		return nil
	}
	if c.sc.needsName() {
		return ErrUnsavedChanges
	}
	if len(c.sc.Messages) > 0 && c.sc.Named() {
		if err := c.save(ctx); err != nil {
			return err
		}
	}

	name, msgs, err := c.store.Load(ctx, threadID)
	if err != nil {
		return fmt.Errorf("failed to load chat %d: %w", threadID, err)
	}

	c.sc.Messages = msgs
	c.sc.ThreadID = &threadID
	c.sc.ChatName = name
	c.sc.LoadingChat = true
	c.sc.ConfirmDelete = false
	c.current = nil

	c.logger.Info("chat loaded", "thread_id", threadID, "messages", len(msgs))
	return nil
}

// Save writes the conversation to the store.
func (c *Controller) Save(ctx context.Context) error {
	if c.store == nil {
		return ErrNoStore
	}
	if len(c.sc.Messages) == 0 {
		return ErrNothingToSave
	}
	if !c.sc.Named() {
		return ErrNameRequired
	}
	return c.save(ctx)
}

// Rename sets the chat name. A saved conversation with messages is written
// immediately under the new name; on failure the old name is kept.
func (c *Controller) Rename(ctx context.Context, name string) error {
	name, err := storage.ValidateName(name)
	if err != nil {
		return err
	}
	if name == c.sc.ChatName {
		return nil
	}

	old := c.sc.ChatName
	c.sc.ChatName = name
	if c.sc.Saved() && len(c.sc.Messages) > 0 && c.store != nil {
		if err := c.save(ctx); err != nil {
			c.sc.ChatName = old
			return err
		}
	}
	return nil
}

// RequestDelete arms the delete confirmation for the active thread.
func (c *Controller) RequestDelete() error {
	if !c.sc.Saved() {
		return ErrNoActiveThread
	}
	c.sc.ConfirmDelete = true
	return nil
}

// ConfirmDelete deletes the active thread and resets to an empty, unsaved
// conversation.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	if !c.sc.ConfirmDelete || !c.sc.Saved() {
		return ErrNoPendingDelete
	}
	if c.store == nil {
		return ErrNoStore
	}

	id := *c.sc.ThreadID
	if err := c.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete chat %d: %w", id, err)
	}

	c.sc.reset()
	c.current = nil
	c.logger.Info("chat deleted", "thread_id", id)
	return nil
}

// CancelDelete disarms the delete confirmation.
func (c *Controller) CancelDelete() {
	c.sc.ConfirmDelete = false
}

// Clear discards the conversation without saving it. The model session is
// dropped so the next reconciliation starts one with the current parameters.
func (c *Controller) Clear() {
	c.sc.reset()
	c.current = nil
}

// Threads lists stored threads, newest first.
func (c *Controller) Threads(ctx context.Context) ([]storage.ThreadSummary, error) {
	if c.store == nil {
		return nil, ErrNoStore
	}
	threads, err := c.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return threads, nil
}
