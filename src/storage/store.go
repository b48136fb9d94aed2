package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/elee1766/gemchat/src/aisdk"
)

// ThreadStore is the persistence store for chat threads. Every write is a full
// overwrite of the thread's message list inside one transaction.
type ThreadStore struct {
	db     *DB
	logger *slog.Logger
}

// NewThreadStore wraps an open database.
func NewThreadStore(db *DB, logger *slog.Logger) *ThreadStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ThreadStore{
		db:     db,
		logger: logger.With("component", "thread_store"),
	}
}

// CreateOrReplace inserts a new thread when threadID is nil, otherwise renames the
// thread and replaces all of its messages. It returns the thread's id.
func (s *ThreadStore) CreateOrReplace(ctx context.Context, threadID *int64, name string, msgs []aisdk.Message) (int64, error) {
	name, err := ValidateName(name)
	if err != nil {
		return 0, err
	}

	var id int64
	err = WithTx(ctx, s.db.DB(), func(tx *sql.Tx) error {
		if threadID == nil {
			th := &Thread{Name: name}
			if err := CreateThread(ctx, tx, th); err != nil {
				return fmt.Errorf("failed to create thread: %w", err)
			}
			id = th.ID
		} else {
			id = *threadID
			if err := RenameThread(ctx, tx, id, name); err != nil {
				return err
			}
		}
		return ReplaceMessages(ctx, tx, id, msgs)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("thread saved", "thread_id", id, "name", name, "messages", len(msgs), "created", threadID == nil)
	return id, nil
}

// Load returns a thread's name and its messages in append order.
func (s *ThreadStore) Load(ctx context.Context, threadID int64) (string, []aisdk.Message, error) {
	th, err := GetThreadByID(ctx, s.db.DB(), threadID)
	if err != nil {
		return "", nil, err
	}
	rows, err := GetMessagesByThreadID(ctx, s.db.DB(), threadID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load messages: %w", err)
	}
	msgs, err := ToConversation(rows)
	if err != nil {
		return "", nil, err
	}
	return th.Name, msgs, nil
}

// Get returns a thread's row without its messages.
func (s *ThreadStore) Get(ctx context.Context, threadID int64) (*Thread, error) {
	return GetThreadByID(ctx, s.db.DB(), threadID)
}

// ListAll returns every thread, newest first.
func (s *ThreadStore) ListAll(ctx context.Context) ([]ThreadSummary, error) {
	return ListThreads(ctx, s.db.DB())
}

// Rename changes a thread's name without touching its messages.
func (s *ThreadStore) Rename(ctx context.Context, threadID int64, name string) error {
	name, err := ValidateName(name)
	if err != nil {
		return err
	}
	return RenameThread(ctx, s.db.DB(), threadID, name)
}

// Delete removes a thread and, through the cascade, all of its messages.
func (s *ThreadStore) Delete(ctx context.Context, threadID int64) error {
	if err := DeleteThread(ctx, s.db.DB(), threadID); err != nil {
		return err
	}
	s.logger.Debug("thread deleted", "thread_id", threadID)
	return nil
}

// CountMessages counts message rows referencing threadID.
func (s *ThreadStore) CountMessages(ctx context.Context, threadID int64) (int, error) {
	return CountMessagesByThreadID(ctx, s.db.DB(), threadID)
}

// WithTx runs fn inside a transaction, rolling back if fn fails.
func WithTx(ctx context.Context, db TxBeginner, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
