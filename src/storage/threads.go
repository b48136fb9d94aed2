package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elee1766/gemchat/src/aisdk"
	"github.com/georgysavva/scany/v2/sqlscan"
)

var (
	// ErrThreadNotFound indicates no thread has the requested id.
	ErrThreadNotFound = errors.New("chat thread not found")

	// ErrEmptyName indicates a save was attempted without a chat name.
	ErrEmptyName = errors.New("chat name cannot be empty")
)

// GetThreadByID retrieves a thread by its ID
func GetThreadByID(ctx context.Context, db sqlscan.Querier, threadID int64) (*Thread, error) {
	query := `SELECT id, name, created_at FROM threads WHERE id = ?`
	var th Thread
	err := sqlscan.Get(ctx, db, &th, query, threadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrThreadNotFound, threadID)
		}
		return nil, err
	}
	return &th, nil
}

// ListThreads returns every thread with its message count, newest first.
func ListThreads(ctx context.Context, db sqlscan.Querier) ([]ThreadSummary, error) {
	query := `
	SELECT t.id, t.name, t.created_at, COUNT(m.id) AS message_count
	FROM threads t
	LEFT JOIN messages m ON m.thread_id = t.id
	GROUP BY t.id, t.name, t.created_at
	ORDER BY t.created_at DESC, t.id DESC`
	var threads []ThreadSummary
	if err := sqlscan.Select(ctx, db, &threads, query); err != nil {
		return nil, err
	}
	return threads, nil
}

// CreateThread inserts a new thread and fills in its ID.
func CreateThread(ctx context.Context, db Execer, thread *Thread) error {
	if thread.CreatedAt.IsZero() {
		thread.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO threads (name, created_at) VALUES (?, ?)`
	res, err := db.ExecContext(ctx, query, thread.Name, thread.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read thread id: %w", err)
	}
	thread.ID = id
	return nil
}

// RenameThread updates a thread's display name.
func RenameThread(ctx context.Context, db Execer, threadID int64, name string) error {
	res, err := db.ExecContext(ctx, `UPDATE threads SET name = ? WHERE id = ?`, name, threadID)
	if err != nil {
		return err
	}
	return requireAffected(res, threadID)
}

// DeleteThread removes a thread; its messages are removed by ON DELETE CASCADE.
func DeleteThread(ctx context.Context, db Execer, threadID int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM threads WHERE id = ?`, threadID)
	if err != nil {
		return err
	}
	return requireAffected(res, threadID)
}

// GetMessagesByThreadID retrieves all messages for a thread in append order
func GetMessagesByThreadID(ctx context.Context, db sqlscan.Querier, threadID int64) ([]Message, error) {
	query := `SELECT id, thread_id, role, content, created_at FROM messages WHERE thread_id = ? ORDER BY created_at, id`
	var messages []Message
	err := sqlscan.Select(ctx, db, &messages, query, threadID)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// CountMessagesByThreadID counts message rows that reference threadID.
func CountMessagesByThreadID(ctx context.Context, db sqlscan.Querier, threadID int64) (int, error) {
	var n int
	err := sqlscan.Get(ctx, db, &n, `SELECT COUNT(*) FROM messages WHERE thread_id = ?`, threadID)
	return n, err
}

// CreateMessage creates a new message in the database
func CreateMessage(ctx context.Context, db Execer, message *Message) error {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO messages (thread_id, role, content, created_at) VALUES (?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, query, message.ThreadID, message.Role, message.Content, message.CreatedAt)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		message.ID = id
	}
	return nil
}

// ReplaceMessages deletes every message of a thread and inserts msgs in order.
func ReplaceMessages(ctx context.Context, db Execer, threadID int64, msgs []aisdk.Message) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM messages WHERE thread_id = ?`, threadID); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	now := time.Now().UTC()
	for i, m := range msgs {
		if !m.Role.Valid() {
			return fmt.Errorf("message %d: invalid role %q", i, m.Role)
		}
		row := &Message{
			ThreadID:  threadID,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: now,
		}
		if err := CreateMessage(ctx, db, row); err != nil {
			return fmt.Errorf("failed to insert message %d: %w", i, err)
		}
	}
	return nil
}

func requireAffected(res sql.Result, threadID int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrThreadNotFound, threadID)
	}
	return nil
}

// ToConversation converts stored rows to conversation messages.
func ToConversation(rows []Message) ([]aisdk.Message, error) {
	out := make([]aisdk.Message, 0, len(rows))
	for _, r := range rows {
		role, err := aisdk.ParseRole(r.Role)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", r.ID, err)
		}
		out = append(out, aisdk.Message{Role: role, Content: r.Content})
	}
	return out, nil
}

// ValidateName trims a chat name and rejects empty ones.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}
