package storage

import "time"

// Thread is a named, persisted chat conversation.
type Thread struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ThreadSummary is a thread row plus its message count, used by history listings.
type ThreadSummary struct {
	Thread
	MessageCount int `json:"message_count" db:"message_count"`
}

// Message is a persisted conversation entry. Order within a thread is append
// order (created_at, then id).
type Message struct {
	ID        int64     `json:"id" db:"id"`
	ThreadID  int64     `json:"thread_id" db:"thread_id"`
	Role      string    `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
