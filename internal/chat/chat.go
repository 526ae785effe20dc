package chat

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Aashutosh-Basnet/livelizzyapp/internal/model"
)

// DefaultHistorySize is the log capacity used when none is configured.
const DefaultHistorySize = 100

// Log is a bounded, insertion-ordered chat history. When a new message
// would exceed capacity the oldest entry is evicted first. The log does
// not deduplicate by id; clients deduplicate in their local view, which
// keeps server-side id retention bounded.
type Log struct {
	mu       sync.RWMutex
	capacity int
	entries  []model.ChatMessage
}

// NewLog creates a log with the given capacity
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &Log{
		capacity: capacity,
		entries:  make([]model.ChatMessage, 0, capacity),
	}
}

// Post appends a message, assigning the server timestamp and, when the
// client supplied no id, a generated one. Returns the stored record for
// broadcast.
func (l *Log) Post(author, body, id string) model.ChatMessage {
	if id == "" {
		id = ulid.Make().String()
	}

	msg := model.ChatMessage{
		ID:        id,
		Author:    author,
		Body:      body,
		Timestamp: time.Now().UTC(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= l.capacity {
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, msg)

	return msg
}

// History returns the log oldest-first
func (l *Log) History() []model.ChatMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.ChatMessage, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the current log length
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.entries)
}
