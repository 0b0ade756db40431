package store

import (
	"context"
	"time"
)

// Message is a persisted row of the messages collection. The store assigns
// ID and CreatedAt; rows are immutable once written.
type Message struct {
	ID        int64
	Content   string
	UserName  string
	CreatedAt time.Time
}

// InsertEvent is one live notification from the messages changefeed. Err is
// set on the final event before the channel closes when the transport drops.
type InsertEvent struct {
	Message Message
	Err     error
}

// Store is the message store boundary. The external store is the single
// source of truth; callers hold transient display-only copies.
type Store interface {
	// FetchHistory returns all messages ordered by creation time ascending.
	// On error the caller must keep any previously rendered state.
	FetchHistory(ctx context.Context) ([]Message, error)

	// Append inserts one message row. Content validation is the caller's
	// responsibility; the store only enforces its own constraints.
	Append(ctx context.Context, content, userName string) error

	// Subscribe starts a standing subscription to insert events on the
	// messages collection. Cancelling ctx tears the subscription down and
	// closes the returned channel.
	Subscribe(ctx context.Context) (<-chan InsertEvent, error)

	// Close releases the underlying connection.
	Close() error
}
