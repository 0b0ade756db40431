package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wangchienwei/pushchat/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	content    TEXT NOT NULL CHECK (length(content) > 0),
	user_name  TEXT NOT NULL DEFAULT 'Anonymous',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore implements store.Store against a local database. It stands in
// for the hosted store in development and tests; inserts fan out to all
// in-process subscribers so the live feed works without a realtime socket.
type SQLiteStore struct {
	db *sql.DB

	mu   sync.Mutex
	subs map[int]chan store.InsertEvent
	next int
}

// New opens (and if needed creates) the database at dbPath.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{
		db:   db,
		subs: make(map[int]chan store.InsertEvent),
	}, nil
}

// FetchHistory returns all messages ordered by creation time ascending.
func (s *SQLiteStore) FetchHistory(ctx context.Context) ([]store.Message, error) {
	query := `
		SELECT id, content, user_name, created_at
		FROM messages
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []store.Message
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(&msg.ID, &msg.Content, &msg.UserName, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// Append inserts one message row and notifies subscribers.
func (s *SQLiteStore) Append(ctx context.Context, content, userName string) error {
	query := `
		INSERT INTO messages (content, user_name, created_at)
		VALUES (?, ?, ?)
	`
	createdAt := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, query, content, userName, createdAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	s.broadcast(store.Message{
		ID:        id,
		Content:   content,
		UserName:  userName,
		CreatedAt: createdAt,
	})
	return nil
}

// Subscribe registers an in-process changefeed listener. The channel closes
// when ctx is cancelled or the store is closed.
func (s *SQLiteStore) Subscribe(ctx context.Context) (<-chan store.InsertEvent, error) {
	events := make(chan store.InsertEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = events
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if ch, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
		s.mu.Unlock()
	}()

	return events, nil
}

// Close closes the database and all subscriptions.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()
	return s.db.Close()
}

func (s *SQLiteStore) broadcast(msg store.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- store.InsertEvent{Message: msg}:
		default:
			// Drop if slow consumer.
		}
	}
}
