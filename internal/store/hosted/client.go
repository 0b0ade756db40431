package hosted

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/wangchienwei/pushchat/internal/proto"
	"github.com/wangchienwei/pushchat/internal/store"
)

// Client talks to the managed message store: REST for reads and writes,
// a realtime websocket for the insert changefeed.
type Client struct {
	baseURL string
	anonKey string
	token   string // user access token after sign-in, anon key otherwise
	http    *http.Client
	log     *zerolog.Logger
}

// New creates a hosted store client. baseURL is the project URL without a
// trailing slash, anonKey the project's public API key.
func New(baseURL, anonKey string, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     logger,
	}
}

// UseToken switches request authorization to the signed-in user's access
// token. An empty token falls back to the anon key.
func (c *Client) UseToken(token string) {
	c.token = token
}

// FetchHistory returns all messages ordered by creation time ascending.
func (c *Client) FetchHistory(ctx context.Context) ([]store.Message, error) {
	url := c.baseURL + "/rest/v1/messages?select=*&order=created_at.asc"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build history request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch history: store returned %d: %s", resp.StatusCode, body)
	}

	var records []proto.MessageRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	messages := make([]store.Message, 0, len(records))
	for _, rec := range records {
		msg, err := recordToMessage(rec)
		if err != nil {
			c.log.Warn().Err(err).Int64("id", rec.ID).Msg("skipping malformed history row")
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Append inserts one message row.
func (c *Client) Append(ctx context.Context, content, userName string) error {
	payload, err := json.Marshal(map[string]string{
		"content":   content,
		"user_name": userName,
	})
	if err != nil {
		return fmt.Errorf("marshal insert: %w", err)
	}

	url := c.baseURL + "/rest/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build insert request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("insert message: store returned %d: %s", resp.StatusCode, body)
	}
	return nil
}

// Close is a no-op for the REST side; subscriptions close with their context.
func (c *Client) Close() error {
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.anonKey)
	token := c.token
	if token == "" {
		token = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

func recordToMessage(rec proto.MessageRecord) (store.Message, error) {
	createdAt, err := time.Parse(time.RFC3339, rec.CreatedAt)
	if err != nil {
		return store.Message{}, fmt.Errorf("parse created_at: %w", err)
	}
	return store.Message{
		ID:        rec.ID,
		Content:   rec.Content,
		UserName:  rec.UserName,
		CreatedAt: createdAt,
	}, nil
}
