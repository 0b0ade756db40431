package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DeliveryRequest is the relay's input: a plain title/body pair with no
// identity and no retry state.
type DeliveryRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Relay is the chat client's handle on the notification relay service.
// Calls are best effort; failures are for logging only and must never be
// mistaken for a message-send failure.
type Relay struct {
	baseURL string
	http    *http.Client
}

// NewRelay builds a relay client for the given base URL.
func NewRelay(baseURL string, timeout time.Duration) *Relay {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Relay{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Deliver posts one delivery request to the relay.
func (r *Relay) Deliver(ctx context.Context, title, body string) error {
	payload, err := json.Marshal(DeliveryRequest{Title: title, Body: body})
	if err != nil {
		return fmt.Errorf("marshal delivery request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/send-notification", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build delivery request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("call relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("relay returned %d: %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("relay returned %d", resp.StatusCode)
	}
	return nil
}
