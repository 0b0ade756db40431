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

// Provider dispatches a notification to all subscribed recipients.
type Provider interface {
	Push(ctx context.Context, title, body string) error
}

// ProviderError carries the raw provider response for diagnosis.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("push provider returned %d: %s", e.StatusCode, e.Body)
}

// pushRequest is the provider's notification payload. Segments are fixed to
// "All": the room is shared and every subscriber gets every message.
type pushRequest struct {
	AppID            string            `json:"app_id"`
	IncludedSegments []string          `json:"included_segments"`
	Contents         map[string]string `json:"contents"`
	Headings         map[string]string `json:"headings"`
}

// Client calls the external push provider's HTTP API.
type Client struct {
	endpoint string
	appID    string
	apiKey   string
	http     *http.Client
}

// NewClient builds a provider client. The provider guarantees no response
// deadline, so timeout bounds the worst case on our side.
func NewClient(endpoint, appID, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		appID:    appID,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
	}
}

// Push sends one best-effort notification addressed to all recipients.
// Delivery beyond the provider's 2xx acknowledgement is opaque.
func (c *Client) Push(ctx context.Context, title, body string) error {
	payload, err := json.Marshal(pushRequest{
		AppID:            c.appID,
		IncludedSegments: []string{"All"},
		Contents:         map[string]string{"en": body},
		Headings:         map[string]string{"en": title},
	})
	if err != nil {
		return fmt.Errorf("marshal push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call push provider: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ProviderError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return nil
}
