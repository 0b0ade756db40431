package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the hosted identity provider. The OAuth flow itself runs
// in the user's browser; this client only builds the authorize URL, parses
// the resulting access token, and invalidates sessions on sign-out.
type Client struct {
	baseURL string
	anonKey string
	secret  []byte
	http    *http.Client
}

// NewClient creates an identity provider client. secret may be empty; see
// ParseSession.
func NewClient(baseURL, anonKey string, secret []byte) *Client {
	return &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		secret:  secret,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthorizeURL builds the browser URL that starts the OAuth flow with the
// named provider ("google").
func (c *Client) AuthorizeURL(provider, redirectTo string) string {
	q := url.Values{}
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return c.baseURL + "/auth/v1/authorize?" + q.Encode()
}

// SessionFromToken validates a pasted or stored access token and builds the
// session it represents.
func (c *Client) SessionFromToken(accessToken string) (*Session, error) {
	return ParseSession(accessToken, c.secret)
}

// SignOut invalidates the session on the provider side. The local identity
// is cleared by the gate regardless of the outcome.
func (c *Client) SignOut(ctx context.Context, session *Session) error {
	if session == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("build logout request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("logout: provider returned %d: %s", resp.StatusCode, body)
	}
	return nil
}
