package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// notifyTimeout bounds the fire-and-forget relay call so a slow provider
// never holds a goroutine indefinitely.
const notifyTimeout = 10 * time.Second

// Appender is the write half of the message store.
type Appender interface {
	Append(ctx context.Context, content, userName string) error
}

// Notifier delivers a best-effort push notification. Implemented by the
// relay client; nil disables notifications.
type Notifier interface {
	Deliver(ctx context.Context, title, body string) error
}

// Composer turns local input into a validated outbound message. There is no
// optimistic local insert: the written message reaches the timeline only
// through the live feed, so the store stays the single writer of truth.
type Composer struct {
	gate     *Gate
	appender Appender
	notifier Notifier
	log      *zerolog.Logger
	buffer   string
}

// NewComposer creates a composer. notifier may be nil.
func NewComposer(gate *Gate, appender Appender, notifier Notifier, logger *zerolog.Logger) *Composer {
	return &Composer{
		gate:     gate,
		appender: appender,
		notifier: notifier,
		log:      logger,
	}
}

// SetInput replaces the input buffer.
func (c *Composer) SetInput(text string) {
	c.buffer = text
}

// Input returns the current input buffer.
func (c *Composer) Input() string {
	return c.buffer
}

// Submit validates the buffer and writes one message. Preconditions are
// checked before any side effect: without an identity the call is
// suppressed, and a trimmed-empty buffer is the "nothing to send" case;
// neither surfaces an error. On a successful write the buffer is cleared
// and a notification fires in the background.
func (c *Composer) Submit(ctx context.Context) error {
	identity := c.gate.Identity()
	if identity == nil {
		c.log.Debug().Msg("submit suppressed: not signed in")
		return nil
	}

	content := strings.TrimSpace(c.buffer)
	if content == "" {
		return nil
	}

	userName := identity.DisplayName
	if userName == "" {
		userName = AnonymousName
	}

	if err := c.appender.Append(ctx, content, userName); err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	c.buffer = ""
	c.notifyAsync(identity.DisplayName, content)
	return nil
}

// notifyAsync invokes the relay fire-and-forget. A failed or slow delivery
// is logged and must never look like a message-send failure.
func (c *Composer) notifyAsync(displayName, content string) {
	if c.notifier == nil {
		return
	}

	title := "New message"
	if displayName != "" {
		title = "From " + displayName
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := c.notifier.Deliver(ctx, title, content); err != nil {
			c.log.Warn().Err(err).Msg("notification delivery failed")
		}
	}()
}
