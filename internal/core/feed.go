package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wangchienwei/pushchat/internal/store"
)

// Feed is the live feed subscriber: Inactive until activated, then a single
// standing subscription to the messages changefeed. Owned by the pipeline
// loop; not safe for concurrent use.
type Feed struct {
	store  store.Store
	log    *zerolog.Logger
	events <-chan store.InsertEvent
	cancel context.CancelFunc
}

// NewFeed creates an inactive feed over the given store.
func NewFeed(st store.Store, logger *zerolog.Logger) *Feed {
	return &Feed{store: st, log: logger}
}

// Activate subscribes to insert events. Idempotent: activating an active
// feed is a no-op, never a second subscription.
func (f *Feed) Activate(ctx context.Context) error {
	if f.events != nil {
		f.log.Debug().Msg("live feed already active")
		return nil
	}

	subCtx, cancel := context.WithCancel(ctx)
	events, err := f.store.Subscribe(subCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("activate live feed: %w", err)
	}

	f.events = events
	f.cancel = cancel
	f.log.Debug().Msg("live feed activated")
	return nil
}

// Events returns the insert stream, or nil while inactive. A nil channel
// blocks forever in a select, so the pipeline can always list this case.
func (f *Feed) Events() <-chan store.InsertEvent {
	return f.events
}

// Active reports whether a subscription is standing.
func (f *Feed) Active() bool {
	return f.events != nil
}

// Deactivate tears the subscription down. Safe to call when inactive.
func (f *Feed) Deactivate() {
	if f.cancel != nil {
		f.cancel()
	}
	f.events = nil
	f.cancel = nil
}
