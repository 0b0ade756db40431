package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/wangchienwei/pushchat/internal/auth"
	"github.com/wangchienwei/pushchat/internal/store"
)

// tokenSink is implemented by stores that authorize requests with the
// signed-in user's access token.
type tokenSink interface {
	UseToken(token string)
}

// Pipeline is the single serialized event loop of a chat session. Auth
// changes, live inserts, and submits interleave here on one timeline, so
// the gate, feed, composer, and timeline need no locks.
type Pipeline struct {
	store    store.Store
	gate     *Gate
	feed     *Feed
	composer *Composer
	timeline *Timeline
	log      *zerolog.Logger

	auth    <-chan auth.Event
	submits chan string

	// Events is consumed by the viewer. Slow consumers drop.
	Events chan Event
}

// NewPipeline wires a session over the given store. authEvents is the
// single-consumer channel of identity provider callbacks; notifier may be
// nil to disable push notifications.
func NewPipeline(st store.Store, notifier Notifier, authEvents <-chan auth.Event, logger *zerolog.Logger) *Pipeline {
	gate := NewGate()
	return &Pipeline{
		store:    st,
		gate:     gate,
		feed:     NewFeed(st, logger),
		composer: NewComposer(gate, st, notifier, logger),
		timeline: NewTimeline(),
		log:      logger,
		auth:     authEvents,
		submits:  make(chan string, 8),
		Events:   make(chan Event, 64),
	}
}

// Submit enqueues raw input for the loop. Validation happens there.
func (p *Pipeline) Submit(text string) {
	p.submits <- text
}

// Run processes events until ctx is cancelled. All timeline mutation
// happens on this goroutine.
func (p *Pipeline) Run(ctx context.Context) error {
	defer p.feed.Deactivate()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-p.auth:
			if !ok {
				return nil
			}
			p.handleAuth(ctx, ev)

		case ins, ok := <-p.feed.Events():
			if !ok {
				// Transport gone for good; keep the rendered sequence.
				p.feed.Deactivate()
				continue
			}
			p.handleInsert(ctx, ins)

		case text := <-p.submits:
			p.composer.SetInput(text)
			if err := p.composer.Submit(ctx); err != nil {
				p.log.Error().Err(err).Msg("message send failed")
				p.emit(Event{Kind: EventError, Err: newCoreError(ErrCodeStoreWrite, ErrStoreWrite, err)})
			}
		}
	}
}

// handleAuth applies one auth change. A fresh sign-in runs the historical
// fetch and then arms the live feed; the dedup invariant keeps either
// ordering of fetch result and first live insert safe.
func (p *Pipeline) handleAuth(ctx context.Context, ev auth.Event) {
	fresh := p.gate.Apply(ev)

	if !p.gate.SignedIn() {
		p.feed.Deactivate()
		p.timeline = NewTimeline()
		p.log.Info().Msg("signed out")
		p.emit(Event{Kind: EventSignedOut})
		return
	}

	if sink, ok := p.store.(tokenSink); ok {
		sink.UseToken(p.gate.Session().AccessToken)
	}

	if !fresh {
		p.log.Debug().Msg("already signed in, ignoring repeated auth event")
		return
	}

	identity := p.gate.Identity()
	p.log.Info().Str("user_id", identity.ID).Msg("signed in")
	p.emit(Event{Kind: EventSignedIn, Identity: identity})

	if history, err := p.store.FetchHistory(ctx); err != nil {
		// Prior rendered state is kept untouched.
		p.log.Error().Err(err).Msg("history fetch failed")
		p.emit(Event{Kind: EventError, Err: newCoreError(ErrCodeStoreUnavailable, ErrStoreUnavailable, err)})
	} else {
		for _, msg := range history {
			p.timeline.Insert(fromStore(msg))
		}
		p.emit(Event{Kind: EventHistory, Messages: p.timeline.Messages()})
	}

	// The feed arms even when the fetch failed, matching the source
	// behavior; missed rows surface on the next sign-in.
	if err := p.feed.Activate(ctx); err != nil {
		p.log.Error().Err(err).Msg("live feed activation failed")
		p.emit(Event{Kind: EventError, Err: newCoreError(ErrCodeLiveFeedDisconnected, ErrLiveFeedDisconnected, err)})
	}
}

func (p *Pipeline) handleInsert(_ context.Context, ins store.InsertEvent) {
	if ins.Err != nil {
		p.log.Warn().Err(ins.Err).Msg("live feed interrupted")
		p.emit(Event{Kind: EventFeedDown, Err: newCoreError(ErrCodeLiveFeedDisconnected, ErrLiveFeedDisconnected, ins.Err)})
		return
	}

	msg := fromStore(ins.Message)
	if !p.timeline.Insert(msg) {
		p.log.Debug().Int64("id", msg.ID).Msg("discarding duplicate insert")
		return
	}
	p.emit(Event{Kind: EventMessage, Message: msg})
}

func (p *Pipeline) emit(ev Event) {
	select {
	case p.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}
