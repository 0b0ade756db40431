package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wangchienwei/pushchat/internal/auth"
	"github.com/wangchienwei/pushchat/internal/store"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func storeMsg(id int64, user, content string, createdAt time.Time) store.Message {
	return store.Message{ID: id, UserName: user, Content: content, CreatedAt: createdAt}
}

func signedIn(userID, displayName string) auth.Event {
	return auth.Event{
		Kind:    auth.EventSignedIn,
		Session: &auth.Session{UserID: userID, DisplayName: displayName, AccessToken: "tok-" + userID},
	}
}

// fakeStore implements store.Store with scriptable failures and a shared
// in-memory changefeed channel.
type fakeStore struct {
	mu         sync.Mutex
	history    []store.Message
	historyErr error
	appendErr  error
	appended   []store.Message
	subscribes int
	events     chan store.InsertEvent
}

func newFakeStore() *fakeStore {
	return &fakeStore{events: make(chan store.InsertEvent, 16)}
}

func (f *fakeStore) FetchHistory(context.Context) ([]store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	out := make([]store.Message, len(f.history))
	copy(out, f.history)
	return out, nil
}

func (f *fakeStore) Append(_ context.Context, content, userName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, store.Message{Content: content, UserName: userName})
	return nil
}

func (f *fakeStore) Subscribe(context.Context) (<-chan store.InsertEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribes++
	return f.events, nil
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) push(msg store.Message) {
	f.events <- store.InsertEvent{Message: msg}
}

func (f *fakeStore) pushErr(err error) {
	f.events <- store.InsertEvent{Err: err}
}

func (f *fakeStore) failAppends(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appendErr = err
}

func (f *fakeStore) appends() []store.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.Message, len(f.appended))
	copy(out, f.appended)
	return out
}

func (f *fakeStore) subscribeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribes
}

// fakeNotifier records deliveries and signals each one.
type fakeNotifier struct {
	mu     sync.Mutex
	err    error
	titles []string
	bodies []string
	done   chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{done: make(chan struct{}, 16)}
}

func (n *fakeNotifier) Deliver(_ context.Context, title, body string) error {
	n.mu.Lock()
	n.titles = append(n.titles, title)
	n.bodies = append(n.bodies, body)
	err := n.err
	n.mu.Unlock()
	n.done <- struct{}{}
	return err
}

func (n *fakeNotifier) wait(t *testing.T) {
	t.Helper()
	select {
	case <-n.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not delivered")
	}
}

func (n *fakeNotifier) last(t *testing.T) (title, body string) {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.titles) == 0 {
		t.Fatal("no deliveries recorded")
	}
	return n.titles[len(n.titles)-1], n.bodies[len(n.bodies)-1]
}

func mustEvent(t *testing.T, ch <-chan Event, kind EventKind) Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("expected event kind %v not received", kind)
			return Event{}
		}
	}
}
