package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestComposer(st *fakeStore, notifier Notifier) (*Composer, *Gate) {
	gate := NewGate()
	return NewComposer(gate, st, notifier, testLogger()), gate
}

func TestComposerEmptyInputIsSilentNoop(t *testing.T) {
	st := newFakeStore()
	composer, gate := newTestComposer(st, nil)
	gate.Apply(signedIn("u1", "Alice"))

	for _, input := range []string{"", "   ", "\t\n"} {
		composer.SetInput(input)
		require.NoError(t, composer.Submit(context.Background()))
	}
	require.Empty(t, st.appends())
}

func TestComposerSuppressedWithoutIdentity(t *testing.T) {
	st := newFakeStore()
	composer, _ := newTestComposer(st, nil)

	composer.SetInput("hi")
	require.NoError(t, composer.Submit(context.Background()))
	require.Empty(t, st.appends(), "no store write without an identity")
}

func TestComposerWritesExactlyOnce(t *testing.T) {
	st := newFakeStore()
	notifier := newFakeNotifier()
	composer, gate := newTestComposer(st, notifier)
	gate.Apply(signedIn("u1", "Alice"))

	composer.SetInput("  hi  ")
	require.NoError(t, composer.Submit(context.Background()))

	appends := st.appends()
	require.Len(t, appends, 1)
	require.Equal(t, "hi", appends[0].Content)
	require.Equal(t, "Alice", appends[0].UserName)
	require.Empty(t, composer.Input(), "buffer cleared on success")

	notifier.wait(t)
	title, body := notifier.last(t)
	require.Equal(t, "From Alice", title)
	require.Equal(t, "hi", body)
}

func TestComposerAnonymousFallback(t *testing.T) {
	st := newFakeStore()
	notifier := newFakeNotifier()
	composer, gate := newTestComposer(st, notifier)
	gate.Apply(signedIn("u1", ""))

	composer.SetInput("hello")
	require.NoError(t, composer.Submit(context.Background()))

	appends := st.appends()
	require.Len(t, appends, 1)
	require.Equal(t, AnonymousName, appends[0].UserName)

	notifier.wait(t)
	title, _ := notifier.last(t)
	require.Equal(t, "New message", title)
}

func TestComposerWriteFailureKeepsBuffer(t *testing.T) {
	st := newFakeStore()
	st.appendErr = errors.New("store down")
	notifier := newFakeNotifier()
	composer, gate := newTestComposer(st, notifier)
	gate.Apply(signedIn("u1", "Alice"))

	composer.SetInput("hi")
	require.Error(t, composer.Submit(context.Background()))
	require.Equal(t, "hi", composer.Input(), "buffer retained on failure")

	select {
	case <-notifier.done:
		t.Fatal("notification must not fire for a failed write")
	default:
	}
}

func TestComposerNotificationFailureIsNotASendFailure(t *testing.T) {
	st := newFakeStore()
	notifier := newFakeNotifier()
	notifier.err = errors.New("provider down")
	composer, gate := newTestComposer(st, notifier)
	gate.Apply(signedIn("u1", "Alice"))

	composer.SetInput("hi")
	require.NoError(t, composer.Submit(context.Background()), "relay failure never surfaces as a send failure")
	require.Empty(t, composer.Input())
	notifier.wait(t)
}
