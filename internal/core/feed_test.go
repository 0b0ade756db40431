package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeedActivateIsIdempotent(t *testing.T) {
	st := newFakeStore()
	feed := NewFeed(st, testLogger())
	ctx := context.Background()

	require.NoError(t, feed.Activate(ctx))
	require.NoError(t, feed.Activate(ctx), "second activation must be a no-op")

	require.Equal(t, 1, st.subscribeCount(), "exactly one standing subscription")
	require.True(t, feed.Active())
}

func TestFeedDeliversEachEventOnce(t *testing.T) {
	st := newFakeStore()
	feed := NewFeed(st, testLogger())
	ctx := context.Background()

	require.NoError(t, feed.Activate(ctx))
	require.NoError(t, feed.Activate(ctx))

	st.push(storeMsg(1, "alice", "hi", msgAt(1, 0).CreatedAt))

	ev := <-feed.Events()
	require.NoError(t, ev.Err)
	require.Equal(t, int64(1), ev.Message.ID)

	select {
	case extra := <-feed.Events():
		t.Fatalf("event delivered twice: %+v", extra)
	default:
	}
}

func TestFeedDeactivateThenActivate(t *testing.T) {
	st := newFakeStore()
	feed := NewFeed(st, testLogger())
	ctx := context.Background()

	require.NoError(t, feed.Activate(ctx))
	feed.Deactivate()
	require.False(t, feed.Active())
	require.Nil(t, feed.Events())

	require.NoError(t, feed.Activate(ctx))
	require.Equal(t, 2, st.subscribeCount())
}
