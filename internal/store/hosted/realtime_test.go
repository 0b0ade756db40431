package hosted

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wangchienwei/pushchat/internal/proto"
	"github.com/wangchienwei/pushchat/internal/store"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// changefeedServer accepts one websocket, consumes the join frame, runs
// script against the connection, and then holds it open until the test ends.
func changefeedServer(t *testing.T, script func(ctx context.Context, conn *websocket.Conn) error) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "done")

		var join proto.Frame
		if err := wsjson.Read(r.Context(), conn, &join); err != nil {
			return
		}
		if err := script(r.Context(), conn); err != nil {
			return
		}
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestReadLoopDeliversInserts(t *testing.T) {
	insert := proto.Frame{
		Topic:   proto.TopicMessages,
		Event:   proto.EventInsert,
		Payload: []byte(`{"record":{"id":7,"content":"hi","user_name":"alice","created_at":"2026-08-28T10:00:00Z"}}`),
	}
	srv := changefeedServer(t, func(ctx context.Context, conn *websocket.Conn) error {
		return wsjson.Write(ctx, conn, insert)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := New(srv.URL, "anon-key", nopLogger())
	events, err := c.Subscribe(ctx)
	require.NoError(t, err)

	select {
	case ev := <-events:
		require.NoError(t, ev.Err)
		require.Equal(t, int64(7), ev.Message.ID)
		require.Equal(t, "alice", ev.Message.UserName)
	case <-time.After(2 * time.Second):
		t.Fatal("no insert delivered")
	}
}

func TestReadLoopReleasesReaderOnExit(t *testing.T) {
	ready := make(chan struct{})
	srv := changefeedServer(t, func(ctx context.Context, conn *websocket.Conn) error {
		closeFrame := proto.Frame{Topic: proto.TopicMessages, Event: proto.EventClose}
		if err := wsjson.Write(ctx, conn, closeFrame); err != nil {
			return err
		}
		close(ready)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := New(srv.URL, "anon-key", nopLogger())
	conn, err := c.dial(ctx)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "test done")

	<-ready
	before := runtime.NumGoroutine()

	events := make(chan store.InsertEvent, 1)
	err = c.readLoop(ctx, conn, events)
	require.Error(t, err, "server-side channel close ends the loop")

	// The subscription context is still live; only this loop instance
	// ended. Its reader goroutine must end with it.
	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond, "reader goroutine parked after loop exit")
}
