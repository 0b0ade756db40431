package hosted

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/wangchienwei/pushchat/internal/proto"
	"github.com/wangchienwei/pushchat/internal/store"
)

const (
	heartbeatInterval = 30 * time.Second
	maxReconnectWait  = 30 * time.Second
)

// Subscribe opens the realtime changefeed and streams insert events until
// ctx is cancelled. A transport drop is surfaced as one event with Err set;
// the socket is then redialed with capped backoff, and the channel keeps
// delivering across reconnects. Replayed inserts are the consumer's problem
// by contract (dedup by id).
func (c *Client) Subscribe(ctx context.Context) (<-chan store.InsertEvent, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	events := make(chan store.InsertEvent, 16)
	go c.pump(ctx, conn, events)
	return events, nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/realtime/v1/websocket?apikey=" + c.anonKey

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial realtime: %w", err)
	}

	join := proto.Frame{
		Topic:   proto.TopicMessages,
		Event:   proto.EventJoin,
		Payload: json.RawMessage(`{}`),
		Ref:     uuid.NewString(),
	}
	if err := wsjson.Write(ctx, conn, join); err != nil {
		conn.Close(websocket.StatusInternalError, "join failed")
		return nil, fmt.Errorf("join channel: %w", err)
	}
	return conn, nil
}

// pump owns the connection lifecycle: heartbeats, the read loop, and
// reconnection. It closes events when ctx is done.
func (c *Client) pump(ctx context.Context, conn *websocket.Conn, events chan<- store.InsertEvent) {
	defer close(events)

	wait := time.Second
	for {
		err := c.readLoop(ctx, conn, events)
		conn.Close(websocket.StatusNormalClosure, "closing")
		if ctx.Err() != nil {
			return
		}

		c.log.Warn().Err(err).Msg("live feed disconnected")
		select {
		case events <- store.InsertEvent{Err: fmt.Errorf("live feed disconnected: %w", err)}:
		case <-ctx.Done():
			return
		}

		// Redial with capped backoff until ctx is cancelled.
		for {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return
			}
			next, dialErr := c.dial(ctx)
			if dialErr == nil {
				conn = next
				wait = time.Second
				c.log.Info().Msg("live feed reconnected")
				break
			}
			c.log.Warn().Err(dialErr).Dur("retry_in", wait).Msg("live feed redial failed")
			wait *= 2
			if wait > maxReconnectWait {
				wait = maxReconnectWait
			}
		}
	}
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, events chan<- store.InsertEvent) error {
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	// The reader is scoped to this loop instance, not the subscription:
	// when the loop returns on a heartbeat or frame error the reader must
	// not stay parked until the whole subscription is cancelled.
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan proto.Frame)
	readErr := make(chan error, 1)
	go func() {
		for {
			var frame proto.Frame
			if err := wsjson.Read(loopCtx, conn, &frame); err != nil {
				readErr <- err
				return
			}
			select {
			case frames <- frame:
			case <-loopCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case <-heartbeat.C:
			hb := proto.Frame{
				Topic:   "phoenix",
				Event:   proto.EventHeartbeat,
				Payload: json.RawMessage(`{}`),
				Ref:     uuid.NewString(),
			}
			if err := wsjson.Write(ctx, conn, hb); err != nil {
				return fmt.Errorf("heartbeat: %w", err)
			}
		case frame := <-frames:
			if err := c.handleFrame(ctx, frame, events); err != nil {
				return err
			}
		}
	}
}

func (c *Client) handleFrame(ctx context.Context, frame proto.Frame, events chan<- store.InsertEvent) error {
	switch frame.Event {
	case proto.EventReply, proto.EventHeartbeat:
		return nil
	case proto.EventClose:
		return errors.New("channel closed by server")
	case proto.EventInsert:
		if frame.Topic != proto.TopicMessages {
			return nil
		}
		var payload proto.InsertPayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil {
			c.log.Warn().Err(err).Msg("skipping malformed insert frame")
			return nil
		}
		msg, err := recordToMessage(payload.Record)
		if err != nil {
			c.log.Warn().Err(err).Int64("id", payload.Record.ID).Msg("skipping malformed insert record")
			return nil
		}
		select {
		case events <- store.InsertEvent{Message: msg}:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	default:
		c.log.Debug().Str("event", frame.Event).Msg("ignoring changefeed frame")
		return nil
	}
}
