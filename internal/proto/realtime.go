package proto

import "encoding/json"

// Wire envelopes for the hosted store's realtime changefeed. The feed speaks
// a phoenix-style channel protocol: the client joins a topic, answers with
// heartbeats, and receives one frame per database event.

const (
	// TopicMessages is the public channel carrying message inserts.
	TopicMessages = "realtime:public:messages"

	EventJoin      = "phx_join"
	EventReply     = "phx_reply"
	EventHeartbeat = "heartbeat"
	EventClose     = "phx_close"
	EventInsert    = "INSERT"
)

// Frame is the envelope for every message on the changefeed socket.
type Frame struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
}

// ReplyPayload acknowledges a join or heartbeat.
type ReplyPayload struct {
	Status string `json:"status"`
}

// InsertPayload carries the newly inserted row for an INSERT frame.
type InsertPayload struct {
	Record MessageRecord `json:"record"`
}

// MessageRecord is the row shape of the messages collection on the wire.
// created_at is an RFC3339 timestamp string as emitted by the store.
type MessageRecord struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	UserName  string `json:"user_name"`
	CreatedAt string `json:"created_at"`
}
