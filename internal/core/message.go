package core

import (
	"time"

	"github.com/wangchienwei/pushchat/internal/store"
)

// AnonymousName is the author name used when an identity has no display name.
const AnonymousName = "Anonymous"

// Message is the domain model for a chat message. The store is the source
// of truth; this copy is display-only.
type Message struct {
	ID        int64
	From      string
	Text      string
	CreatedAt time.Time
}

// Identity is the provider-issued principal currently signed in.
type Identity struct {
	ID          string
	DisplayName string
}

func fromStore(m store.Message) Message {
	return Message{
		ID:        m.ID,
		From:      m.UserName,
		Text:      m.Content,
		CreatedAt: m.CreatedAt,
	}
}
