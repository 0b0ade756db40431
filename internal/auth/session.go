package auth

import "time"

// Session is the provider-issued principal for a signed-in user. It lives in
// process memory only and is dropped on sign-out.
type Session struct {
	UserID      string
	DisplayName string
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

// EventKind classifies auth state changes.
type EventKind int

const (
	// EventSignedIn carries a non-nil session.
	EventSignedIn EventKind = iota
	// EventSignedOut clears the current identity.
	EventSignedOut
)

// Event is one auth state change delivered to the session gate.
type Event struct {
	Kind    EventKind
	Session *Session
}
