package core

import "github.com/wangchienwei/pushchat/internal/auth"

// Gate tracks whether a verified identity is present. It is a plain state
// machine fed by the pipeline loop; the OAuth flow itself belongs to the
// identity provider client.
type Gate struct {
	identity *Identity
	session  *auth.Session
}

// NewGate returns a signed-out gate.
func NewGate() *Gate {
	return &Gate{}
}

// Apply processes one auth change. fresh is true only on the transition
// into the signed-in state; a repeated SIGNED_IN refreshes the session but
// must not retrigger the initial load or a second feed activation.
func (g *Gate) Apply(ev auth.Event) (fresh bool) {
	if ev.Kind == auth.EventSignedIn && ev.Session != nil {
		fresh = g.session == nil
		g.session = ev.Session
		g.identity = &Identity{
			ID:          ev.Session.UserID,
			DisplayName: ev.Session.DisplayName,
		}
		return fresh
	}

	g.identity = nil
	g.session = nil
	return false
}

// SignedIn reports whether an identity is present.
func (g *Gate) SignedIn() bool {
	return g.identity != nil
}

// Identity returns the current identity, nil when signed out.
func (g *Gate) Identity() *Identity {
	return g.identity
}

// Session returns the current provider session, nil when signed out.
func (g *Gate) Session() *auth.Session {
	return g.session
}
