package core

// EventKind is a notification the pipeline emits to its viewer.
type EventKind int

const (
	// EventSignedIn reports a fresh sign-in transition.
	EventSignedIn EventKind = iota
	// EventSignedOut reports that the identity was cleared.
	EventSignedOut
	// EventHistory delivers the rendered sequence after the initial load.
	EventHistory
	// EventMessage delivers one newly merged live message.
	EventMessage
	// EventFeedDown reports a dropped live feed transport. The rendered
	// sequence is kept as-is.
	EventFeedDown
	// EventError reports a terminal failure of one operation.
	EventError
)

// Event describes what happened on the pipeline to whoever renders it.
type Event struct {
	Kind     EventKind
	Identity *Identity
	Message  Message
	Messages []Message // for EventHistory
	Err      error
}
