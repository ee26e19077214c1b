package core

import "github.com/vovakirdan/chatql-server/internal/store"

// EventKind is a notification the core emits to subscribers.
type EventKind int

const (
	// EventMessageAdded notifies subscribers about a message appended to a channel.
	EventMessageAdded EventKind = iota
)

// Event is sent to subscribers to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Channel string
	Message store.Message
}
