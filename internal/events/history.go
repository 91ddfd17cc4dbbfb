package events

import (
	"time"

	"github.com/guilhermegouw/aurora/internal/history"
)

// HistoryEventType represents saved-session event types.
type HistoryEventType string

// History event type constants.
const (
	HistoryEventLoaded      HistoryEventType = "loaded"
	HistoryEventCreated     HistoryEventType = "created"
	HistoryEventUpdated     HistoryEventType = "updated"
	HistoryEventPinned      HistoryEventType = "pinned"
	HistoryEventDeleted     HistoryEventType = "deleted"
	HistoryEventNameChanged HistoryEventType = "name_changed"
)

// HistoryEvent reports a change to the saved session list or display name.
// Sessions is the full list in display order.
type HistoryEvent struct { //nolint:govet // fieldalignment: preserving logical field order
	Type        HistoryEventType
	SessionID   string
	Sessions    []history.Session
	DisplayName string
	Timestamp   time.Time
}

// NewHistoryEvent creates a history event for a session list change.
func NewHistoryEvent(typ HistoryEventType, sessionID string, sessions []history.Session) HistoryEvent {
	return HistoryEvent{
		Type:      typ,
		SessionID: sessionID,
		Sessions:  sessions,
		Timestamp: time.Now(),
	}
}

// NewNameChangedEvent creates a display name change event.
func NewNameChangedEvent(name string) HistoryEvent {
	return HistoryEvent{
		Type:        HistoryEventNameChanged,
		DisplayName: name,
		Timestamp:   time.Now(),
	}
}
