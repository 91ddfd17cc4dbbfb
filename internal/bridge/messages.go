// Package bridge provides the connection between the pub/sub system and Bubble Tea.
package bridge

import (
	"github.com/guilhermegouw/aurora/internal/events"
	"github.com/guilhermegouw/aurora/internal/pubsub"
)

// ChatEventMsg wraps a chat event for the TUI.
type ChatEventMsg struct {
	Event pubsub.Event[events.ChatEvent]
}

// HistoryEventMsg wraps a history event for the TUI.
type HistoryEventMsg struct {
	Event pubsub.Event[events.HistoryEvent]
}
