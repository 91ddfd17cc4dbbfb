// Package events defines domain-specific event types for the pub/sub system.
package events

import (
	"time"

	"github.com/guilhermegouw/aurora/internal/session"
)

// ChatEventType represents chat-specific event types.
type ChatEventType string

// Chat event type constants.
const (
	ChatEventSubmitted ChatEventType = "submitted"
	ChatEventTextDelta ChatEventType = "text_delta"
	ChatEventComplete  ChatEventType = "complete"
	ChatEventError     ChatEventType = "error"
	ChatEventChanged   ChatEventType = "changed"
)

// ChatEvent carries the session model after a mutation. Every streamed chunk
// produces its own event.
type ChatEvent struct { //nolint:govet // fieldalignment: preserving logical field order
	Type      ChatEventType
	State     session.State
	MessageID string
	Timestamp time.Time

	TextDelta string // For TextDelta
	Error     error  // For Error
}

// NewChatChangedEvent reports a state change with no further detail.
func NewChatChangedEvent(state session.State) ChatEvent {
	return ChatEvent{
		Type:      ChatEventChanged,
		State:     state,
		Timestamp: time.Now(),
	}
}

// NewChatSubmittedEvent reports that a user message was appended.
func NewChatSubmittedEvent(state session.State, messageID string) ChatEvent {
	return ChatEvent{
		Type:      ChatEventSubmitted,
		State:     state,
		MessageID: messageID,
		Timestamp: time.Now(),
	}
}

// NewChatTextDeltaEvent reports one streamed chunk.
func NewChatTextDeltaEvent(state session.State, messageID, delta string) ChatEvent {
	return ChatEvent{
		Type:      ChatEventTextDelta,
		State:     state,
		MessageID: messageID,
		TextDelta: delta,
		Timestamp: time.Now(),
	}
}

// NewChatCompleteEvent reports that a turn finished.
func NewChatCompleteEvent(state session.State, messageID string) ChatEvent {
	return ChatEvent{
		Type:      ChatEventComplete,
		State:     state,
		MessageID: messageID,
		Timestamp: time.Now(),
	}
}

// NewChatErrorEvent reports that a turn failed. The error message is already
// part of State.
func NewChatErrorEvent(state session.State, messageID string, err error) ChatEvent {
	return ChatEvent{
		Type:      ChatEventError,
		State:     state,
		MessageID: messageID,
		Error:     err,
		Timestamp: time.Now(),
	}
}
