// Package history holds saved conversations and persists them through a
// key-value store.
package history

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"
)

// Role identifies who authored a message.
type Role string

// Message roles.
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// TitleLimit is the number of characters kept from the first user message
// when titling a session.
const TitleLimit = 40

// Attachment is a displayable image reference: a file path, a file:// URL
// or a data: URL.
type Attachment struct {
	URL string `json:"url"`
}

// Message is one conversational turn.
type Message struct {
	ID         string      `json:"id"`
	Role       Role        `json:"role"`
	Content    string      `json:"content"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// Session is one saved conversation.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Timestamp int64     `json:"timestamp"`
	Messages  []Message `json:"messages"`
	Pinned    bool      `json:"pinned"`
}

// UpdatedAt returns the session timestamp as a time.Time.
func (s Session) UpdatedAt() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// NewID returns a time-ordered unique identifier for messages and sessions.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Title derives a session title from the first user message. Characters are
// counted as grapheme clusters so an emoji is never cut in half.
func Title(text string) string {
	text = strings.TrimSpace(text)

	var (
		b     strings.Builder
		count int
	)
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		if count == TitleLimit {
			return b.String() + "…"
		}
		b.WriteString(g.Str())
		count++
	}
	return b.String()
}

// CloneMessages returns a copy of msgs that shares no backing array.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
