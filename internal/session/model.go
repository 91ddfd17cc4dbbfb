// Package session holds the in-memory model of the active conversation.
package session

import (
	"github.com/guilhermegouw/aurora/internal/history"
)

// State is a snapshot of the session model. Snapshots share nothing with the
// model, so subscribers may keep them.
type State struct {
	Messages    []history.Message
	Loading     bool
	Mode        Mode
	Preview     *Preview
	Started     bool
	ActiveID    string
	SidebarOpen bool
}

// Model is the mutable conversation state. It has a single writer and is not
// safe for concurrent use on its own.
type Model struct {
	state State
}

// NewModel returns an empty, unstarted model in chat mode.
func NewModel() *Model {
	return &Model{state: State{Mode: ModeChat, SidebarOpen: true}}
}

// Snapshot returns a copy of the current state.
func (m *Model) Snapshot() State {
	s := m.state
	s.Messages = history.CloneMessages(m.state.Messages)
	if m.state.Preview != nil {
		p := *m.state.Preview
		s.Preview = &p
	}
	return s
}

// Messages returns a copy of the visible messages.
func (m *Model) Messages() []history.Message {
	return history.CloneMessages(m.state.Messages)
}

// Append adds a message to the end of the conversation.
func (m *Model) Append(msg history.Message) {
	m.state.Messages = append(m.state.Messages, msg)
}

// AppendContent appends delta to the content of message id.
// It reports whether the message was found.
func (m *Model) AppendContent(id, delta string) bool {
	for i := len(m.state.Messages) - 1; i >= 0; i-- {
		if m.state.Messages[i].ID == id {
			m.state.Messages[i].Content += delta
			return true
		}
	}
	return false
}

// Remove deletes message id if present.
func (m *Model) Remove(id string) {
	for i, msg := range m.state.Messages {
		if msg.ID == id {
			m.state.Messages = append(m.state.Messages[:i:i], m.state.Messages[i+1:]...)
			return
		}
	}
}

// Start marks the conversation as started.
func (m *Model) Start() { m.state.Started = true }

// Started reports whether a conversation is in progress.
func (m *Model) Started() bool { return m.state.Started }

// ActiveID returns the stored session the view shows, or "".
func (m *Model) ActiveID() string { return m.state.ActiveID }

// SetActiveID records the stored session backing the view.
func (m *Model) SetActiveID(id string) { m.state.ActiveID = id }

// Loading reports whether a turn is in flight.
func (m *Model) Loading() bool { return m.state.Loading }

// SetLoading sets the in-flight flag.
func (m *Model) SetLoading(v bool) { m.state.Loading = v }

// Mode returns the active interaction mode.
func (m *Model) Mode() Mode { return m.state.Mode }

// SetMode sets the active interaction mode.
func (m *Model) SetMode(mode Mode) { m.state.Mode = mode }

// ToggleMode selects mode, or returns to chat if mode is already active.
func (m *Model) ToggleMode(mode Mode) {
	if m.state.Mode == mode {
		m.state.Mode = ModeChat
		return
	}
	m.state.Mode = mode
}

// SetPreview replaces the preview artifact. Nil clears it.
func (m *Model) SetPreview(p *Preview) { m.state.Preview = p }

// SetSidebarOpen shows or hides the history panel.
func (m *Model) SetSidebarOpen(open bool) { m.state.SidebarOpen = open }

// SidebarOpen reports whether the history panel is shown.
func (m *Model) SidebarOpen() bool { return m.state.SidebarOpen }

// Reset clears the conversation to the empty, unstarted state. Mode and the
// sidebar are left alone.
func (m *Model) Reset() {
	m.state.Messages = nil
	m.state.Started = false
	m.state.ActiveID = ""
	m.state.Preview = nil
}

// Show replaces the view with a stored session.
func (m *Model) Show(s history.Session) {
	m.state.Messages = history.CloneMessages(s.Messages)
	m.state.Started = true
	m.state.ActiveID = s.ID
	m.state.Preview = nil
}
