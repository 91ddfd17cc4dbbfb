package sessions

// SelectSessionMsg asks to show a saved session.
type SelectSessionMsg struct {
	SessionID string
}

// TogglePinMsg asks to pin or unpin a saved session.
type TogglePinMsg struct {
	SessionID string
}

// DeleteSessionMsg asks to delete a saved session.
type DeleteSessionMsg struct {
	SessionID string
}

// NewConversationMsg asks for an empty conversation.
type NewConversationMsg struct{}

// BlurMsg is sent when the sidebar gives focus back.
type BlurMsg struct{}
