package session

import "fmt"

// Mode is the active interaction mode.
type Mode string

// Interaction modes.
const (
	ModeChat         Mode = "chat"
	ModeImage        Mode = "generate-image"
	ModeCode         Mode = "generate-code"
	ModePresentation Mode = "generate-presentation"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeChat, ModeImage, ModeCode, ModePresentation}

// ParseMode accepts a mode name or its short alias.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "chat":
		return ModeChat, nil
	case "image", string(ModeImage):
		return ModeImage, nil
	case "code", string(ModeCode):
		return ModeCode, nil
	case "slides", "presentation", string(ModePresentation):
		return ModePresentation, nil
	}
	return ModeChat, fmt.Errorf("unknown mode %q", s)
}

// Label is the short human name of the mode.
func (m Mode) Label() string {
	switch m {
	case ModeImage:
		return "Image"
	case ModeCode:
		return "Code"
	case ModePresentation:
		return "Slides"
	default:
		return "Chat"
	}
}
