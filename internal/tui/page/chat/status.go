package chat

import (
	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/aurora/internal/session"
	"github.com/guilhermegouw/aurora/internal/tui/styles"
	"github.com/guilhermegouw/aurora/internal/tui/util"
)

// StatusBar shows the mode, turn state, display name and notices.
type StatusBar struct {
	mode    session.Mode
	name    string
	notice  string
	kind    util.InfoType
	frame   string
	width   int
	loading bool
	errored bool
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	return &StatusBar{mode: session.ModeChat}
}

// SetMode sets the displayed mode.
func (s *StatusBar) SetMode(mode session.Mode) {
	s.mode = mode
}

// SetName sets the displayed user name.
func (s *StatusBar) SetName(name string) {
	s.name = name
}

// SetLoading sets whether a turn is running and the spinner frame.
func (s *StatusBar) SetLoading(loading bool, frame string) {
	s.loading = loading
	s.frame = frame
}

// SetTurnFailed marks the last turn as failed until the next one starts.
func (s *StatusBar) SetTurnFailed(failed bool) {
	s.errored = failed
}

// SetNotice shows a notice until replaced or cleared.
func (s *StatusBar) SetNotice(kind util.InfoType, msg string) {
	s.kind = kind
	s.notice = msg
}

// ClearNotice removes the notice.
func (s *StatusBar) ClearNotice() {
	s.notice = ""
}

// SetWidth sets the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// View renders the status bar.
func (s *StatusBar) View() string {
	t := styles.CurrentTheme()

	modeStyle := t.S().Primary.Bold(true)
	if s.mode != session.ModeChat {
		modeStyle = t.S().Accent.Bold(true)
	}
	left := modeStyle.Render("● " + s.mode.Label())

	switch {
	case s.loading:
		left += "  " + t.S().Info.Render(s.frame+" Working...")
	case s.errored:
		left += "  " + t.S().Error.Render("Last request failed")
	default:
		left += "  " + t.S().Success.Render("Ready")
	}

	if s.notice != "" {
		style := t.S().Info
		switch s.kind {
		case util.InfoTypeWarn:
			style = t.S().Warning
		case util.InfoTypeError:
			style = t.S().Error
		}
		left += "  " + style.Render(s.notice)
	}

	right := t.S().Muted.Render(s.name + " • /help • ctrl+c quit")

	barStyle := lipgloss.NewStyle().
		Width(s.width).
		Padding(0, 1).
		Background(t.BgSubtle)

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		// Drop the hints before the state.
		return barStyle.Render(left)
	}

	content := left + lipgloss.NewStyle().Width(gap).Render("") + right

	return barStyle.Render(content)
}
