// Package sessions provides the saved-chat sidebar.
package sessions

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/guilhermegouw/aurora/internal/debug"
	"github.com/guilhermegouw/aurora/internal/history"
	"github.com/guilhermegouw/aurora/internal/tui/util"
)

// Sidebar lists saved sessions with search, pin and delete.
type Sidebar struct {
	panel  *BorderedPanel
	list   *SessionList
	search *SearchBox
	hints  *HintBar

	// pendingDelete is the session awaiting confirmation.
	pendingDelete string
	focused       bool
	width         int
	height        int
}

// NewSidebar creates an empty sidebar.
func NewSidebar() *Sidebar {
	return &Sidebar{
		panel:  NewBorderedPanel(),
		list:   NewSessionList(),
		search: NewSearchBox(),
		hints:  NewHintBar(),
	}
}

// SetSessions replaces the listed sessions.
func (s *Sidebar) SetSessions(sessions []history.Session) {
	s.list.SetSessions(sessions)
	if s.pendingDelete != "" && history.Find(sessions, s.pendingDelete) < 0 {
		s.pendingDelete = ""
	}
}

// SetActive marks the session shown in the conversation.
func (s *Sidebar) SetActive(id string) {
	s.list.SetActive(id)
}

// SetSize sets the sidebar dimensions including its border.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.panel.SetSize(width, height)
	s.search.SetWidth(width - 4)
	s.hints.SetWidth(width - 4)
}

// Focus gives the sidebar keyboard focus.
func (s *Sidebar) Focus() {
	s.focused = true
}

// Blur removes keyboard focus and ends any search typing.
func (s *Sidebar) Blur() {
	s.focused = false
	s.pendingDelete = ""
	s.search.Commit()
}

// Focused reports whether the sidebar has keyboard focus.
func (s *Sidebar) Focused() bool {
	return s.focused
}

// Selected returns the session under the cursor.
func (s *Sidebar) Selected() *history.Session {
	return s.list.Selected()
}

// Update handles key presses while the sidebar is focused.
func (s *Sidebar) Update(msg tea.Msg) (*Sidebar, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok || !s.focused {
		return s, nil
	}

	switch {
	case s.pendingDelete != "":
		return s, s.handleConfirm(key)
	case s.search.IsFocused():
		return s, s.handleSearch(key)
	default:
		return s, s.handleBrowse(key)
	}
}

func (s *Sidebar) handleConfirm(key tea.KeyPressMsg) tea.Cmd {
	id := s.pendingDelete
	switch key.String() {
	case "y", "Y":
		s.pendingDelete = ""
		debug.Event("sidebar", "delete", id)
		return util.CmdHandler(DeleteSessionMsg{SessionID: id})
	case "n", "N", "esc":
		s.pendingDelete = ""
	}
	return nil
}

func (s *Sidebar) handleSearch(key tea.KeyPressMsg) tea.Cmd {
	switch key.String() {
	case "esc":
		s.search.Hide()
		s.list.Filter("")
		return nil
	case "enter":
		s.search.Commit()
		return nil
	case "up":
		s.list.Up()
		return nil
	case "down":
		s.list.Down()
		return nil
	}

	var cmd tea.Cmd
	s.search, cmd = s.search.Update(key)
	s.list.Filter(s.search.Value())
	return cmd
}

func (s *Sidebar) handleBrowse(key tea.KeyPressMsg) tea.Cmd {
	switch key.String() {
	case "up", "k":
		s.list.Up()
	case "down", "j":
		s.list.Down()
	case "home", "g":
		s.list.Top()
	case "end", "G":
		s.list.Bottom()
	case "enter":
		if sel := s.list.Selected(); sel != nil {
			return util.CmdHandler(SelectSessionMsg{SessionID: sel.ID})
		}
	case "p":
		if sel := s.list.Selected(); sel != nil {
			return util.CmdHandler(TogglePinMsg{SessionID: sel.ID})
		}
	case "d", "delete":
		if sel := s.list.Selected(); sel != nil {
			s.pendingDelete = sel.ID
		}
	case "n":
		return util.CmdHandler(NewConversationMsg{})
	case "/":
		return s.search.Show()
	case "esc":
		if s.search.IsVisible() {
			s.search.Hide()
			s.list.Filter("")
			return nil
		}
		s.Blur()
		return util.CmdHandler(BlurMsg{})
	}
	return nil
}

// View renders the sidebar.
func (s *Sidebar) View() string {
	listed, total := s.list.Count()

	title := "Chats"
	if total > 0 {
		title = fmt.Sprintf("Chats (%d)", total)
	}
	s.panel.SetTitle(title)
	s.panel.SetFocused(s.focused)

	inner := max(1, s.height-2)
	var parts []string
	if s.search.IsVisible() {
		s.search.SetCounts(listed, total)
		parts = append(parts, s.search.View())
		inner -= 3
	}

	if s.focused {
		switch {
		case s.pendingDelete != "":
			s.hints.SetMode(HintModeDelete)
		case s.search.IsFocused():
			s.hints.SetMode(HintModeSearch)
		default:
			s.hints.SetMode(HintModeNormal)
		}
		inner--
	}

	s.list.SetSize(s.width-4, inner)
	body := s.list.View()
	if n := strings.Count(body, "\n") + 1; n < inner {
		body += strings.Repeat("\n", inner-n)
	}
	parts = append(parts, body)

	if s.focused {
		parts = append(parts, s.hints.View())
	}

	s.panel.SetContent(strings.Join(parts, "\n"))
	return s.panel.View()
}

// Cursor returns the search cursor while searching, relative to the
// sidebar's top-left corner.
func (s *Sidebar) Cursor() *tea.Cursor {
	if !s.focused || !s.search.IsFocused() {
		return nil
	}
	c := s.search.Cursor()
	if c != nil {
		// Panel border and padding, then the search box border.
		c.X += 4
		c.Y += 2
	}
	return c
}
