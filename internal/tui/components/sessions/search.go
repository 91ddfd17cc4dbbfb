package sessions

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/aurora/internal/tui/styles"
)

// SearchBox filters the sidebar by title and shows the match count.
type SearchBox struct {
	input       textinput.Model
	width       int
	filteredCnt int
	totalCnt    int
	visible     bool
}

// NewSearchBox creates a new search box.
func NewSearchBox() *SearchBox {
	ti := textinput.New()
	ti.Placeholder = "Search chats..."
	ti.CharLimit = 100

	return &SearchBox{input: ti}
}

// SetWidth sets the search box width.
func (s *SearchBox) SetWidth(width int) {
	s.width = width
	s.input.SetWidth(max(4, width-14))
}

// SetCounts sets the filtered and total counts.
func (s *SearchBox) SetCounts(filtered, total int) {
	s.filteredCnt = filtered
	s.totalCnt = total
}

// Show makes the search box visible and focuses the input.
func (s *SearchBox) Show() tea.Cmd {
	s.visible = true
	s.input.SetValue("")
	return s.input.Focus()
}

// Hide hides the search box and clears the input.
func (s *SearchBox) Hide() {
	s.visible = false
	s.input.SetValue("")
	s.input.Blur()
}

// IsVisible returns whether the search box is visible.
func (s *SearchBox) IsVisible() bool {
	return s.visible
}

// Value returns the current search text.
func (s *SearchBox) Value() string {
	return s.input.Value()
}

// Update handles messages for the search input.
func (s *SearchBox) Update(msg tea.Msg) (*SearchBox, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// View renders the search box as a focused panel with the match count
// right-aligned after the input.
func (s *SearchBox) View() string {
	if !s.visible {
		return ""
	}

	width := max(12, s.width)
	count := styles.CurrentTheme().S().Muted.Render(fmt.Sprintf("%d / %d", s.filteredCnt, s.totalCnt))
	input := s.input.View()
	gap := max(1, width-4-lipgloss.Width(input)-lipgloss.Width(count))

	box := NewBorderedPanel()
	box.SetTitle("Search")
	box.SetSize(width, 3)
	box.SetFocused(true)
	box.SetContent(input + strings.Repeat(" ", gap) + count)
	return box.View()
}

// Cursor returns the cursor for the text input.
func (s *SearchBox) Cursor() *tea.Cursor {
	if s.visible {
		return s.input.Cursor()
	}
	return nil
}

// IsFocused returns whether the input is focused.
func (s *SearchBox) IsFocused() bool {
	return s.input.Focused()
}

// Commit stops editing but keeps the filter.
func (s *SearchBox) Commit() {
	s.input.Blur()
}
