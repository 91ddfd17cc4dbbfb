package chat

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/textinput"
	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/aurora/internal/session"
	"github.com/guilhermegouw/aurora/internal/tui/styles"
)

// Input is the chat input component.
type Input struct {
	textInput  textinput.Model
	attachment string
	width      int
	enabled    bool
}

// NewInput creates a new input component.
func NewInput() *Input {
	ti := textinput.New()
	ti.Placeholder = placeholderFor(session.ModeChat, false)
	ti.CharLimit = 4096
	ti.Focus()

	return &Input{
		textInput: ti,
		enabled:   true,
	}
}

// placeholderFor returns the input hint for a mode.
func placeholderFor(mode session.Mode, attached bool) string {
	if attached {
		return "Ask about the image, or press enter to analyze it..."
	}
	switch mode {
	case session.ModeImage:
		return "Describe the image to generate..."
	case session.ModeCode:
		return "Describe the page or component to build..."
	case session.ModePresentation:
		return "What should the presentation be about?"
	default:
		return "Type a message, or / for commands..."
	}
}

// Init initializes the input.
func (i *Input) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input events.
func (i *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	if !i.enabled {
		return i, nil
	}

	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return i, cmd
}

// SetMode updates the placeholder for the active mode.
func (i *Input) SetMode(mode session.Mode) {
	i.textInput.Placeholder = placeholderFor(mode, i.attachment != "")
}

// SetAttachment shows the pending attachment. Empty clears it.
func (i *Input) SetAttachment(label string) {
	i.attachment = label
}

// Attachment returns the pending attachment label.
func (i *Input) Attachment() string {
	return i.attachment
}

// Height returns the rendered height.
func (i *Input) Height() int {
	if i.attachment != "" {
		return 4
	}
	return 3
}

// View renders the input.
func (i *Input) View() string {
	t := styles.CurrentTheme()

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Padding(0, 1).
		Width(i.width - 4)

	if !i.enabled {
		inputStyle = inputStyle.BorderForeground(t.Border)
	}

	box := inputStyle.Render(i.textInput.View())
	if i.attachment == "" {
		return box
	}

	chip := t.S().Accent.Render("📎 "+i.attachment) + t.S().Muted.Render("  /detach to remove")
	return lipgloss.JoinVertical(lipgloss.Left, lipgloss.NewStyle().Padding(0, 1).Render(chip), box)
}

// SetWidth sets the input width.
func (i *Input) SetWidth(width int) {
	i.width = width
	i.textInput.SetWidth(width - 8) // Account for border and padding
}

// Value returns the current input value.
func (i *Input) Value() string {
	return i.textInput.Value()
}

// SetValue sets the input value.
func (i *Input) SetValue(value string) {
	i.textInput.SetValue(value)
	i.textInput.CursorEnd()
}

// Clear clears the input.
func (i *Input) Clear() {
	i.textInput.SetValue("")
}

// Enable enables the input.
func (i *Input) Enable() {
	i.enabled = true
	i.textInput.Focus()
}

// Disable disables the input.
func (i *Input) Disable() {
	i.enabled = false
	i.textInput.Blur()
}

// IsEnabled returns whether the input is enabled.
func (i *Input) IsEnabled() bool {
	return i.enabled
}

// Focus focuses the input.
func (i *Input) Focus() tea.Cmd {
	return i.textInput.Focus()
}

// Blur removes focus from the input.
func (i *Input) Blur() {
	i.textInput.Blur()
}

// Focused reports whether the input has focus.
func (i *Input) Focused() bool {
	return i.textInput.Focused()
}

// Cursor returns the cursor for the input, relative to the input box.
func (i *Input) Cursor() *tea.Cursor {
	c := i.textInput.Cursor()
	if c != nil && i.attachment != "" {
		c.Y++
	}
	return c
}
