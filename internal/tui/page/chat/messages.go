package chat

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/guilhermegouw/aurora/internal/debug"
	"github.com/guilhermegouw/aurora/internal/history"
	"github.com/guilhermegouw/aurora/internal/tui/styles"
)

// renderedMessage caches the Markdown rendering of one model message.
type renderedMessage struct {
	content string
	width   int
	out     string
}

// MessageList displays the conversation and scrolls by lines.
type MessageList struct {
	messages   []history.Message
	markdown   *MarkdownRenderer
	cache      map[string]renderedMessage
	userName   string
	appName    string
	frame      string
	width      int
	height     int
	offset     int // lines scrolled up from the bottom
	totalLines int
}

// NewMessageList creates a new message list component.
func NewMessageList(appName string) *MessageList {
	return &MessageList{
		markdown: NewMarkdownRenderer(),
		cache:    make(map[string]renderedMessage),
		userName: history.DefaultDisplayName,
		appName:  appName,
	}
}

// SetMessages sets the messages to display.
func (m *MessageList) SetMessages(messages []history.Message) {
	m.messages = messages
	if len(m.cache) > 4*len(messages)+16 {
		m.cache = make(map[string]renderedMessage)
	}
}

// SetUserName sets the header shown on user messages.
func (m *MessageList) SetUserName(name string) {
	m.userName = name
}

// SetSpinnerFrame sets the frame shown in an empty reply.
func (m *MessageList) SetSpinnerFrame(frame string) {
	m.frame = frame
}

// SetSize sets the component size.
func (m *MessageList) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ScrollUp scrolls the message list up by n lines.
func (m *MessageList) ScrollUp(n int) {
	m.offset = min(m.offset+n, max(0, m.totalLines-m.height))
}

// ScrollDown scrolls the message list down by n lines.
func (m *MessageList) ScrollDown(n int) {
	m.offset = max(0, m.offset-n)
}

// ScrollToBottom scrolls to the newest message.
func (m *MessageList) ScrollToBottom() {
	m.offset = 0
}

// AtBottom reports whether the newest line is visible.
func (m *MessageList) AtBottom() bool {
	return m.offset == 0
}

// View renders the visible part of the conversation.
func (m *MessageList) View() string {
	rendered := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		rendered = append(rendered, m.renderMessage(msg))
	}

	lines := strings.Split(strings.Join(rendered, "\n\n"), "\n")
	m.totalLines = len(lines)

	// Keep the offset valid after the content shrank.
	maxOffset := max(0, len(lines)-m.height)
	m.offset = min(m.offset, maxOffset)

	end := len(lines) - m.offset
	start := max(0, end-m.height)
	visible := lines[start:end]

	if m.offset > 0 && len(visible) > 0 {
		t := styles.CurrentTheme()
		visible[len(visible)-1] = t.S().Muted.Render(fmt.Sprintf("↓ %d more lines (pgdn)", m.offset))
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Padding(0, 1).
		Render(strings.Join(visible, "\n"))
}

func (m *MessageList) contentWidth() int {
	return max(10, m.width-4)
}

func (m *MessageList) renderMessage(msg history.Message) string {
	if msg.Role == history.RoleUser {
		return m.renderUserMessage(msg)
	}
	return m.renderModelMessage(msg)
}

func (m *MessageList) renderUserMessage(msg history.Message) string {
	t := styles.CurrentTheme()
	width := m.contentWidth()

	parts := []string{t.S().Secondary.Bold(true).Render(m.userName)}
	if msg.Attachment != nil {
		parts = append(parts, t.S().Muted.Render("📎 "+attachmentLabel(msg.Attachment.URL, width-3)))
	}
	if msg.Content != "" {
		parts = append(parts, t.S().Text.Width(width).Render(msg.Content))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *MessageList) renderModelMessage(msg history.Message) string {
	t := styles.CurrentTheme()

	header := t.S().Primary.Bold(true).Render(m.appName)
	if msg.Content == "" {
		return lipgloss.JoinVertical(lipgloss.Left, header, t.S().Muted.Render(m.frame+" …"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.renderMarkdown(msg))
}

func (m *MessageList) renderMarkdown(msg history.Message) string {
	width := m.contentWidth()
	if c, ok := m.cache[msg.ID]; ok && c.content == msg.Content && c.width == width {
		return c.out
	}

	out, err := m.markdown.Render(msg.Content, width)
	if err != nil {
		debug.Error("messages", err, "rendering markdown")
		out = styles.CurrentTheme().S().Text.Width(width).Render(msg.Content)
	}
	out = strings.Trim(out, "\n")

	m.cache[msg.ID] = renderedMessage{content: msg.Content, width: width, out: out}
	return out
}

// attachmentLabel shortens an attachment reference for display. Inline data
// URLs are summarized by media type.
func attachmentLabel(url string, width int) string {
	if rest, ok := strings.CutPrefix(url, "data:"); ok {
		mediaType, _, _ := strings.Cut(rest, ";")
		return "inline " + mediaType
	}
	return ansi.TruncateLeft(url, max(0, ansi.StringWidth(url)-max(4, width)), "…")
}
