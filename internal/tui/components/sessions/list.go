package sessions

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/guilhermegouw/aurora/internal/history"
	"github.com/guilhermegouw/aurora/internal/tui/styles"
)

// SessionList shows saved sessions in two groups, pinned and recent.
type SessionList struct {
	all      []history.Session
	sessions []history.Session
	query    string
	activeID string
	cursor   int
	offset   int
	width    int
	height   int
	now      func() time.Time
}

// NewSessionList creates an empty session list.
func NewSessionList() *SessionList {
	return &SessionList{now: time.Now}
}

// SetSessions replaces the sessions. They are expected in display order.
func (l *SessionList) SetSessions(sessions []history.Session) {
	selected := l.Selected()
	l.all = sessions
	l.apply()

	// Keep the cursor on the same session when it is still listed.
	if selected != nil {
		if i := history.Find(l.sessions, selected.ID); i >= 0 {
			l.cursor = i
		}
	}
	l.clamp()
}

// SetActive marks the session shown in the conversation.
func (l *SessionList) SetActive(id string) {
	l.activeID = id
}

// Filter narrows the list to titles containing query.
func (l *SessionList) Filter(query string) {
	l.query = query
	l.apply()
	l.cursor = 0
	l.offset = 0
}

// Count returns the number of listed and total sessions.
func (l *SessionList) Count() (listed, total int) {
	return len(l.sessions), len(l.all)
}

func (l *SessionList) apply() {
	l.sessions = history.Sorted(history.Filter(l.all, l.query))
}

func (l *SessionList) clamp() {
	if l.cursor >= len(l.sessions) {
		l.cursor = max(0, len(l.sessions)-1)
	}
	l.ensureVisible()
}

// SetSize sets the list dimensions.
func (l *SessionList) SetSize(width, height int) {
	l.width = width
	l.height = height
}

// Selected returns the session under the cursor.
func (l *SessionList) Selected() *history.Session {
	if l.cursor >= 0 && l.cursor < len(l.sessions) {
		return &l.sessions[l.cursor]
	}
	return nil
}

// Up moves the cursor up.
func (l *SessionList) Up() {
	if l.cursor > 0 {
		l.cursor--
		l.ensureVisible()
	}
}

// Down moves the cursor down.
func (l *SessionList) Down() {
	if l.cursor < len(l.sessions)-1 {
		l.cursor++
		l.ensureVisible()
	}
}

// Top moves the cursor to the first session.
func (l *SessionList) Top() {
	l.cursor = 0
	l.offset = 0
}

// Bottom moves the cursor to the last session.
func (l *SessionList) Bottom() {
	l.cursor = max(0, len(l.sessions)-1)
	l.ensureVisible()
}

func (l *SessionList) ensureVisible() {
	visibleRows := l.visibleRows()
	if l.cursor < l.offset {
		l.offset = l.cursor
	} else if l.cursor >= l.offset+visibleRows {
		l.offset = l.cursor - visibleRows + 1
	}
}

func (l *SessionList) visibleRows() int {
	// Two lines per session plus the group headers.
	return max(1, (l.height-4)/2)
}

// View renders the session list.
func (l *SessionList) View() string {
	t := styles.CurrentTheme()

	if len(l.sessions) == 0 {
		empty := t.S().Muted.Width(l.width).Align(lipgloss.Center).Padding(1, 0)
		if l.query != "" {
			return empty.Render("No chats match your search.")
		}
		return empty.Render("No chats yet.")
	}

	var rows []string
	if l.offset > 0 {
		rows = append(rows, t.S().Muted.Render(fmt.Sprintf("  ↑ %d more", l.offset)))
	}

	end := min(l.offset+l.visibleRows(), len(l.sessions))
	group := ""
	for i := l.offset; i < end; i++ {
		s := l.sessions[i]
		if g := groupOf(s); g != group {
			group = g
			rows = append(rows, t.S().Subtitle.Render(g))
		}
		rows = append(rows, l.renderSession(s, i == l.cursor))
	}

	if remaining := len(l.sessions) - end; remaining > 0 {
		rows = append(rows, t.S().Muted.Render(fmt.Sprintf("  ↓ %d more", remaining)))
	}
	return strings.Join(rows, "\n")
}

func groupOf(s history.Session) string {
	if s.Pinned {
		return "Pinned"
	}
	return "Recent"
}

func (l *SessionList) renderSession(s history.Session, selected bool) string {
	t := styles.CurrentTheme()

	marker := "  "
	titleStyle := t.S().Text
	switch {
	case selected:
		marker = "> "
		titleStyle = t.S().Primary.Bold(true)
	case s.ID == l.activeID:
		marker = "• "
		titleStyle = t.S().Secondary
	}
	if s.Pinned {
		marker += "★ "
	}

	title := ansi.Truncate(s.Title, max(4, l.width-lipgloss.Width(marker)), "…")
	meta := fmt.Sprintf("%d msgs · %s", len(s.Messages), formatRelativeTime(s.UpdatedAt(), l.now()))

	return titleStyle.Render(marker+title) + "\n" + t.S().Muted.Render("    "+meta)
}

// formatRelativeTime formats a time relative to now.
func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 48*time.Hour:
		return "yesterday"
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}
