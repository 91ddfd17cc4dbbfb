// Package welcome renders the empty-conversation screen with suggestions.
package welcome

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/aurora/internal/tui/components/logo"
	"github.com/guilhermegouw/aurora/internal/tui/styles"
)

// Suggestion is a canned first prompt.
type Suggestion struct {
	Icon        string
	Title       string
	Description string
	Prompt      string
}

// Suggestions are offered on the welcome screen.
var Suggestions = []Suggestion{
	{
		Icon:        "📝",
		Title:       "Content Help",
		Description: "Draft a presentation",
		Prompt:      "Help me create a presentation about the future of renewable energy.",
	},
	{
		Icon:        "💡",
		Title:       "Brainstorm Ideas",
		Description: "For my new project",
		Prompt:      "Brainstorm some innovative names for a new tech startup focused on AI-powered personal assistants.",
	},
	{
		Icon:        "📄",
		Title:       "Job Application",
		Description: "Write a cover letter",
		Prompt:      "Help me write a compelling cover letter for a software engineer position at a leading tech company.",
	},
}

// Welcome displays the greeting and suggestion cards.
type Welcome struct {
	title    string
	subtitle string
	selected int
	width    int
	height   int
}

// New creates a welcome screen.
func New(title, subtitle string) *Welcome {
	return &Welcome{title: title, subtitle: subtitle, selected: -1}
}

// Next highlights the next suggestion.
func (w *Welcome) Next() {
	w.selected = (w.selected + 1) % len(Suggestions)
}

// Prev highlights the previous suggestion.
func (w *Welcome) Prev() {
	if w.selected <= 0 {
		w.selected = len(Suggestions) - 1
		return
	}
	w.selected--
}

// Reset clears the highlight.
func (w *Welcome) Reset() { w.selected = -1 }

// Selected returns the highlighted suggestion.
func (w *Welcome) Selected() (Suggestion, bool) {
	if w.selected < 0 || w.selected >= len(Suggestions) {
		return Suggestion{}, false
	}
	return Suggestions[w.selected], true
}

// SetSize sets the welcome screen size.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// View renders the welcome screen.
func (w *Welcome) View() string {
	t := styles.CurrentTheme()

	cardWidth := 28
	if w.width > 0 && w.width < 3*(cardWidth+2) {
		cardWidth = max(16, w.width-4)
	}

	cards := make([]string, len(Suggestions))
	for i, s := range Suggestions {
		border := t.Border
		if i == w.selected {
			border = t.BorderFocus
		}
		body := lipgloss.JoinVertical(lipgloss.Left,
			s.Icon,
			t.S().Title.Render(s.Title),
			t.S().Muted.Render(s.Description),
		)
		cards[i] = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1).
			Width(cardWidth).
			Render(body)
	}

	var row string
	if w.width >= 3*(cardWidth+2) {
		row = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	} else {
		row = lipgloss.JoinVertical(lipgloss.Left, cards...)
	}

	hint := t.S().Subtle.Render(fmt.Sprintf("↑/↓ to pick a suggestion • enter to send • %d ideas", len(Suggestions)))

	content := lipgloss.JoinVertical(lipgloss.Center,
		logo.Render(),
		"",
		t.S().Title.Render(w.title),
		t.S().Subtitle.Render(w.subtitle),
		"",
		row,
		"",
		hint,
	)

	return lipgloss.Place(w.width, w.height, lipgloss.Center, lipgloss.Center, content)
}
