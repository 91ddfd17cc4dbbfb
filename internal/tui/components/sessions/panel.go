package sessions

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/guilhermegouw/aurora/internal/tui/styles"
)

// BorderedPanel draws content in a rounded box with the title centred in
// the top border. The border takes the focus colour while focused.
type BorderedPanel struct {
	title   string
	content string
	width   int
	height  int
	focused bool
}

// NewBorderedPanel creates an empty panel.
func NewBorderedPanel() *BorderedPanel {
	return &BorderedPanel{}
}

// SetTitle sets the border title.
func (p *BorderedPanel) SetTitle(title string) { p.title = title }

// SetContent sets the text drawn inside the border.
func (p *BorderedPanel) SetContent(content string) { p.content = content }

// SetSize sets the outer size, borders included.
func (p *BorderedPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetFocused switches the border colour.
func (p *BorderedPanel) SetFocused(focused bool) { p.focused = focused }

// View renders the panel.
func (p *BorderedPanel) View() string {
	t := styles.CurrentTheme()

	borderColor := t.Border
	if p.focused {
		borderColor = t.BorderFocus
	}
	border := lipgloss.NewStyle().Foreground(borderColor)

	// inner excludes the two corner columns; text also loses one space of
	// padding on each side.
	inner := max(4, p.width-2)
	textWidth := inner - 2

	title := p.title
	if inner > 7 {
		title = ansi.Truncate(title, inner-4, "…")
	}
	title = t.S().Primary.Bold(true).Render(title)
	gap := max(0, inner-lipgloss.Width(title))

	rows := make([]string, 0, p.height)
	rows = append(rows, border.Render("╭"+strings.Repeat("─", gap/2))+title+border.Render(strings.Repeat("─", gap-gap/2)+"╮"))

	lines := strings.Split(p.content, "\n")
	for i := range max(1, p.height-2) {
		var line string
		if i < len(lines) {
			line = fit(lines[i], textWidth)
		} else {
			line = strings.Repeat(" ", max(0, textWidth))
		}
		rows = append(rows, border.Render("│ ")+line+border.Render(" │"))
	}

	rows = append(rows, border.Render("╰"+strings.Repeat("─", inner)+"╯"))
	return strings.Join(rows, "\n")
}

// fit pads or truncates a possibly styled line to exactly width cells.
func fit(line string, width int) string {
	if width <= 0 {
		return ""
	}
	w := lipgloss.Width(line)
	switch {
	case w > width:
		return ansi.Truncate(line, width, "…")
	case w < width:
		return line + strings.Repeat(" ", width-w)
	default:
		return line
	}
}
