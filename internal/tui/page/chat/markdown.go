package chat

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"

	"github.com/guilhermegouw/aurora/internal/tui/styles"
)

// MarkdownRenderer renders model replies and generated code in the theme
// colours. The glamour renderer is rebuilt only when the width changes.
type MarkdownRenderer struct {
	mu       sync.Mutex
	renderer *glamour.TermRenderer
	width    int
}

// NewMarkdownRenderer creates a renderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render renders content wrapped at width. On failure the unrendered
// content is returned with the error.
func (m *MarkdownRenderer) Render(content string, width int) (string, error) {
	if content == "" {
		return "", nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.renderer == nil || m.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStyles(themeStyle(styles.CurrentTheme())),
			glamour.WithWordWrap(width),
			glamour.WithEmoji(),
			glamour.WithColorProfile(termenv.TrueColor),
		)
		if err != nil {
			return content, fmt.Errorf("building markdown renderer: %w", err)
		}
		m.renderer, m.width = r, width
	}

	out, err := m.renderer.Render(content)
	if err != nil {
		return content, fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

// RenderCode renders source as a fenced block highlighted for lang.
func (m *MarkdownRenderer) RenderCode(lang, source string, width int) (string, error) {
	return m.Render("```"+lang+"\n"+source+"\n```", width)
}

// themeStyle derives a glamour style from the dark preset and t.
func themeStyle(t *styles.Theme) ansi.StyleConfig {
	style := glamourstyles.DarkStyleConfig

	var (
		primary   = hex(t.Primary)
		secondary = hex(t.Secondary)
		accent    = hex(t.Accent)
		base      = hex(t.FgBase)
		muted     = hex(t.FgMuted)
	)

	headings := []struct {
		block *ansi.StyleBlock
		color string
		bold  bool
	}{
		{&style.H1, accent, true},
		{&style.H2, primary, true},
		{&style.H3, secondary, true},
		{&style.H4, secondary, false},
		{&style.H5, muted, false},
		{&style.H6, muted, false},
	}
	for _, h := range headings {
		h.block.Color = ptr(h.color)
		h.block.Prefix, h.block.Suffix = "", ""
		if h.bold {
			h.block.Bold = ptr(true)
		}
	}

	// The preset's chroma table is shared, so colour a copy.
	chroma := *style.CodeBlock.Chroma
	style.CodeBlock.Chroma = &chroma
	for prim, c := range map[*ansi.StylePrimitive]string{
		&chroma.Text:           base,
		&chroma.Name:           base,
		&chroma.Keyword:        primary,
		&chroma.Operator:       primary,
		&chroma.NameTag:        primary,
		&chroma.NameAttribute:  secondary,
		&chroma.LiteralString:  secondary,
		&chroma.Comment:        muted,
		&chroma.CommentPreproc: muted,
		&chroma.NameFunction:   accent,
		&chroma.NameClass:      accent,
	} {
		prim.Color = ptr(c)
	}

	style.Code.Color = ptr(secondary)
	style.Link.Color = ptr(primary)
	style.Link.Underline = ptr(true)
	style.LinkText.Color = ptr(primary)
	style.BlockQuote.Color = ptr(muted)
	style.BlockQuote.Italic = ptr(true)
	style.HorizontalRule.Color = ptr(hex(t.FgSubtle))
	style.Table.Color = ptr(base)
	style.Item.BlockPrefix = "  "
	style.Enumeration.BlockPrefix = "  "

	return style
}

func ptr[T any](v T) *T { return &v }

func hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
