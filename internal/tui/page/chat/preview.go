package chat

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/guilhermegouw/aurora/internal/gateway"
	"github.com/guilhermegouw/aurora/internal/session"
	"github.com/guilhermegouw/aurora/internal/tui/styles"
)

// Errors returned by SaveArtifact.
var (
	ErrNothingToSave = errors.New("there is no preview to save")
	ErrNotSavable    = errors.New("this preview cannot be saved")
)

// PreviewPanel shows the artifact of the last image, code or presentation
// request.
type PreviewPanel struct {
	preview  *session.Preview
	markdown *MarkdownRenderer
	saved    string
	width    int
	height   int
}

// NewPreviewPanel creates an empty preview panel.
func NewPreviewPanel() *PreviewPanel {
	return &PreviewPanel{markdown: NewMarkdownRenderer()}
}

// SetPreview replaces the preview. Nil hides the panel.
func (p *PreviewPanel) SetPreview(preview *session.Preview) {
	if !samePreview(p.preview, preview) {
		p.saved = ""
	}
	p.preview = preview
}

func samePreview(a, b *session.Preview) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// SetSaved records where the current preview was saved.
func (p *PreviewPanel) SetSaved(path string) {
	p.saved = path
}

// Visible reports whether there is a preview.
func (p *PreviewPanel) Visible() bool {
	return p.preview != nil
}

// SetSize sets the panel dimensions including its border.
func (p *PreviewPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// View renders the panel.
func (p *PreviewPanel) View() string {
	if p.preview == nil {
		return ""
	}

	t := styles.CurrentTheme()
	inner := max(10, p.width-4)

	var title string
	var body []string
	var hints string

	switch p.preview.Kind {
	case session.PreviewImage:
		title = "Image"
		body = append(body,
			t.S().Text.Width(inner).Render(fmt.Sprintf("%q", p.preview.Prompt)),
			"",
			t.S().Muted.Render(describeImage(p.preview.ImageURL, inner)),
		)
		hints = "ctrl+s save • esc close"

	case session.PreviewCode:
		title = "Code"
		if p.preview.Explanation != "" {
			body = append(body, t.S().Text.Width(inner).Render(p.preview.Explanation), "")
		}
		code, err := p.markdown.RenderCode("html", p.preview.Code, inner)
		if err != nil {
			code = p.preview.Code
		}
		body = append(body, strings.Trim(code, "\n"))
		hints = "ctrl+y copy • ctrl+s save • esc close"

	case session.PreviewPresentation:
		title = "Presentation"
		body = append(body,
			t.S().Title.Render(p.preview.Title),
			t.S().Muted.Render(p.preview.FileName),
			"",
			t.S().Text.Render(slideSummary(p.preview.SlideCount)),
		)
		hints = "esc close"
	}

	if p.saved != "" {
		body = append(body, "", t.S().Success.Render("Saved to "+p.saved))
	}

	lines := strings.Split(strings.Join(body, "\n"), "\n")
	// Border, title row and hint row.
	room := max(1, p.height-4)
	if len(lines) > room {
		lines = append(lines[:room-1], t.S().Muted.Render("…"))
	}
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, inner, "…")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		t.S().Primary.Bold(true).Render(title),
		strings.Join(lines, "\n"),
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Padding(0, 1).
		Width(p.width).
		Height(max(3, p.height-1))

	return lipgloss.JoinVertical(lipgloss.Left,
		box.Render(content),
		t.S().Muted.Width(p.width).Align(lipgloss.Center).Render(hints),
	)
}

func slideSummary(n int) string {
	if n <= 1 {
		return "1 slide (title only)"
	}
	return fmt.Sprintf("%d slides: a title slide and %d content slides", n, n-1)
}

// describeImage summarizes an image URL for a terminal that cannot show it.
func describeImage(url string, width int) string {
	img, err := gateway.ParseDataURL(url)
	if err != nil {
		return ansi.Truncate(url, width, "…")
	}
	return fmt.Sprintf("%s image, %s", img.MediaType, formatSize(len(img.Data)))
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// SaveArtifact writes the previewed image or code into dir and returns the
// file path. Existing files are never overwritten.
func SaveArtifact(p *session.Preview, dir string) (string, error) {
	if p == nil {
		return "", ErrNothingToSave
	}

	var name string
	var data []byte

	switch p.Kind {
	case session.PreviewImage:
		img, err := gateway.ParseDataURL(p.ImageURL)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrNotSavable, err)
		}
		name = slugify(p.Prompt, "image") + imageExtension(img.MediaType)
		data = img.Data
	case session.PreviewCode:
		name = slugify(p.Prompt, "page") + ".html"
		data = []byte(p.Code)
	default:
		return "", ErrNotSavable
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating artifact directory: %w", err)
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	path := filepath.Join(dir, name)
	for i := 2; ; i++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) //nolint:gosec // G304: path is built from a sanitized name
		if errors.Is(err, os.ErrExist) {
			path = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, i, ext))
			continue
		}
		if err != nil {
			return "", fmt.Errorf("saving artifact: %w", err)
		}
		_, err = f.Write(data)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return "", fmt.Errorf("saving artifact: %w", err)
		}
		return path, nil
	}
}

func imageExtension(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".png"
	}
}

// slugify turns a prompt into a short file name.
func slugify(s, fallback string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= 40 {
			break
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return fallback
	}
	return slug
}
