// Package styles holds the colour theme and shared lipgloss styles.
package styles

import (
	"image/color"
	"strings"
	"sync"

	"charm.land/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Theme is a named colour palette.
type Theme struct { //nolint:govet // fieldalignment: preserving logical field order
	Name   string
	IsDark bool

	Primary   color.Color
	Secondary color.Color
	Tertiary  color.Color
	Accent    color.Color

	BgBase    color.Color
	BgSubtle  color.Color
	BgOverlay color.Color

	FgBase   color.Color
	FgMuted  color.Color
	FgSubtle color.Color

	Border      color.Color
	BorderFocus color.Color

	Success color.Color
	Error   color.Color
	Warning color.Color
	Info    color.Color

	once   sync.Once
	styles *Styles
}

// Styles are the theme's ready-made text styles.
type Styles struct {
	Base     lipgloss.Style
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Subtle   lipgloss.Style
	Title    lipgloss.Style
	Subtitle lipgloss.Style

	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Accent    lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Selected lipgloss.Style
}

// S returns the theme's styles.
func (t *Theme) S() *Styles {
	t.once.Do(func() {
		base := lipgloss.NewStyle().Foreground(t.FgBase)
		t.styles = &Styles{
			Base:      base,
			Text:      base,
			Muted:     lipgloss.NewStyle().Foreground(t.FgMuted),
			Subtle:    lipgloss.NewStyle().Foreground(t.FgSubtle),
			Title:     lipgloss.NewStyle().Foreground(t.FgBase).Bold(true),
			Subtitle:  lipgloss.NewStyle().Foreground(t.FgMuted).Bold(true),
			Primary:   lipgloss.NewStyle().Foreground(t.Primary),
			Secondary: lipgloss.NewStyle().Foreground(t.Secondary),
			Accent:    lipgloss.NewStyle().Foreground(t.Accent),
			Success:   lipgloss.NewStyle().Foreground(t.Success),
			Error:     lipgloss.NewStyle().Foreground(t.Error),
			Warning:   lipgloss.NewStyle().Foreground(t.Warning),
			Info:      lipgloss.NewStyle().Foreground(t.Info),
			Selected:  lipgloss.NewStyle().Foreground(t.FgBase).Background(t.BgOverlay),
		}
	})
	return t.styles
}

var (
	mu      sync.RWMutex
	current *Theme
)

// CurrentTheme returns the active theme.
func CurrentTheme() *Theme {
	mu.RLock()
	t := current
	mu.RUnlock()
	if t != nil {
		return t
	}

	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		current = NewDefaultTheme()
	}
	return current
}

// SetTheme replaces the active theme.
func SetTheme(t *Theme) {
	mu.Lock()
	defer mu.Unlock()
	current = t
}

// ParseHex parses a #rrggbb colour. Invalid input yields black.
func ParseHex(hex string) color.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}
	}
	return c
}

// ApplyForegroundGrad colours each line of text with a horizontal gradient.
func ApplyForegroundGrad(text string, from, to color.Color) string {
	a, _ := colorful.MakeColor(from)
	b, _ := colorful.MakeColor(to)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		var clusters []string
		g := uniseg.NewGraphemes(line)
		for g.Next() {
			clusters = append(clusters, g.Str())
		}

		var sb strings.Builder
		for j, cluster := range clusters {
			if strings.TrimSpace(cluster) == "" {
				sb.WriteString(cluster)
				continue
			}
			t := 0.0
			if len(clusters) > 1 {
				t = float64(j) / float64(len(clusters)-1)
			}
			sb.WriteString(lipgloss.NewStyle().Foreground(a.BlendLuv(b, t).Clamped()).Render(cluster))
		}
		lines[i] = sb.String()
	}
	return strings.Join(lines, "\n")
}
