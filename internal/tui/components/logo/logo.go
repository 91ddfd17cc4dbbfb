// Package logo renders the Aurora wordmark.
package logo

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/aurora/internal/tui/styles"
)

const auroraLogo = `
 ▄▀█ █ █ █▀█ █▀█ █▀█ ▄▀█
 █▀█ █▄█ █▀▄ █▄█ █▀▄ █▀█
`

// Render returns the logo coloured with the theme gradient.
func Render() string {
	t := styles.CurrentTheme()
	logo := strings.Trim(auroraLogo, "\n")
	return styles.ApplyForegroundGrad(logo, t.Primary, t.Secondary)
}

// RenderName returns an app name in the theme gradient, for names other
// than the default.
func RenderName(name string) string {
	t := styles.CurrentTheme()
	return styles.ApplyForegroundGrad(name, t.Primary, t.Secondary)
}

// Width returns the width of the logo.
func Width() int {
	return lipgloss.Width(strings.Trim(auroraLogo, "\n"))
}
