package chat

import (
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/aurora/internal/session"
	"github.com/guilhermegouw/aurora/internal/tui/styles"
)

// Spinner animation frames (braille pattern).
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerInterval is the time between spinner frame updates.
const spinnerInterval = 100 * time.Millisecond

// SpinnerTickMsg is sent to advance the spinner animation.
type SpinnerTickMsg struct{}

// ActivityPanel shows what the assistant is doing while a turn runs.
type ActivityPanel struct {
	label   string
	spinner int
	chunks  int
	width   int
	active  bool
}

// NewActivityPanel creates a new activity panel.
func NewActivityPanel() *ActivityPanel {
	return &ActivityPanel{}
}

// activityLabel describes the work a submission starts.
func activityLabel(mode session.Mode, imageOnly bool) string {
	if imageOnly {
		return "Reading the image..."
	}
	switch mode {
	case session.ModeImage:
		return "Generating image..."
	case session.ModeCode:
		return "Writing code..."
	case session.ModePresentation:
		return "Building slides..."
	default:
		return "Thinking..."
	}
}

// Start shows the panel with label and starts the spinner. Starting an
// already active panel only changes the label.
func (a *ActivityPanel) Start(label string) tea.Cmd {
	a.label = label
	a.chunks = 0
	if a.active {
		return nil
	}
	a.active = true
	return a.tickSpinner()
}

// AddChunk counts one streamed chunk.
func (a *ActivityPanel) AddChunk() {
	a.chunks++
}

// Clear hides the panel.
func (a *ActivityPanel) Clear() {
	a.active = false
	a.label = ""
	a.chunks = 0
	a.spinner = 0
}

// SetWidth sets the panel width.
func (a *ActivityPanel) SetWidth(width int) {
	a.width = width
}

// Height returns the current height of the panel (0 when hidden).
func (a *ActivityPanel) Height() int {
	if !a.active {
		return 0
	}
	return 1
}

// IsActive returns true if the panel has content to show.
func (a *ActivityPanel) IsActive() bool {
	return a.active
}

// Frame returns the current spinner frame.
func (a *ActivityPanel) Frame() string {
	return spinnerFrames[a.spinner]
}

// Update handles messages for the activity panel.
func (a *ActivityPanel) Update(msg tea.Msg) (*ActivityPanel, tea.Cmd) {
	if _, ok := msg.(SpinnerTickMsg); ok && a.active {
		a.spinner = (a.spinner + 1) % len(spinnerFrames)
		return a, a.tickSpinner()
	}
	return a, nil
}

// tickSpinner returns a command that sends a SpinnerTickMsg after the interval.
func (a *ActivityPanel) tickSpinner() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg {
		return SpinnerTickMsg{}
	})
}

// View renders the activity panel.
func (a *ActivityPanel) View() string {
	if !a.active {
		return ""
	}

	t := styles.CurrentTheme()

	line := t.S().Info.Render(a.Frame() + " " + a.label)
	if a.chunks > 0 {
		line += t.S().Muted.Render(fmt.Sprintf("  %d chunks", a.chunks))
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		Width(a.width).
		Render(line)
}
