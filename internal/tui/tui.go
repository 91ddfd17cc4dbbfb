// Package tui provides the terminal user interface for Aurora.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/guilhermegouw/aurora/internal/bridge"
	"github.com/guilhermegouw/aurora/internal/debug"
	"github.com/guilhermegouw/aurora/internal/pubsub"
	"github.com/guilhermegouw/aurora/internal/tui/page/chat"
)

// Model is the main TUI model.
type Model struct {
	chatPage *chat.Model
	width    int
	height   int
	ready    bool
}

// New creates a new TUI model.
func New(ctx context.Context, ctrl chat.Controller, opts chat.Options) *Model {
	return &Model{
		chatPage: chat.New(ctx, ctrl, opts),
	}
}

// Init initializes the TUI.
func (m *Model) Init() tea.Cmd {
	return m.chatPage.Init()
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		debug.Event("tui", "WindowSize", fmt.Sprintf("width=%d height=%d", msg.Width, msg.Height))
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.chatPage.SetSize(m.width, m.height)
		return m, nil
	case tea.MouseMotionMsg:
		// Too noisy to log.
		return m, nil
	case bridge.ChatEventMsg, bridge.HistoryEventMsg:
		// Logged by the bridge.
	default:
		debug.Event("tui", "Msg", fmt.Sprintf("type=%T", msg))
	}

	_, cmd := m.chatPage.Update(msg)
	return m, cmd
}

// View renders the TUI.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion
	// Don't force background color - let terminal use its native background
	// to avoid polluting the terminal state on exit

	if !m.ready {
		view.Content = "Loading..."
		return view
	}

	content := m.chatPage.View()
	debug.Event("tui", "View", fmt.Sprintf("chat content lines=%d", strings.Count(content, "\n")+1))

	view.Content = content
	view.Cursor = m.chatPage.Cursor()
	return view
}

// Run starts the TUI program and blocks until it exits.
func Run(ctx context.Context, ctrl chat.Controller, hub *pubsub.Hub, opts chat.Options) error {
	// Check if running in a terminal.
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("aurora requires an interactive terminal: stdin/stdout must be connected to a TTY")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := New(ctx, ctrl, opts)
	// In Bubble Tea v2, AltScreen and MouseMode are set in View()
	p := tea.NewProgram(model, tea.WithContext(ctx))

	// Start TUI bridge to forward pub/sub events to Bubble Tea messages.
	if hub != nil {
		tuiBridge := bridge.NewTUIBridge(hub, p)
		tuiBridge.Start(ctx)
		defer tuiBridge.Stop()
	}

	_, err := p.Run()
	if err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}
