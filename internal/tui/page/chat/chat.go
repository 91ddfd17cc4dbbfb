// Package chat provides the chat page of the Aurora TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/aurora/internal/bridge"
	chatsvc "github.com/guilhermegouw/aurora/internal/chat"
	"github.com/guilhermegouw/aurora/internal/debug"
	"github.com/guilhermegouw/aurora/internal/events"
	"github.com/guilhermegouw/aurora/internal/history"
	"github.com/guilhermegouw/aurora/internal/pubsub"
	"github.com/guilhermegouw/aurora/internal/session"
	"github.com/guilhermegouw/aurora/internal/tui/components/sessions"
	"github.com/guilhermegouw/aurora/internal/tui/components/welcome"
	"github.com/guilhermegouw/aurora/internal/tui/styles"
	"github.com/guilhermegouw/aurora/internal/tui/util"
)

// Controller is the part of the session controller the page drives.
// Mutating methods may block on event delivery to this page, so they only
// run inside commands.
type Controller interface {
	State() session.State
	Sessions() []history.Session
	DisplayName() string

	Submit(ctx context.Context, text string, att *chatsvc.Attachment) error
	NewConversation()
	SelectSession(id string) error
	TogglePin(ctx context.Context, id string) error
	DeleteSession(ctx context.Context, id string) error
	ToggleMode(mode session.Mode)
	Attach()
	DismissPreview()
	ToggleSidebar()
	SetDisplayName(ctx context.Context, name string)
}

// Options configure the page.
type Options struct {
	AppName         string
	WelcomeTitle    string
	WelcomeSubtitle string
	// ArtifactDir receives saved images and code.
	ArtifactDir string
}

// Internal command results.
type (
	// opDoneMsg is sent when a controller call returns.
	opDoneMsg struct {
		err    error
		notice string
	}

	// submitDoneMsg is sent when a turn ends.
	submitDoneMsg struct {
		err error
	}

	// attachmentLoadedMsg carries a loaded attachment.
	attachmentLoadedMsg struct {
		att *chatsvc.Attachment
		err error
	}
)

const (
	sidebarMinWidth  = 70
	previewSideWidth = 100
)

// Model is the chat page model.
type Model struct {
	ctrl            Controller
	ctx             context.Context
	opts            Options
	messages        *MessageList
	activity        *ActivityPanel
	input           *Input
	status          *StatusBar
	sidebar         *sessions.Sidebar
	welcome         *welcome.Welcome
	preview         *PreviewPanel
	commandRegistry *CommandRegistry
	attachment      *chatsvc.Attachment
	state           session.State
	help            string
	width           int
	height          int
}

// New creates a new chat page model.
func New(ctx context.Context, ctrl Controller, opts Options) *Model {
	return &Model{
		ctrl:            ctrl,
		ctx:             ctx,
		opts:            opts,
		messages:        NewMessageList(opts.AppName),
		activity:        NewActivityPanel(),
		input:           NewInput(),
		status:          NewStatusBar(),
		sidebar:         sessions.NewSidebar(),
		welcome:         welcome.New(opts.WelcomeTitle, opts.WelcomeSubtitle),
		preview:         NewPreviewPanel(),
		commandRegistry: NewCommandRegistry(),
	}
}

// Init initializes the chat page.
func (m *Model) Init() tea.Cmd {
	m.sync()
	return m.input.Init()
}

// sync reads the controller's current state.
func (m *Model) sync() {
	m.applyState(m.ctrl.State())
	m.sidebar.SetSessions(m.ctrl.Sessions())
	m.setName(m.ctrl.DisplayName())
}

func (m *Model) setName(name string) {
	m.messages.SetUserName(name)
	m.status.SetName(name)
}

// applyState renders a session model snapshot.
func (m *Model) applyState(s session.State) {
	wasLoading := m.state.Loading
	m.state = s

	m.messages.SetMessages(s.Messages)
	m.preview.SetPreview(s.Preview)
	m.sidebar.SetActive(s.ActiveID)
	m.input.SetMode(s.Mode)
	m.status.SetMode(s.Mode)

	if !s.SidebarOpen && m.sidebar.Focused() {
		m.sidebar.Blur()
		m.input.Focus()
	}
	if wasLoading && !s.Loading {
		m.activity.Clear()
		m.input.Enable()
	}
	m.status.SetLoading(s.Loading, m.activity.Frame())
}

// Update handles messages.
//
//nolint:gocyclo // Routes every page message type
func (m *Model) Update(msg tea.Msg) (util.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		debug.Event("chat", "KeyPress", fmt.Sprintf("key=%q", msg.String()))
		return m.handleKey(msg)

	case tea.MouseWheelMsg:
		switch msg.Button {
		case tea.MouseWheelUp:
			m.messages.ScrollUp(3)
		case tea.MouseWheelDown:
			m.messages.ScrollDown(3)
		}
		return m, nil

	case SpinnerTickMsg:
		var cmd tea.Cmd
		m.activity, cmd = m.activity.Update(msg)
		m.messages.SetSpinnerFrame(m.activity.Frame())
		m.status.SetLoading(m.state.Loading, m.activity.Frame())
		return m, cmd

	// Bridge messages from pub/sub system
	case bridge.ChatEventMsg:
		return m.handleChatEvent(msg.Event)

	case bridge.HistoryEventMsg:
		return m.handleHistoryEvent(msg.Event)

	case submitDoneMsg:
		m.sync()
		if errors.Is(msg.err, chatsvc.ErrBusy) {
			m.status.SetNotice(util.InfoTypeWarn, "Please wait for the current response.")
		} else if msg.err != nil {
			m.status.SetNotice(util.InfoTypeError, msg.err.Error())
		}
		if !m.state.Loading {
			m.activity.Clear()
			m.input.Enable()
			return m, m.input.Focus()
		}
		return m, nil

	case opDoneMsg:
		m.sync()
		switch {
		case msg.err != nil:
			m.status.SetNotice(util.InfoTypeError, msg.err.Error())
		case msg.notice != "":
			m.status.SetNotice(util.InfoTypeInfo, msg.notice)
		}
		return m, nil

	case attachmentLoadedMsg:
		if msg.err != nil {
			m.status.SetNotice(util.InfoTypeError, msg.err.Error())
			return m, nil
		}
		m.attachment = msg.att
		m.input.SetAttachment(filepath.Base(msg.att.URL))
		m.status.ClearNotice()
		return m, m.run(func() error { m.ctrl.Attach(); return nil }, "")

	// Sidebar requests.
	case sessions.SelectSessionMsg:
		m.sidebar.Blur()
		id := msg.SessionID
		return m, tea.Batch(m.input.Focus(), m.run(func() error { return m.ctrl.SelectSession(id) }, ""))

	case sessions.TogglePinMsg:
		id := msg.SessionID
		return m, m.run(func() error { return m.ctrl.TogglePin(m.ctx, id) }, "")

	case sessions.DeleteSessionMsg:
		id := msg.SessionID
		return m, m.run(func() error { return m.ctrl.DeleteSession(m.ctx, id) }, "Chat deleted.")

	case sessions.NewConversationMsg, NewConversationMsg:
		m.sidebar.Blur()
		return m, tea.Batch(m.input.Focus(), m.newConversation())

	case sessions.BlurMsg:
		return m, m.input.Focus()

	// Slash commands.
	case ToggleModeMsg:
		mode := msg.Mode
		return m, m.run(func() error { m.ctrl.ToggleMode(mode); return nil }, "")

	case AttachMsg:
		path := msg.Path
		return m, func() tea.Msg {
			att, err := chatsvc.LoadAttachment(path)
			return attachmentLoadedMsg{att: att, err: err}
		}

	case DetachMsg:
		m.detach()
		return m, nil

	case SetNameMsg:
		name := msg.Name
		return m, m.run(func() error { m.ctrl.SetDisplayName(m.ctx, name); return nil }, "")

	case ToggleSidebarMsg:
		return m, m.toggleSidebar()

	case SaveArtifactMsg:
		return m, m.saveArtifact()

	case CopyCodeMsg:
		return m, m.copyCode()

	case HelpMsg:
		m.help = m.commandRegistry.Help()
		return m, nil

	case UnknownCommandMsg:
		m.status.SetNotice(util.InfoTypeError, fmt.Sprintf("Unknown command /%s. Try /help.", msg.Command))
		return m, nil

	case artifactSavedMsg:
		m.preview.SetSaved(msg.path)
		m.status.SetNotice(util.InfoTypeInfo, "Saved "+filepath.Base(msg.path))
		return m, nil

	case util.InfoMsg:
		m.status.SetNotice(msg.Type, msg.Msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (util.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+b":
		return m, m.toggleSidebar()
	}

	if m.sidebar.Focused() {
		if key == "tab" {
			m.sidebar.Blur()
			return m, m.input.Focus()
		}
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}

	switch key {
	case "enter":
		return m, m.handleEnter()

	case "tab":
		if m.state.SidebarOpen && m.width >= sidebarMinWidth {
			m.input.Blur()
			m.sidebar.Focus()
		}
		return m, nil

	case "ctrl+n":
		return m, m.newConversation()

	case "esc":
		switch {
		case m.help != "":
			m.help = ""
		case m.state.Preview != nil:
			return m, m.run(func() error { m.ctrl.DismissPreview(); return nil }, "")
		case m.attachment != nil:
			m.detach()
		}
		return m, nil

	case "ctrl+s":
		return m, m.saveArtifact()

	case "ctrl+y":
		return m, m.copyCode()

	case "pgup":
		m.messages.ScrollUp(max(1, m.contentHeight()/2))
		return m, nil

	case "pgdown":
		m.messages.ScrollDown(max(1, m.contentHeight()/2))
		return m, nil

	case "up", "down":
		if m.showWelcome() && m.input.Value() == "" {
			if key == "up" {
				m.welcome.Prev()
			} else {
				m.welcome.Next()
			}
			return m, nil
		}
		if key == "up" {
			m.messages.ScrollUp(1)
		} else {
			m.messages.ScrollDown(1)
		}
		return m, nil
	}

	m.welcome.Reset()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleEnter runs a command or submits the input.
func (m *Model) handleEnter() tea.Cmd {
	value := m.input.Value()
	if value == "" && m.showWelcome() {
		if s, ok := m.welcome.Selected(); ok {
			value = s.Prompt
			m.welcome.Reset()
		}
	}

	if strings.HasPrefix(strings.TrimSpace(value), "/") {
		m.input.Clear()
		return m.parseCommand(value)
	}

	if m.state.Loading {
		m.status.SetNotice(util.InfoTypeWarn, "Please wait for the current response.")
		return nil
	}
	if strings.TrimSpace(value) == "" && m.attachment == nil {
		return nil
	}

	att := m.attachment
	imageOnly := att != nil && strings.TrimSpace(value) == ""
	m.detach()
	m.input.Clear()
	m.input.Disable()
	m.help = ""
	m.status.ClearNotice()
	m.status.SetTurnFailed(false)
	m.messages.ScrollToBottom()

	spin := m.activity.Start(activityLabel(m.state.Mode, imageOnly))
	ctrl, ctx, text := m.ctrl, m.ctx, value
	submit := func() tea.Msg {
		return submitDoneMsg{err: ctrl.Submit(ctx, text, att)}
	}
	return tea.Batch(spin, submit)
}

func (m *Model) newConversation() tea.Cmd {
	m.detach()
	m.help = ""
	m.messages.ScrollToBottom()
	return m.run(func() error { m.ctrl.NewConversation(); return nil }, "")
}

func (m *Model) toggleSidebar() tea.Cmd {
	if m.sidebar.Focused() {
		m.sidebar.Blur()
		return tea.Batch(m.input.Focus(), m.run(func() error { m.ctrl.ToggleSidebar(); return nil }, ""))
	}
	return m.run(func() error { m.ctrl.ToggleSidebar(); return nil }, "")
}

func (m *Model) detach() {
	m.attachment = nil
	m.input.SetAttachment("")
	m.input.SetMode(m.state.Mode)
}

// run calls the controller off the update loop.
func (m *Model) run(fn func() error, notice string) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{notice: notice}
	}
}

func (m *Model) saveArtifact() tea.Cmd {
	preview := m.state.Preview
	dir := m.opts.ArtifactDir
	return func() tea.Msg {
		path, err := SaveArtifact(preview, dir)
		if err != nil {
			return util.InfoMsg{Type: util.InfoTypeError, Msg: err.Error()}
		}
		return artifactSavedMsg{path: path}
	}
}

// artifactSavedMsg reports where an artifact was written.
type artifactSavedMsg struct {
	path string
}

func (m *Model) copyCode() tea.Cmd {
	if m.state.Preview == nil || m.state.Preview.Kind != session.PreviewCode {
		return util.ReportInfo("There is no code to copy.")
	}
	code := m.state.Preview.Code
	return func() tea.Msg {
		if err := clipboard.WriteAll(code); err != nil {
			return util.InfoMsg{Type: util.InfoTypeError, Msg: "Copy failed: " + err.Error()}
		}
		return util.InfoMsg{Type: util.InfoTypeInfo, Msg: "Code copied to clipboard."}
	}
}

// handleChatEvent processes session model events from the pub/sub bridge.
func (m *Model) handleChatEvent(event pubsub.Event[events.ChatEvent]) (util.Model, tea.Cmd) {
	ev := event.Payload
	m.applyState(ev.State)

	//nolint:exhaustive // Submitted and Changed only carry state
	switch ev.Type {
	case events.ChatEventTextDelta:
		m.activity.AddChunk()
	case events.ChatEventError:
		m.status.SetTurnFailed(true)
		debug.Error("chat", ev.Error, "turn failed")
	case events.ChatEventComplete:
		debug.Event("chat", "TurnComplete", ev.MessageID)
	}

	if !m.state.Loading && !m.input.IsEnabled() {
		m.activity.Clear()
		m.input.Enable()
		return m, m.input.Focus()
	}
	return m, nil
}

// handleHistoryEvent processes saved session events from the pub/sub bridge.
func (m *Model) handleHistoryEvent(event pubsub.Event[events.HistoryEvent]) (util.Model, tea.Cmd) {
	ev := event.Payload

	switch ev.Type {
	case events.HistoryEventNameChanged:
		m.setName(ev.DisplayName)
	case events.HistoryEventLoaded:
		m.setName(ev.DisplayName)
		m.sidebar.SetSessions(ev.Sessions)
	default:
		m.sidebar.SetSessions(ev.Sessions)
	}
	return m, nil
}

func (m *Model) showWelcome() bool {
	return !m.state.Started && len(m.state.Messages) == 0
}

// layout returns the sidebar and preview widths for the current size.
func (m *Model) layout() (sidebarWidth, previewWidth int) {
	if m.state.SidebarOpen && m.width >= sidebarMinWidth {
		sidebarWidth = min(34, m.width/3)
	}
	main := m.width - sidebarWidth
	if m.preview.Visible() && main >= previewSideWidth {
		previewWidth = main * 2 / 5
	}
	return sidebarWidth, previewWidth
}

// stackedPreviewHeight is the preview height when it sits above the input.
func (m *Model) stackedPreviewHeight() int {
	_, previewWidth := m.layout()
	if !m.preview.Visible() || previewWidth > 0 {
		return 0
	}
	return min(14, m.height/2)
}

// contentHeight is the height of the conversation area.
func (m *Model) contentHeight() int {
	statusHeight := 1
	separatorHeight := 1

	activityHeight := m.activity.Height()
	if activityHeight > 0 {
		activityHeight++ // Add separator height
	}

	h := m.height - statusHeight - separatorHeight - m.input.Height() - activityHeight - m.stackedPreviewHeight()
	return max(1, h)
}

// View renders the chat page.
func (m *Model) View() string {
	t := styles.CurrentTheme()

	sidebarWidth, previewWidth := m.layout()
	mainWidth := m.width - sidebarWidth
	convWidth := mainWidth - previewWidth
	contentHeight := m.contentHeight()

	var conversation string
	switch {
	case m.help != "":
		help, err := m.messages.markdown.Render(m.help, max(10, convWidth-4))
		if err != nil {
			help = m.help
		}
		conversation = lipgloss.NewStyle().Width(convWidth).Height(contentHeight).Padding(0, 1).Render(strings.Trim(help, "\n"))
	case m.showWelcome():
		m.welcome.SetSize(convWidth, contentHeight)
		conversation = m.welcome.View()
	default:
		m.messages.SetSize(convWidth, contentHeight)
		conversation = m.messages.View()
	}

	if previewWidth > 0 {
		m.preview.SetSize(previewWidth, contentHeight)
		conversation = lipgloss.JoinHorizontal(lipgloss.Top, conversation, m.preview.View())
	}

	separator := lipgloss.NewStyle().
		Width(mainWidth).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		Render("")

	parts := []string{conversation}
	if h := m.stackedPreviewHeight(); h > 0 {
		m.preview.SetSize(mainWidth, h)
		parts = append(parts, m.preview.View())
	}
	if m.activity.IsActive() {
		m.activity.SetWidth(mainWidth)
		parts = append(parts, separator, m.activity.View())
	}
	m.input.SetWidth(mainWidth)
	parts = append(parts, separator, m.input.View())

	main := lipgloss.JoinVertical(lipgloss.Left, parts...)
	if sidebarWidth > 0 {
		m.sidebar.SetSize(sidebarWidth, m.height-1)
		main = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main)
	}

	m.status.SetWidth(m.width)
	return lipgloss.JoinVertical(lipgloss.Left, main, m.status.View())
}

// SetSize sets the chat page size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Cursor returns the cursor position.
func (m *Model) Cursor() *tea.Cursor {
	sidebarWidth, _ := m.layout()
	if m.sidebar.Focused() {
		return m.sidebar.Cursor()
	}
	if !m.input.IsEnabled() {
		return nil
	}
	c := m.input.Cursor()
	if c == nil {
		return nil
	}

	top := m.contentHeight() + m.stackedPreviewHeight() + 1
	if h := m.activity.Height(); h > 0 {
		top += h + 1
	}
	// Input border and padding.
	c.X += sidebarWidth + 2
	c.Y += top + 1
	return c
}
