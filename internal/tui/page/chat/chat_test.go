package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/guilhermegouw/aurora/internal/bridge"
	chatsvc "github.com/guilhermegouw/aurora/internal/chat"
	"github.com/guilhermegouw/aurora/internal/events"
	"github.com/guilhermegouw/aurora/internal/gateway"
	"github.com/guilhermegouw/aurora/internal/history"
	"github.com/guilhermegouw/aurora/internal/kv"
	"github.com/guilhermegouw/aurora/internal/pubsub"
	"github.com/guilhermegouw/aurora/internal/session"
	"github.com/guilhermegouw/aurora/internal/tui/components/welcome"
)

func newTestPage(t *testing.T) (*Model, *chatsvc.Controller) {
	t.Helper()

	store := history.NewStore(kv.NewMemoryStore(), nil)
	ctrl := chatsvc.NewController(chatsvc.Config{Gateway: &gateway.Mock{}, Store: store})
	ctrl.Load(context.Background())

	m := New(context.Background(), ctrl, Options{
		AppName:         "Aurora",
		WelcomeTitle:    "Hello, I'm Aurora",
		WelcomeSubtitle: "How can I help you today?",
		ArtifactDir:     t.TempDir(),
	})
	m.SetSize(120, 40)
	m.Init()
	return m, ctrl
}

func press(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	}
	if k, ok := strings.CutPrefix(s, "ctrl+"); ok {
		return tea.KeyPressMsg{Code: []rune(k)[0], Mod: tea.ModCtrl}
	}
	return tea.KeyPressMsg{Code: []rune(s)[0], Text: s}
}

// isPageMsg reports whether msg belongs to this page or its components.
// Cursor blinks and spinner ticks are left out so commands terminate.
func isPageMsg(msg tea.Msg) bool {
	if _, ok := msg.(SpinnerTickMsg); ok {
		return false
	}
	name := fmt.Sprintf("%T", msg)
	return strings.HasPrefix(name, "chat.") || strings.HasPrefix(name, "sessions.") || strings.HasPrefix(name, "util.")
}

// drive runs cmd and feeds page messages back into m until nothing is left.
func drive(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()

	pending := []tea.Cmd{cmd}
	for len(pending) > 0 {
		results := make(chan tea.Msg, len(pending))
		started := 0
		for _, c := range pending {
			if c == nil {
				continue
			}
			started++
			go func() { results <- c() }()
		}
		pending = nil

		deadline := time.After(3 * time.Second)
	collect:
		for range started {
			select {
			case msg := <-results:
				if batch, ok := msg.(tea.BatchMsg); ok {
					pending = append(pending, batch...)
					continue
				}
				if isPageMsg(msg) {
					_, next := m.Update(msg)
					pending = append(pending, next)
				}
			case <-deadline:
				break collect
			}
		}
	}
}

// send types text into the input and presses enter.
func send(t *testing.T, m *Model, text string) {
	t.Helper()
	m.input.SetValue(text)
	_, cmd := m.Update(press("enter"))
	drive(t, m, cmd)
}

func view(m *Model) string {
	return ansi.Strip(m.View())
}

func TestChatPage_WelcomeUntilFirstMessage(t *testing.T) {
	m, _ := newTestPage(t)

	v := view(m)
	for _, want := range []string{"Hello, I'm Aurora", "How can I help you today?", "Content Help", "Brainstorm Ideas", "Job Application"} {
		if !strings.Contains(v, want) {
			t.Errorf("welcome view missing %q", want)
		}
	}

	send(t, m, "hello there")

	v = view(m)
	if strings.Contains(v, "Brainstorm Ideas") {
		t.Error("welcome still shown after the first message")
	}
	if !strings.Contains(v, "You said: hello there") {
		t.Errorf("reply not rendered:\n%s", v)
	}
	if !m.input.IsEnabled() {
		t.Error("input should be enabled after the turn")
	}
}

func TestChatPage_SubmitSavesSession(t *testing.T) {
	m, ctrl := newTestPage(t)

	send(t, m, "plan a trip to Lisbon")

	got := ctrl.Sessions()
	if len(got) != 1 || got[0].Title != "plan a trip to Lisbon" {
		t.Fatalf("Sessions() = %+v", got)
	}
	if !strings.Contains(view(m), "Chats (1)") {
		t.Error("sidebar should list the new session")
	}
}

func TestChatPage_SuggestionSubmitsPrompt(t *testing.T) {
	m, _ := newTestPage(t)

	m.Update(press("down"))
	m.Update(press("down"))
	_, cmd := m.Update(press("enter"))
	drive(t, m, cmd)

	msgs := m.state.Messages
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if want := welcome.Suggestions[1].Prompt; msgs[0].Content != want {
		t.Errorf("user message = %q, want %q", msgs[0].Content, want)
	}
}

func TestChatPage_SlashCommands(t *testing.T) {
	m, _ := newTestPage(t)

	send(t, m, "/image")
	if m.state.Mode != session.ModeImage {
		t.Fatalf("mode = %s, want %s", m.state.Mode, session.ModeImage)
	}
	if !strings.Contains(view(m), "● Image") {
		t.Error("status bar should show the image mode")
	}

	send(t, m, "a lighthouse at dusk")
	if m.state.Mode != session.ModeChat {
		t.Errorf("mode after generation = %s, want chat", m.state.Mode)
	}
	if m.state.Preview == nil || m.state.Preview.Kind != session.PreviewImage {
		t.Fatalf("preview = %+v, want image", m.state.Preview)
	}
	if v := view(m); !strings.Contains(v, "image/svg+xml image") {
		t.Errorf("preview not rendered:\n%s", v)
	}

	// Save, then dismiss.
	_, cmd := m.Update(press("ctrl+s"))
	drive(t, m, cmd)
	if m.preview.saved == "" {
		t.Error("ctrl+s did not save the image")
	}
	_, cmd = m.Update(press("esc"))
	drive(t, m, cmd)
	if m.state.Preview != nil {
		t.Error("esc should dismiss the preview")
	}

	send(t, m, "/name Ada")
	if !strings.Contains(view(m), "Ada •") {
		t.Error("status bar should show the new name")
	}

	send(t, m, "/bogus")
	if !strings.Contains(view(m), "Unknown command /bogus") {
		t.Error("unknown command not reported")
	}

	send(t, m, "/help")
	if !strings.Contains(view(m), "/attach <path>") {
		t.Error("help not shown")
	}
}

func TestChatPage_AttachMissingFile(t *testing.T) {
	m, _ := newTestPage(t)

	send(t, m, "/attach /definitely/not/here.png")
	if m.attachment != nil {
		t.Fatal("attachment set for a missing file")
	}
	if !strings.Contains(view(m), "reading attachment") {
		t.Errorf("load error not reported:\n%s", view(m))
	}
}

func TestChatPage_AttachAndAnalyze(t *testing.T) {
	m, _ := newTestPage(t)

	att := &chatsvc.Attachment{
		URL:   "/tmp/receipt.png",
		Image: gateway.Image{Data: []byte("\x89PNG\r\n\x1a\n"), MediaType: "image/png"},
	}
	_, cmd := m.Update(attachmentLoadedMsg{att: att})
	drive(t, m, cmd)

	if !strings.Contains(view(m), "📎 receipt.png") {
		t.Fatal("attachment chip not shown")
	}

	send(t, m, "")
	msgs := m.state.Messages
	if len(msgs) != 2 || msgs[0].Content != chatsvc.AnalyzeImagePrompt {
		t.Fatalf("messages = %+v", msgs)
	}
	if !strings.HasPrefix(msgs[1].Content, chatsvc.ExtractedTextReply) {
		t.Errorf("reply = %q", msgs[1].Content)
	}
	if m.attachment != nil {
		t.Error("attachment should be consumed by the submission")
	}
}

func TestChatPage_ChatEventsUpdateView(t *testing.T) {
	m, _ := newTestPage(t)

	state := session.State{
		Mode:        session.ModeChat,
		Started:     true,
		Loading:     true,
		SidebarOpen: true,
		Messages: []history.Message{
			{ID: "u1", Role: history.RoleUser, Content: "stream please"},
			{ID: "m1", Role: history.RoleModel, Content: "partial ans"},
		},
	}
	m.input.Disable()
	m.activity.Start("Thinking...")

	ev := pubsub.Event[events.ChatEvent]{
		Type:    pubsub.EventUpdated,
		Payload: events.NewChatTextDeltaEvent(state, "m1", "ans"),
	}
	m.Update(bridge.ChatEventMsg{Event: ev})

	v := view(m)
	if !strings.Contains(v, "partial ans") || !strings.Contains(v, "1 chunks") {
		t.Errorf("streamed chunk not shown:\n%s", v)
	}

	state.Loading = false
	done := pubsub.Event[events.ChatEvent]{
		Type:    pubsub.EventUpdated,
		Payload: events.NewChatCompleteEvent(state, "m1"),
	}
	m.Update(bridge.ChatEventMsg{Event: done})
	if !m.input.IsEnabled() || m.activity.IsActive() {
		t.Error("input should be re-enabled when loading ends")
	}
}

func TestChatPage_HistoryEvents(t *testing.T) {
	m, _ := newTestPage(t)

	sessions := []history.Session{{ID: "s1", Title: "Old chat", Timestamp: time.Now().UnixMilli()}}
	m.Update(bridge.HistoryEventMsg{Event: pubsub.Event[events.HistoryEvent]{
		Type:    pubsub.EventUpdated,
		Payload: events.NewHistoryEvent(events.HistoryEventCreated, "s1", sessions),
	}})
	m.Update(bridge.HistoryEventMsg{Event: pubsub.Event[events.HistoryEvent]{
		Type:    pubsub.EventUpdated,
		Payload: events.NewNameChangedEvent("Grace"),
	}})

	v := view(m)
	if !strings.Contains(v, "Old chat") || !strings.Contains(v, "Grace •") {
		t.Errorf("history events not applied:\n%s", v)
	}
}

func TestChatPage_SidebarSelectsSession(t *testing.T) {
	m, ctrl := newTestPage(t)

	send(t, m, "first topic")
	_, cmd := m.Update(press("ctrl+n"))
	drive(t, m, cmd)
	if len(m.state.Messages) != 0 {
		t.Fatalf("ctrl+n left %d messages", len(m.state.Messages))
	}

	m.Update(press("tab"))
	if !m.sidebar.Focused() {
		t.Fatal("tab should focus the sidebar")
	}
	_, cmd = m.Update(press("enter"))
	drive(t, m, cmd)

	if m.sidebar.Focused() {
		t.Error("selecting a session should return focus to the input")
	}
	if got := ctrl.State().ActiveID; got == "" || got != ctrl.Sessions()[0].ID {
		t.Errorf("ActiveID = %q, want the saved session", got)
	}
	if !strings.Contains(view(m), "You said: first topic") {
		t.Error("selected session not shown")
	}
}

func TestChatPage_NarrowHidesSidebar(t *testing.T) {
	m, _ := newTestPage(t)
	m.SetSize(60, 30)

	if strings.Contains(view(m), "Chats") {
		t.Error("sidebar should be hidden on narrow terminals")
	}
	m.Update(press("tab"))
	if m.sidebar.Focused() {
		t.Error("hidden sidebar should not take focus")
	}
}
