package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/guilhermegouw/aurora/internal/events"
	"github.com/guilhermegouw/aurora/internal/pubsub"
	"github.com/guilhermegouw/aurora/internal/session"
)

// mockProgram captures messages sent via Send().
type mockProgram struct {
	mu       sync.Mutex
	messages []tea.Msg
}

func (m *mockProgram) Send(msg tea.Msg) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

func (m *mockProgram) Messages() []tea.Msg {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]tea.Msg, len(m.messages))
	copy(result, m.messages)
	return result
}

func waitFor(t *testing.T, p *mockProgram, n int) []tea.Msg {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if msgs := p.Messages(); len(msgs) >= n {
			return msgs
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d messages, got %d", n, len(p.Messages()))
	return nil
}

func TestTUIBridgeStartStop(t *testing.T) {
	t.Run("start and stop lifecycle", func(t *testing.T) {
		hub := pubsub.NewHub()
		defer hub.Shutdown()

		bridge := NewTUIBridge(hub, &mockProgram{})
		bridge.Start(context.Background())

		if got := hub.Chat.SubscriberCount(); got != 1 {
			t.Errorf("chat subscribers = %d, want 1", got)
		}

		bridge.Stop()

		// Should be safe to stop again
		bridge.Stop()
	})

	t.Run("stop without start is safe", func(t *testing.T) {
		hub := pubsub.NewHub()
		defer hub.Shutdown()

		NewTUIBridge(hub, &mockProgram{}).Stop()
	})

	t.Run("hub shutdown ends forwarding", func(t *testing.T) {
		hub := pubsub.NewHub()
		bridge := NewTUIBridge(hub, &mockProgram{})
		bridge.Start(context.Background())

		hub.Shutdown()

		done := make(chan struct{})
		go func() { bridge.Stop(); close(done) }()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Stop did not return after hub shutdown")
		}
	})
}

func TestTUIBridgeForwardsChatInOrder(t *testing.T) {
	hub := pubsub.NewHub()
	defer hub.Shutdown()

	program := &mockProgram{}
	bridge := NewTUIBridge(hub, program)
	bridge.Start(context.Background())
	defer bridge.Stop()

	deltas := []string{"a", "b", "c", "d", "e"}
	for _, d := range deltas {
		hub.Chat.Publish(pubsub.EventUpdated, events.NewChatTextDeltaEvent(session.State{}, "msg-1", d))
	}

	msgs := waitFor(t, program, len(deltas))
	for i, msg := range msgs {
		chat, ok := msg.(ChatEventMsg)
		if !ok {
			t.Fatalf("message %d is %T, want ChatEventMsg", i, msg)
		}
		if chat.Event.Payload.TextDelta != deltas[i] {
			t.Errorf("message %d delta = %q, want %q", i, chat.Event.Payload.TextDelta, deltas[i])
		}
	}
}

func TestTUIBridgeForwardsHistory(t *testing.T) {
	hub := pubsub.NewHub()
	defer hub.Shutdown()

	program := &mockProgram{}
	bridge := NewTUIBridge(hub, program)
	bridge.Start(context.Background())
	defer bridge.Stop()

	hub.History.Publish(pubsub.EventUpdated, events.NewNameChangedEvent("Ada"))

	msgs := waitFor(t, program, 1)
	hist, ok := msgs[0].(HistoryEventMsg)
	if !ok {
		t.Fatalf("got %T, want HistoryEventMsg", msgs[0])
	}
	if hist.Event.Payload.DisplayName != "Ada" {
		t.Errorf("DisplayName = %q, want %q", hist.Event.Payload.DisplayName, "Ada")
	}
}
