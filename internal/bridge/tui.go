package bridge

import (
	"context"
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/guilhermegouw/aurora/internal/debug"
	"github.com/guilhermegouw/aurora/internal/events"
	"github.com/guilhermegouw/aurora/internal/pubsub"
)

// Sender receives messages for the UI. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// TUIBridge subscribes to the Hub brokers and forwards events to the program.
// Chat events arrive one per mutation, so streamed chunks are forwarded
// individually and in order.
type TUIBridge struct { //nolint:govet // fieldalignment: preserving logical field order
	hub     *pubsub.Hub
	program Sender

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTUIBridge creates a new TUI bridge.
func NewTUIBridge(hub *pubsub.Hub, program Sender) *TUIBridge {
	return &TUIBridge{
		hub:     hub,
		program: program,
	}
}

// Start begins forwarding events to the TUI.
// Call Stop() to gracefully shut down.
func (b *TUIBridge) Start(ctx context.Context) {
	b.ctx, b.cancel = context.WithCancel(ctx)

	// Subscribe before returning so no event published after Start is missed.
	chat := b.hub.Chat.Subscribe(b.ctx)
	hist := b.hub.History.Subscribe(b.ctx)

	b.wg.Add(2)
	go forward(b, chat, func(e pubsub.Event[events.ChatEvent]) tea.Msg { return ChatEventMsg{Event: e} })
	go forward(b, hist, func(e pubsub.Event[events.HistoryEvent]) tea.Msg { return HistoryEventMsg{Event: e} })

	debug.Event("bridge", "start", "TUI bridge started")
}

// Stop gracefully shuts down the bridge.
func (b *TUIBridge) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
	debug.Event("bridge", "stop", "TUI bridge stopped")
}

func forward[T any](b *TUIBridge, ch <-chan pubsub.Event[T], wrap func(pubsub.Event[T]) tea.Msg) {
	defer b.wg.Done()

	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			b.program.Send(wrap(event))
		}
	}
}
