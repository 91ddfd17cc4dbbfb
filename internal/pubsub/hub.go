package pubsub

import (
	"sync"

	"github.com/guilhermegouw/aurora/internal/events"
)

// ChatBufferSize is the chat broker's per-subscriber buffer. The chat broker
// never drops, so this only smooths bursts of streamed chunks.
const ChatBufferSize = 256

// Hub is the central container for all domain brokers.
type Hub struct { //nolint:govet // fieldalignment: preserving logical field order
	Chat    *Broker[events.ChatEvent]
	History *Broker[events.HistoryEvent]

	registry *Registry
	done     chan struct{}
	once     sync.Once
}

// NewHub creates a new Hub with all domain brokers initialized.
func NewHub() *Hub {
	h := &Hub{
		Chat: NewBroker("chat",
			WithBufferSize[events.ChatEvent](ChatBufferSize),
			WithDropPolicy[events.ChatEvent](false),
		),
		History:  NewBroker[events.HistoryEvent]("history"),
		registry: NewRegistry(),
		done:     make(chan struct{}),
	}

	h.registry.Register(h.Chat)
	h.registry.Register(h.History)

	return h
}

// Shutdown shuts down all brokers.
func (h *Hub) Shutdown() {
	h.once.Do(func() {
		close(h.done)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); h.Chat.Shutdown() }()
		go func() { defer wg.Done(); h.History.Shutdown() }()
		wg.Wait()
	})
}

// IsShutdown returns true if the hub has been shut down.
func (h *Hub) IsShutdown() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that's closed when the hub is shut down.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Registry returns the broker registry.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// DebugString returns a formatted summary of all brokers.
func (h *Hub) DebugString() string {
	return h.registry.DebugString()
}
