package pubsub

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// BrokerInfo provides debug information about a registered broker.
type BrokerInfo interface {
	Name() string
	IsShutdown() bool
	Metrics() BrokerMetrics
}

// Registry tracks brokers by name for introspection.
type Registry struct {
	brokers map[string]BrokerInfo
	mu      sync.RWMutex
}

// NewRegistry creates a new broker registry.
func NewRegistry() *Registry {
	return &Registry{
		brokers: make(map[string]BrokerInfo),
	}
}

// Register adds a broker under its own name, replacing any previous one.
func (r *Registry) Register(broker BrokerInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.brokers[broker.Name()] = broker
}

// Names returns the registered broker names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.brokers))
	for name := range r.brokers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// AllMetrics returns metrics for all registered brokers.
func (r *Registry) AllMetrics() map[string]BrokerMetrics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metrics := make(map[string]BrokerMetrics, len(r.brokers))
	for name, broker := range r.brokers {
		metrics[name] = broker.Metrics()
	}
	return metrics
}

// DebugString returns one line per broker, sorted by name.
func (r *Registry) DebugString() string {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Broker Registry (%d brokers) ===\n", len(names))
	for _, name := range names {
		broker := r.brokers[name]
		m := broker.Metrics()
		fmt.Fprintf(&sb,
			"  %s: subs=%d (peak=%d), published=%d, dropped=%d, shutdown=%v\n",
			name, m.SubscriberCount, m.SubscriberPeak,
			m.PublishCount, m.DropCount, broker.IsShutdown(),
		)
	}
	return sb.String()
}
