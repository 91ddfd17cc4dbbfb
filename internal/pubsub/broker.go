package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBufferSize is the default channel buffer for subscribers.
const DefaultBufferSize = 64

// BrokerOption configures a Broker.
type BrokerOption[T any] func(*Broker[T])

// WithBufferSize sets the subscriber channel buffer size.
func WithBufferSize[T any](size int) BrokerOption[T] {
	return func(b *Broker[T]) {
		b.bufferSize = size
	}
}

// WithDropPolicy sets whether to drop events when a subscriber is full.
// With drop disabled, Publish waits for every live subscriber to accept the
// event, so a slow reader sees every event in order.
func WithDropPolicy[T any](drop bool) BrokerOption[T] {
	return func(b *Broker[T]) {
		b.dropOnFull = drop
	}
}

type subscription[T any] struct {
	ch   chan Event[T]
	gone chan struct{}
}

// Broker is a type-safe pub/sub broker.
// Subscriptions live until their context is cancelled or the broker shuts down.
type Broker[T any] struct { //nolint:govet // fieldalignment: preserving logical field order
	name       string
	subs       map[*subscription[T]]struct{}
	mu         sync.RWMutex
	done       chan struct{}
	shutdown   sync.Once
	bufferSize int
	dropOnFull bool

	publishCount   atomic.Int64
	dropCount      atomic.Int64
	subscriberPeak atomic.Int32
	subscriberCurr atomic.Int32
}

// NewBroker creates a new typed broker with optional configuration.
func NewBroker[T any](name string, opts ...BrokerOption[T]) *Broker[T] {
	b := &Broker[T]{
		name:       name,
		subs:       make(map[*subscription[T]]struct{}),
		done:       make(chan struct{}),
		bufferSize: DefaultBufferSize,
		dropOnFull: true,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Name returns the broker's name.
func (b *Broker[T]) Name() string {
	return b.name
}

// Subscribe returns a channel of events that is closed when ctx is done or
// the broker shuts down.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.IsShutdown() {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	sub := &subscription[T]{
		ch:   make(chan Event[T], b.bufferSize),
		gone: make(chan struct{}),
	}
	b.subs[sub] = struct{}{}

	curr := b.subscriberCurr.Add(1)
	for {
		peak := b.subscriberPeak.Load()
		if curr <= peak || b.subscriberPeak.CompareAndSwap(peak, curr) {
			break
		}
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
		}

		// Release any publisher blocked on this subscriber before taking
		// the write lock, otherwise the two would wait on each other.
		close(sub.gone)

		b.mu.Lock()
		defer b.mu.Unlock()

		if _, ok := b.subs[sub]; !ok {
			return
		}
		delete(b.subs, sub)
		b.subscriberCurr.Add(-1)
		close(sub.ch)
	}()

	return sub.ch
}

// Publish sends an event to all subscribers.
// In drop mode (the default) a full subscriber misses the event.
// Otherwise Publish blocks until each subscriber takes it or goes away.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	// The read lock is held for the whole delivery so no subscriber channel
	// can be closed while an event is in flight to it.
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.IsShutdown() || len(b.subs) == 0 {
		return
	}

	event := Event[T]{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	b.publishCount.Add(1)

	for sub := range b.subs {
		if b.dropOnFull {
			select {
			case sub.ch <- event:
			default:
				b.dropCount.Add(1)
			}
			continue
		}

		select {
		case sub.ch <- event:
		case <-sub.gone:
			b.dropCount.Add(1)
		}
	}
}

// Shutdown closes every subscriber channel. Later publishes are ignored.
func (b *Broker[T]) Shutdown() {
	b.shutdown.Do(func() {
		close(b.done)

		b.mu.Lock()
		defer b.mu.Unlock()

		for sub := range b.subs {
			delete(b.subs, sub)
			close(sub.ch)
		}
		b.subscriberCurr.Store(0)
	})
}

// IsShutdown reports whether the broker has been shut down.
func (b *Broker[T]) IsShutdown() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// SubscriberCount returns the current number of subscribers.
func (b *Broker[T]) SubscriberCount() int {
	return int(b.subscriberCurr.Load())
}

// Metrics returns the broker's counters.
func (b *Broker[T]) Metrics() BrokerMetrics {
	return BrokerMetrics{
		Name:            b.name,
		PublishCount:    b.publishCount.Load(),
		DropCount:       b.dropCount.Load(),
		SubscriberCount: int(b.subscriberCurr.Load()),
		SubscriberPeak:  int(b.subscriberPeak.Load()),
	}
}

// BrokerMetrics contains broker statistics.
type BrokerMetrics struct {
	Name            string
	PublishCount    int64
	DropCount       int64
	SubscriberCount int
	SubscriberPeak  int
}
