package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"
)

func receive[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case event, ok := <-ch:
		if !ok {
			t.Fatal("channel closed before event arrived")
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	return Event[T]{}
}

func TestBrokerSubscribePublish(t *testing.T) {
	t.Run("single subscriber receives events", func(t *testing.T) {
		broker := NewBroker[string]("test")
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events := broker.Subscribe(ctx)
		broker.Publish(EventCreated, "hello")

		event := receive(t, events)
		if event.Type != EventCreated || event.Payload != "hello" {
			t.Errorf("unexpected event: %+v", event)
		}
		if event.Timestamp.IsZero() {
			t.Error("event timestamp not set")
		}
	})

	t.Run("multiple subscribers receive same event", func(t *testing.T) {
		broker := NewBroker[int]("test")
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sub1 := broker.Subscribe(ctx)
		sub2 := broker.Subscribe(ctx)

		broker.Publish(EventUpdated, 42)

		for i, sub := range []<-chan Event[int]{sub1, sub2} {
			if got := receive(t, sub).Payload; got != 42 {
				t.Errorf("subscriber %d: expected 42, got %d", i, got)
			}
		}
	})

	t.Run("cancelled context unsubscribes", func(t *testing.T) {
		broker := NewBroker[string]("test")
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		events := broker.Subscribe(ctx)

		if broker.SubscriberCount() != 1 {
			t.Errorf("expected 1 subscriber, got %d", broker.SubscriberCount())
		}

		cancel()

		if _, ok := <-events; ok {
			t.Error("expected channel to be closed")
		}
		if broker.SubscriberCount() != 0 {
			t.Errorf("expected 0 subscribers after cancel, got %d", broker.SubscriberCount())
		}
	})

	t.Run("shutdown closes all subscribers", func(t *testing.T) {
		broker := NewBroker[string]("test")

		ctx := context.Background()
		sub1 := broker.Subscribe(ctx)
		sub2 := broker.Subscribe(ctx)

		broker.Shutdown()

		if _, ok := <-sub1; ok {
			t.Error("sub1 should be closed")
		}
		if _, ok := <-sub2; ok {
			t.Error("sub2 should be closed")
		}
	})

	t.Run("publish after shutdown is no-op", func(t *testing.T) {
		broker := NewBroker[string]("test")
		broker.Shutdown()

		broker.Publish(EventCreated, "test")

		if broker.Metrics().PublishCount != 0 {
			t.Error("publish after shutdown should not be counted")
		}
	})

	t.Run("subscribe after shutdown returns closed channel", func(t *testing.T) {
		broker := NewBroker[string]("test")
		broker.Shutdown()

		if _, ok := <-broker.Subscribe(context.Background()); ok {
			t.Error("channel should be closed")
		}
	})
}

func TestBrokerBlockingDeliversEveryEventInOrder(t *testing.T) {
	broker := NewBroker[int]("chunks",
		WithBufferSize[int](1),
		WithDropPolicy[int](false),
	)
	defer broker.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := broker.Subscribe(ctx)

	const total = 500
	go func() {
		for i := range total {
			broker.Publish(EventProgress, i)
		}
	}()

	for want := range total {
		if got := receive(t, events).Payload; got != want {
			t.Fatalf("event %d: got payload %d", want, got)
		}
	}

	if drops := broker.Metrics().DropCount; drops != 0 {
		t.Errorf("DropCount = %d, want 0", drops)
	}
}

func TestBrokerBlockingPublishReleasedByCancel(t *testing.T) {
	broker := NewBroker[int]("test",
		WithBufferSize[int](1),
		WithDropPolicy[int](false),
	)
	defer broker.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	_ = broker.Subscribe(ctx)

	broker.Publish(EventCreated, 1) // fills the buffer

	done := make(chan struct{})
	go func() {
		broker.Publish(EventCreated, 2)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("publish should block on a full subscriber")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish stayed blocked after the subscriber went away")
	}
}

func TestBrokerBlockingPublishReleasedByShutdown(t *testing.T) {
	broker := NewBroker[int]("test",
		WithBufferSize[int](1),
		WithDropPolicy[int](false),
	)
	_ = broker.Subscribe(context.Background())
	broker.Publish(EventCreated, 1)

	done := make(chan struct{})
	go func() {
		broker.Publish(EventCreated, 2)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	broker.Shutdown()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish stayed blocked after shutdown")
	}
}

func TestBrokerDropsWhenFull(t *testing.T) {
	broker := NewBroker[int]("test", WithBufferSize[int](2))
	defer broker.Shutdown()

	ch := broker.Subscribe(context.Background())

	broker.Publish(EventCreated, 1)
	broker.Publish(EventCreated, 2)
	broker.Publish(EventCreated, 3)

	if got := broker.Metrics().DropCount; got != 1 {
		t.Errorf("DropCount = %d, want 1", got)
	}
	if e := receive(t, ch); e.Payload != 1 {
		t.Errorf("expected 1, got %d", e.Payload)
	}
	if e := receive(t, ch); e.Payload != 2 {
		t.Errorf("expected 2, got %d", e.Payload)
	}
}

func TestBrokerConcurrency(t *testing.T) {
	broker := NewBroker[int]("test", WithDropPolicy[int](false))
	defer broker.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const numSubscribers = 10
	const numPublishes = 100

	var (
		ready    sync.WaitGroup
		wg       sync.WaitGroup
		mu       sync.Mutex
		received = make([]int, numSubscribers)
	)

	for i := range numSubscribers {
		ready.Add(1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			events := broker.Subscribe(ctx)
			ready.Done()
			for range events {
				mu.Lock()
				received[i]++
				mu.Unlock()
			}
		}()
	}
	ready.Wait()

	var pubWg sync.WaitGroup
	for i := range numPublishes {
		pubWg.Add(1)
		go func() {
			defer pubWg.Done()
			broker.Publish(EventCreated, i)
		}()
	}
	pubWg.Wait()

	cancel()
	wg.Wait()

	for i, count := range received {
		if count != numPublishes {
			t.Errorf("subscriber %d received %d events, want %d", i, count, numPublishes)
		}
	}
}

func TestBrokerMetrics(t *testing.T) {
	broker := NewBroker[string]("test")
	defer broker.Shutdown()

	ctx := context.Background()
	_ = broker.Subscribe(ctx)
	_ = broker.Subscribe(ctx)

	broker.Publish(EventCreated, "1")
	broker.Publish(EventCreated, "2")

	metrics := broker.Metrics()
	if metrics.Name != "test" {
		t.Errorf("expected name 'test', got %q", metrics.Name)
	}
	if metrics.SubscriberCount != 2 || metrics.SubscriberPeak != 2 {
		t.Errorf("subscribers = %d (peak %d), want 2", metrics.SubscriberCount, metrics.SubscriberPeak)
	}
	if metrics.PublishCount != 2 {
		t.Errorf("expected 2 publishes, got %d", metrics.PublishCount)
	}
}

func TestBrokerIsShutdown(t *testing.T) {
	broker := NewBroker[string]("test")

	if broker.IsShutdown() {
		t.Error("broker should not be shut down initially")
	}

	broker.Shutdown()
	broker.Shutdown()

	if !broker.IsShutdown() {
		t.Error("broker should be shut down after Shutdown()")
	}
}
