package chat

import (
	"context"
	"errors"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/guilhermegouw/aurora/internal/gateway"
	"github.com/guilhermegouw/aurora/internal/history"
	"github.com/guilhermegouw/aurora/internal/kv"
	"github.com/guilhermegouw/aurora/internal/pubsub"
)

// fakeGateway is a scripted gateway. Zero values succeed with empty output.
type fakeGateway struct {
	mu sync.Mutex

	chunks    []string
	openErr   error // returned by StreamChat
	streamErr error // yielded after the chunks

	text    string
	textErr error

	imageURL string
	imageErr error

	structured    string
	structuredErr error

	// When hold is set, the stream blocks after its first chunk until
	// hold is closed. started is closed once that chunk was consumed.
	hold    chan struct{}
	started chan struct{}

	calls   []string
	turns   [][]gateway.Turn
	image   *gateway.Image
	prompts []string
	shapes  []gateway.Shape
}

func (f *fakeGateway) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeGateway) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeGateway) StreamChat(_ context.Context, text string, turns []gateway.Turn, image *gateway.Image) (iter.Seq2[string, error], error) {
	f.record("stream")
	f.mu.Lock()
	f.turns = append(f.turns, turns)
	f.image = image
	f.prompts = append(f.prompts, text)
	f.mu.Unlock()

	if f.openErr != nil {
		return nil, f.openErr
	}
	return func(yield func(string, error) bool) {
		for i, c := range f.chunks {
			if !yield(c, nil) {
				return
			}
			if i == 0 && f.hold != nil {
				close(f.started)
				<-f.hold
			}
		}
		if f.streamErr != nil {
			yield("", f.streamErr)
		}
	}, nil
}

func (f *fakeGateway) ExtractText(context.Context, gateway.Image) (string, error) {
	f.record("extract")
	return f.text, f.textErr
}

func (f *fakeGateway) GenerateImage(_ context.Context, prompt string) (string, error) {
	f.record("image")
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.imageURL, f.imageErr
}

func (f *fakeGateway) GenerateStructured(_ context.Context, shape gateway.Shape, prompt string) (string, error) {
	f.record("structured")
	f.mu.Lock()
	f.shapes = append(f.shapes, shape)
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.structured, f.structuredErr
}

// blockingStream makes the gateway pause after the first chunk.
func (f *fakeGateway) blockingStream() (release func()) {
	f.hold = make(chan struct{})
	f.started = make(chan struct{})
	return func() { close(f.hold) }
}

// failingKV accepts reads but rejects writes.
type failingKV struct {
	*kv.MemoryStore
}

func (failingKV) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

// fakeClock returns increasing times, one second apart.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type harness struct {
	ctrl    *Controller
	gw      *fakeGateway
	backend kv.Store
	store   *history.Store
	hub     *pubsub.Hub
}

func newHarness(t *testing.T, gw *fakeGateway) *harness {
	t.Helper()
	return newHarnessWithKV(t, gw, kv.NewMemoryStore())
}

func newHarnessWithKV(t *testing.T, gw *fakeGateway, backend kv.Store) *harness {
	t.Helper()
	hub := pubsub.NewHub()
	t.Cleanup(hub.Shutdown)

	store := history.NewStore(backend, nil)
	ctrl := NewController(Config{
		Gateway: gw,
		Store:   store,
		Hub:     hub,
		Clock:   newFakeClock().Now,
	})
	ctrl.Load(context.Background())

	return &harness{ctrl: ctrl, gw: gw, backend: backend, store: store, hub: hub}
}

func (h *harness) submit(t *testing.T, text string) {
	t.Helper()
	require.NoError(t, h.ctrl.Submit(context.Background(), text, nil))
}

func imageAttachment() *Attachment {
	return &Attachment{
		URL:   "/tmp/receipt.png",
		Image: gateway.Image{Data: []byte{0x89, 'P', 'N', 'G'}, MediaType: "image/png"},
	}
}

func kvMemory() kv.Store { return kv.NewMemoryStore() }

func newFailingKV() failingKV { return failingKV{kv.NewMemoryStore()} }
