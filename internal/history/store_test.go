package history

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilhermegouw/aurora/internal/kv"
)

type failingKV struct {
	kv.Store
	setErr error
}

func (f *failingKV) Set(context.Context, string, string) error { return f.setErr }

func sample() []Session {
	return []Session{
		{
			ID:        "s1",
			Title:     "First",
			Timestamp: 1700000000000,
			Messages: []Message{
				{ID: "m1", Role: RoleUser, Content: "hello", Attachment: &Attachment{URL: "data:image/png;base64,AAAA"}},
				{ID: "m2", Role: RoleModel, Content: "hi there"},
			},
		},
		{ID: "s2", Title: "Second", Timestamp: 1700000001000, Pinned: true, Messages: []Message{}},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	backend, err := kv.Open(kv.BackendSQLite, dir)
	require.NoError(t, err)
	require.NoError(t, NewStore(backend, nil).Save(ctx, sample()))
	require.NoError(t, backend.Close())

	// A fresh backend over the same directory stands in for a new process.
	reopened, err := kv.Open(kv.BackendSQLite, dir)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }() //nolint:errcheck // Test cleanup

	assert.Equal(t, sample(), NewStore(reopened, nil).Load(ctx))
}

func TestLoadMissingIsEmpty(t *testing.T) {
	store := NewStore(kv.NewMemoryStore(), nil)
	got := store.Load(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLoadCorruptIsDiscarded(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemoryStore()
	require.NoError(t, backend.Set(ctx, SessionsKey, "{not json"))

	store := NewStore(backend, nil)
	assert.Empty(t, store.Load(ctx))

	_, err := backend.Get(ctx, SessionsKey)
	assert.ErrorIs(t, err, kv.ErrNotFound, "corrupt record should be deleted")
}

func TestSaveFailureIsReturned(t *testing.T) {
	boom := errors.New("disk full")
	store := NewStore(&failingKV{Store: kv.NewMemoryStore(), setErr: boom}, nil)

	err := store.Save(context.Background(), sample())
	assert.ErrorIs(t, err, boom)
}

func TestConcurrentSavesLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kv.NewMemoryStore(), nil)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Save(ctx, []Session{{ID: NewID(), Timestamp: int64(i)}}) //nolint:errcheck // Memory store never fails
		}()
	}
	wg.Wait()

	// Whatever save landed last, the stored value is one complete list.
	assert.Len(t, store.Load(ctx), 1)
}

func TestSetPinned(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kv.NewMemoryStore(), nil)
	sessions := sample()

	updated, err := store.SetPinned(ctx, sessions, "s1", true)
	require.NoError(t, err)
	assert.True(t, updated[0].Pinned)
	assert.False(t, sessions[0].Pinned, "input list must not be mutated")
	assert.Equal(t, updated, store.Load(ctx))

	_, err = store.SetPinned(ctx, sessions, "missing", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kv.NewMemoryStore(), nil)

	updated, err := store.Delete(ctx, sample(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s2"}, ids(updated))
	assert.Equal(t, updated, store.Load(ctx))

	_, err = store.Delete(ctx, updated, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDisplayName(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kv.NewMemoryStore(), nil)

	assert.Equal(t, DefaultDisplayName, store.DisplayName(ctx))

	require.NoError(t, store.SetDisplayName(ctx, "  Ada  "))
	assert.Equal(t, "Ada", store.DisplayName(ctx))

	require.NoError(t, store.SetDisplayName(ctx, ""))
	assert.Equal(t, DefaultDisplayName, store.DisplayName(ctx))
}
