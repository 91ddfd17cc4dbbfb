package kv

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps values in process memory only. Nothing survives a restart.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore creates an empty in-memory store whose entries never expire.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// Get returns the value for key.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	if x, found := s.cache.Get(key); found {
		return x.(string), nil //nolint:forcetypeassert // Only strings are stored
	}
	return "", ErrNotFound
}

// Set stores the value for key.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.cache.Set(key, value, cache.NoExpiration)
	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Close flushes all entries.
func (s *MemoryStore) Close() error {
	s.cache.Flush()
	return nil
}
