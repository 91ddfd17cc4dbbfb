package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/guilhermegouw/aurora/internal/kv"
)

// Storage keys.
const (
	SessionsKey = "aurora-chat-history"
	NameKey     = "aurora-user-name"
)

// DefaultDisplayName is used until the user sets a name.
const DefaultDisplayName = "User"

// ErrNotFound is returned when a session id is not in the list.
var ErrNotFound = errors.New("session not found")

// Store reads and writes the session list and display name.
// Reads never fail: missing or corrupt data yields the default.
type Store struct {
	kv     kv.Store
	logger *zap.Logger

	// saveMu serializes whole-list writes so the last Save wins.
	saveMu sync.Mutex
}

// NewStore creates a history store over a key-value backend.
func NewStore(backend kv.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: backend, logger: logger.Named("history")}
}

// Load reads the saved sessions. A corrupt record is discarded.
func (s *Store) Load(ctx context.Context) []Session {
	raw, err := s.kv.Get(ctx, SessionsKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.logger.Warn("reading session history", zap.Error(err))
		}
		return []Session{}
	}

	var sessions []Session
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		s.logger.Warn("discarding corrupt session history", zap.Error(err))
		if delErr := s.kv.Delete(ctx, SessionsKey); delErr != nil {
			s.logger.Warn("deleting corrupt session history", zap.Error(delErr))
		}
		return []Session{}
	}
	if sessions == nil {
		sessions = []Session{}
	}
	return sessions
}

// Save replaces the stored session list.
func (s *Store) Save(ctx context.Context, sessions []Session) error {
	if sessions == nil {
		sessions = []Session{}
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("encoding sessions: %w", err)
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if err := s.kv.Set(ctx, SessionsKey, string(data)); err != nil {
		s.logger.Error("saving session history", zap.Error(err), zap.Int("sessions", len(sessions)))
		return fmt.Errorf("saving sessions: %w", err)
	}
	return nil
}

// SetPinned returns sessions with the pin state of id changed, and saves it.
// The returned list is valid even when the save fails.
func (s *Store) SetPinned(ctx context.Context, sessions []Session, id string, pinned bool) ([]Session, error) {
	i := Find(sessions, id)
	if i < 0 {
		return sessions, ErrNotFound
	}
	out := slices.Clone(sessions)
	out[i].Pinned = pinned
	return out, s.Save(ctx, out)
}

// Delete returns sessions without id, and saves it.
// The returned list is valid even when the save fails.
func (s *Store) Delete(ctx context.Context, sessions []Session, id string) ([]Session, error) {
	i := Find(sessions, id)
	if i < 0 {
		return sessions, ErrNotFound
	}
	out := slices.Delete(slices.Clone(sessions), i, i+1)
	return out, s.Save(ctx, out)
}

// DisplayName returns the saved user name, or DefaultDisplayName.
func (s *Store) DisplayName(ctx context.Context) string {
	name, err := s.kv.Get(ctx, NameKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.logger.Warn("reading display name", zap.Error(err))
		}
		return DefaultDisplayName
	}
	if strings.TrimSpace(name) == "" {
		return DefaultDisplayName
	}
	return name
}

// SetDisplayName saves the user name. A blank name resets to the default.
func (s *Store) SetDisplayName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		if err := s.kv.Delete(ctx, NameKey); err != nil {
			return fmt.Errorf("resetting display name: %w", err)
		}
		return nil
	}
	if err := s.kv.Set(ctx, NameKey, name); err != nil {
		s.logger.Error("saving display name", zap.Error(err))
		return fmt.Errorf("saving display name: %w", err)
	}
	return nil
}
