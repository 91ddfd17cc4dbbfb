// Package chat implements the session controller: the single writer of the
// conversation model and the saved session list.
package chat

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/guilhermegouw/aurora/internal/events"
	"github.com/guilhermegouw/aurora/internal/gateway"
	"github.com/guilhermegouw/aurora/internal/history"
	"github.com/guilhermegouw/aurora/internal/pubsub"
	"github.com/guilhermegouw/aurora/internal/session"
)

// ErrBusy is returned by Submit while a previous turn is still in flight.
var ErrBusy = errors.New("a response is still in progress")

// Attachment is an image attached to a submission.
type Attachment struct {
	// URL is the displayable reference stored on the user message.
	URL   string
	Image gateway.Image
}

// LoadAttachment reads an image attachment from a path or URL.
func LoadAttachment(ref string) (*Attachment, error) {
	img, err := gateway.LoadImage(ref)
	if err != nil {
		return nil, err
	}
	return &Attachment{URL: ref, Image: img}, nil
}

// Config holds the controller's dependencies.
type Config struct {
	Gateway gateway.Gateway
	Store   *history.Store
	// Hub receives state changes. Optional.
	Hub *pubsub.Hub
	// Clock stamps saved sessions. Defaults to time.Now.
	Clock  func() time.Time
	Logger *zap.Logger
}

// Controller owns the session model and the saved session list. All
// mutations go through it and each one is published to the hub.
type Controller struct { //nolint:govet // fieldalignment: preserving logical field order
	gateway gateway.Gateway
	store   *history.Store
	hub     *pubsub.Hub
	clock   func() time.Time
	logger  *zap.Logger

	// writeMu serializes mutations with their publication so subscribers
	// see states in the order they were produced.
	writeMu sync.Mutex

	// mu guards the fields below for readers.
	mu       sync.RWMutex
	model    *session.Model
	sessions []history.Session
	name     string
	// view changes whenever the visible conversation is replaced. A turn
	// only touches the model while the view it started in is shown.
	view uint64
}

// NewController creates a controller. Call Load to read saved state.
func NewController(cfg Config) *Controller {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Controller{
		gateway:  cfg.Gateway,
		store:    cfg.Store,
		hub:      cfg.Hub,
		clock:    cfg.Clock,
		logger:   cfg.Logger.Named("chat"),
		model:    session.NewModel(),
		sessions: []history.Session{},
		name:     history.DefaultDisplayName,
	}
}

// Load reads the saved sessions and display name.
func (c *Controller) Load(ctx context.Context) {
	sessions := c.store.Load(ctx)
	name := c.store.DisplayName(ctx)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	c.sessions = sessions
	c.name = name
	c.mu.Unlock()

	c.logger.Debug("loaded history", zap.Int("sessions", len(sessions)))

	ev := events.NewHistoryEvent(events.HistoryEventLoaded, "", history.Sorted(sessions))
	ev.DisplayName = name
	c.publishHistory(ev)
}

// State returns a snapshot of the session model.
func (c *Controller) State() session.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model.Snapshot()
}

// Sessions returns the saved sessions in display order.
func (c *Controller) Sessions() []history.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return history.Sorted(c.sessions)
}

// Session returns the saved session with the given id.
func (c *Controller) Session(id string) (history.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := history.Find(c.sessions, id)
	if i < 0 {
		return history.Session{}, false
	}
	s := c.sessions[i]
	s.Messages = history.CloneMessages(s.Messages)
	return s, true
}

// SearchSessions returns the saved sessions whose title matches query, in
// display order.
func (c *Controller) SearchSessions(query string) []history.Session {
	return history.Filter(c.Sessions(), query)
}

// DisplayName returns the user's display name.
func (c *Controller) DisplayName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// SetDisplayName changes the user's display name. A blank name restores the
// default. Persistence failures are logged only.
func (c *Controller) SetDisplayName(ctx context.Context, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = history.DefaultDisplayName
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	c.name = name
	c.mu.Unlock()

	stored := name
	if name == history.DefaultDisplayName {
		stored = ""
	}
	if err := c.store.SetDisplayName(ctx, stored); err != nil {
		c.logger.Warn("display name not saved", zap.Error(err))
	}
	c.publishHistory(events.NewNameChangedEvent(name))
}

// NewConversation clears the view to an empty, unstarted conversation.
func (c *Controller) NewConversation() {
	c.update(func(m *session.Model) bool {
		c.view++
		m.Reset()
		m.SetMode(session.ModeChat)
		return true
	})
}

// SelectSession shows a saved session.
func (c *Controller) SelectSession(id string) error {
	var err error
	c.update(func(m *session.Model) bool {
		i := history.Find(c.sessions, id)
		if i < 0 {
			err = history.ErrNotFound
			return false
		}
		c.view++
		m.Show(c.sessions[i])
		return true
	})
	return err
}

// TogglePin flips the pinned flag of a saved session.
func (c *Controller) TogglePin(ctx context.Context, id string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.RLock()
	current := c.sessions
	i := history.Find(current, id)
	c.mu.RUnlock()
	if i < 0 {
		return history.ErrNotFound
	}

	updated, err := c.store.SetPinned(ctx, current, id, !current[i].Pinned)
	if errors.Is(err, history.ErrNotFound) {
		return err
	}
	if err != nil {
		c.logger.Warn("pin state not saved", zap.String("session", id), zap.Error(err))
	}

	c.mu.Lock()
	c.sessions = updated
	c.mu.Unlock()

	c.publishHistory(events.NewHistoryEvent(events.HistoryEventPinned, id, history.Sorted(updated)))
	return nil
}

// DeleteSession removes a saved session. Deleting the session on screen
// also clears the view.
func (c *Controller) DeleteSession(ctx context.Context, id string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.RLock()
	current := c.sessions
	c.mu.RUnlock()

	updated, err := c.store.Delete(ctx, current, id)
	if errors.Is(err, history.ErrNotFound) {
		return err
	}
	if err != nil {
		c.logger.Warn("deletion not saved", zap.String("session", id), zap.Error(err))
	}

	c.mu.Lock()
	c.sessions = updated
	active := c.model.ActiveID() == id
	if active {
		c.view++
		c.model.Reset()
		c.model.SetMode(session.ModeChat)
	}
	state := c.model.Snapshot()
	c.mu.Unlock()

	c.publishHistory(events.NewHistoryEvent(events.HistoryEventDeleted, id, history.Sorted(updated)))
	if active {
		c.publishChat(events.NewChatChangedEvent(state))
	}
	return nil
}

// ToggleMode selects mode, or returns to chat when mode is already active.
func (c *Controller) ToggleMode(mode session.Mode) {
	c.update(func(m *session.Model) bool {
		m.ToggleMode(mode)
		return true
	})
}

// Attach is called when the user picks a file. It forces chat mode.
func (c *Controller) Attach() {
	c.update(func(m *session.Model) bool {
		if m.Mode() == session.ModeChat {
			return false
		}
		m.SetMode(session.ModeChat)
		return true
	})
}

// DismissPreview clears the preview artifact.
func (c *Controller) DismissPreview() {
	c.update(func(m *session.Model) bool {
		m.SetPreview(nil)
		return true
	})
}

// ToggleSidebar shows or hides the history panel.
func (c *Controller) ToggleSidebar() {
	c.update(func(m *session.Model) bool {
		m.SetSidebarOpen(!m.SidebarOpen())
		return true
	})
}

// update applies fn to the model and publishes the result when fn reports
// a change.
func (c *Controller) update(fn func(m *session.Model) bool) {
	c.updateWith(fn, events.NewChatChangedEvent)
}

func (c *Controller) updateWith(fn func(m *session.Model) bool, event func(session.State) events.ChatEvent) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	changed := fn(c.model)
	state := c.model.Snapshot()
	c.mu.Unlock()

	if changed {
		c.publishChat(event(state))
	}
}

func (c *Controller) publishChat(ev events.ChatEvent) {
	if c.hub == nil {
		return
	}
	c.hub.Chat.Publish(pubsub.EventUpdated, ev)
}

func (c *Controller) publishHistory(ev events.HistoryEvent) {
	if c.hub == nil {
		return
	}
	c.hub.History.Publish(pubsub.EventUpdated, ev)
}

func cloneSessions(sessions []history.Session) []history.Session {
	return slices.Clone(sessions)
}
