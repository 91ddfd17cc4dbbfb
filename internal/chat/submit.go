package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/guilhermegouw/aurora/internal/events"
	"github.com/guilhermegouw/aurora/internal/gateway"
	"github.com/guilhermegouw/aurora/internal/history"
	"github.com/guilhermegouw/aurora/internal/session"
)

// Fixed message texts.
const (
	AnalyzeImagePrompt = "Analyze the attached image."
	ExtractedTextReply = "Here is the text I found in the image:\n\n"
	CodeReply          = "I've generated the code and a live preview for you."
	FallbackErrorReply = "Sorry, I encountered an error. Please try again."
)

// ImageReply is the message shown with a generated image.
func ImageReply(prompt string) string {
	return `Here is the image I generated for: "` + prompt + `"`
}

// turn is one submission in flight.
type turn struct {
	view      uint64
	sessionID string
	text      string
	user      history.Message
	// prior is the visible conversation before the user message.
	prior []history.Message
	// history is what the gateway sees of the saved session.
	history []gateway.Turn

	placeholderID string
	replyID       string
}

// Submit runs one turn and returns when it has finished. Empty text with no
// attachment is ignored. Gateway failures end the turn with an error
// message in the conversation and are not returned.
func (c *Controller) Submit(ctx context.Context, text string, att *Attachment) (err error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" && att == nil {
		return nil
	}

	t, mode, err := c.begin(text, trimmed, att)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
		c.finish(t, err)
		err = nil
	}()

	switch {
	case att != nil && trimmed == "":
		return c.analyze(ctx, t, att.Image)
	case mode == session.ModeChat:
		var image *gateway.Image
		if att != nil {
			img := att.Image
			image = &img
		}
		return c.stream(ctx, t, image)
	default:
		return c.generate(ctx, t, mode)
	}
}

// begin appends the user message and enters the loading state.
func (c *Controller) begin(text, trimmed string, att *Attachment) (*turn, session.Mode, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	if c.model.Loading() {
		c.mu.Unlock()
		return nil, "", ErrBusy
	}

	content := text
	if att != nil && trimmed == "" {
		content = AnalyzeImagePrompt
	}
	user := history.Message{ID: history.NewID(), Role: history.RoleUser, Content: content}
	if att != nil {
		user.Attachment = &history.Attachment{URL: att.URL}
	}

	t := &turn{
		view:      c.view,
		sessionID: c.model.ActiveID(),
		text:      text,
		user:      user,
		prior:     c.model.Messages(),
	}
	if t.sessionID != "" {
		if i := history.Find(c.sessions, t.sessionID); i >= 0 {
			t.history = gateway.TurnsFrom(c.sessions[i].Messages)
		}
	}

	mode := c.model.Mode()
	if !c.model.Started() {
		c.model.Start()
	}
	c.model.Append(user)
	c.model.SetLoading(true)
	state := c.model.Snapshot()
	c.mu.Unlock()

	c.logger.Debug("turn submitted",
		zap.String("mode", string(mode)),
		zap.String("session", t.sessionID),
		zap.Bool("attachment", att != nil),
	)
	c.publishChat(events.NewChatSubmittedEvent(state, user.ID))
	return t, mode, nil
}

// attached reports whether t still owns the view. Callers hold mu.
func (c *Controller) attached(t *turn) bool {
	return t.view == c.view
}

func (c *Controller) stream(ctx context.Context, t *turn, image *gateway.Image) error {
	c.update(func(m *session.Model) bool {
		if !c.attached(t) || m.Snapshot().Preview == nil {
			return false
		}
		m.SetPreview(nil)
		return true
	})

	seq, err := c.gateway.StreamChat(ctx, t.text, t.history, image)
	if err != nil {
		return err
	}

	id := history.NewID()
	t.placeholderID = id
	c.update(func(m *session.Model) bool {
		if !c.attached(t) {
			return false
		}
		m.Append(history.Message{ID: id, Role: history.RoleModel})
		return true
	})

	var reply strings.Builder
	for chunk, err := range seq {
		if err != nil {
			return err
		}
		if chunk == "" {
			continue
		}
		reply.WriteString(chunk)
		c.updateWith(func(m *session.Model) bool {
			return c.attached(t) && m.AppendContent(id, chunk)
		}, func(s session.State) events.ChatEvent {
			return events.NewChatTextDeltaEvent(s, id, chunk)
		})
	}

	t.placeholderID = ""
	t.replyID = id
	c.commit(ctx, t, history.Message{ID: id, Role: history.RoleModel, Content: reply.String()})
	return nil
}

// commit writes a finished chat turn to the saved session list. A turn
// keeps committing to the session it started in even if the view moved on.
func (c *Controller) commit(ctx context.Context, t *turn, reply history.Message) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	msgs := append(history.CloneMessages(t.prior), t.user, reply)
	now := c.clock().UnixMilli()

	c.mu.Lock()
	id := t.sessionID
	typ := events.HistoryEventUpdated
	if id == "" {
		id = history.NewID()
		typ = events.HistoryEventCreated
		s := history.Session{
			ID:        id,
			Title:     history.Title(t.text),
			Timestamp: now,
			Messages:  msgs,
		}
		c.sessions = append([]history.Session{s}, c.sessions...)
		if c.attached(t) {
			c.model.SetActiveID(id)
		}
	} else {
		i := history.Find(c.sessions, id)
		if i < 0 {
			c.mu.Unlock()
			c.logger.Info("session deleted during turn, reply not saved", zap.String("session", id))
			return
		}
		c.sessions = cloneSessions(c.sessions)
		c.sessions[i].Messages = msgs
		c.sessions[i].Timestamp = now
	}
	sessions := cloneSessions(c.sessions)
	c.mu.Unlock()

	if err := c.store.Save(ctx, sessions); err != nil {
		c.logger.Warn("session not saved", zap.String("session", id), zap.Error(err))
	}
	c.publishHistory(events.NewHistoryEvent(typ, id, history.Sorted(sessions)))
}

func (c *Controller) analyze(ctx context.Context, t *turn, image gateway.Image) error {
	text, err := c.gateway.ExtractText(ctx, image)
	if err != nil {
		return err
	}
	c.deliver(t, ExtractedTextReply+text, nil)
	return nil
}

func (c *Controller) generate(ctx context.Context, t *turn, mode session.Mode) error {
	switch mode {
	case session.ModeImage:
		prompt := strings.TrimSpace(t.text)
		url, err := c.gateway.GenerateImage(ctx, prompt)
		if err != nil {
			return err
		}
		c.deliver(t, ImageReply(prompt), session.NewImagePreview(url, prompt))

	case session.ModeCode:
		raw, err := c.gateway.GenerateStructured(ctx, gateway.ShapeCode, t.text)
		if err != nil {
			return err
		}
		result, err := gateway.DecodeCode(raw)
		if err != nil {
			return err
		}
		c.deliver(t, CodeReply, session.NewCodePreview(result.Code, result.Explanation, t.text))

	case session.ModePresentation:
		raw, err := c.gateway.GenerateStructured(ctx, gateway.ShapePresentation, t.text)
		if err != nil {
			return err
		}
		deck, err := gateway.DecodePresentation(raw)
		if err != nil {
			return err
		}
		c.deliver(t, deck.Confirmation(), session.NewPresentationPreview(deck.File(), deck.Title, len(deck.Slides)))

	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	return nil
}

// deliver shows a single-shot reply. A preview also hides the sidebar.
func (c *Controller) deliver(t *turn, content string, preview *session.Preview) {
	id := history.NewID()
	t.replyID = id
	c.update(func(m *session.Model) bool {
		if !c.attached(t) {
			return false
		}
		m.Append(history.Message{ID: id, Role: history.RoleModel, Content: content})
		if preview != nil {
			m.SetPreview(preview)
			m.SetSidebarOpen(false)
		}
		return true
	})
}

// finish leaves the loading state and resets the mode. A failed turn drops
// its placeholder and ends with an error message instead.
func (c *Controller) finish(t *turn, err error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	if err != nil && c.attached(t) {
		if t.placeholderID != "" {
			c.model.Remove(t.placeholderID)
		}
		t.replyID = history.NewID()
		c.model.Append(history.Message{ID: t.replyID, Role: history.RoleModel, Content: errorReply(err)})
	}
	c.model.SetLoading(false)
	c.model.SetMode(session.ModeChat)
	state := c.model.Snapshot()
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("turn failed", zap.Error(err))
		c.publishChat(events.NewChatErrorEvent(state, t.replyID, err))
		return
	}
	c.publishChat(events.NewChatCompleteEvent(state, t.replyID))
}

func errorReply(err error) string {
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return FallbackErrorReply
}
