package gateway

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync/atomic"

	"charm.land/fantasy"

	"github.com/guilhermegouw/aurora/internal/config"
	"github.com/guilhermegouw/aurora/internal/history"
)

// DefaultMaxOutputTokens is used when the model selection sets no limit.
const DefaultMaxOutputTokens int64 = 4096

// errStopped ends a stream whose consumer stopped ranging.
var errStopped = errors.New("stream consumer stopped")

// Agent runs one model call. fantasy agents satisfy it.
type Agent interface {
	Generate(ctx context.Context, call fantasy.AgentCall) (*fantasy.AgentResult, error)
	Stream(ctx context.Context, call fantasy.AgentStreamCall) (*fantasy.AgentResult, error)
}

// CallOptions are per-model call settings.
type CallOptions struct {
	MaxOutputTokens int64
	Temperature     *float64
}

func (o CallOptions) maxTokens() *int64 {
	n := o.MaxOutputTokens
	if n <= 0 {
		n = DefaultMaxOutputTokens
	}
	return &n
}

// AgentSource builds an agent for a task.
type AgentSource interface {
	Agent(ctx context.Context, task config.ModelTask, systemPrompt string) (Agent, CallOptions, error)
}

// ImageGenerator produces image bytes for a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (data []byte, mediaType string, err error)
}

// Client is the Gateway backed by fantasy language models.
type Client struct {
	agents       AgentSource
	images       ImageGenerator
	systemPrompt string
}

// NewClient creates a gateway client.
func NewClient(agents AgentSource, images ImageGenerator, systemPrompt string) *Client {
	return &Client{
		agents:       agents,
		images:       images,
		systemPrompt: systemPrompt,
	}
}

// StreamChat implements Gateway.
func (c *Client) StreamChat(ctx context.Context, text string, turns []Turn, image *Image) (iter.Seq2[string, error], error) {
	task := config.TaskChat
	if image != nil {
		task = config.TaskVision
	}

	agent, opts, err := c.agents.Agent(ctx, task, c.systemPrompt)
	if err != nil {
		return nil, err
	}

	call := fantasy.AgentStreamCall{
		Prompt:          text,
		Messages:        toMessages(turns),
		MaxOutputTokens: opts.maxTokens(),
		Temperature:     opts.Temperature,
	}
	if image != nil {
		call.Files = []fantasy.FilePart{toFilePart(*image)}
	}

	var used atomic.Bool
	return func(yield func(string, error) bool) {
		if used.Swap(true) {
			yield("", ErrConsumed)
			return
		}

		stopped := false
		call.OnTextDelta = func(_, delta string) error {
			if stopped {
				return errStopped
			}
			if delta == "" {
				return nil
			}
			if !yield(delta, nil) {
				stopped = true
				return errStopped
			}
			return nil
		}

		if _, err := agent.Stream(ctx, call); err != nil && !stopped {
			yield("", fmt.Errorf("chat request failed: %w", err))
		}
	}, nil
}

// ExtractText implements Gateway.
func (c *Client) ExtractText(ctx context.Context, image Image) (string, error) {
	agent, opts, err := c.agents.Agent(ctx, config.TaskVision, "")
	if err != nil {
		return "", err
	}

	result, err := agent.Generate(ctx, fantasy.AgentCall{
		Prompt:          extractTextPrompt,
		Files:           []fantasy.FilePart{toFilePart(image)},
		MaxOutputTokens: opts.maxTokens(),
		Temperature:     opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}
	return result.Response.Content.Text(), nil
}

// GenerateImage implements Gateway.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	data, mediaType, err := c.images.GenerateImage(ctx, prompt)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrNoImage
	}
	if mediaType == "" {
		mediaType = "image/png"
	}
	return DataURL(data, mediaType), nil
}

// GenerateStructured implements Gateway.
func (c *Client) GenerateStructured(ctx context.Context, shape Shape, prompt string) (string, error) {
	system, user := structuredRequest(shape, prompt)

	agent, opts, err := c.agents.Agent(ctx, config.TaskStructured, system)
	if err != nil {
		return "", err
	}

	result, err := agent.Generate(ctx, fantasy.AgentCall{
		Prompt:          user,
		MaxOutputTokens: opts.maxTokens(),
		Temperature:     opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%s generation failed: %w", shape, err)
	}
	return strings.TrimSpace(result.Response.Content.Text()), nil
}

func toMessages(turns []Turn) []fantasy.Message {
	var out []fantasy.Message
	for _, t := range turns {
		switch t.Role {
		case history.RoleUser:
			out = append(out, fantasy.NewUserMessage(t.Content))
		case history.RoleModel:
			if t.Content == "" {
				continue
			}
			out = append(out, fantasy.Message{
				Role:    fantasy.MessageRoleAssistant,
				Content: []fantasy.MessagePart{fantasy.TextPart{Text: t.Content}},
			})
		}
	}
	return out
}

func toFilePart(image Image) fantasy.FilePart {
	ext := strings.TrimPrefix(image.MediaType, "image/")
	return fantasy.FilePart{
		Filename:  "attachment." + ext,
		Data:      image.Data,
		MediaType: image.MediaType,
	}
}
