// Package gateway is the boundary to the generative AI service: streaming
// chat, text extraction, image generation and structured generation.
package gateway

import (
	"context"
	"errors"
	"iter"

	"github.com/guilhermegouw/aurora/internal/history"
)

// Errors returned by gateways.
var (
	ErrNoImage  = errors.New("image generation failed: no images were returned")
	ErrConsumed = errors.New("response stream already consumed")
)

// Shape selects the structure GenerateStructured returns.
type Shape string

// Structured shapes.
const (
	ShapeCode         Shape = "code"
	ShapePresentation Shape = "presentation"
)

// Turn is one prior message sent as chat history.
type Turn struct {
	Role    history.Role
	Content string
}

// Image is inline image data with its declared media type.
type Image struct {
	Data      []byte
	MediaType string
}

// Gateway is the AI service used by the chat controller.
type Gateway interface {
	// StreamChat sends text with prior history and an optional image. The
	// returned sequence yields text fragments in order and can be ranged
	// over once. A failure mid-stream is yielded as a final error.
	StreamChat(ctx context.Context, text string, turns []Turn, image *Image) (iter.Seq2[string, error], error)

	// ExtractText returns the text found in an image.
	ExtractText(ctx context.Context, image Image) (string, error)

	// GenerateImage returns a data: URL for an image matching prompt.
	GenerateImage(ctx context.Context, prompt string) (string, error)

	// GenerateStructured returns JSON text of the given shape, possibly
	// wrapped in a fenced code block.
	GenerateStructured(ctx context.Context, shape Shape, prompt string) (string, error)
}

// TurnsFrom converts stored messages to history turns. Leading model
// messages are dropped so the history starts with the user.
func TurnsFrom(msgs []history.Message) []Turn {
	start := -1
	for i, m := range msgs {
		if m.Role == history.RoleUser {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	turns := make([]Turn, 0, len(msgs)-start)
	for _, m := range msgs[start:] {
		if m.Role != history.RoleUser && m.Role != history.RoleModel {
			continue
		}
		turns = append(turns, Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}
