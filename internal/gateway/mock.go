package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"iter"
	"strings"
	"time"
)

// Mock is an offline Gateway with deterministic output. It backs the
// --offline flag and tests that need a working gateway.
type Mock struct {
	// ChunkDelay is slept between streamed words.
	ChunkDelay time.Duration
}

// StreamChat echoes the prompt back one word at a time.
func (m *Mock) StreamChat(ctx context.Context, text string, turns []Turn, image *Image) (iter.Seq2[string, error], error) {
	reply := fmt.Sprintf("You said: %s", text)
	if image != nil {
		reply += fmt.Sprintf(" (with a %d-byte %s image)", len(image.Data), image.MediaType)
	}
	if len(turns) > 0 {
		reply += fmt.Sprintf(" [%d earlier messages]", len(turns))
	}

	return func(yield func(string, error) bool) {
		words := strings.SplitAfter(reply, " ")
		for _, w := range words {
			if m.ChunkDelay > 0 {
				select {
				case <-time.After(m.ChunkDelay):
				case <-ctx.Done():
					yield("", ctx.Err())
					return
				}
			}
			if !yield(w, nil) {
				return
			}
		}
	}, nil
}

// ExtractText describes the image instead of reading it.
func (m *Mock) ExtractText(_ context.Context, image Image) (string, error) {
	return fmt.Sprintf("Offline mode: text extraction is unavailable for this %d-byte %s image.",
		len(image.Data), image.MediaType), nil
}

// GenerateImage renders the prompt into an SVG placeholder.
func (m *Mock) GenerateImage(_ context.Context, prompt string) (string, error) {
	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="512" height="512">`+
		`<rect width="100%%" height="100%%" fill="#1e1b4b"/>`+
		`<text x="50%%" y="50%%" fill="#e0e7ff" font-size="20" text-anchor="middle">%s</text></svg>`,
		html.EscapeString(prompt))
	return DataURL([]byte(svg), "image/svg+xml"), nil
}

// GenerateStructured returns a small fixed payload built around prompt.
func (m *Mock) GenerateStructured(_ context.Context, shape Shape, prompt string) (string, error) {
	var payload any
	switch shape {
	case ShapePresentation:
		deck := Deck{FileName: "Offline_Presentation", Title: prompt}
		for i := 1; i <= 5; i++ {
			deck.Slides = append(deck.Slides, Slide{
				Title:   fmt.Sprintf("Part %d", i),
				Content: []string{fmt.Sprintf("Point %d about %s", i, prompt)},
			})
		}
		payload = deck
	default:
		payload = CodeResult{
			Explanation: "An offline placeholder page that shows your request.",
			Code:        "<!DOCTYPE html>\n<html><body><h1>" + html.EscapeString(prompt) + "</h1></body></html>",
		}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return "```json\n" + string(data) + "\n```", nil
}
