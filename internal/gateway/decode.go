package gateway

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// MalformedError reports structured output that could not be parsed. Its
// Error text is meant for the user.
type MalformedError struct {
	Shape Shape
	Raw   string
	Err   error
}

func (e *MalformedError) Error() string {
	if e.Shape == ShapePresentation {
		return "Sorry, I encountered an error while creating the presentation. The generated data might have been invalid."
	}
	return "Sorry, I couldn't process the code correctly. The response was not valid JSON."
}

func (e *MalformedError) Unwrap() error { return e.Err }

// CodeResult is the ShapeCode payload.
type CodeResult struct {
	Explanation string `json:"explanation"`
	Code        string `json:"code"`
}

// Slide is one content slide.
type Slide struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

// Deck is the ShapePresentation payload.
type Deck struct {
	FileName string  `json:"fileName"`
	Title    string  `json:"title"`
	Slides   []Slide `json:"slides"`
}

var fileNameUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// File returns the presentation file name with extension.
func (d Deck) File() string {
	name := strings.Trim(fileNameUnsafe.ReplaceAllString(d.FileName, "_"), "_")
	if name == "" {
		name = "presentation"
	}
	return name + ".pptx"
}

// Confirmation is the message shown when the deck is ready.
func (d Deck) Confirmation() string {
	return fmt.Sprintf("I've created the presentation %q. It has a title slide and %d content slides.",
		d.File(), len(d.Slides))
}

var fence = regexp.MustCompile("(?s)^```[A-Za-z0-9_-]*[ \t]*\r?\n(.*?)\r?\n?```$")

// Unfence strips a surrounding fenced code block, if any.
func Unfence(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := fence.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return raw
}

// DecodeCode parses a ShapeCode response.
func DecodeCode(raw string) (CodeResult, error) {
	var out CodeResult
	if err := decode(ShapeCode, raw, &out); err != nil {
		return CodeResult{}, err
	}
	if !gjson.Get(Unfence(raw), "code").Exists() {
		return CodeResult{}, &MalformedError{Shape: ShapeCode, Raw: raw, Err: fmt.Errorf("missing code field")}
	}
	return out, nil
}

// DecodePresentation parses a ShapePresentation response.
func DecodePresentation(raw string) (Deck, error) {
	var out Deck
	if err := decode(ShapePresentation, raw, &out); err != nil {
		return Deck{}, err
	}
	if !gjson.Get(Unfence(raw), "slides").IsArray() {
		return Deck{}, &MalformedError{Shape: ShapePresentation, Raw: raw, Err: fmt.Errorf("missing slides array")}
	}
	return out, nil
}

func decode(shape Shape, raw string, v any) error {
	body := Unfence(raw)
	if !gjson.Valid(body) || !gjson.Parse(body).IsObject() {
		return &MalformedError{Shape: shape, Raw: raw, Err: fmt.Errorf("response is not a JSON object")}
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return &MalformedError{Shape: shape, Raw: raw, Err: err}
	}
	return nil
}
