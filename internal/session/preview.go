package session

// PreviewKind distinguishes preview artifacts.
type PreviewKind string

// Preview kinds.
const (
	PreviewImage        PreviewKind = "image"
	PreviewCode         PreviewKind = "code"
	PreviewPresentation PreviewKind = "presentation"
)

// Preview is the result of the most recent non-chat action. Only the fields
// of its kind are set.
type Preview struct {
	Kind PreviewKind

	// Image and code previews.
	Prompt string

	// Image previews.
	ImageURL string

	// Code previews.
	Code        string
	Explanation string

	// Presentation previews.
	FileName   string
	Title      string
	SlideCount int
}

// NewImagePreview creates an image preview.
func NewImagePreview(url, prompt string) *Preview {
	return &Preview{Kind: PreviewImage, ImageURL: url, Prompt: prompt}
}

// NewCodePreview creates a code preview.
func NewCodePreview(code, explanation, prompt string) *Preview {
	return &Preview{Kind: PreviewCode, Code: code, Explanation: explanation, Prompt: prompt}
}

// NewPresentationPreview creates a presentation preview.
func NewPresentationPreview(fileName, title string, slides int) *Preview {
	return &Preview{Kind: PreviewPresentation, FileName: fileName, Title: title, SlideCount: slides}
}
