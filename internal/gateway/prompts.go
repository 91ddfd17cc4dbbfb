package gateway

import "fmt"

// DefaultSystemPrompt returns the chat system prompt for an assistant named app.
func DefaultSystemPrompt(app string) string {
	return fmt.Sprintf("You are %s, a helpful and creative AI assistant. "+
		"Your responses should be fluid, intelligent, and elegant.", app)
}

const extractTextPrompt = "Extract text from this image."

const codeSystemPrompt = `You generate runnable web code. Reply with a single JSON object and nothing else:
{
  "explanation": "An explanation of the created code, including what it does and how it works. Format this using Markdown.",
  "code": "A single block of runnable HTML code, including any necessary CSS and JavaScript within the HTML file structure."
}
Both fields are required strings.`

const presentationSystemPrompt = `You design slide presentations. Reply with a single JSON object and nothing else:
{
  "fileName": "A short, file-friendly name for the presentation, e.g. Renewable_Energy",
  "title": "The main title for the title slide",
  "slides": [
    {"title": "The title for a single slide", "content": ["One bullet point per string"]}
  ]
}
All fields are required.`

func structuredRequest(shape Shape, prompt string) (system, user string) {
	if shape == ShapePresentation {
		return presentationSystemPrompt, fmt.Sprintf(
			"Create a presentation based on this topic: %q. "+
				"Generate a title, and at least 5 content slides with titles and bullet points.", prompt)
	}
	return codeSystemPrompt, fmt.Sprintf(
		"Based on the following request, generate a single, runnable HTML file "+
			"and a brief explanation of how it works. Request: %q", prompt)
}
