package chat

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/guilhermegouw/aurora/internal/gateway"
	"github.com/guilhermegouw/aurora/internal/session"
)

func TestSaveArtifact_Image(t *testing.T) {
	dir := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\nfake")
	p := session.NewImagePreview(gateway.DataURL(png, "image/png"), "A cat wearing a hat!")

	path, err := SaveArtifact(p, dir)
	if err != nil {
		t.Fatalf("SaveArtifact() error = %v", err)
	}
	if want := filepath.Join(dir, "a-cat-wearing-a-hat.png"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path) //nolint:gosec // test path from t.TempDir
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(png) {
		t.Errorf("saved %q, want %q", data, png)
	}

	// A second save keeps the first file.
	second, err := SaveArtifact(p, dir)
	if err != nil {
		t.Fatalf("second SaveArtifact() error = %v", err)
	}
	if want := filepath.Join(dir, "a-cat-wearing-a-hat-2.png"); second != want {
		t.Errorf("second path = %q, want %q", second, want)
	}
}

func TestSaveArtifact_Code(t *testing.T) {
	dir := t.TempDir()
	p := session.NewCodePreview("<h1>Hi</h1>", "A heading.", "")

	path, err := SaveArtifact(p, filepath.Join(dir, "artifacts"))
	if err != nil {
		t.Fatalf("SaveArtifact() error = %v", err)
	}
	if filepath.Base(path) != "page.html" {
		t.Errorf("file name = %q, want page.html", filepath.Base(path))
	}
	data, err := os.ReadFile(path) //nolint:gosec // test path from t.TempDir
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<h1>Hi</h1>" {
		t.Errorf("saved %q", data)
	}
}

func TestSaveArtifact_NotSavable(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		preview *session.Preview
		want    error
	}{
		{"nil", nil, ErrNothingToSave},
		{"presentation", session.NewPresentationPreview("Deck.pptx", "Deck", 4), ErrNotSavable},
		{"remote image", session.NewImagePreview("https://example.com/cat.png", "cat"), ErrNotSavable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SaveArtifact(tt.preview, dir); !errors.Is(err, tt.want) {
				t.Errorf("SaveArtifact() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello, World", "hello-world"},
		{"  --  ", "fallback"},
		{"Émile's café", "mile-s-caf"},
		{strings.Repeat("abc ", 30), "abc-abc-abc-abc-abc-abc-abc-abc-abc-abc"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in, "fallback"); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPreviewPanel_View(t *testing.T) {
	p := NewPreviewPanel()
	p.SetSize(60, 20)

	if p.Visible() || p.View() != "" {
		t.Fatal("empty panel should render nothing")
	}

	p.SetPreview(session.NewPresentationPreview("Renewable_Energy.pptx", "Renewable Energy", 5))
	view := ansi.Strip(p.View())
	for _, want := range []string{"Presentation", "Renewable Energy", "Renewable_Energy.pptx", "5 slides: a title slide and 4 content slides"} {
		if !strings.Contains(view, want) {
			t.Errorf("presentation view missing %q:\n%s", want, view)
		}
	}

	p.SetPreview(session.NewImagePreview(gateway.DataURL(make([]byte, 2048), "image/png"), "sunset"))
	view = ansi.Strip(p.View())
	if !strings.Contains(view, "image/png image, 2.0 KB") {
		t.Errorf("image view missing size:\n%s", view)
	}

	p.SetSaved("/tmp/sunset.png")
	if !strings.Contains(ansi.Strip(p.View()), "Saved to /tmp/sunset.png") {
		t.Error("saved path not shown")
	}
	p.SetPreview(session.NewCodePreview("<p>x</p>", "", "para"))
	if strings.Contains(ansi.Strip(p.View()), "Saved to") {
		t.Error("saved path should reset for a new preview")
	}
}
