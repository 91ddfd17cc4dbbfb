package welcome

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestSelectionCycles(t *testing.T) {
	w := New("Hello, I'm Aurora", "What can I help with?")

	if _, ok := w.Selected(); ok {
		t.Fatal("nothing should be selected initially")
	}

	w.Next()
	s, ok := w.Selected()
	if !ok || s.Title != "Content Help" {
		t.Fatalf("Selected() = %q, %v; want Content Help", s.Title, ok)
	}

	w.Prev()
	s, _ = w.Selected()
	if s.Title != "Job Application" {
		t.Errorf("Prev wrapped to %q, want Job Application", s.Title)
	}

	for range len(Suggestions) {
		w.Next()
	}
	s, _ = w.Selected()
	if s.Title != "Job Application" {
		t.Errorf("full cycle landed on %q", s.Title)
	}

	w.Reset()
	if _, ok := w.Selected(); ok {
		t.Error("Reset should clear the selection")
	}
}

func TestViewShowsGreeting(t *testing.T) {
	w := New("Hello, I'm Aurora", "What can I help with?")
	w.SetSize(120, 40)

	view := ansi.Strip(w.View())
	for _, want := range []string{"Hello, I'm Aurora", "What can I help with?", "Brainstorm Ideas"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
