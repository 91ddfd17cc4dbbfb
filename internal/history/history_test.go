package history

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short", "Hello there", "Hello there"},
		{"exactly limit", strings.Repeat("a", 40), strings.Repeat("a", 40)},
		{"over limit", strings.Repeat("b", 41), strings.Repeat("b", 40) + "…"},
		{"trims whitespace", "  hi  ", "hi"},
		{"keeps emoji whole", strings.Repeat("x", 39) + "👩‍💻tail", strings.Repeat("x", 39) + "👩‍💻…"},
		{"multibyte", strings.Repeat("é", 45), strings.Repeat("é", 40) + "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.text))
		})
	}
}

func TestNewIDIsUniqueAndOrdered(t *testing.T) {
	prev := NewID()
	for range 100 {
		next := NewID()
		assert.NotEqual(t, prev, next)
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestCloneMessages(t *testing.T) {
	assert.Nil(t, CloneMessages(nil))

	orig := []Message{{ID: "1", Role: RoleUser, Content: "hi"}}
	clone := CloneMessages(orig)
	clone[0].Content = "changed"
	assert.Equal(t, "hi", orig[0].Content)
}
