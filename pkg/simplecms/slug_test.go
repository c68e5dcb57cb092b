package simplecms_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "My First Event", "my-first-event"},
		{"punctuation stripped", "Tech Conference 2024!", "tech-conference-2024"},
		{"mixed case", "HELLO World", "hello-world"},
		{"multiple spaces", "a    b", "a-b"},
		{"leading and trailing space", "  trimmed  ", "trimmed"},
		{"unicode stripped", "café & crème", "caf-crme"},
		{"symbols between words", "rock&roll", "rockroll"},
		{"already a slug", "my-first-event", "my-first-event"},
		{"only punctuation", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, simplecms.Slugify(tt.title))
		})
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	titles := []string{
		"My First Event",
		"Tech Conference 2024!",
		"  A   Very -- Messy    Title  ",
		"already-slugged-title",
	}

	for _, title := range titles {
		slug := simplecms.Slugify(title)
		assert.Equal(t, slug, simplecms.Slugify(slug), "slugifying %q twice changed the result", title)
	}
}
