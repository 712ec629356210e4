package corpus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantFM   map[string]any
		wantBody string
	}{
		{
			name:     "no frontmatter",
			text:     "# Title\nbody",
			wantFM:   nil,
			wantBody: "# Title\nbody",
		},
		{
			name:     "simple frontmatter",
			text:     "---\ntitle: Hello\nauthor: me\n---\nbody text",
			wantFM:   map[string]any{"title": "Hello", "author": "me"},
			wantBody: "\nbody text",
		},
		{
			name:     "invalid yaml keeps text",
			text:     "---\ntitle: [unclosed\n---\nbody",
			wantFM:   nil,
			wantBody: "---\ntitle: [unclosed\n---\nbody",
		},
		{
			name:     "non-mapping yaml keeps text",
			text:     "---\n- a\n- b\n---\nbody",
			wantFM:   nil,
			wantBody: "---\n- a\n- b\n---\nbody",
		},
		{
			name:     "empty frontmatter",
			text:     "---\n---\nbody",
			wantFM:   nil,
			wantBody: "\nbody",
		},
		{
			name:     "single delimiter",
			text:     "---\nnot closed",
			wantFM:   nil,
			wantBody: "---\nnot closed",
		},
		{
			name:     "delimiter inside body",
			text:     "---\na: 1\n---\nbefore\n---\nafter",
			wantFM:   map[string]any{"a": 1},
			wantBody: "\nbefore\n---\nafter",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body := SplitFrontmatter(tt.text)
			assert.Equal(t, tt.wantFM, fm)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestFrontmatterTags(t *testing.T) {
	assert.Nil(t, frontmatterTags(nil))
	assert.Equal(t, []string{"a", "b"}, frontmatterTags(map[string]any{"tags": []any{"a", "#b"}}))
	assert.Equal(t, []string{"a", "b", "c"}, frontmatterTags(map[string]any{"tags": "a, b #c"}))
	assert.Equal(t, []string{"2024"}, frontmatterTags(map[string]any{"tags": 2024}))
}

func TestScalarString(t *testing.T) {
	assert.Equal(t, "", scalarString(nil))
	assert.Equal(t, "2024-01-05", scalarString("2024-01-05"))
	assert.Equal(t, "2024-01-05", scalarString(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "42", scalarString(42))
}
