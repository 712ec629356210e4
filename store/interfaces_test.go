package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterMatches(t *testing.T) {
	payload := map[string]any{"file_path": "20-Notes/a.md", "chunk_index": int64(2), "empty": ""}

	tests := []struct {
		name   string
		filter *Filter
		want   bool
	}{
		{"nil filter", nil, true},
		{"empty filter", &Filter{}, true},
		{"equal", FieldEquals("file_path", "20-Notes/a.md"), true},
		{"different", FieldEquals("file_path", "20-Notes/b.md"), false},
		{"missing key", FieldEquals("title", ""), false},
		{"present empty", FieldEquals("empty", ""), true},
		{"integer as string", FieldEquals("chunk_index", "2"), true},
		{"all conditions", &Filter{Must: []Match{{"file_path", "20-Notes/a.md"}, {"chunk_index", "3"}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(payload))
		})
	}
}
