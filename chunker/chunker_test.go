package chunker

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/poiesic/vaultindex/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// topicEncoder maps each sentence to a fixed axis so tests control similarity.
func topicEncoder(axes map[string]int) *mock.MockEmbedder {
	encoder := mock.NewMockEmbedder()
	encoder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			v := make([]float32, 3)
			v[axes[text]] = 1
			out[i] = v
		}
		return out, nil
	}
	return encoder
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"simple", "One. Two. Three", []string{"One.", "Two.", "Three."}},
		{"trailing period kept", "Alpha. Beta.", []string{"Alpha.", "Beta.."}},
		{"drops blanks", "A.  . B", []string{"A.", "B."}},
		{"no separator", "single line", []string{"single line."}},
		{"only separators", ". . ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.in))
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.True(t, math.IsNaN(CosineSimilarity([]float32{0, 0}, []float32{1, 0})))
	assert.True(t, math.IsNaN(CosineSimilarity([]float32{1}, []float32{1, 0})))
}

func TestChunk(t *testing.T) {
	ctx := context.Background()

	t.Run("blank text yields nothing", func(t *testing.T) {
		c, err := New(mock.NewMockEmbedder())
		require.NoError(t, err)

		assert.Empty(t, c.Chunk(ctx, ""))
		assert.Empty(t, c.Chunk(ctx, "  \n\t "))
	})

	t.Run("splits on topic change", func(t *testing.T) {
		encoder := topicEncoder(map[string]int{
			"Cats purr.":      0,
			"Cats nap.":       0,
			"Rust compiles.":  1,
			"Rust is strict.": 1,
		})
		c, err := New(encoder)
		require.NoError(t, err)

		chunks := c.Chunk(ctx, "Cats purr. Cats nap. Rust compiles. Rust is strict")
		assert.Equal(t, []string{"Cats purr. Cats nap.", "Rust compiles. Rust is strict."}, chunks)
	})

	t.Run("similarity equal to threshold keeps run", func(t *testing.T) {
		encoder := mock.NewMockEmbedder()
		encoder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			// cos = 1 / |(1,1,1,1)| = 0.5 exactly
			return [][]float32{{1, 0, 0, 0}, {1, 1, 1, 1}}, nil
		}
		c, err := New(encoder, WithThreshold(0.5))
		require.NoError(t, err)

		assert.Len(t, c.Chunk(ctx, "First. Second"), 1)
	})

	t.Run("zero vectors keep run", func(t *testing.T) {
		encoder := mock.NewMockEmbedder()
		encoder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{0, 0}, {0, 0}}, nil
		}
		c, err := New(encoder)
		require.NoError(t, err)

		assert.Equal(t, []string{"First. Second."}, c.Chunk(ctx, "First. Second"))
	})

	t.Run("encoder failure falls back to whole text", func(t *testing.T) {
		encoder := mock.NewMockEmbedder()
		encoder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
			return nil, errors.New("model not loaded")
		}
		c, err := New(encoder)
		require.NoError(t, err)

		text := "One. Two. Three"
		assert.Equal(t, []string{text}, c.Chunk(ctx, text))
	})

	t.Run("vector count mismatch falls back", func(t *testing.T) {
		encoder := mock.NewMockEmbedder()
		encoder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
			return [][]float32{{1}}, nil
		}
		c, err := New(encoder)
		require.NoError(t, err)

		text := "One. Two"
		assert.Equal(t, []string{text}, c.Chunk(ctx, text))
	})

	t.Run("nil encoder falls back", func(t *testing.T) {
		c, err := New(nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"Some text. More"}, c.Chunk(ctx, "Some text. More"))
	})

	t.Run("no sentences returns text", func(t *testing.T) {
		c, err := New(mock.NewMockEmbedder())
		require.NoError(t, err)

		assert.Equal(t, []string{". . "}, c.Chunk(ctx, ". . "))
	})
}

func TestWithThreshold(t *testing.T) {
	_, err := New(nil, WithThreshold(1.5))
	assert.Error(t, err)

	_, err = New(nil, WithThreshold(math.NaN()))
	assert.Error(t, err)

	c, err := New(nil, WithThreshold(0.8))
	require.NoError(t, err)
	assert.Equal(t, 0.8, c.threshold)
}
