package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "https://api.openai.com/v1", cfg.EmbeddingHost)
	assert.Equal(t, "text-embedding-3-large", cfg.EmbeddingModel)
	assert.Equal(t, 3072, cfg.EmbeddingDimensions)
	assert.Equal(t, "http://localhost:11434", cfg.EncoderHost)
	assert.Equal(t, "all-minilm", cfg.EncoderModel)
	assert.Empty(t, cfg.APIKey)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with credential", func(t *testing.T) {
		cfg := NewConfig(WithAPIKey("sk-test"))

		assert.Equal(t, "sk-test", cfg.APIKey)
	})

	t.Run("with custom models", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("text-embedding-3-small"),
			WithEmbeddingDimensions(1536),
			WithEncoderModel("nomic-embed-text"),
		)

		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, 1536, cfg.EmbeddingDimensions)
		assert.Equal(t, "nomic-embed-text", cfg.EncoderModel)
	})

	t.Run("with custom hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithEncoderHost("http://encode:11434"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://encode:11434", cfg.EncoderHost)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name        string
		embedHost   string
		encoderHost string
		wantEmbed   string
		wantEncoder string
	}{
		{
			name:        "adds /v1 to embedding host",
			embedHost:   "http://localhost:8080",
			encoderHost: "http://localhost:11434",
			wantEmbed:   "http://localhost:8080/v1",
			wantEncoder: "http://localhost:11434",
		},
		{
			name:        "trims trailing slashes",
			embedHost:   "http://localhost:8080/",
			encoderHost: "http://localhost:11434/",
			wantEmbed:   "http://localhost:8080/v1",
			wantEncoder: "http://localhost:11434",
		},
		{
			name:        "keeps existing /v1",
			embedHost:   "https://api.openai.com/v1",
			encoderHost: "http://localhost:11434",
			wantEmbed:   "https://api.openai.com/v1",
			wantEncoder: "http://localhost:11434",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(WithEmbeddingHost(tt.embedHost), WithEncoderHost(tt.encoderHost))
			cfg.Normalize()

			assert.Equal(t, tt.wantEmbed, cfg.EmbeddingHost)
			assert.Equal(t, tt.wantEncoder, cfg.EncoderHost)
		})
	}

	t.Run("fills dimensions for known model", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingModel("text-embedding-3-small"), WithEmbeddingDimensions(0))
		cfg.Normalize()

		assert.Equal(t, 1536, cfg.EmbeddingDimensions)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	t.Run("missing credential is not a config error", func(t *testing.T) {
		cfg := NewConfig(WithAPIKey(""))
		require.NoError(t, cfg.Validate())
	})

	tests := []struct {
		name    string
		opt     ConfigOption
		wantMsg string
	}{
		{"empty embedding host", WithEmbeddingHost(""), "EmbeddingHost is required"},
		{"empty embedding model", WithEmbeddingModel(""), "EmbeddingModel is required"},
		{"empty encoder host", WithEncoderHost(""), "EncoderHost is required"},
		{"empty encoder model", WithEncoderModel(""), "EncoderModel is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.opt).Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	t.Run("unknown model needs dimensions", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingModel("custom-embedder"), WithEmbeddingDimensions(0))
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EmbeddingDimensions")
	})
}
