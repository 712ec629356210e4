package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, vault, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(vault, ".obsistant"), 0o755))
	require.NoError(t, os.WriteFile(Path(vault), []byte(body), 0o644))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "20-Notes", cfg.Vault.Folders.Notes)
	assert.Equal(t, "10-Meetings", cfg.Vault.Folders.Meetings)
	assert.Equal(t, "Weekly Summaries", cfg.Vault.Folders.Summaries)
	assert.Equal(t, DefaultTagRegex, cfg.Tags.TagRegex)
	assert.Equal(t, 0.5, cfg.Ingest.SimilarityThreshold)
	assert.Equal(t, 1000, cfg.Ingest.PageSize)
	assert.Equal(t, 3, cfg.Ingest.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Ingest.BaseBackoff)
	assert.Zero(t, cfg.Ingest.EmbedTimeout)
	assert.Equal(t, BackendQdrant, cfg.Store.Backend)
	assert.Equal(t, 6333, cfg.Store.HTTPPort)
	assert.Equal(t, 6334, cfg.Store.GRPCPort)
	require.NotNil(t, cfg.AI)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("overrides merge onto defaults", func(t *testing.T) {
		vault := t.TempDir()
		writeConfig(t, vault, `
vault:
  folders:
    notes: Notes
    meetings: Meetings
tags:
  ignored_tags: [draft]
ingest:
  collection: personal
  embed_timeout: 30s
  include_pdfs: true
store:
  backend: badger
ai:
  embedding_model: text-embedding-3-small
`)

		cfg, err := Load(vault)
		require.NoError(t, err)

		assert.Equal(t, "Notes", cfg.Vault.Folders.Notes)
		assert.Equal(t, "Meetings", cfg.Vault.Folders.Meetings)
		assert.Equal(t, "Weekly Summaries", cfg.Vault.Folders.Summaries)
		assert.Equal(t, []string{"draft"}, cfg.Tags.IgnoredTags)
		assert.Equal(t, DefaultTagRegex, cfg.Tags.TagRegex)
		assert.Equal(t, "personal", cfg.Ingest.Collection)
		assert.Equal(t, 30*time.Second, cfg.Ingest.EmbedTimeout)
		assert.True(t, cfg.Ingest.IncludePDFs)
		assert.Equal(t, BackendBadger, cfg.Store.Backend)
		assert.Equal(t, "text-embedding-3-small", cfg.AI.EmbeddingModel)
		assert.Equal(t, "http://localhost:11434", cfg.AI.EncoderHost)
	})

	t.Run("credential is never read from file", func(t *testing.T) {
		vault := t.TempDir()
		writeConfig(t, vault, "ai:\n  api_key: sk-leaked\n  APIKey: sk-leaked\n")

		cfg, err := Load(vault)
		require.NoError(t, err)
		assert.Empty(t, cfg.AI.APIKey)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		vault := t.TempDir()
		writeConfig(t, vault, "vault: [unterminated")

		_, err := Load(vault)
		assert.Error(t, err)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	vault := t.TempDir()
	cfg := NewConfig(WithCollection("notes"), WithAPIKey("sk-secret"))

	require.NoError(t, Save(cfg, vault))

	data, err := os.ReadFile(Path(vault))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-secret")

	loaded, err := Load(vault)
	require.NoError(t, err)
	assert.Equal(t, "notes", loaded.Ingest.Collection)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"empty notes folder", func(c *Config) { c.Vault.Folders.Notes = "" }, "folders.notes"},
		{"bad tag regex", func(c *Config) { c.Tags.TagRegex = "(" }, "tag_regex"},
		{"threshold out of range", func(c *Config) { c.Ingest.SimilarityThreshold = 1.5 }, "similarity_threshold"},
		{"zero page size", func(c *Config) { c.Ingest.PageSize = 0 }, "page_size"},
		{"zero concurrency", func(c *Config) { c.Ingest.EmbedConcurrency = 0 }, "embed_concurrency"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "sqlite" }, "backend"},
		{"port out of range", func(c *Config) { c.Store.HTTPPort = 70000 }, "http_port"},
		{"same ports", func(c *Config) { c.Store.GRPCPort = c.Store.HTTPPort }, "must differ"},
		{"missing ai", func(c *Config) { c.AI = nil }, "ai section"},
		{"invalid ai", func(c *Config) { c.AI.EncoderModel = "" }, "EncoderModel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestBadgerDir(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join("/vault", ".obsistant", "badger"), cfg.BadgerDir("/vault"))

	cfg.Store.BadgerPath = "index"
	assert.Equal(t, filepath.Join("/vault", "index"), cfg.BadgerDir("/vault"))

	cfg.Store.BadgerPath = "/data/index"
	assert.Equal(t, "/data/index", cfg.BadgerDir("/vault"))
}
