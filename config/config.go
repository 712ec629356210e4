// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package config holds the vault configuration consumed by every vaultindex
// component. It is loaded once at the entry point and passed down explicitly.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/poiesic/vaultindex/ai"
	"github.com/poiesic/vaultindex/core"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file inside the vault state directory.
const FileName = "config.yaml"

// Store backends.
const (
	BackendQdrant = "qdrant"
	BackendBadger = "badger"
)

// DefaultTagRegex matches #tags not preceded by a word character.
const DefaultTagRegex = `(?<!\w)#([\w/-]+)(?=\s|$)`

// Config is the complete vaultindex configuration.
type Config struct {
	Vault  VaultConfig  `yaml:"vault"`
	Tags   TagsConfig   `yaml:"tags"`
	Ingest IngestConfig `yaml:"ingest"`
	Store  StoreConfig  `yaml:"store"`
	AI     *ai.Config   `yaml:"ai"`
}

// VaultConfig describes the vault layout.
type VaultConfig struct {
	Folders Folders `yaml:"folders"`
}

// Folders names the top-level vault folders, relative to the vault root.
type Folders struct {
	QuickNotes string `yaml:"quick_notes"`
	Meetings   string `yaml:"meetings"`
	Notes      string `yaml:"notes"`
	Guides     string `yaml:"guides"`
	Vacations  string `yaml:"vacations"`
	Files      string `yaml:"files"`
	// Summaries is a subfolder of Meetings that is never indexed.
	Summaries string `yaml:"summaries"`
}

// TagsConfig controls tag extraction.
type TagsConfig struct {
	TargetTags  []string `yaml:"target_tags"`
	IgnoredTags []string `yaml:"ignored_tags"`
	TagRegex    string   `yaml:"tag_regex"`
}

// IngestConfig tunes the ingestion pipeline.
type IngestConfig struct {
	Collection          string        `yaml:"collection"`
	SimilarityThreshold float64       `yaml:"similarity_threshold"`
	IncludePDFs         bool          `yaml:"include_pdfs"`
	PageSize            int           `yaml:"page_size"`
	EmbedConcurrency    int           `yaml:"embed_concurrency"`
	MaxAttempts         int           `yaml:"max_attempts"`
	BaseBackoff         time.Duration `yaml:"base_backoff"`
	// EmbedTimeout bounds a single embedding request. Zero disables it.
	EmbedTimeout time.Duration `yaml:"embed_timeout"`
	// RequestsPerSecond throttles embedding requests. Zero disables it.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	// WatchDebounce is the quiet period before watch mode re-runs ingestion.
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// StoreConfig selects and addresses the vector store.
type StoreConfig struct {
	Backend  string `yaml:"backend"`
	Host     string `yaml:"host"`
	HTTPPort int    `yaml:"http_port"`
	GRPCPort int    `yaml:"grpc_port"`
	Image    string `yaml:"image"`
	UseTLS   bool   `yaml:"use_tls"`
	// BadgerPath overrides the embedded store directory. Relative paths are
	// resolved against the vault root.
	BadgerPath string `yaml:"badger_path"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithCollection sets the target collection name.
func WithCollection(name string) ConfigOption {
	return func(c *Config) {
		c.Ingest.Collection = name
	}
}

// WithIncludePDFs toggles PDF ingestion.
func WithIncludePDFs(include bool) ConfigOption {
	return func(c *Config) {
		c.Ingest.IncludePDFs = include
	}
}

// WithStoreBackend selects the vector store backend.
func WithStoreBackend(backend string) ConfigOption {
	return func(c *Config) {
		c.Store.Backend = backend
	}
}

// WithPorts sets the store HTTP and gRPC ports.
func WithPorts(httpPort, grpcPort int) ConfigOption {
	return func(c *Config) {
		c.Store.HTTPPort = httpPort
		c.Store.GRPCPort = grpcPort
	}
}

// WithAIConfig replaces the embedding service configuration.
func WithAIConfig(cfg *ai.Config) ConfigOption {
	return func(c *Config) {
		c.AI = cfg
	}
}

// WithAPIKey sets the embedding credential.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		if c.AI == nil {
			c.AI = ai.DefaultConfig()
		}
		c.AI.APIKey = key
	}
}

// DefaultConfig returns the configuration used when the vault has no config file.
func DefaultConfig() *Config {
	return &Config{
		Vault: VaultConfig{
			Folders: Folders{
				QuickNotes: "00-Quick Notes",
				Meetings:   "10-Meetings",
				Notes:      "20-Notes",
				Guides:     "30-Guides",
				Vacations:  "40-Vacations",
				Files:      "50-Files",
				Summaries:  "Weekly Summaries",
			},
		},
		Tags: TagsConfig{
			TargetTags:  []string{"products", "projects", "devops", "challenges", "events"},
			IgnoredTags: []string{"olt"},
			TagRegex:    DefaultTagRegex,
		},
		Ingest: IngestConfig{
			Collection:          "work",
			SimilarityThreshold: 0.5,
			PageSize:            1000,
			EmbedConcurrency:    1,
			MaxAttempts:         3,
			BaseBackoff:         time.Second,
			Burst:               1,
			WatchDebounce:       2 * time.Second,
		},
		Store: StoreConfig{
			Backend:  BackendQdrant,
			Host:     "localhost",
			HTTPPort: 6333,
			GRPCPort: 6334,
			Image:    "qdrant/qdrant",
		},
		AI: ai.DefaultConfig(),
	}
}

// NewConfig creates a Config with default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Path returns the location of the config file for vault.
func Path(vault string) string {
	return filepath.Join(vault, core.StateDirName, FileName)
}

// Load reads <vault>/.obsistant/config.yaml over the defaults.
// A missing file yields the defaults; an unreadable or malformed one is an error.
func Load(vault string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path(vault))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", Path(vault), err)
	}
	if cfg.AI == nil {
		cfg.AI = ai.DefaultConfig()
	}
	return cfg, nil
}

// Save writes cfg to <vault>/.obsistant/config.yaml, creating the directory.
// The embedding credential is never written.
func Save(cfg *Config, vault string) error {
	if err := os.MkdirAll(filepath.Dir(Path(vault)), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(Path(vault), data, 0o644)
}

// BadgerDir resolves the embedded store directory for vault.
func (c *Config) BadgerDir(vault string) string {
	if c.Store.BadgerPath == "" {
		return filepath.Join(vault, core.StateDirName, "badger")
	}
	if filepath.IsAbs(c.Store.BadgerPath) {
		return c.Store.BadgerPath
	}
	return filepath.Join(vault, c.Store.BadgerPath)
}

// Validate checks the configuration and normalizes the AI section.
func (c *Config) Validate() error {
	f := c.Vault.Folders
	if f.Notes == "" {
		return errors.New("config: vault.folders.notes is required")
	}
	if f.Meetings == "" {
		return errors.New("config: vault.folders.meetings is required")
	}
	if c.Tags.TagRegex == "" {
		return errors.New("config: tags.tag_regex is required")
	}
	if _, err := regexp2.Compile(c.Tags.TagRegex, regexp2.None); err != nil {
		return fmt.Errorf("config: tags.tag_regex is invalid: %w", err)
	}

	in := c.Ingest
	if in.Collection == "" {
		return errors.New("config: ingest.collection is required")
	}
	if in.SimilarityThreshold < -1 || in.SimilarityThreshold > 1 {
		return fmt.Errorf("config: ingest.similarity_threshold must be within [-1, 1], got %v", in.SimilarityThreshold)
	}
	if in.PageSize <= 0 {
		return errors.New("config: ingest.page_size must be positive")
	}
	if in.EmbedConcurrency <= 0 {
		return errors.New("config: ingest.embed_concurrency must be positive")
	}
	if in.MaxAttempts <= 0 {
		return errors.New("config: ingest.max_attempts must be positive")
	}
	if in.BaseBackoff < 0 || in.EmbedTimeout < 0 || in.WatchDebounce < 0 {
		return errors.New("config: ingest durations must not be negative")
	}
	if in.RequestsPerSecond < 0 {
		return errors.New("config: ingest.requests_per_second must not be negative")
	}

	switch c.Store.Backend {
	case BackendQdrant:
		if c.Store.Host == "" {
			return errors.New("config: store.host is required")
		}
		if c.Store.Image == "" {
			return errors.New("config: store.image is required")
		}
	case BackendBadger:
	default:
		return fmt.Errorf("config: unknown store.backend %q", c.Store.Backend)
	}
	if err := validPort("http_port", c.Store.HTTPPort); err != nil {
		return err
	}
	if err := validPort("grpc_port", c.Store.GRPCPort); err != nil {
		return err
	}
	if c.Store.HTTPPort == c.Store.GRPCPort {
		return fmt.Errorf("config: store.http_port and store.grpc_port must differ, both are %d", c.Store.HTTPPort)
	}

	if c.AI == nil {
		return errors.New("config: ai section is required")
	}
	return c.AI.Validate()
}

func validPort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("config: store.%s out of range: %d", name, port)
	}
	return nil
}
