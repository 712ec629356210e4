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


package ai

import (
	"errors"
	"strings"
)

// Default service settings.
const (
	DefaultEmbeddingHost  = "https://api.openai.com/v1"
	DefaultEmbeddingModel = "text-embedding-3-large"
	DefaultEncoderHost    = "http://localhost:11434"
	DefaultEncoderModel   = "all-minilm"
)

// modelDimensions lists the native output size of well-known embedding models.
var modelDimensions = map[string]int{
	"text-embedding-3-large": 3072,
	"text-embedding-3-small": 1536,
	"text-embedding-ada-002": 1536,
	"all-minilm":             384,
	"nomic-embed-text":       768,
	"embeddinggemma":         768,
}

// DimensionsForModel returns the native dimension of a known model, or 0.
func DimensionsForModel(model string) int {
	return modelDimensions[model]
}

// Config holds configuration for the embedding services.
type Config struct {
	// EmbeddingHost is the base URL for the document embedding API.
	// Example: "https://api.openai.com/v1"
	EmbeddingHost string `yaml:"embedding_host"`

	// EmbeddingModel is the model used for stored document vectors.
	// Example: "text-embedding-3-large"
	EmbeddingModel string `yaml:"embedding_model"`

	// EmbeddingDimensions is the vector size of EmbeddingModel and of the
	// target collection. Zero means "look up the model's native size".
	EmbeddingDimensions int `yaml:"embedding_dimensions"`

	// APIKey is the credential for the embedding API. Never read from the
	// config file.
	APIKey string `yaml:"-"`

	// EncoderHost is the base URL of the local sentence encoder used to
	// find chunk boundaries. Example: "http://localhost:11434"
	EncoderHost string `yaml:"encoder_host"`

	// EncoderModel is the local sentence encoder model.
	// Example: "all-minilm"
	EncoderModel string `yaml:"encoder_model"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithEmbeddingDimensions sets the expected embedding size.
func WithEmbeddingDimensions(dimensions int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingDimensions = dimensions
	}
}

// WithAPIKey sets the embedding service credential.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithEncoderHost sets the sentence encoder host URL.
func WithEncoderHost(host string) ConfigOption {
	return func(c *Config) {
		c.EncoderHost = host
	}
}

// WithEncoderModel sets the sentence encoder model.
func WithEncoderModel(model string) ConfigOption {
	return func(c *Config) {
		c.EncoderModel = model
	}
}

// DefaultConfig returns a Config targeting the OpenAI embedding API for
// documents and a local Ollama server for sentence encoding.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:       DefaultEmbeddingHost,
		EmbeddingModel:      DefaultEmbeddingModel,
		EmbeddingDimensions: DimensionsForModel(DefaultEmbeddingModel),
		EncoderHost:         DefaultEncoderHost,
		EncoderModel:        DefaultEncoderModel,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    WithEncoderHost("http://gpu-box:11434"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// The embedding host gets the /v1 suffix OpenAI-compatible APIs expect.
// The encoder host speaks the native Ollama API and only loses a trailing slash.
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	c.EncoderHost = strings.TrimSuffix(c.EncoderHost, "/")
	if c.EmbeddingDimensions == 0 {
		c.EmbeddingDimensions = DimensionsForModel(c.EmbeddingModel)
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
// The credential is not checked here; its absence is a run precondition.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.EmbeddingDimensions <= 0 {
		return errors.New("ai config: EmbeddingDimensions is required for unknown models")
	}
	if c.EncoderHost == "" {
		return errors.New("ai config: EncoderHost is required")
	}
	if c.EncoderModel == "" {
		return errors.New("ai config: EncoderModel is required")
	}
	return nil
}
