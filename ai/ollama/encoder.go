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


// Package ollama provides the local sentence encoder used to place chunk
// boundaries. It talks to an Ollama server through langchaingo.
package ollama

import (
	"context"
	"log/slog"

	"github.com/poiesic/vaultindex/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Encoder implements ai.Embedder on top of a local Ollama model.
type Encoder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

var _ ai.Embedder = (*Encoder)(nil)

// NewEncoder creates a sentence encoder from the encoder fields of config.
func NewEncoder(config *ai.Config) (ai.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	llm, err := ollama.New(
		ollama.WithServerURL(config.EncoderHost),
		ollama.WithModel(config.EncoderModel),
	)
	if err != nil {
		return nil, err
	}

	// Sentences are short; batching them all in one request is fine.
	embedder, err := embeddings.NewEmbedder(llm, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Encoder{
		embedder: embedder,
		logger: slog.Default().With(
			"component", "ollama-encoder",
			"model", config.EncoderModel,
		),
	}, nil
}

// EmbedText encodes a single sentence.
func (e *Encoder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return []float32{}, nil
	}
	return vectors[0], nil
}

// EmbedTexts encodes sentences in one batch, preserving order.
func (e *Encoder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("encoding sentences", "count", len(texts))
	return e.embedder.EmbedDocuments(ctx, texts)
}
