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


// Package chunker splits document text into semantically coherent chunks.
//
// Text is cut into sentences, each sentence is encoded by a small local model,
// and a new chunk starts wherever two neighbouring sentences are less similar
// than the threshold. Chunking never fails: when the encoder is missing or
// errors, the whole text becomes one chunk.
package chunker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/poiesic/vaultindex/ai"
)

// DefaultThreshold is the cosine similarity below which sentences are split.
const DefaultThreshold = 0.5

// Chunker groups sentences by similarity.
type Chunker struct {
	encoder   ai.Embedder
	threshold float64
	logger    *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithThreshold sets the split threshold. It must lie within [-1, 1].
func WithThreshold(threshold float64) Option {
	return func(c *Chunker) error {
		if threshold < -1 || threshold > 1 || math.IsNaN(threshold) {
			return fmt.Errorf("threshold must be within [-1, 1], got %v", threshold)
		}
		c.threshold = threshold
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) error {
		c.logger = logger
		return nil
	}
}

// New creates a Chunker. A nil encoder is allowed; every text then becomes a
// single chunk.
func New(encoder ai.Embedder, opts ...Option) (*Chunker, error) {
	c := &Chunker{
		encoder:   encoder,
		threshold: DefaultThreshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "chunker")
	return c, nil
}

// Chunk splits text into chunks in document order.
// Blank text yields no chunks; any other text yields at least one.
func (c *Chunker) Chunk(ctx context.Context, text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return []string{text}
	}

	if c.encoder == nil {
		c.logger.Warn("no sentence encoder configured, using whole text as one chunk")
		return []string{text}
	}

	vectors, err := c.encoder.EmbedTexts(ctx, sentences)
	if err != nil {
		c.logger.Warn("failed to encode sentences for chunking", "err", err)
		return []string{text}
	}
	if len(vectors) != len(sentences) {
		c.logger.Warn("sentence encoder returned wrong number of vectors",
			"sentences", len(sentences),
			"vectors", len(vectors))
		return []string{text}
	}

	var chunks []string
	current := []string{sentences[0]}
	for i := 1; i < len(sentences); i++ {
		// NaN never compares below the threshold, so degenerate vectors
		// keep their sentences together.
		if CosineSimilarity(vectors[i-1], vectors[i]) < c.threshold {
			chunks = appendRun(chunks, current)
			current = []string{sentences[i]}
			continue
		}
		current = append(current, sentences[i])
	}
	chunks = appendRun(chunks, current)

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

func appendRun(chunks, run []string) []string {
	joined := strings.Join(run, " ")
	if strings.TrimSpace(joined) == "" {
		return chunks
	}
	return append(chunks, joined)
}

// SplitSentences cuts text on ". ", trims each piece, drops empty pieces and
// terminates each remaining piece with a period.
func SplitSentences(text string) []string {
	parts := strings.Split(text, ". ")
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		sentences = append(sentences, trimmed+".")
	}
	return sentences
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Zero-length, zero-norm or mismatched vectors give NaN.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return math.NaN()
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return math.NaN()
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
