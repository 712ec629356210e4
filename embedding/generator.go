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


// Package embedding turns chunk text into document vectors with retries,
// optional rate limiting and a dimension check against the collection.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/vaultindex/ai"
	"github.com/poiesic/vaultindex/core"
	"golang.org/x/time/rate"
)

// Generator embeds single chunks through an ai.Embedder.
type Generator struct {
	embedder   ai.Embedder
	policy     RetryPolicy
	dimensions int
	limiter    *rate.Limiter
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator) error

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(g *Generator) error {
		if policy.MaxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		g.policy = policy
		return nil
	}
}

// WithDimensions sets the vector size every embedding must have.
// Zero disables the check.
func WithDimensions(dimensions int) Option {
	return func(g *Generator) error {
		if dimensions < 0 {
			return fmt.Errorf("dimensions must not be negative, got %d", dimensions)
		}
		g.dimensions = dimensions
		return nil
	}
}

// WithRateLimit throttles embedding requests to rps with the given burst.
// A non-positive rps leaves requests unthrottled.
func WithRateLimit(rps float64, burst int) Option {
	return func(g *Generator) error {
		if rps <= 0 {
			g.limiter = nil
			return nil
		}
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		return nil
	}
}

// WithLimiter installs a caller-owned limiter, shared across generators.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(g *Generator) error {
		g.limiter = limiter
		return nil
	}
}

// WithTimeout bounds each embedding request. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(g *Generator) error {
		if timeout < 0 {
			return fmt.Errorf("timeout must not be negative, got %s", timeout)
		}
		g.timeout = timeout
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		g.logger = logger
		return nil
	}
}

// NewGenerator creates a Generator around embedder.
func NewGenerator(embedder ai.Embedder, opts ...Option) (*Generator, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	g := &Generator{
		embedder: embedder,
		policy:   DefaultRetryPolicy(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	g.logger = g.logger.With("component", "embedding-generator")
	return g, nil
}

// Dimensions returns the enforced vector size, or 0 when unchecked.
func (g *Generator) Dimensions() int {
	return g.dimensions
}

// Embed returns the vector for text.
//
// Transient failures are retried per the policy. Exhaustion returns
// ErrEmbeddingFailed wrapping the last failure. A vector of the wrong size
// returns core.ErrDimensionMismatch at once.
func (g *Generator) Embed(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := g.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return Permanent(err)
			}
		}

		callCtx := ctx
		if g.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}

		v, err := g.embedder.EmbedText(callCtx, text)
		if err != nil {
			g.logger.Debug("embedding attempt failed", "attempt", attempt, "err", err)
			return err
		}
		if len(v) == 0 {
			return ErrEmptyEmbedding
		}
		if err := core.ValidateVector(v, g.dimensions); err != nil {
			return Permanent(err)
		}
		vector = v
		return nil
	})
	if err == nil {
		return vector, nil
	}

	if errors.Is(err, core.ErrDimensionMismatch) {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrEmbeddingFailed, g.policy.MaxAttempts, err)
}
