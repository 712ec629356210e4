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


package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiesic/vaultindex/core"
)

// EnsureCollection makes sure the named collection exists with cfg.
// When recreate is true any existing collection is dropped first.
func EnsureCollection(ctx context.Context, s Store, name string, cfg CollectionConfig, recreate bool) error {
	if cfg.Dimensions <= 0 {
		return fmt.Errorf("%w: dimensions must be positive, got %d", ErrInvalidQuery, cfg.Dimensions)
	}
	if cfg.Distance == "" {
		cfg.Distance = DistanceCosine
	}
	if recreate {
		if err := s.DeleteCollection(ctx, name); err != nil {
			return fmt.Errorf("failed to delete collection %s: %w", name, err)
		}
	} else {
		exists, err := s.CollectionExists(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to check collection %s: %w", name, err)
		}
		if exists {
			return CheckDimensions(ctx, s, name, cfg.Dimensions)
		}
	}
	if err := s.CreateCollection(ctx, name, cfg); err != nil && !errors.Is(err, ErrCollectionExists) {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

// CheckDimensions fails with core.ErrDimensionMismatch when the named
// collection exists with a vector size other than dimensions. A missing
// collection passes.
func CheckDimensions(ctx context.Context, s Store, name string, dimensions int) error {
	info, err := s.CollectionInfo(ctx, name)
	if errors.Is(err, ErrCollectionNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read collection %s: %w", name, err)
	}
	if info.Dimensions != dimensions {
		return fmt.Errorf("%w: collection %s holds %d-dimensional vectors, embedder produces %d",
			core.ErrDimensionMismatch, name, info.Dimensions, dimensions)
	}
	return nil
}

// DefaultScrollLimit is the page size ScrollAll uses when the request sets none.
const DefaultScrollLimit = 256

// ScrollAll follows the scroll cursor until exhaustion and returns every matching point.
func ScrollAll(ctx context.Context, s Store, collection string, req ScrollRequest) ([]core.IndexPoint, error) {
	if req.Limit <= 0 {
		req.Limit = DefaultScrollLimit
	}
	var all []core.IndexPoint
	for {
		page, err := s.Scroll(ctx, collection, req)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Points...)
		if page.NextOffset == "" || len(page.Points) == 0 {
			return all, nil
		}
		req.Offset = page.NextOffset
	}
}
