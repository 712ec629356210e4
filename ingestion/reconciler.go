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


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/vaultindex/core"
	"github.com/poiesic/vaultindex/store"
)

// DefaultPageSize is the number of points fetched per reconciliation page.
const DefaultPageSize = 1000

// Reconciler decides whether a document must be (re)ingested by comparing it
// with the points already stored for its path.
type Reconciler struct {
	store    store.Store
	pageSize int
	logger   *slog.Logger
}

// NewReconciler creates a Reconciler. A non-positive pageSize selects DefaultPageSize.
func NewReconciler(s store.Store, pageSize int, logger *slog.Logger) (*Reconciler, error) {
	if s == nil {
		return nil, ErrStoreRequired
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		store:    s,
		pageSize: pageSize,
		logger:   logger.With("component", "reconciler"),
	}, nil
}

// NeedsIngestion reports whether filePath must be ingested and returns the ids
// of every point currently stored for it.
//
// The document is unchanged only when stored points exist, the first one's
// modified value equals currentModified, and currentModified is non-empty.
// A missing collection means everything needs ingestion.
func (r *Reconciler) NeedsIngestion(ctx context.Context, collection, filePath, currentModified string) (bool, []string, error) {
	req := store.ScrollRequest{
		Filter:      store.FieldEquals(core.PayloadFilePath, filePath),
		Limit:       r.pageSize,
		WithPayload: true,
	}

	var (
		ids            []string
		storedModified string
		pages          int
	)
	for {
		page, err := r.store.Scroll(ctx, collection, req)
		if errors.Is(err, store.ErrCollectionNotFound) {
			return true, nil, nil
		}
		if err != nil {
			return false, nil, fmt.Errorf("failed to query points for %s: %w", filePath, err)
		}
		if pages == 0 && len(page.Points) > 0 {
			storedModified = core.PayloadString(page.Points[0].Payload, core.PayloadModified)
		}
		pages++
		for _, p := range page.Points {
			ids = append(ids, p.ID)
		}
		if page.NextOffset == "" || len(page.Points) == 0 {
			break
		}
		req.Offset = page.NextOffset
	}

	if len(ids) == 0 {
		return true, nil, nil
	}
	if currentModified != "" && storedModified == currentModified {
		return false, ids, nil
	}
	r.logger.Debug("document changed",
		"file_path", filePath,
		"stored_modified", storedModified,
		"current_modified", currentModified,
		"stale_points", len(ids),
		"pages", pages)
	return true, ids, nil
}
