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


package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/vaultindex/core"
	"github.com/poiesic/vaultindex/store"
)

// Store implements store.Store on an embedded BadgerDB.
// Scroll order is lexical by point id.
type Store struct {
	backend *Backend
	logger  *slog.Logger
}

var _ store.Store = (*Store)(nil)

// NewStore opens (or creates) a store in dir.
func NewStore(dir string, logger *slog.Logger) (store.Store, error) {
	backend, err := OpenBackend(dir, false, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store at %s: %w", dir, err)
	}
	return newStore(backend), nil
}

func newStore(backend *Backend) *Store {
	return &Store{backend: backend, logger: backend.logger}
}

func (s *Store) Ping(ctx context.Context) error {
	if s.backend.IsClosed() {
		return store.ErrStoreClosed
	}
	return ctx.Err()
}

func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	if s.backend.IsClosed() {
		return false, store.ErrStoreClosed
	}
	var exists bool
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeCollectionKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		exists = err == nil
		return err
	}, false)
	return exists, err
}

func (s *Store) CreateCollection(ctx context.Context, name string, cfg store.CollectionConfig) error {
	if s.backend.IsClosed() {
		return store.ErrStoreClosed
	}
	if name == "" || strings.Contains(name, ":") {
		return fmt.Errorf("%w: invalid collection name %q", store.ErrInvalidQuery, name)
	}
	if cfg.Dimensions <= 0 {
		return fmt.Errorf("%w: dimensions must be positive", store.ErrInvalidQuery)
	}
	if cfg.Distance == "" {
		cfg.Distance = store.DistanceCosine
	}
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCollectionKey(name)
		_, err := tx.Get(key)
		if err == nil {
			return fmt.Errorf("%w: %s", store.ErrCollectionExists, name)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		rec := collectionRecord{Dimensions: cfg.Dimensions, Distance: string(cfg.Distance)}
		if err := tx.Set(key, marshalCollection(rec)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}
	s.logger.Info("collection created", "collection", name, "dimensions", cfg.Dimensions)
	return nil
}

func (s *Store) CollectionInfo(ctx context.Context, name string) (*store.CollectionConfig, error) {
	if s.backend.IsClosed() {
		return nil, store.ErrStoreClosed
	}
	var rec collectionRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		rec, err = s.collection(tx, name)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return &store.CollectionConfig{Dimensions: rec.Dimensions, Distance: store.Distance(rec.Distance)}, nil
}

func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	if s.backend.IsClosed() {
		return store.ErrStoreClosed
	}
	if err := s.backend.DeletePrefix(makePointPrefix(name)); err != nil {
		return err
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeCollectionKey(name)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// collection loads a collection's config inside tx.
func (s *Store) collection(tx *badger.Txn, name string) (collectionRecord, error) {
	item, err := tx.Get(makeCollectionKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return collectionRecord{}, fmt.Errorf("%w: %s", store.ErrCollectionNotFound, name)
	}
	if err != nil {
		return collectionRecord{}, err
	}
	var rec collectionRecord
	err = item.Value(func(val []byte) error {
		rec, err = unmarshalCollection(val)
		return err
	})
	return rec, err
}

func (s *Store) Upsert(ctx context.Context, collection string, points []core.IndexPoint) error {
	if s.backend.IsClosed() {
		return store.ErrStoreClosed
	}
	if len(points) == 0 {
		return nil
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		rec, err := s.collection(tx, collection)
		if err != nil {
			return err
		}
		for i := range points {
			if points[i].ID == "" {
				return fmt.Errorf("%w: %w", store.ErrInvalidQuery, core.ErrEmptyPointID)
			}
			if err := core.ValidateVector(points[i].Vector, rec.Dimensions); err != nil {
				return err
			}
			data, err := MarshalPoint(&points[i])
			if err != nil {
				return err
			}
			if err := tx.Set(makePointKey(collection, points[i].ID), data); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

func (s *Store) Delete(ctx context.Context, collection string, ids []string) error {
	if s.backend.IsClosed() {
		return store.ErrStoreClosed
	}
	if len(ids) == 0 {
		return nil
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := s.collection(tx, collection); err != nil {
			return err
		}
		for _, id := range ids {
			if err := tx.Delete(makePointKey(collection, id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

func (s *Store) Scroll(ctx context.Context, collection string, req store.ScrollRequest) (*store.ScrollPage, error) {
	if s.backend.IsClosed() {
		return nil, store.ErrStoreClosed
	}
	if req.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", store.ErrInvalidQuery)
	}

	page := &store.ScrollPage{}
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := s.collection(tx, collection); err != nil {
			return err
		}

		prefix := makePointPrefix(collection)
		start := prefix
		if req.Offset != "" {
			start = makePointKey(collection, req.Offset)
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(start); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var point *core.IndexPoint
			err := iter.Item().Value(func(val []byte) error {
				var err error
				point, err = UnmarshalPoint(val, req.WithVectors)
				return err
			})
			if err != nil {
				return err
			}
			if !req.Filter.Matches(point.Payload) {
				continue
			}
			if len(page.Points) == req.Limit {
				page.NextOffset = point.ID
				return nil
			}
			if !req.WithPayload {
				point.Payload = nil
			}
			page.Points = append(page.Points, *point)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *Store) Count(ctx context.Context, collection string, filter *store.Filter) (uint64, error) {
	if s.backend.IsClosed() {
		return 0, store.ErrStoreClosed
	}
	var count uint64
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := s.collection(tx, collection); err != nil {
			return err
		}
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePointPrefix(collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if filter == nil || len(filter.Must) == 0 {
				count++
				continue
			}
			matched := false
			err := iter.Item().Value(func(val []byte) error {
				point, err := UnmarshalPoint(val, false)
				if err != nil {
					return err
				}
				matched = filter.Matches(point.Payload)
				return nil
			})
			if err != nil {
				return err
			}
			if matched {
				count++
			}
		}
		return nil
	}, false)
	return count, err
}

func (s *Store) Close() error {
	if s.backend.IsClosed() {
		return nil
	}
	return s.backend.Close()
}
