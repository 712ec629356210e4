package store

import (
	"context"

	"github.com/poiesic/vaultindex/core"
)

// Distance is the similarity metric a collection is created with.
type Distance string

const (
	DistanceCosine Distance = "cosine"
	DistanceDot    Distance = "dot"
)

// CollectionConfig describes a collection at creation time.
type CollectionConfig struct {
	Dimensions int
	Distance   Distance
}

// Match is an equality condition on a payload field.
type Match struct {
	Key   string
	Value string
}

// Filter selects points whose payload satisfies every condition in Must.
// An empty filter selects every point.
type Filter struct {
	Must []Match
}

// FieldEquals builds a filter with a single equality condition.
func FieldEquals(key, value string) *Filter {
	return &Filter{Must: []Match{{Key: key, Value: value}}}
}

// Matches reports whether payload satisfies the filter.
func (f *Filter) Matches(payload map[string]any) bool {
	if f == nil {
		return true
	}
	for _, m := range f.Must {
		if _, ok := payload[m.Key]; !ok || core.PayloadString(payload, m.Key) != m.Value {
			return false
		}
	}
	return true
}

// ScrollRequest pages through the points of a collection.
// Offset is the cursor returned by the previous page, empty for the first page.
type ScrollRequest struct {
	Filter      *Filter
	Offset      string
	Limit       int
	WithPayload bool
	WithVectors bool
}

// ScrollPage is one page of a scroll. NextOffset is empty when the scroll is exhausted.
type ScrollPage struct {
	Points     []core.IndexPoint
	NextOffset string
}

// Store is the vector store client used by ingestion.
// Implementations must be safe for concurrent use.
type Store interface {
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// CollectionExists reports whether the named collection exists.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// CreateCollection creates a collection. Returns ErrCollectionExists if it is already present.
	CreateCollection(ctx context.Context, name string, cfg CollectionConfig) error

	// CollectionInfo returns the config a collection was created with.
	// Returns ErrCollectionNotFound when the collection does not exist.
	CollectionInfo(ctx context.Context, name string) (*CollectionConfig, error)

	// DeleteCollection drops a collection and every point in it.
	// Deleting a missing collection is not an error.
	DeleteCollection(ctx context.Context, name string) error

	// Upsert inserts or replaces points as one batch.
	Upsert(ctx context.Context, collection string, points []core.IndexPoint) error

	// Delete removes points by id. Unknown ids are ignored.
	Delete(ctx context.Context, collection string, ids []string) error

	// Scroll returns one page of points matching the request's filter.
	// Returns ErrCollectionNotFound when the collection does not exist.
	Scroll(ctx context.Context, collection string, req ScrollRequest) (*ScrollPage, error)

	// Count returns the number of points matching filter.
	Count(ctx context.Context, collection string, filter *Filter) (uint64, error)

	// Close releases the client's resources.
	Close() error
}
