package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/vaultindex/core"
	"github.com/poiesic/vaultindex/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func point(id, path string, index int) core.IndexPoint {
	return core.IndexPoint{
		ID:     id,
		Vector: []float32{1, 0, 0},
		Payload: map[string]any{
			core.PayloadFilePath:   path,
			core.PayloadChunkIndex: index,
			core.PayloadModified:   "2024-01-01",
		},
	}
}

func TestStore_Collections(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	exists, err := s.CollectionExists(ctx, "work")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.CreateCollection(ctx, "work", store.CollectionConfig{Dimensions: 3}))
	exists, err = s.CollectionExists(ctx, "work")
	require.NoError(t, err)
	assert.True(t, exists)

	err = s.CreateCollection(ctx, "work", store.CollectionConfig{Dimensions: 3})
	assert.ErrorIs(t, err, store.ErrCollectionExists)

	require.NoError(t, s.DeleteCollection(ctx, "work"))
	exists, err = s.CollectionExists(ctx, "work")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.DeleteCollection(ctx, "never-existed"))
}

func TestStore_CollectionInfo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CollectionInfo(ctx, "work")
	assert.ErrorIs(t, err, store.ErrCollectionNotFound)

	require.NoError(t, s.CreateCollection(ctx, "work", store.CollectionConfig{Dimensions: 3}))
	info, err := s.CollectionInfo(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, &store.CollectionConfig{Dimensions: 3, Distance: store.DistanceCosine}, info)
}

func TestStore_CreateCollectionValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tests := []struct {
		name string
		coll string
		cfg  store.CollectionConfig
	}{
		{"empty name", "", store.CollectionConfig{Dimensions: 3}},
		{"colon in name", "a:b", store.CollectionConfig{Dimensions: 3}},
		{"zero dimensions", "work", store.CollectionConfig{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.CreateCollection(ctx, tt.coll, tt.cfg)
			assert.ErrorIs(t, err, store.ErrInvalidQuery)
		})
	}
}

func TestStore_UpsertScrollDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateCollection(ctx, "work", store.CollectionConfig{Dimensions: 3}))

	require.NoError(t, s.Upsert(ctx, "work", []core.IndexPoint{
		point("a1", "notes/a.md", 0),
		point("a2", "notes/a.md", 1),
		point("b1", "notes/b.md", 0),
	}))

	page, err := s.Scroll(ctx, "work", store.ScrollRequest{
		Filter:      store.FieldEquals(core.PayloadFilePath, "notes/a.md"),
		Limit:       10,
		WithPayload: true,
	})
	require.NoError(t, err)
	require.Len(t, page.Points, 2)
	assert.Equal(t, "a1", page.Points[0].ID)
	assert.Equal(t, "a2", page.Points[1].ID)
	assert.Equal(t, "2024-01-01", page.Points[0].Payload[core.PayloadModified])
	assert.Nil(t, page.Points[0].Vector)
	assert.Empty(t, page.NextOffset)

	count, err := s.Count(ctx, "work", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	require.NoError(t, s.Delete(ctx, "work", []string{"a1", "a2", "unknown"}))
	count, err = s.Count(ctx, "work", store.FieldEquals(core.PayloadFilePath, "notes/a.md"))
	require.NoError(t, err)
	assert.Zero(t, count)
	count, err = s.Count(ctx, "work", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestStore_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateCollection(ctx, "work", store.CollectionConfig{Dimensions: 3}))

	p := point("a1", "notes/a.md", 0)
	require.NoError(t, s.Upsert(ctx, "work", []core.IndexPoint{p}))
	p.Payload[core.PayloadModified] = "2024-02-02"
	p.Vector = []float32{0, 1, 0}
	require.NoError(t, s.Upsert(ctx, "work", []core.IndexPoint{p}))

	page, err := s.Scroll(ctx, "work", store.ScrollRequest{Limit: 10, WithPayload: true, WithVectors: true})
	require.NoError(t, err)
	require.Len(t, page.Points, 1)
	assert.Equal(t, "2024-02-02", page.Points[0].Payload[core.PayloadModified])
	assert.Equal(t, []float32{0, 1, 0}, page.Points[0].Vector)
}

func TestStore_ScrollPagination(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateCollection(ctx, "work", store.CollectionConfig{Dimensions: 3}))

	var points []core.IndexPoint
	for i := 0; i < 25; i++ {
		points = append(points, point(fmt.Sprintf("p%02d", i), "big.md", i))
		points = append(points, point(fmt.Sprintf("q%02d", i), "other.md", i))
	}
	require.NoError(t, s.Upsert(ctx, "work", points))

	req := store.ScrollRequest{Filter: store.FieldEquals(core.PayloadFilePath, "big.md"), Limit: 10}
	var ids []string
	pages := 0
	for {
		page, err := s.Scroll(ctx, "work", req)
		require.NoError(t, err)
		pages++
		for _, p := range page.Points {
			ids = append(ids, p.ID)
		}
		if page.NextOffset == "" {
			break
		}
		req.Offset = page.NextOffset
	}
	assert.Equal(t, 3, pages)
	require.Len(t, ids, 25)
	assert.Equal(t, "p00", ids[0])
	assert.Equal(t, "p24", ids[24])

	all, err := store.ScrollAll(ctx, s, "work", store.ScrollRequest{Limit: 7})
	require.NoError(t, err)
	assert.Len(t, all, 50)
}

func TestStore_MissingCollection(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Scroll(ctx, "nope", store.ScrollRequest{Limit: 1})
	assert.ErrorIs(t, err, store.ErrCollectionNotFound)

	err = s.Upsert(ctx, "nope", []core.IndexPoint{point("a", "x.md", 0)})
	assert.ErrorIs(t, err, store.ErrCollectionNotFound)

	err = s.Delete(ctx, "nope", []string{"a"})
	assert.ErrorIs(t, err, store.ErrCollectionNotFound)

	_, err = s.Count(ctx, "nope", nil)
	assert.ErrorIs(t, err, store.ErrCollectionNotFound)
}

func TestStore_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateCollection(ctx, "work", store.CollectionConfig{Dimensions: 4}))

	err := s.Upsert(ctx, "work", []core.IndexPoint{point("a", "x.md", 0)})
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)

	count, err := s.Count(ctx, "work", nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_DeleteCollectionDropsPoints(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateCollection(ctx, "work", store.CollectionConfig{Dimensions: 3}))
	require.NoError(t, s.Upsert(ctx, "work", []core.IndexPoint{point("a", "x.md", 0)}))

	require.NoError(t, store.EnsureCollection(ctx, s, "work", store.CollectionConfig{Dimensions: 3}, true))
	count, err := s.Count(ctx, "work", nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_Closed(t *testing.T) {
	s, err := NewMemoryStore()
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Ping(context.Background()), store.ErrStoreClosed)
	_, err = s.Scroll(context.Background(), "work", store.ScrollRequest{Limit: 1})
	assert.ErrorIs(t, err, store.ErrStoreClosed)
}

func TestNewStore_Persists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.CreateCollection(ctx, "work", store.CollectionConfig{Dimensions: 3}))
	require.NoError(t, s.Upsert(ctx, "work", []core.IndexPoint{point("a", "x.md", 0)}))
	require.NoError(t, s.Close())

	s, err = NewStore(dir, nil)
	require.NoError(t, err)
	defer s.Close()
	count, err := s.Count(ctx, "work", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}
