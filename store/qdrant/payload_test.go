package qdrant

import (
	"errors"
	"testing"

	"github.com/poiesic/vaultindex/core"
	"github.com/poiesic/vaultindex/store"
	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestPayloadConversion(t *testing.T) {
	payload := map[string]any{
		"text":          "hello",
		"chunk_index":   3,
		"tags":          []string{"a", "b"},
		"score":         float32(0.5),
		"draft":         true,
		"missing":       nil,
		"nested":        map[string]any{"k": "v"},
		"document_type": "note",
	}

	values, err := ToPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, int64(3), values["chunk_index"].GetIntegerValue())

	got := FromPayload(values)
	assert.Equal(t, map[string]any{
		"text":          "hello",
		"chunk_index":   int64(3),
		"tags":          []any{"a", "b"},
		"score":         float64(0.5),
		"draft":         true,
		"missing":       nil,
		"nested":        map[string]any{"k": "v"},
		"document_type": "note",
	}, got)
}

func TestToPayloadRejectsInvalidUTF8(t *testing.T) {
	_, err := ToPayload(map[string]any{"text": string([]byte{0xff})})
	assert.Error(t, err)
}

func TestToFilter(t *testing.T) {
	assert.Nil(t, toFilter(nil))
	assert.Nil(t, toFilter(&store.Filter{}))

	f := toFilter(store.FieldEquals("file_path", "20-Notes/a.md"))
	require.Len(t, f.GetMust(), 1)
	field := f.GetMust()[0].GetField()
	assert.Equal(t, "file_path", field.GetKey())
	assert.Equal(t, "20-Notes/a.md", field.GetMatch().GetKeyword())
}

func TestPointIDString(t *testing.T) {
	assert.Equal(t, "", pointIDString(nil))
	assert.Equal(t, "5f0c3b4e-8d1a-4c52-9f3e-2b7a6d1e0c11", pointIDString(qdrant.NewID("5f0c3b4e-8d1a-4c52-9f3e-2b7a6d1e0c11")))
	assert.Equal(t, "42", pointIDString(qdrant.NewIDNum(42)))
}

func TestFromDistance(t *testing.T) {
	assert.Equal(t, store.DistanceDot, fromDistance(qdrant.Distance_Dot))
	assert.Equal(t, store.DistanceCosine, fromDistance(qdrant.Distance_Cosine))
	assert.Equal(t, store.DistanceCosine, fromDistance(toDistance(store.DistanceCosine)))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", status.Error(codes.NotFound, "no collection"), store.ErrCollectionNotFound},
		{"already exists", status.Error(codes.AlreadyExists, "dup"), store.ErrCollectionExists},
		{"invalid argument", status.Error(codes.InvalidArgument, "bad"), store.ErrInvalidQuery},
		{"vector size", status.Error(codes.InvalidArgument, "Wrong input: Vector dimension error: expected dim: 8, got 4"), core.ErrDimensionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err), tt.want)
		})
	}

	assert.NoError(t, mapError(nil))
	other := errors.New("boom")
	assert.Equal(t, other, mapError(other))
	unavailable := status.Error(codes.Unavailable, "down")
	assert.Equal(t, unavailable, mapError(unavailable))
}
