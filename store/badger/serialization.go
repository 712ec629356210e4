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
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/vaultindex/core"
	"github.com/poiesic/vaultindex/store"
)

// collectionRecord is the stored form of a collection's config.
type collectionRecord struct {
	Dimensions int
	Distance   string
}

// marshalCollection layout: varint dimensions, string distance.
func marshalCollection(rec collectionRecord) []byte {
	buf := make([]byte, varint.Int.Size(rec.Dimensions)+ord.String.Size(rec.Distance))
	n := varint.Int.Marshal(rec.Dimensions, buf)
	ord.String.Marshal(rec.Distance, buf[n:])
	return buf
}

func unmarshalCollection(data []byte) (collectionRecord, error) {
	var rec collectionRecord
	dims, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return rec, fmt.Errorf("%w: collection dimensions: %w", store.ErrSerializationFailed, err)
	}
	distance, _, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return rec, fmt.Errorf("%w: collection distance: %w", store.ErrSerializationFailed, err)
	}
	rec.Dimensions = dims
	rec.Distance = distance
	return rec, nil
}

// MarshalPoint serializes a point.
// Layout: string id, varint vector length, raw float32 components, string payload JSON.
func MarshalPoint(point *core.IndexPoint) ([]byte, error) {
	payload, err := json.Marshal(core.NormalizePayload(point.Payload))
	if err != nil {
		return nil, fmt.Errorf("%w: point %s payload: %w", store.ErrSerializationFailed, point.ID, err)
	}
	encoded := string(payload)

	size := ord.String.Size(point.ID) + varint.Int.Size(len(point.Vector)) + ord.String.Size(encoded)
	for _, f := range point.Vector {
		size += raw.Float32.Size(f)
	}

	buf := make([]byte, size)
	n := ord.String.Marshal(point.ID, buf)
	n += varint.Int.Marshal(len(point.Vector), buf[n:])
	for _, f := range point.Vector {
		n += raw.Float32.Marshal(f, buf[n:])
	}
	ord.String.Marshal(encoded, buf[n:])
	return buf, nil
}

// UnmarshalPoint deserializes a point. When withVector is false the vector is skipped.
func UnmarshalPoint(data []byte, withVector bool) (*core.IndexPoint, error) {
	id, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: point id: %w", store.ErrSerializationFailed, err)
	}
	offset := n

	length, n, err := varint.Int.Unmarshal(data[offset:])
	if err != nil {
		return nil, fmt.Errorf("%w: point %s vector length: %w", store.ErrSerializationFailed, id, err)
	}
	offset += n
	if length < 0 || length*4 > len(data)-offset {
		return nil, fmt.Errorf("%w: point %s vector of %d components", store.ErrTruncatedData, id, length)
	}

	var vector []float32
	if withVector {
		vector = make([]float32, length)
		for i := range vector {
			vector[i], n, err = raw.Float32.Unmarshal(data[offset:])
			if err != nil {
				return nil, fmt.Errorf("%w: point %s vector: %w", store.ErrSerializationFailed, id, err)
			}
			offset += n
		}
	} else {
		offset += length * 4
	}

	encoded, _, err := ord.String.Unmarshal(data[offset:])
	if err != nil {
		return nil, fmt.Errorf("%w: point %s payload: %w", store.ErrSerializationFailed, id, err)
	}
	payload, err := decodePayload(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: point %s payload: %w", store.ErrSerializationFailed, id, err)
	}

	return &core.IndexPoint{ID: id, Vector: vector, Payload: payload}, nil
}

// decodePayload restores integers as int64 and other numbers as float64.
func decodePayload(encoded string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(encoded)))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	for k, v := range payload {
		payload[k] = restoreNumbers(v)
	}
	return payload, nil
}

func restoreNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case []any:
		for i := range val {
			val[i] = restoreNumbers(val[i])
		}
		return val
	case map[string]any:
		for k := range val {
			val[k] = restoreNumbers(val[k])
		}
		return val
	default:
		return val
	}
}
