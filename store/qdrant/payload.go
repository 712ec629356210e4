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


package qdrant

import (
	"github.com/poiesic/vaultindex/core"
	"github.com/qdrant/go-client/qdrant"
)

// ToPayload converts a point payload into Qdrant values.
func ToPayload(payload map[string]any) (map[string]*qdrant.Value, error) {
	return qdrant.TryValueMap(core.NormalizePayload(payload))
}

// FromPayload converts Qdrant values back into plain Go values.
// Integers come back as int64 and lists as []any.
func FromPayload(values map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = fromValue(v)
	}
	return out
}

func fromValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_StructValue:
		return FromPayload(kind.StructValue.GetFields())
	case *qdrant.Value_ListValue:
		items := kind.ListValue.GetValues()
		list := make([]any, len(items))
		for i, item := range items {
			list[i] = fromValue(item)
		}
		return list
	default:
		return nil
	}
}
