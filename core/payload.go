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


package core

import (
	"fmt"
	"time"
)

// Payload field names written to every point.
const (
	PayloadText         = "text"
	PayloadChunkIndex   = "chunk_index"
	PayloadFilePath     = "file_path"
	PayloadDocumentType = "document_type"
	PayloadTags         = "tags"
	PayloadCreated      = "created"
	PayloadModified     = "modified"
	PayloadTitle        = "title"
)

// BuildPayload assembles the payload for one chunk of a document.
// Document metadata is applied after the chunk fields and wins on collision.
func BuildPayload(chunk Chunk, doc *SourceDocument) map[string]any {
	payload := map[string]any{
		PayloadText:       chunk.Text,
		PayloadChunkIndex: int64(chunk.Index),
	}
	for k, v := range doc.Metadata() {
		payload[k] = v
	}
	return NormalizePayload(payload)
}

// NormalizePayload converts payload values into the JSON-like set of types
// every store backend accepts: string, int64, float64, bool, nil, []any and
// map[string]any.
func NormalizePayload(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = NormalizeValue(v)
	}
	return out
}

// NormalizeValue converts a single payload value. Dates without a clock
// component become YYYY-MM-DD strings.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case nil, string, bool, int64, float64:
		return val
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return int64(val)
	case float32:
		return float64(val)
	case time.Time:
		return FormatDate(val)
	case []string:
		list := make([]any, len(val))
		for i, s := range val {
			list[i] = s
		}
		return list
	case []any:
		list := make([]any, len(val))
		for i, item := range val {
			list[i] = NormalizeValue(item)
		}
		return list
	case map[string]any:
		return NormalizePayload(val)
	case map[any]any:
		m := make(map[string]any, len(val))
		for mk, mv := range val {
			m[fmt.Sprint(mk)] = NormalizeValue(mv)
		}
		return m
	default:
		return fmt.Sprint(val)
	}
}

// FormatDate renders t as YYYY-MM-DD when it has no clock component,
// otherwise as RFC 3339.
func FormatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

// PayloadString returns the payload value under key as a string.
// Missing or nil values yield "".
func PayloadString(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
