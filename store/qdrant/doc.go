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


// Package qdrant implements store.Store against a Qdrant server over gRPC.
//
// Point ids are UUID strings. Payloads are normalised with
// core.NormalizePayload before conversion, so integers round-trip as int64
// and string slices come back as []any. Collection-level gRPC errors are
// mapped onto the store sentinels (NotFound becomes
// store.ErrCollectionNotFound).
package qdrant
