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


// Package store defines the vector store client used by ingestion.
//
// A Store holds named collections of points. Each point carries an id, a
// vector and a flat payload. Ingestion only needs equality filters on payload
// fields, cursor paging, batch upsert and delete by id, so the interface is
// limited to those.
//
// Two implementations exist:
//
//   - store/qdrant talks to a Qdrant server over gRPC
//   - store/badger keeps collections in an embedded BadgerDB, used for
//     tests and for running without a server
//
// Constructors in both packages return the Store interface.
package store
