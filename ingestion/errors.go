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

import "errors"

var (
	// ErrCollectorRequired is returned when a document collector is not provided.
	ErrCollectorRequired = errors.New("document collector required")

	// ErrParserRequired is returned when a document parser is not provided.
	ErrParserRequired = errors.New("document parser required")

	// ErrChunkerRequired is returned when a chunker is not provided.
	ErrChunkerRequired = errors.New("chunker required")

	// ErrEmbedderRequired is returned when an embedding generator is not provided.
	ErrEmbedderRequired = errors.New("embedding generator required")

	// ErrStoreRequired is returned when a vector store is not provided.
	ErrStoreRequired = errors.New("vector store required")

	// ErrDimensionsRequired is returned when the embedding size is unknown.
	ErrDimensionsRequired = errors.New("embedding dimensions must be positive")

	// ErrCollectionRequired is returned when a run names no collection.
	ErrCollectionRequired = errors.New("collection name required")
)
