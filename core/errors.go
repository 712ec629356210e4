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
	"errors"
	"fmt"
)

// Precondition failures. Fatal; checked before any document is touched.
var (
	// ErrMissingCredential indicates the embedding credential is absent.
	ErrMissingCredential = errors.New("embedding credential is not set")

	// ErrStoreUnreachable indicates the vector store cannot be contacted.
	ErrStoreUnreachable = errors.New("vector store is not reachable")

	// ErrPDFExtractorUnavailable indicates PDFs were requested without a text extractor.
	ErrPDFExtractorUnavailable = errors.New("pdf text extraction is unavailable")
)

// Store control failures. Fatal for the lifecycle operation attempted.
var (
	// ErrRuntimeUnavailable indicates the process runtime is not installed or not responding.
	ErrRuntimeUnavailable = errors.New("process runtime is unavailable")

	// ErrPortConflict indicates a requested port is bound by something else.
	ErrPortConflict = errors.New("port is already in use")

	// ErrControlTimeout indicates a control call exceeded its time box.
	ErrControlTimeout = errors.New("control command timed out")

	// ErrControlFailed indicates a control call failed for any other reason.
	ErrControlFailed = errors.New("control command failed")
)

// Domain validation errors
var (
	// ErrDimensionMismatch indicates a vector's length differs from the collection's size.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidPoint indicates an IndexPoint failed validation.
	ErrInvalidPoint = errors.New("invalid index point")

	// ErrEmptyPointID indicates an IndexPoint has no id.
	ErrEmptyPointID = errors.New("point id cannot be empty")

	// ErrMissingFilePath indicates a payload lacks the file_path field.
	ErrMissingFilePath = errors.New("payload file_path cannot be empty")
)

// PreconditionError reports a fatal precondition failure.
type PreconditionError struct {
	Err    error
	Detail string
}

func (e *PreconditionError) Error() string {
	if e.Detail == "" {
		return "precondition failed: " + e.Err.Error()
	}
	return fmt.Sprintf("precondition failed: %s: %s", e.Err, e.Detail)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// NewPreconditionError wraps err with an optional detail message.
func NewPreconditionError(err error, detail string) *PreconditionError {
	return &PreconditionError{Err: err, Detail: detail}
}

// StoreControlError reports a failed lifecycle control operation.
// Kind is one of the store control sentinels above.
type StoreControlError struct {
	Op   string
	Kind error
	Err  error
}

func (e *StoreControlError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("store %s: %s: %s", e.Op, e.Kind, e.Err)
}

func (e *StoreControlError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ChunkEmbeddingError reports one chunk whose embedding could not be generated.
type ChunkEmbeddingError struct {
	Path  string
	Index int
	Err   error
}

func (e *ChunkEmbeddingError) Error() string {
	return fmt.Sprintf("failed to process chunk %d of %s: %s", e.Index, e.Path, e.Err)
}

func (e *ChunkEmbeddingError) Unwrap() error { return e.Err }

// DocumentProcessingError reports a failure while handling one file.
type DocumentProcessingError struct {
	Path string
	Err  error
}

func (e *DocumentProcessingError) Error() string {
	return fmt.Sprintf("failed to process %s: %s", e.Path, e.Err)
}

func (e *DocumentProcessingError) Unwrap() error { return e.Err }
