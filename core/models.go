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
	"sort"

	"github.com/google/uuid"
)

// DocumentKind identifies which parsing strategy produced a SourceDocument.
type DocumentKind int

const (
	// DocumentKindNote is a markdown file outside the meetings root.
	DocumentKindNote DocumentKind = iota + 1
	// DocumentKindMeeting is a markdown file under the meetings root.
	DocumentKindMeeting
	// DocumentKindPDF is a PDF file.
	DocumentKindPDF
)

// String returns the payload representation of the kind.
func (k DocumentKind) String() string {
	switch k {
	case DocumentKindNote:
		return "note"
	case DocumentKindMeeting:
		return "meeting"
	case DocumentKindPDF:
		return "pdf"
	default:
		return "unknown"
	}
}

// SourceDocument is one parsed source file. It is rebuilt on every run.
type SourceDocument struct {
	Path     string // Vault-relative, slash separated
	AbsPath  string
	Kind     DocumentKind
	Content  string
	Tags     []string // Sorted, deduplicated
	Created  string   // YYYY-MM-DD
	Modified string   // YYYY-MM-DD
	Title    string
	Extra    map[string]any // Frontmatter fields not modeled above
}

// Metadata returns the payload fields describing the document.
// Frontmatter fields in Extra are included unless they collide with a
// modeled field, in which case the modeled value wins.
func (d *SourceDocument) Metadata() map[string]any {
	md := make(map[string]any, len(d.Extra)+7)
	for k, v := range d.Extra {
		md[k] = v
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	md[PayloadFilePath] = d.Path
	md[PayloadDocumentType] = d.Kind.String()
	md[PayloadTags] = tags
	md[PayloadTitle] = d.Title
	if d.Created != "" {
		md[PayloadCreated] = d.Created
	}
	if d.Modified != "" {
		md[PayloadModified] = d.Modified
	}
	return md
}

// SortedTags returns the union of the given tag sets, sorted.
func SortedTags(sets ...[]string) []string {
	seen := make(map[string]struct{})
	for _, set := range sets {
		for _, t := range set {
			if t == "" {
				continue
			}
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Chunk is a contiguous slice of one document's text.
type Chunk struct {
	Text  string
	Index int
}

// IndexPoint is the unit persisted in the vector store.
type IndexPoint struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// NewPointID returns a fresh opaque point identifier.
func NewPointID() string {
	return uuid.NewString()
}

// IngestionRun accumulates statistics for one orchestrator run.
type IngestionRun struct {
	FilesProcessed      int
	FilesSkipped        int
	ChunksCreated       int
	EmbeddingsGenerated int
	Errors              []string
}

// RecordError appends the error's message to the run's error list.
func (r *IngestionRun) RecordError(err error) {
	r.Errors = append(r.Errors, err.Error())
}
