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


// Package corpus finds and reads the documents of a vault.
//
// The Collector enumerates markdown notes and meeting transcripts (and,
// optionally, PDFs) under the configured roots. The Parser turns one file into
// a core.SourceDocument using a strategy chosen by extension:
//
//   - .md: YAML frontmatter is split off, #tags are extracted from the body
//     and merged with frontmatter tags, and dates fall back to the file mtime
//   - .pdf: page text is extracted, trimmed and joined with blank lines
//
// Both are read-only with respect to the vault.
package corpus
