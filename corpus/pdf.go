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


package corpus

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor returns the plain text of each page of a PDF, in page order.
type PDFExtractor interface {
	ExtractPages(path string) ([]string, error)
}

// PlainTextExtractor extracts page text with github.com/ledongthuc/pdf.
type PlainTextExtractor struct{}

var _ PDFExtractor = PlainTextExtractor{}

// NewPDFExtractor returns the default PDF extractor.
func NewPDFExtractor() PDFExtractor {
	return PlainTextExtractor{}
}

// ExtractPages reads every page of the file at path.
// Pages without content are returned as empty strings.
func (PlainTextExtractor) ExtractPages(path string) (pages []string, err error) {
	// The reader panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("reading pdf %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	total := r.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("reading page %d of %s: %w", i, path, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
