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
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/vaultindex/config"
	"github.com/poiesic/vaultindex/core"
)

// dateLayout is the ISO calendar date used for created and modified.
const dateLayout = "2006-01-02"

// parseFunc is one document-kind strategy.
type parseFunc func(absPath, relPath string) (*core.SourceDocument, error)

// Parser turns files into SourceDocuments, dispatching on file extension.
type Parser struct {
	vault      string
	meetings   string
	tags       *TagExtractor
	pdf        PDFExtractor
	strategies map[string]parseFunc
	logger     *slog.Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithPDFExtractor sets the PDF text extractor. Without one, PDFs cannot be parsed.
func WithPDFExtractor(extractor PDFExtractor) ParserOption {
	return func(p *Parser) {
		p.pdf = extractor
	}
}

// WithParserLogger sets the logger.
func WithParserLogger(logger *slog.Logger) ParserOption {
	return func(p *Parser) {
		p.logger = logger
	}
}

// NewParser creates a Parser for the vault at root.
func NewParser(root string, cfg *config.Config, opts ...ParserOption) (*Parser, error) {
	tags, err := NewTagExtractor(cfg.Tags.TagRegex)
	if err != nil {
		return nil, err
	}
	p := &Parser{
		vault:    resolve(root),
		meetings: filepath.ToSlash(filepath.Clean(cfg.Vault.Folders.Meetings)),
		tags:     tags,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "parser")
	p.strategies = map[string]parseFunc{
		".md":  p.parseNote,
		".pdf": p.parsePDF,
	}
	return p, nil
}

// HasPDFExtractor reports whether PDFs can be parsed.
func (p *Parser) HasPDFExtractor() bool {
	return p.pdf != nil
}

// Parse reads the document at path using the strategy for its extension.
func (p *Parser) Parse(path string) (*core.SourceDocument, error) {
	strategy, ok := p.strategies[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDocument, path)
	}
	abs, rel, err := p.locate(path)
	if err != nil {
		return nil, err
	}
	doc, err := strategy(abs, rel)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("parsed document",
		"path", doc.Path,
		"kind", doc.Kind.String(),
		"tags", doc.Tags,
		"length", len(doc.Content))
	return doc, nil
}

// ParseNote parses a markdown note or meeting transcript.
func (p *Parser) ParseNote(path string) (*core.SourceDocument, error) {
	abs, rel, err := p.locate(path)
	if err != nil {
		return nil, err
	}
	return p.parseNote(abs, rel)
}

// ParsePDF parses a PDF document.
func (p *Parser) ParsePDF(path string) (*core.SourceDocument, error) {
	abs, rel, err := p.locate(path)
	if err != nil {
		return nil, err
	}
	return p.parsePDF(abs, rel)
}

func (p *Parser) locate(path string) (string, string, error) {
	abs := resolve(path)
	rel, err := filepath.Rel(p.vault, abs)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrOutsideVault, path)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", "", fmt.Errorf("%w: %s", ErrOutsideVault, path)
	}
	return abs, rel, nil
}

func (p *Parser) parseNote(absPath, relPath string) (*core.SourceDocument, error) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", absPath, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("failed to read file %s: %w", absPath, ErrInvalidEncoding)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", absPath, err)
	}
	fileDate := info.ModTime().Format(dateLayout)

	fm, body := SplitFrontmatter(string(data))

	bodyTags, err := p.tags.Extract(body)
	if err != nil {
		return nil, err
	}

	kind := core.DocumentKindNote
	if strings.HasPrefix(relPath, p.meetings+"/") {
		kind = core.DocumentKindMeeting
	}

	doc := &core.SourceDocument{
		Path:     relPath,
		AbsPath:  absPath,
		Kind:     kind,
		Content:  body,
		Tags:     core.SortedTags(frontmatterTags(fm), bodyTags),
		Created:  fileDate,
		Modified: fileDate,
		Title:    strings.TrimSuffix(filepath.Base(absPath), filepath.Ext(absPath)),
		Extra:    make(map[string]any, len(fm)),
	}

	for key, value := range fm {
		switch key {
		case core.PayloadTags, core.PayloadFilePath, core.PayloadDocumentType:
		case core.PayloadCreated:
			if s := scalarString(value); s != "" {
				doc.Created = s
			}
		case core.PayloadModified:
			if s := scalarString(value); s != "" {
				doc.Modified = s
			}
		case core.PayloadTitle:
			if s := scalarString(value); s != "" {
				doc.Title = s
			}
		default:
			doc.Extra[key] = value
		}
	}
	return doc, nil
}

func (p *Parser) parsePDF(absPath, relPath string) (*core.SourceDocument, error) {
	if p.pdf == nil {
		return nil, core.ErrPDFExtractorUnavailable
	}
	pages, err := p.pdf.ExtractPages(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF file %s: %w", absPath, err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", absPath, err)
	}

	text := make([]string, 0, len(pages))
	for _, page := range pages {
		if trimmed := strings.TrimSpace(page); trimmed != "" {
			text = append(text, trimmed)
		}
	}

	return &core.SourceDocument{
		Path:     relPath,
		AbsPath:  absPath,
		Kind:     core.DocumentKindPDF,
		Content:  strings.Join(text, "\n\n"),
		Modified: info.ModTime().Format(dateLayout),
		Title:    strings.TrimSuffix(filepath.Base(absPath), filepath.Ext(absPath)),
	}, nil
}
