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

	"github.com/dlclark/regexp2"
	"github.com/poiesic/vaultindex/core"
)

var markdownLink = regexp2.MustCompile(`\[([^\]]+)\]\(([^\)]+)\)`, regexp2.None)

// TagExtractor finds #tags in markdown bodies.
//
// Matches are dropped when they sit inside a fenced code block, inline code,
// an HTML comment, a markdown link or a double-quoted string. All positions
// are rune offsets, which is what regexp2 reports.
type TagExtractor struct {
	re *regexp2.Regexp
}

// NewTagExtractor compiles pattern. The first capture group is the tag name.
func NewTagExtractor(pattern string) (*TagExtractor, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compiling tag pattern: %w", err)
	}
	return &TagExtractor{re: re}, nil
}

// Extract returns the sorted, deduplicated tags found in body.
func (t *TagExtractor) Extract(body string) ([]string, error) {
	runes := []rune(body)

	var tags []string
	m, err := t.re.FindStringMatch(body)
	for m != nil && err == nil {
		start, end := m.Index, m.Index+m.Length
		if !ignoredContext(runes, start, end) {
			if g := m.GroupByNumber(1); g != nil && g.Length > 0 {
				tags = append(tags, g.String())
			}
		}
		m, err = t.re.FindNextMatch(m)
	}
	if err != nil {
		return nil, fmt.Errorf("matching tags: %w", err)
	}
	return core.SortedTags(tags), nil
}

func ignoredContext(body []rune, start, end int) bool {
	return inCodeBlock(body, start) ||
		inInlineCode(body, start, end) ||
		inHTMLComment(body, start) ||
		inMarkdownLink(body, start) ||
		inQuotedString(body, start, end)
}

// inCodeBlock reports an odd number of line-initial ``` fences before pos.
func inCodeBlock(body []rune, pos int) bool {
	fences := 0
	for i := 0; i+3 <= pos; i++ {
		if (i == 0 || body[i-1] == '\n') && hasPrefixAt(body, i, "```") {
			fences++
		}
	}
	return fences%2 == 1
}

// inInlineCode reports an odd number of backticks before the tag on its line
// and at least one after it.
func inInlineCode(body []rune, start, end int) bool {
	lineStart, lineEnd := lineBounds(body, start, end)
	before := countRune(body[lineStart:start], '`')
	after := countRune(body[start:lineEnd], '`')
	return before%2 == 1 && after > 0
}

// inHTMLComment reports whether the last "<!--" before pos is still open at pos.
func inHTMLComment(body []rune, pos int) bool {
	open := lastIndexBefore(body, "<!--", pos)
	if open == -1 {
		return false
	}
	closing := indexFrom(body, "-->", open)
	return closing == -1 || closing > pos
}

// inMarkdownLink reports whether pos falls inside a [text](url) span on its line.
func inMarkdownLink(body []rune, pos int) bool {
	lineStart, lineEnd := lineBounds(body, pos, pos)
	line := string(body[lineStart:lineEnd])
	offset := pos - lineStart

	m, err := markdownLink.FindStringMatch(line)
	for m != nil && err == nil {
		if m.Index <= offset && offset < m.Index+m.Length {
			return true
		}
		m, err = markdownLink.FindNextMatch(m)
	}
	return false
}

// inQuotedString reports an odd number of double quotes before the tag on its
// line and at least one after its end.
func inQuotedString(body []rune, start, end int) bool {
	lineStart, lineEnd := lineBounds(body, start, end)
	before, after := 0, 0
	for i := lineStart; i < lineEnd; i++ {
		if body[i] != '"' {
			continue
		}
		switch {
		case i < start:
			before++
		case i > end:
			after++
		}
	}
	return before%2 == 1 && after > 0
}

// lineBounds returns the start of the line holding start and the end of the
// line holding end.
func lineBounds(body []rune, start, end int) (int, int) {
	lineStart := 0
	for i := start - 1; i >= 0; i-- {
		if body[i] == '\n' {
			lineStart = i + 1
			break
		}
	}
	lineEnd := len(body)
	for i := end; i < len(body); i++ {
		if body[i] == '\n' {
			lineEnd = i
			break
		}
	}
	return lineStart, lineEnd
}

func hasPrefixAt(body []rune, i int, prefix string) bool {
	p := []rune(prefix)
	if i+len(p) > len(body) {
		return false
	}
	for j, r := range p {
		if body[i+j] != r {
			return false
		}
	}
	return true
}

// lastIndexBefore finds the last occurrence of sub that ends at or before pos.
func lastIndexBefore(body []rune, sub string, pos int) int {
	n := len([]rune(sub))
	for i := pos - n; i >= 0; i-- {
		if hasPrefixAt(body, i, sub) {
			return i
		}
	}
	return -1
}

func indexFrom(body []rune, sub string, from int) int {
	for i := from; i < len(body); i++ {
		if hasPrefixAt(body, i, sub) {
			return i
		}
	}
	return -1
}

func countRune(s []rune, r rune) int {
	n := 0
	for _, c := range s {
		if c == r {
			n++
		}
	}
	return n
}
