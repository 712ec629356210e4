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
	"strings"
	"time"

	"github.com/poiesic/vaultindex/core"
	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// SplitFrontmatter separates YAML frontmatter from the markdown body.
//
// Text starting with "---" is split on the first two following delimiters.
// When the YAML is malformed, or is not a mapping, the text is returned
// whole with no frontmatter. Empty frontmatter yields a nil map and the body.
func SplitFrontmatter(text string) (map[string]any, string) {
	if !strings.HasPrefix(text, frontmatterDelimiter) {
		return nil, text
	}
	parts := strings.SplitN(text, frontmatterDelimiter, 3)
	if len(parts) < 3 {
		return nil, text
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(parts[1]), &fm); err != nil {
		return nil, text
	}
	return fm, parts[2]
}

// frontmatterTags reads the tags field as a list or as a single string of
// comma or space separated tags.
func frontmatterTags(fm map[string]any) []string {
	raw, ok := fm[core.PayloadTags]
	if !ok || raw == nil {
		return nil
	}
	var tags []string
	switch v := raw.(type) {
	case string:
		for _, field := range strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		}) {
			tags = append(tags, strings.TrimPrefix(field, "#"))
		}
	case []any:
		for _, item := range v {
			if item == nil {
				continue
			}
			tags = append(tags, strings.TrimPrefix(fmt.Sprint(item), "#"))
		}
	default:
		tags = append(tags, fmt.Sprint(v))
	}
	return tags
}

// scalarString renders a frontmatter scalar. YAML turns bare dates into
// time.Time; those become YYYY-MM-DD.
func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return core.FormatDate(val)
	default:
		return fmt.Sprint(val)
	}
}
