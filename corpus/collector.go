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
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/vaultindex/config"
)

// Collector enumerates the documents eligible for indexing.
type Collector struct {
	folders config.Folders
	logger  *slog.Logger
}

// NewCollector creates a Collector over the given vault layout.
func NewCollector(folders config.Folders, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		folders: folders,
		logger:  logger.With("component", "collector"),
	}
}

// Collect returns absolute, symlink-resolved paths of every markdown file
// under the notes and meetings roots, followed by every PDF under the same
// roots when includePDFs is set. The meetings summaries folder is skipped.
// Missing roots contribute nothing.
func (c *Collector) Collect(vault string, includePDFs bool) ([]string, error) {
	roots := []string{
		filepath.Join(vault, c.folders.Notes),
		filepath.Join(vault, c.folders.Meetings),
	}
	excluded := ""
	if c.folders.Summaries != "" {
		excluded = resolve(filepath.Join(vault, c.folders.Meetings, c.folders.Summaries))
	}

	files, err := c.walk(roots, ".md", excluded)
	if err != nil {
		return nil, err
	}
	c.logger.Info("collected markdown files", "count", len(files))

	if includePDFs {
		pdfs, err := c.walk(roots, ".pdf", excluded)
		if err != nil {
			return nil, err
		}
		c.logger.Info("collected PDF files", "count", len(pdfs))
		files = append(files, pdfs...)
	}
	return files, nil
}

func (c *Collector) walk(roots []string, ext, excluded string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	for _, root := range roots {
		info, err := os.Stat(root)
		if errors.Is(err, os.ErrNotExist) {
			c.logger.Debug("skipping missing root", "root", root)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", root, err)
		}
		if !info.IsDir() {
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d == nil {
					return err
				}
				c.logger.Warn("skipping unreadable path", "path", path, "err", err)
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
				return nil
			}
			resolved := resolve(path)
			if excluded != "" && within(resolved, excluded) {
				return nil
			}
			if _, dup := seen[resolved]; dup {
				return nil
			}
			seen[resolved] = struct{}{}
			files = append(files, resolved)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	return files, nil
}

// resolve returns the absolute, symlink-free form of path, or the best
// approximation when the path cannot be fully resolved.
func resolve(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}

func within(path, dir string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}
