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


package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/poiesic/vaultindex/config"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 2 * time.Second

// RunFunc performs one ingestion pass.
type RunFunc func(ctx context.Context) error

// Watcher triggers ingestion after changes to indexable vault files.
type Watcher struct {
	roots      []string
	excluded   []string
	extensions []string
	debounce   time.Duration
	runOnStart bool
	run        RunFunc
	logger     *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher) error

// WithDebounce sets the quiet period before a run is triggered.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) error {
		if d < 0 {
			return fmt.Errorf("debounce must not be negative, got %s", d)
		}
		w.debounce = d
		return nil
	}
}

// WithExtensions replaces the set of file extensions that trigger a run.
// Default is .md.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) error {
		w.extensions = exts
		return nil
	}
}

// WithRunOnStart runs ingestion once before waiting for changes.
func WithRunOnStart(enabled bool) Option {
	return func(w *Watcher) error {
		w.runOnStart = enabled
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// New creates a Watcher over the notes and meetings roots of vault.
func New(vault string, folders config.Folders, run RunFunc, opts ...Option) (*Watcher, error) {
	if run == nil {
		return nil, ErrRunFuncRequired
	}
	w := &Watcher{
		roots: []string{
			filepath.Join(vault, folders.Notes),
			filepath.Join(vault, folders.Meetings),
		},
		extensions: []string{".md"},
		debounce:   DefaultDebounce,
		run:        run,
		logger:     slog.Default(),
	}
	if folders.Summaries != "" {
		w.excluded = append(w.excluded, filepath.Join(vault, folders.Meetings, folders.Summaries))
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	w.logger = w.logger.With("component", "watch")
	return w, nil
}

// Run watches until ctx is done. Failed ingestion passes are logged and the
// watcher keeps going.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	watched := 0
	for _, root := range w.roots {
		n, err := w.addTree(fw, root)
		if err != nil {
			return err
		}
		watched += n
	}
	if watched == 0 {
		return ErrNoRoots
	}
	w.logger.Info("watching vault", "directories", watched, "debounce", w.debounce)

	if w.runOnStart {
		w.trigger(ctx)
	}
	return w.loop(ctx, fw.Events, fw.Errors, func(dir string) {
		if _, err := w.addTree(fw, dir); err != nil {
			w.logger.Warn("failed to watch new directory", "path", dir, "err", err)
		}
	})
}

// loop coalesces events and runs ingestion after each quiet period.
// onDir is called for newly created directories.
func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, onDir func(string)) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && onDir != nil {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !w.isExcluded(ev.Name) {
					onDir(ev.Name)
				}
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.trigger(ctx)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) trigger(ctx context.Context) {
	start := time.Now()
	if err := w.run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Error("ingestion pass failed", "err", err)
		return
	}
	w.logger.Info("ingestion pass complete", "elapsed", time.Since(start))
}

// relevant reports whether ev concerns an indexable file.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if w.isExcluded(ev.Name) || hidden(filepath.Base(ev.Name)) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(ev.Name))
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (w *Watcher) isExcluded(path string) bool {
	for _, dir := range w.excluded {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// addTree watches root and every non-hidden directory below it.
// A missing root adds nothing.
func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) (int, error) {
	added := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if (path != root && hidden(d.Name())) || w.isExcluded(path) {
			return fs.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		added++
		return nil
	})
	if err != nil && !errors.Is(err, fs.SkipDir) {
		return added, err
	}
	return added, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
