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

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/vaultindex/core"
	"github.com/poiesic/vaultindex/store"
)

// Components are the collaborators a Pipeline drives.
type Components struct {
	Collector DocumentCollector
	Parser    DocumentParser
	Chunker   TextChunker
	Embedder  ChunkEmbedder
	Store     store.Store
}

// RunOptions are the caller parameters of one ingestion run.
type RunOptions struct {
	Collection         string
	IncludePDFs        bool
	RecreateCollection bool
	DryRun             bool
}

// Pipeline orchestrates incremental ingestion of a vault into a collection.
type Pipeline struct {
	vault      string
	collector  DocumentCollector
	parser     DocumentParser
	chunker    TextChunker
	embedder   ChunkEmbedder
	store      store.Store
	reconciler *Reconciler
	credential string
	pageSize   int
	embedPool  *ants.Pool
	progress   io.Writer
	liveness   LivenessFunc
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithCredential sets the embedding credential whose presence is a run precondition.
func WithCredential(credential string) Option {
	return func(p *Pipeline) error {
		p.credential = credential
		return nil
	}
}

// WithPageSize sets the reconciliation page size.
func WithPageSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("page size must be positive, got %d", size)
		}
		p.pageSize = size
		return nil
	}
}

// WithEmbedConcurrency embeds up to n chunks of a document in parallel.
// Default is 1, which embeds sequentially without a pool.
func WithEmbedConcurrency(n int) Option {
	return func(p *Pipeline) error {
		if p.embedPool != nil {
			p.embedPool.Release()
			p.embedPool = nil
		}
		if n <= 1 {
			return nil
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		p.embedPool = pool
		return nil
	}
}

// WithProgress writes per-file progress lines to w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithLiveness adds a store process check to the run preconditions.
func WithLiveness(fn LivenessFunc) Option {
	return func(p *Pipeline) error {
		p.liveness = fn
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline for the vault at root.
func NewPipeline(root string, c Components, opts ...Option) (*Pipeline, error) {
	switch {
	case c.Collector == nil:
		return nil, ErrCollectorRequired
	case c.Parser == nil:
		return nil, ErrParserRequired
	case c.Chunker == nil:
		return nil, ErrChunkerRequired
	case c.Embedder == nil:
		return nil, ErrEmbedderRequired
	case c.Store == nil:
		return nil, ErrStoreRequired
	}
	if c.Embedder.Dimensions() <= 0 {
		return nil, ErrDimensionsRequired
	}

	p := &Pipeline{
		vault:     root,
		collector: c.Collector,
		parser:    c.Parser,
		chunker:   c.Chunker,
		embedder:  c.Embedder,
		store:     c.Store,
		pageSize:  DefaultPageSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	reconciler, err := NewReconciler(c.Store, p.pageSize, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.reconciler = reconciler
	return p, nil
}

// Reconciler returns the pipeline's reconciler.
func (p *Pipeline) Reconciler() *Reconciler {
	return p.reconciler
}

// Run ingests every collected document that is new or changed.
//
// Precondition failures, a vector dimension mismatch and context cancellation
// abort the run and return nil stats. Failures of a single chunk or document
// are recorded in the returned run and processing continues.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*core.IngestionRun, error) {
	if opts.Collection == "" {
		return nil, ErrCollectionRequired
	}
	if err := p.checkPreconditions(ctx, opts); err != nil {
		return nil, err
	}

	// A vector size mismatch must abort before any stale point is deleted.
	if opts.DryRun {
		if err := store.CheckDimensions(ctx, p.store, opts.Collection, p.embedder.Dimensions()); err != nil {
			return nil, err
		}
	} else {
		cfg := store.CollectionConfig{Dimensions: p.embedder.Dimensions(), Distance: store.DistanceCosine}
		if err := store.EnsureCollection(ctx, p.store, opts.Collection, cfg, opts.RecreateCollection); err != nil {
			return nil, err
		}
		p.logger.Info("using collection", "collection", opts.Collection, "recreated", opts.RecreateCollection)
	}

	files, err := p.collector.Collect(p.vault, opts.IncludePDFs)
	if err != nil {
		return nil, fmt.Errorf("failed to collect documents: %w", err)
	}
	p.logger.Info("collected documents", "count", len(files), "include_pdfs", opts.IncludePDFs, "dry_run", opts.DryRun)

	var tracker *ProgressTracker
	if p.progress != nil {
		tracker = NewProgressTracker(p.progress, len(files), 1)
		tracker.Start()
	}

	run := &core.IngestionRun{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.processFile(ctx, path, opts, run); err != nil {
			if p.isFatal(ctx, err) {
				p.logger.Error("ingestion aborted", "path", path, "err", err)
				return nil, err
			}
			docErr := &core.DocumentProcessingError{Path: path, Err: err}
			p.logger.Error("failed to process document", "path", path, "err", err)
			run.RecordError(docErr)
			if tracker != nil {
				tracker.Fail()
			}
			continue
		}
		if tracker != nil {
			tracker.Increment(1)
		}
	}
	if tracker != nil {
		tracker.Finish()
	}

	p.logger.Info("ingestion complete",
		"files_processed", run.FilesProcessed,
		"files_skipped", run.FilesSkipped,
		"chunks_created", run.ChunksCreated,
		"embeddings_generated", run.EmbeddingsGenerated,
		"errors", len(run.Errors))
	return run, nil
}

func (p *Pipeline) checkPreconditions(ctx context.Context, opts RunOptions) error {
	if p.credential == "" {
		return core.NewPreconditionError(core.ErrMissingCredential, "set OPENAI_API_KEY or ai.api_key")
	}
	if p.liveness != nil {
		running, err := p.liveness(ctx)
		if err != nil {
			return core.NewPreconditionError(core.ErrStoreUnreachable, err.Error())
		}
		if !running {
			return core.NewPreconditionError(core.ErrStoreUnreachable, "store process is not running, start it with: vaultindex store start")
		}
	}
	if err := p.store.Ping(ctx); err != nil {
		return core.NewPreconditionError(core.ErrStoreUnreachable, err.Error())
	}
	if opts.IncludePDFs && !p.parser.HasPDFExtractor() {
		return core.NewPreconditionError(core.ErrPDFExtractorUnavailable, "")
	}
	return nil
}

func (p *Pipeline) isFatal(ctx context.Context, err error) bool {
	return errors.Is(err, core.ErrDimensionMismatch) || ctx.Err() != nil
}

// processFile runs one document through parse, chunk, reconcile, embed and upsert.
func (p *Pipeline) processFile(ctx context.Context, path string, opts RunOptions, run *core.IngestionRun) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	doc, err := p.parser.Parse(path)
	if err != nil {
		return err
	}
	chunks := p.chunker.Chunk(ctx, doc.Content)
	if len(chunks) == 0 {
		p.logger.Debug("skipping document with no content", "path", doc.Path)
		return nil
	}

	needed, stale, err := p.reconciler.NeedsIngestion(ctx, opts.Collection, doc.Path, doc.Modified)
	if err != nil {
		return err
	}
	if !needed {
		p.logger.Debug("skipping unchanged document", "path", doc.Path)
		run.FilesSkipped++
		return nil
	}

	if !opts.DryRun && len(stale) > 0 {
		p.logger.Debug("deleting stale chunks", "path", doc.Path, "count", len(stale))
		if err := p.store.Delete(ctx, opts.Collection, stale); err != nil {
			p.logger.Warn("failed to delete stale chunks", "path", doc.Path, "err", err)
		}
	}

	p.logger.Debug("processing document", "path", doc.Path, "chunks", len(chunks), "tags", doc.Tags)
	if opts.DryRun {
		run.FilesProcessed++
		run.ChunksCreated += len(chunks)
		return nil
	}

	points, err := p.embedChunks(ctx, doc, chunks, run)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}
	if err := p.store.Upsert(ctx, opts.Collection, points); err != nil {
		return fmt.Errorf("failed to upsert %d points: %w", len(points), err)
	}
	run.FilesProcessed++
	run.ChunksCreated += len(points)
	return nil
}

type embedResult struct {
	vector []float32
	err    error
}

// embedChunks embeds chunks and returns the points of the ones that succeeded,
// in chunk order. Per-chunk failures are recorded in run; a dimension
// mismatch or cancellation is returned.
func (p *Pipeline) embedChunks(ctx context.Context, doc *core.SourceDocument, chunks []string, run *core.IngestionRun) ([]core.IndexPoint, error) {
	results := make([]embedResult, len(chunks))
	if p.embedPool == nil {
		for i, text := range chunks {
			v, err := p.embedder.Embed(ctx, text)
			results[i] = embedResult{vector: v, err: err}
			if err != nil && p.isFatal(ctx, err) {
				return nil, err
			}
		}
	} else {
		p.embedParallel(ctx, chunks, results)
	}

	points := make([]core.IndexPoint, 0, len(chunks))
	for i, r := range results {
		if r.err != nil {
			if p.isFatal(ctx, r.err) {
				return nil, r.err
			}
			chunkErr := &core.ChunkEmbeddingError{Path: doc.AbsPath, Index: i, Err: r.err}
			p.logger.Error("failed to embed chunk", "path", doc.Path, "chunk", i, "err", r.err)
			run.RecordError(chunkErr)
			continue
		}
		run.EmbeddingsGenerated++
		points = append(points, core.IndexPoint{
			ID:      core.NewPointID(),
			Vector:  r.vector,
			Payload: core.BuildPayload(core.Chunk{Text: chunks[i], Index: i}, doc),
		})
	}
	return points, nil
}

func (p *Pipeline) embedParallel(ctx context.Context, chunks []string, results []embedResult) {
	var wg sync.WaitGroup
	for i, text := range chunks {
		wg.Add(1)
		err := p.embedPool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = embedResult{err: fmt.Errorf("panic: %v", r)}
				}
			}()
			v, err := p.embedder.Embed(ctx, text)
			results[i] = embedResult{vector: v, err: err}
		})
		if err != nil {
			wg.Done()
			results[i] = embedResult{err: err}
		}
	}
	wg.Wait()
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embedPool != nil {
		p.embedPool.Release()
	}
}
