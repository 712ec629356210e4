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


// Package vaultindex keeps a vector index of a notes vault up to date.
//
// An Index wires every collaborator from one config.Config: the vector store
// (Qdrant or embedded Badger), the document embedder, the sentence encoder
// used for chunking, the corpus collector and parser, and the store process
// lifecycle manager.
//
//	cfg, _ := config.Load(vault)
//	cfg.AI.APIKey = os.Getenv("OPENAI_API_KEY")
//	idx, err := vaultindex.Open(vault, cfg)
//	if err != nil { ... }
//	defer idx.Close()
//	run, err := idx.Ingest(ctx, ingestion.RunOptions{})
package vaultindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/vaultindex/ai"
	"github.com/poiesic/vaultindex/ai/ollama"
	"github.com/poiesic/vaultindex/ai/openai"
	"github.com/poiesic/vaultindex/chunker"
	"github.com/poiesic/vaultindex/config"
	"github.com/poiesic/vaultindex/core"
	"github.com/poiesic/vaultindex/corpus"
	"github.com/poiesic/vaultindex/embedding"
	"github.com/poiesic/vaultindex/ingestion"
	"github.com/poiesic/vaultindex/lifecycle"
	"github.com/poiesic/vaultindex/store"
	"github.com/poiesic/vaultindex/store/badger"
	"github.com/poiesic/vaultindex/store/qdrant"
	"github.com/poiesic/vaultindex/watch"
)

// Index is the entry point tying a vault to its vector store.
type Index struct {
	vault     string
	cfg       *config.Config
	store     store.Store
	ownsStore bool
	manager   *lifecycle.Manager
	collector *corpus.Collector
	parser    *corpus.Parser
	chunker   *chunker.Chunker
	generator *embedding.Generator
	base      *slog.Logger
	logger    *slog.Logger
}

// IndexOption configures an Index.
type IndexOption func(*indexOptions)

type indexOptions struct {
	store      store.Store
	embedder   ai.Embedder
	encoder    ai.Embedder
	controller lifecycle.ProcessController
	logger     *slog.Logger
}

// WithStore uses s instead of the store selected by the configuration.
// The caller keeps ownership; Close does not close it.
func WithStore(s store.Store) IndexOption {
	return func(o *indexOptions) {
		o.store = s
	}
}

// WithEmbedder replaces the document embedder.
func WithEmbedder(e ai.Embedder) IndexOption {
	return func(o *indexOptions) {
		o.embedder = e
	}
}

// WithEncoder replaces the sentence encoder used for chunking.
func WithEncoder(e ai.Embedder) IndexOption {
	return func(o *indexOptions) {
		o.encoder = e
	}
}

// WithController replaces the docker process controller.
func WithController(c lifecycle.ProcessController) IndexOption {
	return func(o *indexOptions) {
		o.controller = c
	}
}

// WithLogger sets the logger passed to every component.
func WithLogger(logger *slog.Logger) IndexOption {
	return func(o *indexOptions) {
		o.logger = logger
	}
}

// Open builds an Index for the vault at path. A nil cfg uses the defaults.
func Open(path string, cfg *config.Config, opts ...IndexOption) (*Index, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := &indexOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	vault, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	controller := options.controller
	if controller == nil {
		controller = lifecycle.NewDockerController()
	}
	manager, err := lifecycle.NewManager(controller,
		lifecycle.WithImage(cfg.Store.Image),
		lifecycle.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil {
		if embedder, err = openai.NewEmbedder(cfg.AI); err != nil {
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
	}
	generator, err := embedding.NewGenerator(embedder,
		embedding.WithDimensions(cfg.AI.EmbeddingDimensions),
		embedding.WithRetryPolicy(embedding.RetryPolicy{
			MaxAttempts: cfg.Ingest.MaxAttempts,
			Backoff:     embedding.ExponentialBackoff(cfg.Ingest.BaseBackoff),
			Sleep:       embedding.ContextSleep,
		}),
		embedding.WithRateLimit(cfg.Ingest.RequestsPerSecond, cfg.Ingest.Burst),
		embedding.WithTimeout(cfg.Ingest.EmbedTimeout),
		embedding.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	encoder := options.encoder
	if encoder == nil {
		if encoder, err = ollama.NewEncoder(cfg.AI); err != nil {
			return nil, fmt.Errorf("failed to create sentence encoder: %w", err)
		}
	}
	chunks, err := chunker.New(encoder,
		chunker.WithThreshold(cfg.Ingest.SimilarityThreshold),
		chunker.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	parser, err := corpus.NewParser(vault, cfg,
		corpus.WithPDFExtractor(corpus.NewPDFExtractor()),
		corpus.WithParserLogger(logger))
	if err != nil {
		return nil, err
	}

	s, owns := options.store, false
	if s == nil {
		if s, err = openStore(vault, cfg, logger); err != nil {
			return nil, err
		}
		owns = true
	}

	return &Index{
		vault:     vault,
		cfg:       cfg,
		store:     s,
		ownsStore: owns,
		manager:   manager,
		collector: corpus.NewCollector(cfg.Vault.Folders, logger),
		parser:    parser,
		chunker:   chunks,
		generator: generator,
		base:      logger,
		logger:    logger.With("component", "index"),
	}, nil
}

func openStore(vault string, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendBadger:
		return badger.NewStore(cfg.BadgerDir(vault), logger)
	case config.BackendQdrant:
		return qdrant.NewClient(qdrant.Config{
			Host:   cfg.Store.Host,
			Port:   cfg.Store.GRPCPort,
			UseTLS: cfg.Store.UseTLS,
		}, qdrant.WithLogger(logger))
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// Close releases the store if the Index opened it.
func (idx *Index) Close() error {
	if !idx.ownsStore {
		return nil
	}
	if err := idx.store.Close(); err != nil && !errors.Is(err, store.ErrStoreClosed) {
		idx.logger.Error("error closing store", "err", err)
		return err
	}
	return nil
}

// Vault returns the absolute vault path.
func (idx *Index) Vault() string {
	return idx.vault
}

// Config returns the configuration the Index was built from.
func (idx *Index) Config() *config.Config {
	return idx.cfg
}

// Store returns the vector store.
func (idx *Index) Store() store.Store {
	return idx.store
}

// Manager returns the store lifecycle manager.
func (idx *Index) Manager() *lifecycle.Manager {
	return idx.manager
}

// NewPipeline creates an ingestion pipeline configured from the Index.
// Options given here are applied after the configured ones.
func (idx *Index) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	base := []ingestion.Option{
		ingestion.WithCredential(idx.cfg.AI.APIKey),
		ingestion.WithPageSize(idx.cfg.Ingest.PageSize),
		ingestion.WithEmbedConcurrency(idx.cfg.Ingest.EmbedConcurrency),
		ingestion.WithLogger(idx.base),
	}
	if idx.cfg.Store.Backend == config.BackendQdrant && idx.ownsStore {
		base = append(base, ingestion.WithLiveness(func(ctx context.Context) (bool, error) {
			return idx.manager.Running(ctx, idx.vault)
		}))
	}
	return ingestion.NewPipeline(idx.vault, ingestion.Components{
		Collector: idx.collector,
		Parser:    idx.parser,
		Chunker:   idx.chunker,
		Embedder:  idx.generator,
		Store:     idx.store,
	}, append(base, opts...)...)
}

// Ingest runs one incremental ingestion pass. An empty collection selects
// the configured one.
func (idx *Index) Ingest(ctx context.Context, opts ingestion.RunOptions, pipelineOpts ...ingestion.Option) (*core.IngestionRun, error) {
	if opts.Collection == "" {
		opts.Collection = idx.cfg.Ingest.Collection
	}
	p, err := idx.NewPipeline(pipelineOpts...)
	if err != nil {
		return nil, err
	}
	defer p.Release()
	return p.Run(ctx, opts)
}

// Watch runs ingestion whenever indexable files change, until ctx is done.
// RecreateCollection applies to the first pass only.
func (idx *Index) Watch(ctx context.Context, opts ingestion.RunOptions, watchOpts ...watch.Option) error {
	exts := []string{".md"}
	if opts.IncludePDFs {
		exts = append(exts, ".pdf")
	}
	run := func(ctx context.Context) error {
		stats, err := idx.Ingest(ctx, opts)
		opts.RecreateCollection = false
		if err != nil {
			return err
		}
		idx.logger.Info("watch pass",
			"files_processed", stats.FilesProcessed,
			"files_skipped", stats.FilesSkipped,
			"errors", len(stats.Errors))
		return nil
	}
	base := []watch.Option{
		watch.WithDebounce(idx.cfg.Ingest.WatchDebounce),
		watch.WithExtensions(exts...),
		watch.WithRunOnStart(true),
		watch.WithLogger(idx.base),
	}
	w, err := watch.New(idx.vault, idx.cfg.Vault.Folders, run, append(base, watchOpts...)...)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

// StartStore ensures the vault's store process is running on the configured
// ports and returns its id.
func (idx *Index) StartStore(ctx context.Context) (string, error) {
	return idx.manager.Start(ctx, idx.vault, lifecycle.Ports{
		HTTP: idx.cfg.Store.HTTPPort,
		GRPC: idx.cfg.Store.GRPCPort,
	})
}

// StopStore stops the vault's store process. It reports whether one was running.
func (idx *Index) StopStore(ctx context.Context) (bool, error) {
	return idx.manager.Stop(ctx, idx.vault)
}

// StoreStatus reports the state of the vault's store process.
func (idx *Index) StoreStatus(ctx context.Context) (lifecycle.Status, error) {
	return idx.manager.Status(ctx, idx.vault)
}
