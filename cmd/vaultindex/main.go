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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/vaultindex"
	"github.com/poiesic/vaultindex/config"
	"github.com/poiesic/vaultindex/ingestion"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "vaultindex",
		Usage: "Keep a vector index of a notes vault up to date",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "vault",
				Usage: "Path to the vault root",
				Value: ".",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Index new and changed documents",
				Action: ingestCommand,
				Flags: append(runFlags(),
					&cli.BoolFlag{
						Name:  "recreate",
						Usage: "Drop and recreate the collection before ingesting",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Report what would be indexed without embedding or writing",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Print per-file progress to stderr",
						Value: true,
					},
				),
			},
			{
				Name:   "watch",
				Usage:  "Re-run ingestion whenever documents change",
				Action: watchCommand,
				Flags: append(runFlags(),
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "Quiet period before a change triggers ingestion (default from config)",
					},
				),
			},
			{
				Name:  "store",
				Usage: "Manage the vault's vector store process",
				Subcommands: []*cli.Command{
					{
						Name:   "start",
						Usage:  "Start the store, resuming a stopped instance",
						Action: storeStartCommand,
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:  "http-port",
								Usage: "Host port for the store HTTP API (default from config)",
							},
							&cli.IntFlag{
								Name:  "grpc-port",
								Usage: "Host port for the store gRPC API (default from config)",
							},
						},
					},
					{
						Name:   "stop",
						Usage:  "Stop the store",
						Action: storeStopCommand,
					},
					{
						Name:   "status",
						Usage:  "Show the store state",
						Action: storeStatusCommand,
					},
				},
			},
		},
	}
}

// runFlags are shared by ingest and watch.
func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "collection",
			Aliases: []string{"c"},
			Usage:   "Target collection (default from config)",
		},
		&cli.BoolFlag{
			Name:  "include-pdfs",
			Usage: "Also index PDF files",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "Embedding API key",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Vector store backend, qdrant or badger (default from config)",
		},
	}
}

// loadConfig reads the vault config and applies command flags over it.
func loadConfig(c *cli.Context) (*config.Config, error) {
	vault := c.String("vault")
	cfg, err := config.Load(vault)
	if err != nil {
		return nil, err
	}

	var opts []config.ConfigOption
	if c.IsSet("collection") {
		if c.String("collection") == "" {
			return nil, fmt.Errorf("collection must not be empty")
		}
		opts = append(opts, config.WithCollection(c.String("collection")))
	}
	if c.IsSet("include-pdfs") {
		opts = append(opts, config.WithIncludePDFs(c.Bool("include-pdfs")))
	}
	if c.IsSet("backend") {
		opts = append(opts, config.WithStoreBackend(c.String("backend")))
	}
	if key := c.String("api-key"); key != "" {
		opts = append(opts, config.WithAPIKey(key))
	}
	if c.IsSet("http-port") || c.IsSet("grpc-port") {
		httpPort, grpcPort := cfg.Store.HTTPPort, cfg.Store.GRPCPort
		if c.IsSet("http-port") {
			httpPort = c.Int("http-port")
		}
		if c.IsSet("grpc-port") {
			grpcPort = c.Int("grpc-port")
		}
		opts = append(opts, config.WithPorts(httpPort, grpcPort))
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if c.IsSet("debounce") {
		cfg.Ingest.WatchDebounce = c.Duration("debounce")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openIndex(c *cli.Context) (*vaultindex.Index, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	idx, err := vaultindex.Open(c.String("vault"), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return idx, nil
}

func runOptions(c *cli.Context, cfg *config.Config) ingestion.RunOptions {
	return ingestion.RunOptions{
		Collection:         cfg.Ingest.Collection,
		IncludePDFs:        cfg.Ingest.IncludePDFs,
		RecreateCollection: c.Bool("recreate"),
		DryRun:             c.Bool("dry-run"),
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func ingestCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	idx, err := openIndex(c)
	if err != nil {
		return err
	}
	defer idx.Close()

	opts := runOptions(c, idx.Config())
	var pipelineOpts []ingestion.Option
	if c.Bool("progress") {
		pipelineOpts = append(pipelineOpts, ingestion.WithProgress(os.Stderr))
	}

	fmt.Fprintf(os.Stderr, "Vault: %s\n", idx.Vault())
	fmt.Fprintf(os.Stderr, "Collection: %s\n", opts.Collection)
	fmt.Fprintf(os.Stderr, "Store backend: %s\n", idx.Config().Store.Backend)
	fmt.Fprintln(os.Stderr)

	start := time.Now()
	run, err := idx.Ingest(ctx, opts, pipelineOpts...)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	fmt.Fprintln(c.App.Writer, renderSummary(run, opts, time.Since(start)))
	return nil
}

func watchCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	idx, err := openIndex(c)
	if err != nil {
		return err
	}
	defer idx.Close()

	opts := runOptions(c, idx.Config())
	fmt.Fprintf(os.Stderr, "Watching %s (collection %s), press Ctrl+C to stop\n", idx.Vault(), opts.Collection)
	if err := idx.Watch(ctx, opts); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}

func storeStartCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	idx, err := openIndex(c)
	if err != nil {
		return err
	}
	defer idx.Close()

	id, err := idx.StartStore(ctx)
	if err != nil {
		return err
	}
	cfg := idx.Config()
	fmt.Fprintf(c.App.Writer, "Store running: %s (http %d, grpc %d)\n", shortID(id), cfg.Store.HTTPPort, cfg.Store.GRPCPort)
	return nil
}

func storeStopCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	idx, err := openIndex(c)
	if err != nil {
		return err
	}
	defer idx.Close()

	stopped, err := idx.StopStore(ctx)
	if err != nil {
		return err
	}
	if stopped {
		fmt.Fprintln(c.App.Writer, "Store stopped")
	} else {
		fmt.Fprintln(c.App.Writer, "Store was not running")
	}
	return nil
}

func storeStatusCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	idx, err := openIndex(c)
	if err != nil {
		return err
	}
	defer idx.Close()

	status, err := idx.StoreStatus(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, renderStatus(status))
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
