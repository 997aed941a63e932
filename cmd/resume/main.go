// Command resume indexes resume files into the resume collection.
// Files are extracted and embedded in parallel; writes for the same
// filename are serialized by the writer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hotjob/indexer/engine/ingest"
	"github.com/hotjob/indexer/pkg/config"
	"github.com/hotjob/indexer/pkg/fn"
	"github.com/hotjob/indexer/pkg/metrics"
)

func main() {
	cfg := config.Load()
	var (
		workers = flag.Int("workers", 4, "files processed concurrently")
		store   = flag.String("store", cfg.VectorStore, "vector store location")
		backend = flag.String("backend", cfg.EmbedBackend, "embedding backend: ollama, gemini or hash")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: resume [flags] file...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	cfg.VectorStore, cfg.EmbedBackend = *store, *backend

	logger := cfg.Logger()
	slog.SetDefault(logger)

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(cfg, flag.Args(), *workers, logger); err != nil {
		logger.Error("resume indexing failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, paths []string, workers int, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ix, closeStores, err := ingest.Open(ctx, cfg, log, metrics.New())
	if err != nil {
		return err
	}
	defer closeStores()

	return indexAll(ctx, ix, paths, workers, log)
}

// indexAll indexes every path and joins the failures.
func indexAll(ctx context.Context, ix *ingest.Indexer, paths []string, workers int, log *slog.Logger) error {
	errs := fn.ParMap(paths, workers, func(p string) error {
		if err := ix.IndexResume(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		return nil
	})
	err := errors.Join(errs...)
	failed := 0
	for _, e := range errs {
		if e != nil {
			failed++
		}
	}
	log.Info("resume indexing complete", "files", len(paths), "failed", failed)
	return err
}
