// Command ingest indexes job postings into the vector store. Records come
// from the built-in mock batch, an NDJSON file, or the jobs.ingest NATS
// subject.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hotjob/indexer/engine/ingest"
	"github.com/hotjob/indexer/pkg/config"
	"github.com/hotjob/indexer/pkg/metrics"
	"github.com/nats-io/nats.go"
)

func main() {
	cfg := config.Load()
	var (
		mode    = flag.String("mode", "mock", "record source: mock, file or nats")
		file    = flag.String("file", "", "NDJSON file of raw job records (mode=file)")
		store   = flag.String("store", cfg.VectorStore, "vector store location")
		backend = flag.String("backend", cfg.EmbedBackend, "embedding backend: ollama, gemini or hash")
		natsURL = flag.String("nats", cfg.NATSURL, "NATS URL (mode=nats)")
	)
	flag.Parse()
	cfg.VectorStore, cfg.EmbedBackend, cfg.NATSURL = *store, *backend, *natsURL

	logger := cfg.Logger()
	slog.SetDefault(logger)

	if err := run(cfg, *mode, *file, logger); err != nil {
		logger.Error("ingest exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, mode, file string, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.New()
	go func() {
		if err := reg.Serve(ctx, fmt.Sprintf(":%d", cfg.MetricsPort), log); err != nil {
			log.Error("metrics server failed", "err", err)
		}
	}()

	ix, closeStores, err := ingest.Open(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer closeStores()

	switch mode {
	case "mock":
		log.Info("starting mock scrape")
		return ix.Run(ctx, ingest.MockJobs(time.Now())).Err()
	case "file":
		raws, err := readNDJSON(file)
		if err != nil {
			return err
		}
		return ix.Run(ctx, raws).Err()
	case "nats":
		return consume(ctx, cfg.NATSURL, ix, log)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func consume(ctx context.Context, url string, ix *ingest.Indexer, log *slog.Logger) error {
	nc, err := nats.Connect(url, nats.Name("jobs-indexer"))
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Drain()

	sub, err := ingest.StartConsumer(nc, ix)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Unsubscribe()
	log.Info("consuming", "subject", ingest.IngestSubject, "url", url)

	<-ctx.Done()
	log.Info("shutting down")
	return nil
}

func readNDJSON(path string) ([]ingest.Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records: %w", err)
	}
	defer f.Close()
	return decodeNDJSON(f)
}

// decodeNDJSON reads one JSON object per line. Blank lines are skipped.
func decodeNDJSON(r io.Reader) ([]ingest.Raw, error) {
	var raws []ingest.Raw
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := sc.Bytes()
		if len(b) == 0 {
			continue
		}
		var raw ingest.Raw
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		raws = append(raws, raw)
	}
	return raws, sc.Err()
}
