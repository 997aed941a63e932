package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hotjob/indexer/engine/domain"
	"github.com/hotjob/indexer/engine/embed"
	"github.com/hotjob/indexer/engine/extract"
	"github.com/hotjob/indexer/engine/semantic"
	"github.com/hotjob/indexer/pkg/config"
	"github.com/hotjob/indexer/pkg/gemini"
	"github.com/hotjob/indexer/pkg/metrics"
	"github.com/hotjob/indexer/pkg/ollama"
)

// NewModel selects the embedding backend named by cfg.EmbedBackend.
func NewModel(ctx context.Context, cfg config.Config) (embed.Model, error) {
	switch cfg.EmbedBackend {
	case "ollama":
		return ollama.NewEmbedClient(cfg.OllamaURL, cfg.ModelName, cfg.EmbedDims), nil
	case "gemini":
		return gemini.NewEmbedClient(ctx, cfg.GeminiAPIKey, "", cfg.EmbedDims)
	case "hash":
		return embed.NewHashModel(cfg.EmbedDims), nil
	default:
		return nil, fmt.Errorf("ingest: unknown embed backend %q", cfg.EmbedBackend)
	}
}

// Open connects the stores named by cfg, makes sure both collections
// exist and returns a ready Indexer. close releases the stores.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger, reg *metrics.Registry) (ix *Indexer, closeFn func() error, err error) {
	model, err := NewModel(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	jobs, err := semantic.Open(ctx, cfg.VectorStore, cfg.JobCollection)
	if err != nil {
		return nil, nil, err
	}
	resumes, err := semantic.Open(ctx, cfg.VectorStore, cfg.ResumeCollection)
	if err != nil {
		jobs.Close()
		return nil, nil, err
	}
	closeFn = func() error { return errors.Join(jobs.Close(), resumes.Close()) }

	for _, s := range []semantic.Store{jobs, resumes} {
		if err := s.EnsureCollection(ctx, model.Dimensions()); err != nil {
			closeFn()
			return nil, nil, err
		}
	}
	log.Info("ingest: stores ready",
		"location", cfg.VectorStore,
		"jobs", cfg.JobCollection,
		"resumes", cfg.ResumeCollection,
		"dims", model.Dimensions(),
	)

	ix = New(Deps{
		Validator: domain.NewValidator(log),
		Extractor: extract.New(log),
		Embedder:  embed.NewGenerator(model, log),
		Writer:    semantic.NewWriter(jobs, resumes, log),
		Metrics:   metrics.NewIndexer(reg),
		Logger:    log,
	})
	return ix, closeFn, nil
}
