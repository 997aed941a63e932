// Package ingest is the pipeline orchestrator. Each raw job record passes
// once through Validate → Embed → Store; a rejected record is logged and
// the batch moves on to the next one.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/hotjob/indexer/engine/domain"
	"github.com/hotjob/indexer/engine/embed"
	"github.com/hotjob/indexer/engine/extract"
	"github.com/hotjob/indexer/engine/semantic"
	"github.com/hotjob/indexer/pkg/fn"
	"github.com/hotjob/indexer/pkg/metrics"
)

// Deps holds the components the pipeline is wired from.
type Deps struct {
	Validator *domain.Validator
	Extractor *extract.Extractor
	Embedder  *embed.Generator
	Writer    *semantic.Writer
	Metrics   *metrics.Indexer
	Logger    *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d Deps) metrics() *metrics.Indexer {
	if d.Metrics == nil {
		return metrics.NewIndexer(metrics.New())
	}
	return d.Metrics
}

// --- Pipeline Stages ---

// NewValidate creates the stage that admits a raw mapping as a JobRecord.
func NewValidate(v *domain.Validator) fn.Stage[Raw, domain.JobRecord] {
	return func(_ context.Context, raw Raw) fn.Result[domain.JobRecord] {
		job, err := v.Admit(raw)
		if err != nil {
			return fn.Err[domain.JobRecord](&StageError{Stage: StageValidate, Err: err})
		}
		return fn.Ok(job)
	}
}

// NewEmbed creates the stage that embeds a job's description. An empty or
// all-zero vector ends the record with ErrDegenerateEmbedding.
func NewEmbed(g *embed.Generator, m *metrics.Indexer, log *slog.Logger) fn.Stage[domain.JobRecord, EmbeddedJob] {
	return func(ctx context.Context, job domain.JobRecord) fn.Result[EmbeddedJob] {
		start := time.Now()
		vec, err := g.Embed(ctx, job.Description)
		m.EmbedTime.Since(start)
		if err != nil && !errors.Is(err, embed.ErrEmptyText) {
			return fn.Err[EmbeddedJob](&StageError{Stage: StageEmbed, Err: err})
		}
		if degenerate(vec) {
			log.Warn("ingest: skipping degenerate embedding", "id", job.ID, "title", job.Title)
			return fn.Err[EmbeddedJob](&StageError{Stage: StageEmbed, Err: ErrDegenerateEmbedding})
		}
		return fn.Ok(EmbeddedJob{Job: job, Vector: vec})
	}
}

// NewStore creates the stage that upserts an embedded job by its id.
func NewStore(w *semantic.Writer, m *metrics.Indexer) fn.Stage[EmbeddedJob, string] {
	return fn.Lift(func(ctx context.Context, ej EmbeddedJob) (string, error) {
		start := time.Now()
		err := w.UpsertJob(ctx, ej.Job, ej.Vector)
		m.UpsertTime.Since(start)
		if err != nil {
			return "", &StageError{Stage: StageStore, Err: err}
		}
		return ej.Job.ID, nil
	})
}

// LoggedTap returns a stage that logs entry into the named stage.
func LoggedTap[T any](name string, log *slog.Logger) fn.Stage[T, T] {
	return fn.TapStage(func(_ context.Context, _ T) {
		log.Debug("stage.enter", "stage", name)
	})
}

// NewPipeline composes Validate → Embed → Store with a span per stage.
func NewPipeline(deps Deps) fn.Stage[Raw, string] {
	log := deps.logger()
	m := deps.metrics()

	validated := fn.Then(LoggedTap[Raw](StageValidate, log),
		fn.TracedStage("ingest.validate", NewValidate(deps.Validator)))
	embedded := fn.Then(validated, fn.Then(LoggedTap[domain.JobRecord](StageEmbed, log),
		fn.TracedStage("ingest.embed", NewEmbed(deps.Embedder, m, log))))
	return fn.Then(embedded, fn.Then(LoggedTap[EmbeddedJob](StageStore, log),
		fn.TracedStage("ingest.store", NewStore(deps.Writer, m))))
}

// Indexer runs batches of raw records and resume files through the pipeline.
type Indexer struct {
	deps     Deps
	pipeline fn.Stage[Raw, string]
	resume   fn.Stage[string, string]
	metrics  *metrics.Indexer
	log      *slog.Logger
}

// New wires an Indexer from deps.
func New(deps Deps) *Indexer {
	if deps.Metrics == nil {
		deps.Metrics = deps.metrics()
	}
	if deps.Extractor == nil {
		deps.Extractor = extract.New(deps.Logger)
	}
	return &Indexer{
		deps:     deps,
		pipeline: NewPipeline(deps),
		resume:   newResumePipeline(deps),
		metrics:  deps.Metrics,
		log:      deps.logger(),
	}
}

// IndexJob runs one raw record to its terminal state.
func (ix *Indexer) IndexJob(ctx context.Context, index int, raw Raw) Outcome {
	out := Outcome{Index: index}
	if id, ok := raw["id"].(string); ok {
		out.ID = id
	}

	res := ix.pipeline(ctx, raw)
	id, err := res.Unwrap()
	if res.IsOk() {
		out.ID, out.State = id, StatePersisted
		ix.metrics.Persisted.Inc()
		return out
	}

	out.State, out.Stage = classify(err)
	out.Err, out.Reason = err, err.Error()
	switch {
	case errors.Is(err, ErrDegenerateEmbedding):
		ix.metrics.Degenerate.Inc()
		ix.metrics.Rejected.Inc()
	case out.State == StateRejected:
		ix.metrics.Rejected.Inc()
	default:
		ix.metrics.Failed.Inc()
		ix.log.Error("ingest: record failed", "index", index, "id", out.ID, "stage", out.Stage, "error", err)
	}
	return out
}

// Run processes raws sequentially in input order. Every record reaches a
// terminal state; no failure stops the batch.
func (ix *Indexer) Run(ctx context.Context, raws []Raw) Report {
	ix.log.Info("ingest: batch started", "records", len(raws), "model", ix.deps.Embedder.ModelName())
	report := Report{Outcomes: make([]Outcome, 0, len(raws))}
	for i, raw := range raws {
		report.Outcomes = append(report.Outcomes, ix.IndexJob(ctx, i, raw))
	}
	ix.log.Info("ingest: batch complete",
		"persisted", report.Persisted(),
		"rejected", report.Rejected(),
		"failed", report.Failed(),
	)
	return report
}

// --- Resume indexing ---

func newResumePipeline(deps Deps) fn.Stage[string, string] {
	log := deps.logger()
	m := deps.metrics()

	admit := fn.Stage[string, string](func(_ context.Context, path string) fn.Result[string] {
		if !deps.Validator.IsValidResume(path) {
			return fn.Err[string](&StageError{Stage: StageValidate, Err: ErrResumeRejected})
		}
		return fn.Ok(path)
	})
	extractText := fn.Stage[string, domain.ResumeRecord](func(_ context.Context, path string) fn.Result[domain.ResumeRecord] {
		text := deps.Extractor.ExtractText(path)
		if strings.TrimSpace(text) == "" {
			return fn.Err[domain.ResumeRecord](&StageError{Stage: StageExtract, Err: fmt.Errorf("no text extracted from %s", path)})
		}
		return fn.Ok(domain.ResumeRecord{Filename: filepath.Base(path), RawText: text})
	})
	store := fn.Stage[domain.ResumeRecord, string](func(ctx context.Context, r domain.ResumeRecord) fn.Result[string] {
		start := time.Now()
		vec, err := deps.Embedder.Embed(ctx, r.RawText)
		m.EmbedTime.Since(start)
		if err != nil && !errors.Is(err, embed.ErrEmptyText) {
			return fn.Err[string](&StageError{Stage: StageEmbed, Err: err})
		}
		if degenerate(vec) {
			log.Warn("ingest: skipping degenerate embedding", "filename", r.Filename)
			return fn.Err[string](&StageError{Stage: StageEmbed, Err: ErrDegenerateEmbedding})
		}
		start = time.Now()
		err = deps.Writer.UpsertResume(ctx, r, vec)
		m.UpsertTime.Since(start)
		if err != nil {
			return fn.Err[string](&StageError{Stage: StageStore, Err: err})
		}
		return fn.Ok(r.Filename)
	})

	return fn.Then(fn.TracedStage("resume.admit", admit),
		fn.Then(fn.TracedStage("resume.extract", extractText), fn.TracedStage("resume.store", store)))
}

// IndexResume admits, extracts, embeds and stores one resume file keyed by
// its base filename.
func (ix *Indexer) IndexResume(ctx context.Context, path string) error {
	name, err := ix.resume(ctx, path).Unwrap()
	if err != nil {
		return err
	}
	ix.metrics.Resumes.Inc()
	ix.log.Info("ingest: resume indexed", "filename", name)
	return nil
}

// degenerate reports whether v carries no usable signal.
func degenerate(v embed.Vector) bool {
	if v.IsEmpty() {
		return true
	}
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
