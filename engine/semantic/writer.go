package semantic

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hotjob/indexer/engine/domain"
)

// Writer persists validated records into their collections. Writes for
// the same key are serialized so the last completed upsert wins.
type Writer struct {
	jobs    Store
	resumes Store
	locks   *keyLocks
	log     *slog.Logger
}

// NewWriter creates a Writer. resumes may be nil when only jobs are indexed.
func NewWriter(jobs, resumes Store, log *slog.Logger) *Writer {
	if log == nil {
		log = slog.Default()
	}
	return &Writer{jobs: jobs, resumes: resumes, locks: newKeyLocks(), log: log}
}

// UpsertJob inserts or fully replaces the entry keyed by job.ID.
func (w *Writer) UpsertJob(ctx context.Context, job domain.JobRecord, vec []float32) error {
	if len(vec) == 0 {
		return ErrEmptyVector
	}
	rec := VectorRecord{
		ID:        PointID("job", job.ID),
		Key:       job.ID,
		Embedding: vec,
		Payload:   job.Metadata(),
	}
	if err := w.put(ctx, w.jobs, "job:"+job.ID, rec); err != nil {
		return fmt.Errorf("semantic: upsert job %s: %w", job.ID, err)
	}
	w.log.Info("semantic: job stored", "id", job.ID, "dims", len(vec))
	return nil
}

// UpsertResume inserts or replaces the entry keyed by the resume filename.
func (w *Writer) UpsertResume(ctx context.Context, resume domain.ResumeRecord, vec []float32) error {
	if len(vec) == 0 {
		return ErrEmptyVector
	}
	if w.resumes == nil {
		return fmt.Errorf("semantic: upsert resume %s: no resume store configured", resume.Filename)
	}
	rec := VectorRecord{
		ID:        PointID("resume", resume.Filename),
		Key:       resume.Filename,
		Embedding: vec,
		Payload:   resume.Metadata(),
	}
	if err := w.put(ctx, w.resumes, "resume:"+resume.Filename, rec); err != nil {
		return fmt.Errorf("semantic: upsert resume %s: %w", resume.Filename, err)
	}
	w.log.Info("semantic: resume stored", "filename", resume.Filename, "dims", len(vec))
	return nil
}

func (w *Writer) put(ctx context.Context, s Store, key string, rec VectorRecord) error {
	unlock := w.locks.Lock(key)
	defer unlock()
	return s.Upsert(ctx, []VectorRecord{rec})
}

// keyLocks hands out one mutex per key and forgets it once unused.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*refMutex)}
}

// Lock blocks until key is free and returns the matching unlock func.
func (k *keyLocks) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
