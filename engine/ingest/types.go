package ingest

import (
	"errors"
	"fmt"

	"github.com/hotjob/indexer/engine/domain"
)

// Raw is one untyped job mapping as it arrives from a source.
type Raw = map[string]any

// ErrDegenerateEmbedding marks a record whose text produced an empty or
// all-zero vector. Such records are skipped rather than stored.
var ErrDegenerateEmbedding = errors.New("ingest: degenerate embedding")

// ErrResumeRejected is returned when a resume path fails admission.
var ErrResumeRejected = errors.New("ingest: resume rejected")

// Pipeline stage names.
const (
	StageValidate = "validate"
	StageExtract  = "extract"
	StageEmbed    = "embed"
	StageStore    = "store"
)

// StageError records which stage ended a record's pass.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// EmbeddedJob is a validated record paired with its vector.
type EmbeddedJob struct {
	Job    domain.JobRecord
	Vector []float32
}

// State is the terminal state of one record.
type State string

const (
	StatePersisted State = "persisted"
	StateRejected  State = "rejected"
	StateFailed    State = "failed"
)

// Outcome is what happened to the record at Index in a batch.
type Outcome struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	State  State  `json:"state"`
	Stage  string `json:"stage,omitempty"`
	Reason string `json:"reason,omitempty"`
	Err    error  `json:"-"`
}

// Report lists the outcome of every record in a batch, in input order.
type Report struct {
	Outcomes []Outcome `json:"outcomes"`
}

func (r Report) count(s State) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == s {
			n++
		}
	}
	return n
}

// Persisted returns how many records reached the store.
func (r Report) Persisted() int { return r.count(StatePersisted) }

// Rejected returns how many records were dropped by validation or skipped
// for a degenerate embedding.
func (r Report) Rejected() int { return r.count(StateRejected) }

// Failed returns how many records hit a backend failure.
func (r Report) Failed() int { return r.count(StateFailed) }

// Err joins the backend failures of the batch. Rejections are not errors.
func (r Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.State == StateFailed {
			errs = append(errs, fmt.Errorf("record %d (%s): %w", o.Index, o.ID, o.Err))
		}
	}
	return errors.Join(errs...)
}

// classify maps a pipeline error onto a terminal state.
func classify(err error) (State, string) {
	stage := ""
	var se *StageError
	if errors.As(err, &se) {
		stage = se.Stage
	}
	switch {
	case stage == StageValidate, errors.Is(err, ErrDegenerateEmbedding):
		return StateRejected, stage
	default:
		return StateFailed, stage
	}
}
