// Package embed converts extracted text into fixed-dimension vectors. The
// Generator owns one Model for the life of the process and refuses to
// send empty input to it.
package embed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultDimensions matches all-MiniLM-L6-v2.
const DefaultDimensions = 384

var (
	// ErrEmptyText is returned, with an empty vector, for blank input.
	ErrEmptyText = errors.New("embed: empty or whitespace-only text")
	// ErrDimensionMismatch means the backend returned a vector of the wrong size.
	ErrDimensionMismatch = errors.New("embed: dimension mismatch")
)

// Vector is an ordered sequence of floats produced for one text.
type Vector []float32

// IsEmpty reports whether v carries no values.
func (v Vector) IsEmpty() bool { return len(v) == 0 }

// Model is a loaded sentence encoder. Implementations must be safe for
// concurrent use and deterministic for identical input.
type Model interface {
	Name() string
	Dimensions() int
	Encode(ctx context.Context, text string) ([]float32, error)
}

// Generator wraps a Model with the empty-input guard.
type Generator struct {
	model Model
	log   *slog.Logger
}

// NewGenerator creates a Generator around an already-loaded model.
func NewGenerator(model Model, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	log.Info("embed: model loaded", "model", model.Name(), "dims", model.Dimensions())
	return &Generator{model: model, log: log}
}

// Dimensions is the fixed length of every non-empty vector.
func (g *Generator) Dimensions() int { return g.model.Dimensions() }

// ModelName identifies the underlying encoder.
func (g *Generator) ModelName() string { return g.model.Name() }

// Embed encodes text. Blank text never reaches the model: a warning is
// logged and an empty vector is returned together with ErrEmptyText.
func (g *Generator) Embed(ctx context.Context, text string) (Vector, error) {
	if strings.TrimSpace(text) == "" {
		g.log.Warn("embed: refusing empty or whitespace-only text")
		return Vector{}, ErrEmptyText
	}

	start := time.Now()
	values, err := g.model.Encode(ctx, text)
	if err != nil {
		return Vector{}, fmt.Errorf("embed: %s: %w", g.model.Name(), err)
	}
	if len(values) != g.model.Dimensions() {
		return Vector{}, fmt.Errorf("%w: %s returned %d, want %d", ErrDimensionMismatch, g.model.Name(), len(values), g.model.Dimensions())
	}
	g.log.Debug("embed: encoded", "model", g.model.Name(), "chars", len(text), "duration", time.Since(start))

	out := make(Vector, len(values))
	copy(out, values)
	return out, nil
}

// GetEmbedding is Embed for callers that only need the vector. Any
// failure yields an empty vector.
func (g *Generator) GetEmbedding(ctx context.Context, text string) Vector {
	v, err := g.Embed(ctx, text)
	if err != nil && !errors.Is(err, ErrEmptyText) {
		g.log.Error("embed: failed", "error", err)
	}
	return v
}
