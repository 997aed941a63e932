// Package semantic owns the vector index: the Store backends and the
// Writer that upserts validated records keyed by their stable id.
package semantic

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrEmptyVector is returned when a caller tries to persist a degenerate
// embedding.
var ErrEmptyVector = errors.New("semantic: refusing to store empty vector")

// VectorRecord is a single vector and its scalar payload. ID is the point
// id used by the backend; Key is the caller's record id.
type VectorRecord struct {
	ID        string
	Key       string
	Embedding []float32
	Payload   map[string]any
}

// Store is a keyed vector index. Upsert fully replaces any existing entry
// with the same ID.
type Store interface {
	EnsureCollection(ctx context.Context, dims int) error
	Upsert(ctx context.Context, records []VectorRecord) error
	Close() error
}

// PointID derives the deterministic point id for a record of the given kind.
// Qdrant only accepts UUID or integer ids, so record ids are hashed.
func PointID(kind, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(kind+":"+key)).String()
}
