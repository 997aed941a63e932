package semantic

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// pgConn is the subset of *pgxpool.Pool the store uses.
type pgConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// PgStore is a Store backed by a Postgres table with a pgvector column.
type PgStore struct {
	pool  *pgxpool.Pool
	db    pgConn
	table string
}

// NewPgStore connects to Postgres and targets the given table.
func NewPgStore(ctx context.Context, dsn, table string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("semantic: connect postgres: %w", err)
	}
	return &PgStore{pool: pool, db: pool, table: pgx.Identifier{table}.Sanitize()}, nil
}

// EnsureCollection creates the vector extension and table if missing.
func (s *PgStore) EnsureCollection(ctx context.Context, dims int) error {
	ddl := fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS %s (
  id         text PRIMARY KEY,
  key        text NOT NULL,
  embedding  vector(%d) NOT NULL,
  metadata   jsonb NOT NULL,
  updated_at timestamptz NOT NULL DEFAULT now()
);`, s.table, dims)
	if _, err := s.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("semantic: ensure table %s: %w", s.table, err)
	}
	return nil
}

func (s *PgStore) upsertSQL() string {
	return fmt.Sprintf(`
INSERT INTO %s (id, key, embedding, metadata, updated_at)
VALUES ($1, $2, $3::text::vector, $4, now())
ON CONFLICT (id) DO UPDATE SET
  key = EXCLUDED.key,
  embedding = EXCLUDED.embedding,
  metadata = EXCLUDED.metadata,
  updated_at = now()`, s.table)
}

// Upsert writes all records in one implicit transaction.
func (s *PgStore) Upsert(ctx context.Context, records []VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	stmt := s.upsertSQL()
	batch := &pgx.Batch{}
	for _, r := range records {
		vec, err := pgvector.NewVector(r.Embedding).Value()
		if err != nil {
			return fmt.Errorf("semantic: encode vector %s: %w", r.ID, err)
		}
		batch.Queue(stmt, r.ID, r.Key, vec, r.Payload)
	}

	br := s.db.SendBatch(ctx, batch)
	defer br.Close()
	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("semantic: upsert %d rows into %s: %w", len(records), s.table, err)
		}
	}
	return nil
}

func (s *PgStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
