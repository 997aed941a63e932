package semantic

import (
	"context"
	"fmt"
	"net/url"
)

// Open returns the Store for a location URI and collection name.
//
//	qdrant://host:6334          Qdrant over gRPC
//	postgres://user:pw@host/db  Postgres with pgvector, one table per collection
//	memory://                   in-process map
func Open(ctx context.Context, location, collection string) (Store, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("semantic: parse store location: %w", err)
	}
	switch u.Scheme {
	case "qdrant":
		return NewQdrant(u.Host, collection)
	case "postgres", "postgresql":
		return NewPgStore(ctx, location, collection)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("semantic: unsupported store scheme %q", u.Scheme)
	}
}
