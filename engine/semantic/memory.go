package semantic

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store. It backs local runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	dims    int
	records map[string]VectorRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]VectorRecord)}
}

func (m *MemoryStore) EnsureCollection(_ context.Context, dims int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dims == 0 {
		m.dims = dims
	}
	return nil
}

// Upsert stores deep copies of records, replacing entries with the same ID.
func (m *MemoryStore) Upsert(_ context.Context, records []VectorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		emb := make([]float32, len(r.Embedding))
		copy(emb, r.Embedding)
		payload := make(map[string]any, len(r.Payload))
		for k, v := range r.Payload {
			payload[k] = v
		}
		m.records[r.ID] = VectorRecord{ID: r.ID, Key: r.Key, Embedding: emb, Payload: payload}
	}
	return nil
}

// Get returns the record stored under a point id.
func (m *MemoryStore) Get(id string) (VectorRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	return r, ok
}

// Len returns the number of stored points.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Keys returns the record keys in sorted order.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.records))
	for _, r := range m.records {
		keys = append(keys, r.Key)
	}
	sort.Strings(keys)
	return keys
}

func (m *MemoryStore) Close() error { return nil }
