package db

import (
	"context"
	"sync"

	"github.com/jonathan/bio-generator/internal/types"
)

// maxMemoryGenerations bounds how many generations MemoryStore keeps.
const maxMemoryGenerations = 1000

// MemoryStore is an in-process Store. The bio count survives eviction of old
// generations.
type MemoryStore struct {
	mu    sync.RWMutex
	gens  []types.Generation
	total int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// RecordGeneration stores gen
func (m *MemoryStore) RecordGeneration(_ context.Context, gen types.Generation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gens = append(m.gens, gen)
	if len(m.gens) > maxMemoryGenerations {
		m.gens = m.gens[len(m.gens)-maxMemoryGenerations:]
	}
	m.total += int64(len(gen.Bios))
	return nil
}

// CountBios returns the number of bios recorded
func (m *MemoryStore) CountBios(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total, nil
}

// RecentGenerations returns up to limit generations, newest first
func (m *MemoryStore) RecentGenerations(_ context.Context, limit int) ([]types.Generation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := min(limit, len(m.gens))
	out := make([]types.Generation, 0, n)
	for i := len(m.gens) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.gens[i])
	}
	return out, nil
}

// Close is a no-op
func (m *MemoryStore) Close() {}
