package persistence

import (
	"context"
	"sync"

	"github.com/brewline/storefront/internal/domain/shared"
)

// MemoryStateRepository keeps snapshots in process memory. Everything is lost
// on restart; it backs tests and the "memory" storage backend.
type MemoryStateRepository struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStateRepository creates an empty in-memory repository
func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{blobs: make(map[string][]byte)}
}

// Load returns a copy of the stored blob
func (r *MemoryStateRepository) Load(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.blobs[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data
func (r *MemoryStateRepository) Save(_ context.Context, key string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blobs[key] = append([]byte(nil), data...)
	return nil
}

// Ping always succeeds
func (r *MemoryStateRepository) Ping(context.Context) error {
	return nil
}

var _ shared.StateRepository = (*MemoryStateRepository)(nil)
