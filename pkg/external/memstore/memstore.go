// Package memstore is an in-memory external.ObjectStore, grounded on the
// teacher's pkg/core/knowledge.MemoryStore (mutex-guarded map, linear
// byte-range slicing in place of a real blob range-read).
package memstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"fddpipeline/pkg/external"
)

type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

var _ external.ObjectStore = (*Store)(nil)

func New() *Store {
	return &Store{objects: make(map[string][]byte)}
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("memstore: read %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("memstore: %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Store) GetRange(ctx context.Context, key string, start, end int64) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("memstore: %s not found", key)
	}
	if start < 0 || end > int64(len(data)) || start > end {
		return nil, fmt.Errorf("memstore: range [%d,%d) out of bounds for %s (len %d)", start, end, key, len(data))
	}
	return io.NopCloser(bytes.NewReader(data[start:end])), nil
}
