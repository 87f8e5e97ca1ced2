// Package memory provides an in-process KeyValueStore.
package memory

import (
	"context"
	"slices"
	"sync"
)

// Store is a map-backed KeyValueStore. Values are copied on the way in and out.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
	name string
}

// New creates an empty store. name is reported by the health check.
func New(name string) *Store {
	return &Store{data: make(map[string][]byte), name: name}
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}

	return slices.Clone(v), true, nil
}

// Set replaces the value stored under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = slices.Clone(value)

	return nil
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return s.name
}

// Check implements ports.HealthChecker. A memory store is always reachable.
func (s *Store) Check(_ context.Context) error {
	return nil
}

// Close is a no-op so Store can be swapped for the file-backed adapters.
func (s *Store) Close() error {
	return nil
}
