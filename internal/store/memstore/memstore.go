// Package memstore provides an in-memory store implementation for testing.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/splatkit/spz/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is an in-memory store for testing.
type Store struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		files: make(map[string][]byte),
	}
}

// Set sets the data for a file (for test setup).
// The data is copied to prevent caller mutations from affecting the store.
func (s *Store) Set(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = slices.Clone(data)
}

// Read reads a file from memory.
func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	name, err := store.CleanName(name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.files[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	return data, nil
}

// Write stores a copy of data under name.
func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	name, err := store.CleanName(name)
	if err != nil {
		return err
	}
	s.Set(name, data)
	return nil
}

// List returns the sorted names starting with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for name := range s.files {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}
