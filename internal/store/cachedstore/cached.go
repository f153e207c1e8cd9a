package cachedstore

import (
	"context"

	"github.com/splatkit/spz/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store wraps another Store with a read cache. Writes go to the underlying
// store first and refresh the cache only once they succeed.
type Store struct {
	underlying store.Store
	backend    Backend
}

// New creates a new cached store wrapping the given store.
func New(underlying store.Store, backend Backend) *Store {
	return &Store{
		underlying: underlying,
		backend:    backend,
	}
}

// Read reads a file, checking the cache first.
func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	name, err := store.CleanName(name)
	if err != nil {
		return nil, err
	}

	if data, ok := s.backend.Get(name); ok {
		return data, nil
	}

	// Cache miss - read from underlying store.
	data, err := s.underlying.Read(ctx, name)
	if err != nil {
		return nil, err
	}

	s.backend.Set(name, data)

	return data, nil
}

// Write writes through to the underlying store and caches data on success.
func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	name, err := store.CleanName(name)
	if err != nil {
		return err
	}
	if err := s.underlying.Write(ctx, name, data); err != nil {
		return err
	}
	s.backend.Set(name, data)
	return nil
}

// List is served by the underlying store.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	return s.underlying.List(ctx, prefix)
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.underlying.Close()
}

// Stats returns cache statistics.
func (s *Store) Stats() Stats {
	return s.backend.Stats()
}
