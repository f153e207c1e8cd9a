// Package store defines the storage backend interface for splat files.
package store

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	// ErrNotFound is returned when a file does not exist in the store.
	ErrNotFound = errors.New("store: file not found")

	// ErrReadOnly is returned by stores that cannot be written to.
	ErrReadOnly = errors.New("store: read-only store")

	// ErrListUnsupported is returned by stores that cannot enumerate files.
	ErrListUnsupported = errors.New("store: listing not supported")

	// ErrInvalidName is returned for names that escape the store root.
	ErrInvalidName = errors.New("store: invalid file name")
)

// Store defines the interface for storage backends.
// Names are slash separated paths relative to the store root, such as
// "scenes/garden.ply". Implementations handle path formats and blob
// compression internally.
type Store interface {
	// Read returns the content of the named file.
	Read(ctx context.Context, name string) ([]byte, error)

	// Write replaces the content of the named file.
	Write(ctx context.Context, name string, data []byte) error

	// List returns the sorted names of all files whose name starts with prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// CleanName validates name and returns it in canonical form.
func CleanName(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return clean, nil
}

// NormalizePrefix trims a trailing slash from prefix and appends exactly one,
// leaving an empty prefix empty.
func NormalizePrefix(prefix string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return prefix
}
