// Package diskstore implements a disk-based filesystem storage backend.
package diskstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/multierr"

	"github.com/splatkit/spz/internal/codec"
	"github.com/splatkit/spz/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a disk-based filesystem storage backend.
type Store struct {
	root  string
	codec codec.Codec
}

// New creates a new disk store rooted at the given directory.
// The directory must exist. The codec compresses files at rest and its
// extension is appended to every file name on disk.
func New(root string, codec codec.Codec) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	return &Store{
		root:  root,
		codec: codec,
	}, nil
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

// Read reads and decompresses the named file.
func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	// Check for cancellation before starting I/O.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	compressed, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("reading file: %w", err)
	}

	reader, err := s.codec.Reader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("decompressing file: %w", err)
	}

	return data, nil
}

// Write compresses data and atomically replaces the named file.
// Missing parent directories are created.
func (s *Store) Write(ctx context.Context, name string, data []byte) (err error) {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path, err := s.path(name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	writer, err := s.codec.Writer(tmp)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("creating compressor: %w", err)
	}
	_, err = writer.Write(data)
	err = multierr.Combine(err, writer.Close(), tmp.Close())
	if err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// List returns the sorted names under the root starting with prefix.
// Temporary files and files without the codec extension are skipped.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	suffix := s.suffix()
	var names []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !strings.HasSuffix(rel, suffix) {
			return nil
		}
		name := strings.TrimSuffix(rel, suffix)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// Close releases any resources held by the store.
func (s *Store) Close() error {
	return nil
}

// path returns the filesystem path for a file name.
func (s *Store) path(name string) (string, error) {
	name, err := store.CleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(name)+s.suffix()), nil
}

// suffix returns the on-disk suffix added by the codec.
func (s *Store) suffix() string {
	if ext := s.codec.Extension(); ext != "" {
		return "." + ext
	}
	return ""
}
