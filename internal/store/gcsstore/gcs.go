// Package gcsstore implements a Google Cloud Storage backend.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"cloud.google.com/go/storage"
	"go.uber.org/multierr"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/splatkit/spz/internal/codec"
	"github.com/splatkit/spz/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a Google Cloud Storage backend.
type Store struct {
	client     *storage.Client
	bucket     *storage.BucketHandle
	prefix     string
	codec      codec.Codec
	clientOpts []option.ClientOption
}

// New creates a new GCS store.
// The bucket must already exist.
// The codec compresses objects at rest and its extension is appended to
// every object key.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Store, error) {
	s := &Store{codec: c}
	for _, opt := range opts {
		opt(s)
	}

	client, err := storage.NewClient(ctx, s.clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}
	s.client = client
	s.bucket = client.Bucket(bucketName)

	return s, nil
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = store.NormalizePrefix(prefix)
	}
}

// WithClientOptions passes options to the underlying storage client,
// such as option.WithEndpoint for an emulator.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(s *Store) {
		s.clientOpts = append(s.clientOpts, opts...)
	}
}

// ParsePath parses "gs://bucket/prefix" into bucket and prefix.
func ParsePath(gcsPath string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(gcsPath, "gs://") {
		return "", "", fmt.Errorf("invalid GCS path: must start with gs://")
	}

	path := strings.TrimPrefix(gcsPath, "gs://")
	parts := strings.SplitN(path, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid GCS path: missing bucket name")
	}

	bucket = parts[0]
	if len(parts) > 1 {
		prefix = store.NormalizePrefix(parts[1])
	}
	return bucket, prefix, nil
}

// Read reads and decompresses the named object.
func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	// Check for cancellation before starting.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	key, err := s.key(name)
	if err != nil {
		return nil, err
	}

	reader, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	defer reader.Close()

	decompressor, err := s.codec.Reader(reader)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	defer decompressor.Close()

	data, err := io.ReadAll(decompressor)
	if err != nil {
		return nil, fmt.Errorf("decompressing object: %w", err)
	}

	return data, nil
}

// Write compresses data and uploads it as the named object.
func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	key, err := s.key(name)
	if err != nil {
		return err
	}

	// Canceling ctx aborts the upload so a partial object is never committed.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer := s.bucket.Object(key).NewWriter(ctx)
	compressor, err := s.codec.Writer(writer)
	if err != nil {
		cancel()
		writer.Close()
		return fmt.Errorf("creating compressor: %w", err)
	}

	if _, err := compressor.Write(data); err != nil {
		cancel()
		return multierr.Combine(fmt.Errorf("writing object: %w", err), writer.Close())
	}
	if err := compressor.Close(); err != nil {
		cancel()
		return multierr.Combine(fmt.Errorf("closing compressor: %w", err), writer.Close())
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("uploading object: %w", err)
	}
	return nil
}

// List returns the sorted names of objects under the store prefix that start
// with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: s.prefix + prefix})

	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}
		if name, ok := s.name(attrs.Name); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return s.client.Close()
}

// key returns the full object key for a file name.
func (s *Store) key(name string) (string, error) {
	name, err := store.CleanName(name)
	if err != nil {
		return "", err
	}
	if ext := s.codec.Extension(); ext != "" {
		name += "." + ext
	}
	return s.prefix + name, nil
}

// name maps an object key back to a file name. Keys without the codec
// extension do not belong to the store.
func (s *Store) name(key string) (string, bool) {
	name := strings.TrimPrefix(key, s.prefix)
	if ext := s.codec.Extension(); ext != "" {
		if !strings.HasSuffix(name, "."+ext) {
			return "", false
		}
		name = strings.TrimSuffix(name, "."+ext)
	}
	return name, name != ""
}
