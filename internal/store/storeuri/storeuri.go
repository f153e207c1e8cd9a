// Package storeuri opens a store.Store from a location string such as
// "./scenes", "gs://bucket/prefix", "s3://bucket/prefix" or
// "https://host/base".
package storeuri

import (
	"context"
	"fmt"
	"strings"

	"github.com/splatkit/spz/internal/codec"
	"github.com/splatkit/spz/internal/codec/noopcodec"
	"github.com/splatkit/spz/internal/stats"
	"github.com/splatkit/spz/internal/store"
	"github.com/splatkit/spz/internal/store/cachedstore"
	"github.com/splatkit/spz/internal/store/cachedstore/cachestrategy/lru"
	"github.com/splatkit/spz/internal/store/cachedstore/memory"
	"github.com/splatkit/spz/internal/store/diskstore"
	"github.com/splatkit/spz/internal/store/gcsstore"
	"github.com/splatkit/spz/internal/store/httpstore"
	"github.com/splatkit/spz/internal/store/memstore"
	"github.com/splatkit/spz/internal/store/s3store"
)

// Scheme identifies a store backend.
type Scheme string

// Supported schemes.
const (
	SchemeDisk   Scheme = "file"
	SchemeGCS    Scheme = "gs"
	SchemeS3     Scheme = "s3"
	SchemeHTTP   Scheme = "http"
	SchemeMemory Scheme = "mem"
)

// Option configures Open.
type Option func(*options)

type options struct {
	codec     codec.Codec
	cacheSize int
	collector stats.Collector
	s3Region  string
}

// WithBlobCodec compresses stored files at rest with c.
func WithBlobCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithCache wraps the store with an LRU read cache of size entries.
func WithCache(size int, collector stats.Collector) Option {
	return func(o *options) {
		o.cacheSize = size
		o.collector = collector
	}
}

// WithS3Region sets the AWS region for s3:// locations.
func WithS3Region(region string) Option {
	return func(o *options) {
		o.s3Region = region
	}
}

// SchemeOf returns the backend scheme for location.
func SchemeOf(location string) Scheme {
	switch {
	case strings.HasPrefix(location, "gs://"):
		return SchemeGCS
	case strings.HasPrefix(location, "s3://"):
		return SchemeS3
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return SchemeHTTP
	case strings.HasPrefix(location, "mem://"):
		return SchemeMemory
	default:
		return SchemeDisk
	}
}

// Open returns the store for location.
func Open(ctx context.Context, location string, opts ...Option) (store.Store, error) {
	o := options{codec: noopcodec.New()}
	for _, opt := range opts {
		opt(&o)
	}

	s, err := open(ctx, location, o)
	if err != nil {
		return nil, err
	}
	if o.cacheSize <= 0 {
		return s, nil
	}

	strategy, err := lru.New(o.cacheSize)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating cache: %w", err)
	}
	return cachedstore.New(s, memory.New(strategy, o.collector)), nil
}

func open(ctx context.Context, location string, o options) (store.Store, error) {
	switch SchemeOf(location) {
	case SchemeGCS:
		bucket, prefix, err := gcsstore.ParsePath(location)
		if err != nil {
			return nil, err
		}
		return gcsstore.New(ctx, bucket, o.codec, gcsstore.WithPrefix(prefix))

	case SchemeS3:
		bucket, prefix, err := s3store.ParsePath(location)
		if err != nil {
			return nil, err
		}
		s3opts := []s3store.Option{s3store.WithPrefix(prefix)}
		if o.s3Region != "" {
			s3opts = append(s3opts, s3store.WithRegion(o.s3Region))
		}
		return s3store.New(ctx, bucket, o.codec, s3opts...)

	case SchemeHTTP:
		return httpstore.New(location)

	case SchemeMemory:
		return memstore.New(), nil

	default:
		dir := strings.TrimPrefix(location, "file://")
		if dir == "" {
			dir = "."
		}
		return diskstore.New(dir, o.codec)
	}
}
