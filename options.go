package spz

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/splatkit/spz/internal/codec"
	"github.com/splatkit/spz/internal/codec/gzipcodec"
	"github.com/splatkit/spz/internal/codec/noopcodec"
	"github.com/splatkit/spz/internal/stats"
	"github.com/splatkit/spz/internal/store"
	"github.com/splatkit/spz/internal/store/diskstore"
)

// Option configures a Converter.
type Option interface {
	apply(*options)
}

// options holds the converter configuration.
type options struct {
	store          store.Store
	stats          stats.Collector
	logger         *zap.Logger
	fractionalBits uint8
	container      codec.Codec
	antialiased    bool
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		stats:          stats.NewNoop(),
		logger:         zap.NewNop(),
		fractionalBits: DefaultFractionalBits,
		container:      gzipcodec.New(), // Standard SPZ files are gzip streams.
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithStore sets the storage backend to use.
func WithStore(s store.Store) Option {
	return optionFunc(func(o *options) {
		o.store = s
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithFractionalBits sets the fixed-point precision of packed positions.
// Default is 12, about a quarter millimeter for scenes in meters.
func WithFractionalBits(bits uint8) Option {
	return optionFunc(func(o *options) {
		o.fractionalBits = bits
	})
}

// WithContainerCodec sets the compressor wrapping SPZ files.
// Only gzip produces files readable by other SPZ tools.
func WithContainerCodec(c codec.Codec) Option {
	return optionFunc(func(o *options) {
		o.container = c
	})
}

// WithAntialiased marks SPZ output produced from PLY input as antialiased.
// PLY files have no field for the flag.
func WithAntialiased(v bool) Option {
	return optionFunc(func(o *options) {
		o.antialiased = v
	})
}

// WithDir configures the converter to read and write plain files in dir.
func WithDir(dir string) (Option, error) {
	st, err := diskstore.New(dir, noopcodec.New())
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}
	return WithStore(st), nil
}
