// Package diskspzfx provides an fx module for a disk-backed splat converter.
package diskspzfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/splatkit/spz"
	"github.com/splatkit/spz/internal/codec/noopcodec"
	"github.com/splatkit/spz/internal/stats"
	"github.com/splatkit/spz/internal/stats/logger"
	"github.com/splatkit/spz/internal/store/cachedstore"
	"github.com/splatkit/spz/internal/store/cachedstore/cachestrategy/lru"
	"github.com/splatkit/spz/internal/store/cachedstore/memory"
	"github.com/splatkit/spz/internal/store/diskstore"
)

// Config holds configuration for the disk-backed converter.
type Config struct {
	// Dir is the directory holding the splat files.
	Dir string

	// CacheSize is the number of files to cache in memory.
	// Default is 16; splat files are large.
	CacheSize int

	// FractionalBits is the packed position precision.
	// Zero selects spz.DefaultFractionalBits.
	FractionalBits uint8
}

// Module provides a disk-backed *spz.Converter.
// Requires a Config and a *zap.Logger to be provided.
var Module = fx.Module("diskspz",
	fx.Provide(
		newStatsCollector,
		newConverter,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("spz"))
}

// Params holds dependencies for creating the converter.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided converter.
type Result struct {
	fx.Out

	Converter *spz.Converter
}

func newConverter(p Params) (Result, error) {
	cacheSize := p.Config.CacheSize
	if cacheSize <= 0 {
		cacheSize = 16
	}
	bits := p.Config.FractionalBits
	if bits == 0 {
		bits = spz.DefaultFractionalBits
	}

	baseStore, err := diskstore.New(p.Config.Dir, noopcodec.New())
	if err != nil {
		return Result{}, err
	}

	lruStrategy, err := lru.New(cacheSize)
	if err != nil {
		return Result{}, err
	}

	st := cachedstore.New(baseStore, memory.New(lruStrategy, p.Collector))

	conv, err := spz.New(
		spz.WithStore(st),
		spz.WithStats(p.Collector),
		spz.WithLogger(p.Logger.Named("spz")),
		spz.WithFractionalBits(bits),
	)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return conv.Close()
		},
	})

	return Result{Converter: conv}, nil
}
