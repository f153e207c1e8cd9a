// Package memoryspzfx provides an fx module for an in-memory splat converter.
// Useful for testing.
package memoryspzfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/splatkit/spz"
	"github.com/splatkit/spz/internal/stats"
	"github.com/splatkit/spz/internal/stats/logger"
	"github.com/splatkit/spz/internal/store/memstore"
)

// Module provides an in-memory *spz.Converter and its *memstore.Store,
// exposed for test setup. Requires a *zap.Logger to be provided.
var Module = fx.Module("memoryspz",
	fx.Provide(
		newStatsCollector,
		memstore.New,
		newConverter,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("spz"))
}

// Params holds dependencies for creating the converter.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Store     *memstore.Store
	Lifecycle fx.Lifecycle
}

func newConverter(p Params) (*spz.Converter, error) {
	conv, err := spz.New(
		spz.WithStore(p.Store),
		spz.WithStats(p.Collector),
		spz.WithLogger(p.Logger.Named("spz")),
	)
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return conv.Close()
		},
	})

	return conv, nil
}
