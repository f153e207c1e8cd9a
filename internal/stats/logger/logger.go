// Package logger provides a zap-based stats collector that logs metrics.
package logger

import (
	"maps"
	"sync"

	"go.uber.org/zap"

	"github.com/splatkit/spz/internal/stats"
)

// Collector implements stats.Collector by logging metrics via zap.
// Counter totals are kept so each log line carries the running value.
type Collector struct {
	logger *zap.Logger

	mu       sync.Mutex
	counters map[string]int64
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a new logger-based collector.
// If logger is nil, a no-op logger is used.
func New(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		logger:   logger.Named("stats"),
		counters: make(map[string]int64),
	}
}

// IncCounter logs a counter increment and its new total.
func (c *Collector) IncCounter(name string, delta int64) {
	c.mu.Lock()
	c.counters[name] += delta
	total := c.counters[name]
	c.mu.Unlock()

	c.logger.Debug("counter",
		zap.String("metric", name),
		zap.Int64("delta", delta),
		zap.Int64("total", total),
	)
}

// SetGauge logs a gauge value.
func (c *Collector) SetGauge(name string, value int64) {
	c.logger.Debug("gauge",
		zap.String("metric", name),
		zap.Int64("value", value),
	)
}

// ObserveHistogram logs a histogram observation.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.logger.Debug("histogram",
		zap.String("metric", name),
		zap.Float64("value", value),
	)
}

// Counters returns a copy of the counter totals.
func (c *Collector) Counters() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.counters)
}
