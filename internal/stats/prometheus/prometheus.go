// Package prometheus provides a Prometheus-based stats collector.
package prometheus

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/splatkit/spz/internal/stats"
)

// Collector implements stats.Collector using Prometheus metrics.
// Metrics are created and registered on first use.
type Collector struct {
	registry prometheus.Registerer

	counters   family[prometheus.Counter]
	gauges     family[prometheus.Gauge]
	histograms family[prometheus.Histogram]
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a new Prometheus collector.
// If registry is nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	return &Collector{registry: registry}
}

// IncCounter increments a counter metric.
func (c *Collector) IncCounter(name string, delta int64) {
	c.getOrCreateCounter(name).Add(float64(delta))
}

// SetGauge sets a gauge metric.
func (c *Collector) SetGauge(name string, value int64) {
	c.getOrCreateGauge(name).Set(float64(value))
}

// ObserveHistogram records a value in a histogram.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.getOrCreateHistogram(name).Observe(value)
}

func (c *Collector) getOrCreateCounter(name string) prometheus.Counter {
	return c.counters.get(c.registry, name, func() prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Name: name,
			Help: stats.Help(name),
		})
	})
}

func (c *Collector) getOrCreateGauge(name string) prometheus.Gauge {
	return c.gauges.get(c.registry, name, func() prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Name: name,
			Help: stats.Help(name),
		})
	})
}

func (c *Collector) getOrCreateHistogram(name string) prometheus.Histogram {
	return c.histograms.get(c.registry, name, func() prometheus.Histogram {
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    name,
			Help:    stats.Help(name),
			Buckets: buckets(name),
		})
	})
}

// family holds the metrics of one kind, keyed by name.
type family[M prometheus.Collector] struct {
	mu      sync.RWMutex
	metrics map[string]M
}

func (f *family[M]) get(reg prometheus.Registerer, name string, create func() M) M {
	f.mu.RLock()
	m, ok := f.metrics[name]
	f.mu.RUnlock()
	if ok {
		return m
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok = f.metrics[name]; ok {
		return m
	}
	if f.metrics == nil {
		f.metrics = make(map[string]M)
	}

	m = create()
	if err := reg.Register(m); err != nil {
		// Another collector on the same registry owns the name; share it.
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(M); ok {
				m = existing
			}
		}
	}
	f.metrics[name] = m
	return m
}

// buckets returns histogram buckets suited to the metric.
func buckets(name string) []float64 {
	switch name {
	case stats.MetricCompressionRatio:
		// Output/input size; SPZ is typically a tenth of the PLY.
		return prometheus.LinearBuckets(0.025, 0.025, 20)
	default:
		return prometheus.DefBuckets
	}
}

// WriteText writes every metric gathered from g in the Prometheus text
// exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encoding %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
