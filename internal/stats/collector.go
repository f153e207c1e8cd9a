// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Converter metrics.
	MetricLoads             = "spz_loads_total"
	MetricSaves             = "spz_saves_total"
	MetricConversions       = "spz_conversions_total"
	MetricConversionErrors  = "spz_conversion_errors_total"
	MetricPoints            = "spz_points_total"
	MetricBytesRead         = "spz_bytes_read_total"
	MetricBytesWritten      = "spz_bytes_written_total"
	MetricCompressionRatio  = "spz_compression_ratio"
	MetricConversionSeconds = "spz_conversion_seconds"

	// Cache metrics.
	MetricCacheHits   = "spz_cache_hits_total"
	MetricCacheMisses = "spz_cache_misses_total"
	MetricCacheSize   = "spz_cache_size"
)

var help = map[string]string{
	MetricLoads:             "Splat files loaded from the store.",
	MetricSaves:             "Splat files saved to the store.",
	MetricConversions:       "Completed PLY/SPZ conversions.",
	MetricConversionErrors:  "Failed PLY/SPZ conversions.",
	MetricPoints:            "Splats decoded across all loads.",
	MetricBytesRead:         "Encoded bytes read from the store.",
	MetricBytesWritten:      "Encoded bytes written to the store.",
	MetricCompressionRatio:  "Output size divided by input size per conversion.",
	MetricConversionSeconds: "Wall time per conversion.",
	MetricCacheHits:         "Store cache hits.",
	MetricCacheMisses:       "Store cache misses.",
	MetricCacheSize:         "Entries held by the store cache.",
}

// Help returns the description of a metric, or the name itself for
// metrics not declared in this package.
func Help(name string) string {
	if h, ok := help[name]; ok {
		return h
	}
	return name
}

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
