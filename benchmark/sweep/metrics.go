package sweep

import (
	"sort"

	"github.com/splatkit/spz/benchmark/fidelity"
)

// Metrics contains computed metrics for one setting.
type Metrics struct {
	Setting       string
	Ratio         float64
	BytesPerPoint float64
	PointsPerSec  float64 // encode throughput

	// Error distribution per attribute.
	Errors map[fidelity.Attribute]*fidelity.DescriptiveStats
}

// ComputeMetrics computes detailed metrics from aggregate results.
func ComputeMetrics(result *AggregateResult) *Metrics {
	m := &Metrics{
		Setting:       result.Setting,
		Ratio:         result.Ratio(),
		BytesPerPoint: result.BytesPerPoint(),
		Errors:        result.Errors.Summary(),
	}
	if secs := result.EncodeTime.Seconds(); secs > 0 {
		m.PointsPerSec = float64(result.Points) / secs
	}
	return m
}

// SortedNames returns the setting names of results in ascending size order.
func SortedNames(results map[string]*AggregateResult) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := results[names[i]], results[names[j]]
		if a.SPZBytes != b.SPZBytes {
			return a.SPZBytes < b.SPZBytes
		}
		return names[i] < names[j]
	})
	return names
}

// MetricsComparison holds differences between two settings.
type MetricsComparison struct {
	Setting1 string
	Setting2 string

	RatioDiff         float64 // Positive means Setting1 is larger.
	BytesPerPointDiff float64
	SizeDiffPct       float64
	PositionRMSDiff   float64
}

// Compare compares two metrics and returns the differences.
func Compare(m1, m2 *Metrics) *MetricsComparison {
	return &MetricsComparison{
		Setting1:          m1.Setting,
		Setting2:          m2.Setting,
		RatioDiff:         m1.Ratio - m2.Ratio,
		BytesPerPointDiff: m1.BytesPerPoint - m2.BytesPerPoint,
		SizeDiffPct:       safeDiffPct(m1.BytesPerPoint, m2.BytesPerPoint),
		PositionRMSDiff:   m1.Errors[fidelity.Position].RMS - m2.Errors[fidelity.Position].RMS,
	}
}

func safeDiffPct(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return (a - b) / b * 100
}
