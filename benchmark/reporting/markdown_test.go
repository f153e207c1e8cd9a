package reporting

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/splatkit/spz/benchmark/fidelity"
	"github.com/splatkit/spz/benchmark/sweep"
)

func TestMakeHistogram(t *testing.T) {
	hist, lo, width := makeHistogram([]float64{0, 0.5, 1, 1, 2}, 4)
	if lo != 0 || width != 0.5 {
		t.Errorf("makeHistogram() lo %v width %v, want 0 0.5", lo, width)
	}
	want := []int{1, 1, 2, 1}
	for i := range want {
		if hist[i] != want[i] {
			t.Errorf("hist[%d] = %d, want %d", i, hist[i], want[i])
		}
	}

	hist, _, width = makeHistogram([]float64{3, 3}, 2)
	if hist[0] != 2 || width != 1 {
		t.Errorf("constant data hist %v width %v", hist, width)
	}
}

func TestMarkdownReport(t *testing.T) {
	errs := &fidelity.Errors{
		Position: []float64{0.001, 0.002},
		Rotation: []float64{1, 2},
		SH:       []float64{0.01},
	}
	results := map[string]*sweep.AggregateResult{
		"gzip:12": {Setting: "gzip:12", Clouds: 1, Points: 2, PLYBytes: 1000, SPZBytes: 100, EncodeTime: time.Millisecond, Errors: errs},
		"none:12": {Setting: "none:12", Clouds: 1, Points: 2, PLYBytes: 1000, SPZBytes: 300, EncodeTime: time.Millisecond, Errors: errs},
	}

	var buf bytes.Buffer
	r := NewMarkdownReport(&buf)
	r.WriteHeader("Splat Packing Benchmark")
	r.WriteMethodology(1, 2)
	r.WriteSummaryTable(results)
	r.WriteErrorTable(results["gzip:12"])
	r.WriteComparison(fidelity.CompareSettings("gzip:12", errs, "none:12", errs, fidelity.Position, 10, 0.95))
	r.WriteDistributionChart("Position", errs.Position)
	r.WriteFooter()

	out := buf.String()
	for _, want := range []string{
		"# Splat Packing Benchmark",
		"- **Splats:** 2",
		"| gzip:12 | 10.0% | 50.00 |",
		"| position |",
		"No statistically significant difference",
		"*Report generated by spz-bench*",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "| gzip:12 | 10.0%") > strings.Index(out, "| none:12 | 30.0%") {
		t.Error("summary table not sorted by size")
	}
	if strings.Contains(out, "| scale |") {
		t.Error("error table lists attribute without samples")
	}
}
