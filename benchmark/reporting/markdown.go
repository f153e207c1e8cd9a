// Package reporting provides report generation for benchmark results.
package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/splatkit/spz/benchmark/fidelity"
	"github.com/splatkit/spz/benchmark/sweep"
)

// MarkdownReport generates benchmark reports in Markdown format.
type MarkdownReport struct {
	w io.Writer
}

// NewMarkdownReport creates a new Markdown report writer.
func NewMarkdownReport(w io.Writer) *MarkdownReport {
	return &MarkdownReport{w: w}
}

// WriteHeader writes the report header.
func (r *MarkdownReport) WriteHeader(title string) {
	fmt.Fprintf(r.w, "# %s\n\n", title)
	fmt.Fprintf(r.w, "Generated: %s\n\n", time.Now().Format(time.RFC3339))
}

// WriteMethodology writes the methodology section.
func (r *MarkdownReport) WriteMethodology(cloudCount, pointCount int) {
	fmt.Fprintln(r.w, "## Methodology")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Clouds:** %d\n", cloudCount)
	fmt.Fprintf(r.w, "- **Splats:** %d\n", pointCount)
	fmt.Fprintln(r.w, "- **Metric:** SPZ size relative to binary PLY, and per-attribute error after a round trip")
	fmt.Fprintln(r.w, "- **Statistical tests:** Mann-Whitney U (non-parametric), Cohen's d effect size")
	fmt.Fprintln(r.w)
}

// WriteSummaryTable writes the summary table, smallest output first.
func (r *MarkdownReport) WriteSummaryTable(results map[string]*sweep.AggregateResult) {
	fmt.Fprintln(r.w, "## Summary")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Setting | Ratio | Bytes/Splat | Position RMS | Rotation P99 (deg) | Max SH Error |")
	fmt.Fprintln(r.w, "|---------|-------|-------------|--------------|--------------------|--------------|")

	for _, name := range sweep.SortedNames(results) {
		m := sweep.ComputeMetrics(results[name])
		fmt.Fprintf(r.w, "| %s | %.1f%% | %.2f | %.3g | %.2f | %.4f |\n",
			name, m.Ratio*100, m.BytesPerPoint,
			m.Errors[fidelity.Position].RMS,
			m.Errors[fidelity.Rotation].P99,
			m.Errors[fidelity.SH].Max)
	}
	fmt.Fprintln(r.w)
}

// WriteErrorTable writes every attribute's error distribution for one setting.
func (r *MarkdownReport) WriteErrorTable(result *sweep.AggregateResult) {
	fmt.Fprintf(r.w, "### %s Errors\n\n", result.Setting)
	fmt.Fprintln(r.w, "| Attribute | Mean | Median | P99 | Max |")
	fmt.Fprintln(r.w, "|-----------|------|--------|-----|-----|")
	summary := result.Errors.Summary()
	for _, attr := range fidelity.Attributes {
		s := summary[attr]
		if s.N == 0 {
			continue
		}
		fmt.Fprintf(r.w, "| %s | %.4g | %.4g | %.4g | %.4g |\n", attr, s.Mean, s.Median, s.P99, s.Max)
	}
	fmt.Fprintln(r.w)
}

// WriteComparison writes a detailed comparison section.
func (r *MarkdownReport) WriteComparison(comp *fidelity.SettingComparison) {
	fmt.Fprintf(r.w, "## %s vs %s (%s error)\n\n", comp.Setting1, comp.Setting2, comp.Attribute)

	fmt.Fprintln(r.w, "### Descriptive Statistics")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Metric | "+comp.Setting1+" | "+comp.Setting2+" |")
	fmt.Fprintln(r.w, "|--------|"+strings.Repeat("-", len(comp.Setting1)+2)+"|"+strings.Repeat("-", len(comp.Setting2)+2)+"|")
	fmt.Fprintf(r.w, "| Mean | %.4g | %.4g |\n", comp.Stats1.Mean, comp.Stats2.Mean)
	fmt.Fprintf(r.w, "| Median | %.4g | %.4g |\n", comp.Stats1.Median, comp.Stats2.Median)
	fmt.Fprintf(r.w, "| Std Dev | %.4g | %.4g |\n", comp.Stats1.StdDev, comp.Stats2.StdDev)
	fmt.Fprintf(r.w, "| Min | %.4g | %.4g |\n", comp.Stats1.Min, comp.Stats2.Min)
	fmt.Fprintf(r.w, "| Max | %.4g | %.4g |\n", comp.Stats1.Max, comp.Stats2.Max)
	fmt.Fprintln(r.w)

	fmt.Fprintln(r.w, "### Statistical Analysis")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Mann-Whitney U:** %.2f (z=%.2f, p=%.4f)\n",
		comp.MannWhitney.U, comp.MannWhitney.Z, comp.MannWhitney.PValue)
	fmt.Fprintf(r.w, "- **Effect size (Cohen's d):** %.2f (%s)\n",
		comp.EffectSize.CohensD, comp.EffectSize.Interpretation)
	fmt.Fprintf(r.w, "- **%.0f%% CI for mean difference:** [%.4g, %.4g]\n",
		comp.BootstrapCI.Confidence*100, comp.BootstrapCI.LowerBound, comp.BootstrapCI.UpperBound)
	fmt.Fprintln(r.w)

	fmt.Fprintln(r.w, "### Conclusion")
	fmt.Fprintln(r.w)
	if comp.WinnerConfident {
		fmt.Fprintf(r.w, "**%s** has significantly lower %s error than %s ",
			comp.Winner, comp.Attribute, otherSetting(comp.Winner, comp.Setting1, comp.Setting2))
		fmt.Fprintf(r.w, "(p < 0.05, effect size: %s).\n", comp.EffectSize.Interpretation)
	} else {
		fmt.Fprintln(r.w, "No statistically significant difference detected between settings (p >= 0.05).")
	}
	fmt.Fprintln(r.w)
}

func otherSetting(winner, s1, s2 string) string {
	if winner == s1 {
		return s2
	}
	return s1
}

// WriteDistributionChart writes an ASCII histogram of error samples.
func (r *MarkdownReport) WriteDistributionChart(name string, data []float64) {
	fmt.Fprintf(r.w, "### %s Distribution\n\n", name)
	fmt.Fprintln(r.w, "```")

	hist, lo, width := makeHistogram(data, 10)
	maxCount := 0
	for _, count := range hist {
		maxCount = max(maxCount, count)
	}

	const barWidth = 40
	for i, count := range hist {
		barLen := 0
		if maxCount > 0 {
			barLen = count * barWidth / maxCount
		}
		bar := strings.Repeat("█", barLen)
		fmt.Fprintf(r.w, "%9.3g │ %s %d\n", lo+float64(i)*width, bar, count)
	}

	fmt.Fprintln(r.w, "```")
	fmt.Fprintln(r.w)
}

// makeHistogram buckets data into equal-width bins and returns the counts,
// the lower edge and the bin width.
func makeHistogram(data []float64, buckets int) (hist []int, lo, width float64) {
	hist = make([]int, buckets)
	if len(data) == 0 {
		return hist, 0, 0
	}

	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	width = (hi - lo) / float64(buckets)
	if width == 0 {
		width = 1
	}

	for _, v := range data {
		bucket := int((v - lo) / width)
		if bucket >= buckets {
			bucket = buckets - 1
		}
		hist[bucket]++
	}
	return hist, lo, width
}

// WriteFooter writes the report footer.
func (r *MarkdownReport) WriteFooter() {
	fmt.Fprintln(r.w, "---")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "*Report generated by spz-bench*")
}
