package fidelity

import "fmt"

// SettingComparison compares the error of one attribute under two packing
// settings.
type SettingComparison struct {
	Attribute       Attribute
	Setting1        string
	Setting2        string
	Stats1          *DescriptiveStats
	Stats2          *DescriptiveStats
	MannWhitney     *MannWhitneyResult
	EffectSize      *EffectSize
	BootstrapCI     *BootstrapResult
	Winner          string // Setting with the lower mean error, or "tie".
	WinnerConfident bool   // True if statistically significant.
}

// CompareSettings compares attr errors from two settings.
func CompareSettings(
	name1 string, errs1 *Errors,
	name2 string, errs2 *Errors,
	attr Attribute,
	bootstrapIterations int,
	confidence float64,
) *SettingComparison {
	sample1 := errs1.Samples(attr)
	sample2 := errs2.Samples(attr)

	mw := MannWhitneyU(sample1, sample2)
	stats1 := Describe(sample1)
	stats2 := Describe(sample2)

	winner, confident := "tie", false
	switch {
	case stats1.Mean < stats2.Mean:
		winner, confident = name1, mw.Significant
	case stats2.Mean < stats1.Mean:
		winner, confident = name2, mw.Significant
	}

	return &SettingComparison{
		Attribute:       attr,
		Setting1:        name1,
		Setting2:        name2,
		Stats1:          stats1,
		Stats2:          stats2,
		MannWhitney:     mw,
		EffectSize:      ComputeEffectSize(sample1, sample2),
		BootstrapCI:     BootstrapConfidenceInterval(sample1, sample2, bootstrapIterations, confidence),
		Winner:          winner,
		WinnerConfident: confident,
	}
}

// Summary returns a human-readable summary of the comparison.
func (c *SettingComparison) Summary() string {
	sig := "not statistically significant"
	if c.MannWhitney.Significant {
		sig = fmt.Sprintf("statistically significant (p=%.4f)", c.MannWhitney.PValue)
	}

	return fmt.Sprintf(
		"%s error, %s vs %s:\n"+
			"  %s: mean=%.4g, median=%.4g, max=%.4g\n"+
			"  %s: mean=%.4g, median=%.4g, max=%.4g\n"+
			"  Difference: %.4g (%.1f%%)\n"+
			"  Effect size: %.2f (%s)\n"+
			"  Result: %s, %s",
		c.Attribute, c.Setting1, c.Setting2,
		c.Setting1, c.Stats1.Mean, c.Stats1.Median, c.Stats1.Max,
		c.Setting2, c.Stats2.Mean, c.Stats2.Median, c.Stats2.Max,
		c.Stats1.Mean-c.Stats2.Mean,
		safePctDiff(c.Stats1.Mean, c.Stats2.Mean),
		c.EffectSize.CohensD, c.EffectSize.Interpretation,
		c.Winner, sig,
	)
}

func safePctDiff(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return (a - b) / b * 100
}
