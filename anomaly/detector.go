// Package anomaly flags outliers in every series of a table with up to four
// independent tests: an IQR fence, a population z-score, the relative
// deviation from a centered moving average, and a single-pass Grubbs test.
//
// A cell of the resulting Mask is true when any selected test flags it.
// Missing values are never flagged, degenerate series (no spread, too few
// points, a vanishing moving average) produce no flags, and the computation
// holds no state between calls.
package anomaly

import (
	"minestat/table"
)

// Detect runs the selected methods over every series of t and ORs their
// flags together. The mask has the rows and series of t. An error is
// returned only for a config that fails Validate.
func Detect(t *table.Table, cfg Config) (*Mask, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mask := NewMask(t.Index(), t.Names())
	for _, method := range Methods() {
		if !cfg.Has(method) {
			continue
		}
		detect := detectors[method]
		for c, s := range t.Series() {
			orInto(mask.flags[c], detect(s.Values, cfg))
		}
	}
	return mask, nil
}

// DetectSeries runs the selected methods over a single series.
func DetectSeries(values []float64, cfg Config) ([]bool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	flags := make([]bool, len(values))
	for _, method := range Methods() {
		if cfg.Has(method) {
			orInto(flags, detectors[method](values, cfg))
		}
	}
	return flags, nil
}
