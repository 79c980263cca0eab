package window

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Mean returns the rolling mean of values over the centered window. A row is
// NaN when its window does not fit in the series or holds a missing (NaN)
// value. Each window is summed on its own so earlier magnitudes never leak
// into later means.
func (c *Centered) Mean(values []float64) []float64 {
	n := len(values)
	out := make([]float64, n)

	// gaps[i] counts missing values in values[:i]
	gaps := make([]int, n+1)
	for i, v := range values {
		gaps[i+1] = gaps[i]
		if math.IsNaN(v) {
			gaps[i+1]++
		}
	}

	for i := range out {
		start, end, ok := c.Span(i, n)
		if !ok || gaps[end]-gaps[start] > 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = floats.Sum(values[start:end]) / float64(c.size)
	}
	return out
}
