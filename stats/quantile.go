package stats

import (
	"math"
	"sort"

	"minestat/table"
)

// Quantile returns the p-quantile of sorted using linear interpolation
// between closest ranks: position (n-1)*p. NaN for empty input.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}

	pos := float64(n-1) * p
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

type Quartiles struct {
	Q1     float64
	Median float64
	Q3     float64
}

func (q Quartiles) IQR() float64 {
	return q.Q3 - q.Q1
}

// QuartilesOf computes the quartiles of the non-missing values. All fields
// are NaN when nothing is observed.
func QuartilesOf(values []float64) Quartiles {
	sorted := sortedObserved(values)
	return Quartiles{
		Q1:     Quantile(sorted, 0.25),
		Median: Quantile(sorted, 0.5),
		Q3:     Quantile(sorted, 0.75),
	}
}

func sortedObserved(values []float64) []float64 {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !table.IsMissing(v) {
			sorted = append(sorted, v)
		}
	}
	sort.Float64s(sorted)
	return sorted
}
