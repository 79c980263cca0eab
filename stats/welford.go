package stats

import (
	"math"

	"minestat/table"
)

// Welford accumulates mean and variance in a single pass. Missing values
// are ignored.
type Welford struct {
	count uint64
	mean  float64
	m2    float64
}

func NewWelford() *Welford {
	return &Welford{
		count: 0,
		mean:  0,
		m2:    0,
	}
}

func (welford *Welford) Update(value float64) {
	if table.IsMissing(value) {
		return
	}
	welford.count++
	delta := value - welford.mean
	welford.mean += delta / float64(welford.count)
	delta2 := value - welford.mean
	welford.m2 += delta * delta2
}

func (welford *Welford) Count() uint64 {
	return welford.count
}

// GetMean returns NaN until a value has been seen.
func (welford *Welford) GetMean() float64 {
	if welford.count == 0 {
		return math.NaN()
	}
	return welford.mean
}

// GetVariance is the population variance (ddof=0).
func (welford *Welford) GetVariance() float64 {
	if welford.count == 0 {
		return math.NaN()
	}
	return welford.m2 / float64(welford.count)
}

// GetSampleVariance is the sample variance (ddof=1), NaN below two values.
func (welford *Welford) GetSampleVariance() float64 {
	if welford.count < 2 {
		return math.NaN()
	}
	return welford.m2 / float64(welford.count-1)
}

func (welford *Welford) GetSD() float64 {
	return math.Sqrt(welford.GetSampleVariance())
}
