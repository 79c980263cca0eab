package anomaly

import (
	"math"

	"minestat/stats"
	"minestat/table"
	"minestat/window"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// detectFunc flags the values of a single series. The returned slice has the
// same length as values and missing values are never flagged.
type detectFunc func(values []float64, cfg Config) []bool

var detectors = map[Method]detectFunc{
	IQR:           detectIQR,
	ZScore:        detectZScore,
	MovingAverage: detectMovingAverage,
	Grubbs:        detectGrubbs,
}

const (
	// maEpsilon guards the relative deviation against a vanishing average.
	maEpsilon = 1e-12

	grubbsAlpha      = 0.05
	grubbsMinSamples = 3
)

func detectIQR(values []float64, cfg Config) []bool {
	flags := make([]bool, len(values))
	q := stats.QuartilesOf(values)
	if math.IsNaN(q.Q1) || math.IsNaN(q.Q3) {
		return flags
	}

	lower := q.Q1 - cfg.IQRFactor*q.IQR()
	upper := q.Q3 + cfg.IQRFactor*q.IQR()
	for i, v := range values {
		if table.IsMissing(v) {
			continue
		}
		flags[i] = v < lower || v > upper
	}
	return flags
}

func detectZScore(values []float64, cfg Config) []bool {
	flags := make([]bool, len(values))
	observed := observedValues(values)
	if constant(observed) {
		return flags
	}

	mean, std := stat.PopMeanStdDev(observed, nil)
	if !(std > 0) {
		return flags
	}
	for i, v := range values {
		if table.IsMissing(v) {
			continue
		}
		flags[i] = math.Abs(v-mean)/std > cfg.ZThresh
	}
	return flags
}

func detectMovingAverage(values []float64, cfg Config) []bool {
	flags := make([]bool, len(values))
	ma := window.NewCentered(cfg.MAWindow).Mean(values)

	for i, v := range values {
		if table.IsMissing(v) || math.IsNaN(ma[i]) {
			continue
		}
		base := math.Abs(ma[i])
		if base <= maEpsilon {
			continue
		}
		flags[i] = math.Abs(v-ma[i])/base > cfg.MAPct
	}
	return flags
}

// detectGrubbs applies a single static Grubbs threshold to every observed
// value, using the mean and sample standard deviation of the whole series.
// Outliers are not removed and re-tested.
func detectGrubbs(values []float64, _ Config) []bool {
	flags := make([]bool, len(values))
	observed := observedValues(values)
	if len(observed) < grubbsMinSamples || constant(observed) {
		return flags
	}

	mean, std := stat.MeanStdDev(observed, nil)
	if !(std > 0) {
		return flags
	}
	gCrit := GrubbsCritical(len(observed))
	for i, v := range values {
		if table.IsMissing(v) {
			continue
		}
		flags[i] = math.Abs(v-mean)/std > gCrit
	}
	return flags
}

// GrubbsCritical returns the two-sided Grubbs critical value at
// significance 0.05 for n observations, NaN when n < 3.
func GrubbsCritical(n int) float64 {
	if n < grubbsMinSamples {
		return math.NaN()
	}
	N := float64(n)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: N - 2}.Quantile(1 - grubbsAlpha/(2*N))
	t2 := t * t
	return ((N - 1) / math.Sqrt(N)) * math.Sqrt(t2/(N-2+t2))
}

func observedValues(values []float64) []float64 {
	observed := make([]float64, 0, len(values))
	for _, v := range values {
		if !table.IsMissing(v) {
			observed = append(observed, v)
		}
	}
	return observed
}

// constant reports whether there is no spread to measure. Rounding in the
// mean would otherwise leave a tiny non-zero deviation.
func constant(observed []float64) bool {
	if len(observed) == 0 {
		return true
	}
	return floats.Max(observed) == floats.Min(observed)
}
