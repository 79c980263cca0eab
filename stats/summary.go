// Package stats computes descriptive statistics over table series.
package stats

import (
	"math"

	"minestat/table"
)

// Row holds the descriptive statistics of one series. Std is the sample
// standard deviation.
type Row struct {
	Mean   float64 `yaml:"mean"`
	Std    float64 `yaml:"std"`
	Median float64 `yaml:"median"`
	IQR    float64 `yaml:"IQR"`
}

func NaNRow() Row {
	return Row{Mean: math.NaN(), Std: math.NaN(), Median: math.NaN(), IQR: math.NaN()}
}

// Summary is a statistics table keyed by series name, in table order.
type Summary struct {
	names []string
	rows  map[string]Row
}

func (s *Summary) Names() []string {
	return s.names
}

func (s *Summary) Len() int {
	return len(s.names)
}

func (s *Summary) Row(name string) (Row, bool) {
	row, ok := s.rows[name]
	return row, ok
}

// Select keeps the named rows that exist, in the given order.
func (s *Summary) Select(names ...string) *Summary {
	out := &Summary{rows: make(map[string]Row, len(names))}
	for _, name := range names {
		row, ok := s.rows[name]
		if !ok {
			continue
		}
		if _, dup := out.rows[name]; dup {
			continue
		}
		out.names = append(out.names, name)
		out.rows[name] = row
	}
	return out
}

// Summarize computes a Row for every series of t, Total included when the
// table carries it.
func Summarize(t *table.Table) *Summary {
	summary := &Summary{
		names: t.Names(),
		rows:  make(map[string]Row, len(t.Series())),
	}
	for _, s := range t.Series() {
		summary.rows[s.Name] = SummarizeValues(s.Values)
	}
	return summary
}

// SummarizeValues computes mean, sample std, median and IQR over the
// non-missing values. With nothing observed every field is NaN.
func SummarizeValues(values []float64) Row {
	welford := NewWelford()
	for _, v := range values {
		welford.Update(v)
	}
	if welford.Count() == 0 {
		return NaNRow()
	}

	quartiles := QuartilesOf(values)
	return Row{
		Mean:   welford.GetMean(),
		Std:    welford.GetSD(),
		Median: quartiles.Median,
		IQR:    quartiles.IQR(),
	}
}
