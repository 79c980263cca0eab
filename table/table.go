// Package table holds the time-indexed numeric table the analysis packages
// operate on.
//
// A Table has an explicit schema: one ordering key (a time index) and an
// ordered list of named numeric series. The key is never a series. Missing
// observations are stored as NaN.
package table

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
)

const (
	DefaultKey = "Date"
	TotalName  = "Total"
)

var (
	ErrSchema        = errors.New("invalid table schema")
	ErrUnknownSeries = errors.New("unknown series")
)

// Missing is the value stored for an absent observation.
var Missing = math.NaN()

func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

type Series struct {
	Name   string
	Values []float64
}

func NewSeries(name string, values []float64) *Series {
	return &Series{Name: name, Values: values}
}

func (s *Series) Len() int {
	return len(s.Values)
}

// Observed returns the non-missing values in row order.
func (s *Series) Observed() []float64 {
	observed := make([]float64, 0, len(s.Values))
	for _, v := range s.Values {
		if !IsMissing(v) {
			observed = append(observed, v)
		}
	}
	return observed
}

type Table struct {
	key    string
	index  []time.Time
	series []*Series
	byName map[string]int
}

// New builds a table after checking the schema: every series must be as
// long as the index, and names must be unique, non-empty and distinct from
// the key.
func New(key string, index []time.Time, series ...*Series) (*Table, error) {
	if key == "" {
		key = DefaultKey
	}
	t := &Table{
		key:    key,
		index:  index,
		series: make([]*Series, 0, len(series)),
		byName: make(map[string]int, len(series)),
	}
	for _, s := range series {
		if err := t.add(s); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) add(s *Series) error {
	switch {
	case s == nil:
		return fmt.Errorf("%w: nil series", ErrSchema)
	case s.Name == "":
		return fmt.Errorf("%w: empty series name", ErrSchema)
	case s.Name == t.key:
		return fmt.Errorf("%w: series %q collides with the ordering key", ErrSchema, s.Name)
	case s.Len() != len(t.index):
		return fmt.Errorf("%w: series %q has %d rows, index has %d",
			ErrSchema, s.Name, s.Len(), len(t.index))
	}
	if _, ok := t.byName[s.Name]; ok {
		return fmt.Errorf("%w: duplicate series %q", ErrSchema, s.Name)
	}
	t.byName[s.Name] = len(t.series)
	t.series = append(t.series, s)
	return nil
}

func (t *Table) Key() string {
	return t.key
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.index)
}

func (t *Table) Index() []time.Time {
	return t.index
}

func (t *Table) Series() []*Series {
	return t.series
}

func (t *Table) Names() []string {
	names := make([]string, len(t.series))
	for i, s := range t.series {
		names[i] = s.Name
	}
	return names
}

func (t *Table) Column(name string) (*Series, bool) {
	i, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.series[i], true
}

// Select returns a table restricted to the named series, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	series := make([]*Series, 0, len(names))
	for _, name := range names {
		s, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSeries, name)
		}
		series = append(series, s)
	}
	return New(t.key, t.index, series...)
}

// WithTotal returns a table with a Total series appended, holding the
// per-row sum of every other series. Missing cells are skipped; a row with
// no observed cell stays missing. The table is returned unchanged when it
// already has a Total series.
func (t *Table) WithTotal() *Table {
	if _, ok := t.Column(TotalName); ok {
		return t
	}

	total := make([]float64, t.Len())
	row := make([]float64, 0, len(t.series))
	for i := range total {
		row = row[:0]
		for _, s := range t.series {
			if v := s.Values[i]; !IsMissing(v) {
				row = append(row, v)
			}
		}
		if len(row) == 0 {
			total[i] = Missing
			continue
		}
		total[i] = floats.Sum(row)
	}

	series := make([]*Series, len(t.series), len(t.series)+1)
	copy(series, t.series)
	series = append(series, NewSeries(TotalName, total))

	out, _ := New(t.key, t.index, series...)
	return out
}

// Between returns the rows whose key lies in [from, to]. A zero bound is
// open.
func (t *Table) Between(from, to time.Time) *Table {
	lo, hi := Bounds(t.index, from, to)

	index := make([]time.Time, hi-lo)
	copy(index, t.index[lo:hi])

	series := make([]*Series, len(t.series))
	for i, s := range t.series {
		values := make([]float64, hi-lo)
		copy(values, s.Values[lo:hi])
		series[i] = NewSeries(s.Name, values)
	}

	out, _ := New(t.key, index, series...)
	return out
}

// Bounds returns the half-open row range [lo, hi) of a sorted index that
// falls within [from, to].
func Bounds(index []time.Time, from, to time.Time) (int, int) {
	lo := 0
	if !from.IsZero() {
		lo = sort.Search(len(index), func(i int) bool {
			return !index[i].Before(from)
		})
	}
	hi := len(index)
	if !to.IsZero() {
		hi = sort.Search(len(index), func(i int) bool {
			return index[i].After(to)
		})
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
