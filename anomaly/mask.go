package anomaly

import (
	"errors"
	"fmt"
	"time"

	"minestat/table"
)

var ErrShape = errors.New("mask shapes differ")

// Mask is a boolean table with one cell per (row, series). Cells start
// false.
type Mask struct {
	index   []time.Time
	columns []string
	flags   [][]bool
	byName  map[string]int
}

func NewMask(index []time.Time, columns []string) *Mask {
	m := &Mask{
		index:   index,
		columns: columns,
		flags:   make([][]bool, len(columns)),
		byName:  make(map[string]int, len(columns)),
	}
	for c, name := range columns {
		m.flags[c] = make([]bool, len(index))
		m.byName[name] = c
	}
	return m
}

// Len returns the number of rows.
func (m *Mask) Len() int {
	return len(m.index)
}

func (m *Mask) Index() []time.Time {
	return m.index
}

func (m *Mask) Columns() []string {
	return m.columns
}

func (m *Mask) Column(name string) ([]bool, bool) {
	c, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return m.flags[c], true
}

// At is false for unknown series and rows out of range.
func (m *Mask) At(row int, name string) bool {
	col, ok := m.Column(name)
	if !ok || row < 0 || row >= len(col) {
		return false
	}
	return col[row]
}

func (m *Mask) Set(row int, name string) {
	if col, ok := m.Column(name); ok && row >= 0 && row < len(col) {
		col[row] = true
	}
}

// Or folds other into m cell by cell. Both masks must have the same rows and
// series.
func (m *Mask) Or(other *Mask) error {
	if other.Len() != m.Len() || len(other.columns) != len(m.columns) {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrShape,
			m.Len(), len(m.columns), other.Len(), len(other.columns))
	}
	for c, name := range m.columns {
		src, ok := other.Column(name)
		if !ok {
			return fmt.Errorf("%w: series %q missing", ErrShape, name)
		}
		orInto(m.flags[c], src)
	}
	return nil
}

// ToMap copies the cells into a map keyed by series name.
func (m *Mask) ToMap() map[string][]bool {
	out := make(map[string][]bool, len(m.columns))
	for c, name := range m.columns {
		col := make([]bool, len(m.flags[c]))
		copy(col, m.flags[c])
		out[name] = col
	}
	return out
}

func (m *Mask) Count(name string) int {
	col, _ := m.Column(name)
	count := 0
	for _, flagged := range col {
		if flagged {
			count++
		}
	}
	return count
}

// Counts returns per-series flag counts. With no names every series is
// counted; unknown names are skipped.
func (m *Mask) Counts(names ...string) map[string]int {
	counts := make(map[string]int)
	for _, name := range m.known(names) {
		counts[name] = m.Count(name)
	}
	return counts
}

// Total is the sum of the per-series counts.
func (m *Mask) Total(names ...string) int {
	total := 0
	for _, name := range m.known(names) {
		total += m.Count(name)
	}
	return total
}

// UniqueRows counts rows where at least one of the named series is flagged.
func (m *Mask) UniqueRows(names ...string) int {
	known := m.known(names)
	rows := 0
	for r := range m.index {
		for _, name := range known {
			if m.At(r, name) {
				rows++
				break
			}
		}
	}
	return rows
}

// Flagged returns the index values of the flagged rows of a series.
func (m *Mask) Flagged(name string) []time.Time {
	col, _ := m.Column(name)
	var dates []time.Time
	for r, flagged := range col {
		if flagged {
			dates = append(dates, m.index[r])
		}
	}
	return dates
}

// Between keeps the rows whose index lies in [from, to]; a zero bound is
// open.
func (m *Mask) Between(from, to time.Time) *Mask {
	lo, hi := table.Bounds(m.index, from, to)

	index := make([]time.Time, hi-lo)
	copy(index, m.index[lo:hi])
	out := NewMask(index, m.columns)
	for c := range m.columns {
		copy(out.flags[c], m.flags[c][lo:hi])
	}
	return out
}

func (m *Mask) known(names []string) []string {
	if len(names) == 0 {
		return m.columns
	}
	known := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := m.byName[name]; ok {
			known = append(known, name)
		}
	}
	return known
}

func orInto(dst, src []bool) {
	for i, flagged := range src {
		if flagged {
			dst[i] = true
		}
	}
}
