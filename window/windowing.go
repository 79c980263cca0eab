// Package window implements fixed-size rolling windows over a series.
package window

// Centered is a fixed-size window labelled at its center. For even sizes the
// extra row falls on the left: row i covers [i+off-size+1, i+off] with
// off = (size-1)/2.
type Centered struct {
	size int
}

func NewCentered(size int) *Centered {
	return &Centered{size: size}
}

// Span returns the half-open row range [start, end) covered by the window
// labelled at row. ok is false when the window does not fit inside n rows.
func (c *Centered) Span(row, n int) (start, end int, ok bool) {
	if c.size <= 0 {
		return 0, 0, false
	}
	off := (c.size - 1) / 2
	end = row + off + 1
	start = end - c.size
	if start < 0 || end > n {
		return 0, 0, false
	}
	return start, end, true
}

// EdgeRows is how many rows at the start and at the end of a series of
// length n never get a full window.
func (c *Centered) EdgeRows() (left, right int) {
	off := (c.size - 1) / 2
	return c.size - 1 - off, off
}
