package anomaly

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleMask() *Mask {
	mask := NewMask(days(5), []string{"Mine A", "Mine B"})
	mask.Set(1, "Mine A")
	mask.Set(3, "Mine A")
	mask.Set(3, "Mine B")
	mask.Set(4, "Mine B")
	mask.Set(9, "Mine B")
	mask.Set(0, "unknown")
	return mask
}

func TestMask_Counts(t *testing.T) {
	mask := sampleMask()

	assert.Equal(t, map[string]int{"Mine A": 2, "Mine B": 2}, mask.Counts())
	assert.Equal(t, map[string]int{"Mine B": 2}, mask.Counts("Mine B", "Mine C"))
	assert.Equal(t, 4, mask.Total())
	assert.Equal(t, 2, mask.Total("Mine A"))
	assert.Equal(t, 3, mask.UniqueRows())
	assert.Equal(t, 2, mask.UniqueRows("Mine A"))
	assert.Equal(t, 0, mask.Count("Mine C"))
}

func TestMask_At(t *testing.T) {
	mask := sampleMask()

	assert.True(t, mask.At(1, "Mine A"))
	assert.False(t, mask.At(1, "Mine B"))
	assert.False(t, mask.At(-1, "Mine A"))
	assert.False(t, mask.At(5, "Mine A"))
	assert.False(t, mask.At(0, "unknown"))
}

func TestMask_Flagged(t *testing.T) {
	index := days(5)
	assert.Equal(t, []time.Time{index[1], index[3]}, sampleMask().Flagged("Mine A"))
	assert.Empty(t, sampleMask().Flagged("Mine C"))
}

func TestMask_Between(t *testing.T) {
	index := days(5)
	src := sampleMask()
	view := src.Between(index[2], index[4])

	assert.Equal(t, 3, view.Len())
	assert.Equal(t, []string{"Mine A", "Mine B"}, view.Columns())
	a, _ := view.Column("Mine A")
	assert.Equal(t, []bool{false, true, false}, a)
	b, _ := view.Column("Mine B")
	assert.Equal(t, []bool{false, true, true}, b)

	// the source mask is not aliased
	view.Set(0, "Mine A")
	assert.False(t, src.At(2, "Mine A"))
}

func TestMask_Or(t *testing.T) {
	mask := sampleMask()
	other := NewMask(days(5), []string{"Mine A", "Mine B"})
	other.Set(0, "Mine A")

	assert.NoError(t, mask.Or(other))
	assert.True(t, mask.At(0, "Mine A"))
	assert.Equal(t, 5, mask.Total())

	err := mask.Or(NewMask(days(4), []string{"Mine A", "Mine B"}))
	assert.True(t, errors.Is(err, ErrShape))

	err = mask.Or(NewMask(days(5), []string{"Mine A", "Mine C"}))
	assert.True(t, errors.Is(err, ErrShape))
}

func TestMask_ToMapCopies(t *testing.T) {
	mask := sampleMask()
	cells := mask.ToMap()
	cells["Mine A"][0] = true

	assert.False(t, mask.At(0, "Mine A"))
	assert.Len(t, cells, 2)
}
