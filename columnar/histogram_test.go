package columnar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogramColumn(t *testing.T) {
	src := NewIntColumn("x", 0)
	for i := 0; i < 10; i++ {
		src.Add(int32(i))
	}
	h := NewHistogramColumn(src, 5)
	assert.Equal(t, "#BinsFor_x", h.Name())
	assert.Equal(t, 5, h.Size())
	assert.True(t, h.ReadOnly())
	assert.Equal(t, []int32{2, 2, 2, 2, 2}, h.ToSlice())
	assert.Equal(t, 0, h.MinIndex())
	assert.Equal(t, 4, h.MaxIndex())
	assert.Equal(t, "2", h.ValueAt(3))
	assert.Equal(t, 4, h.BinOf(9))
	assert.Equal(t, 0, h.BinOf(-100))

	lo, hi := h.BinRange(0)
	assert.Equal(t, 0.0, lo)
	assert.InDelta(t, 1.836, hi, 1e-9)

	r := &recorder{}
	h.AddChangeListener(r)
	require.NoError(t, src.SetValueUndefined(9, true))
	require.Len(t, r.events, 1)
	assert.Same(t, h, r.events[0].Source)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, eventRows(t, r.events[0]))
	assert.False(t, h.valid, "counts are recomputed on the next read")

	// range is now [0, 8.16) in bins of 1.632
	assert.Equal(t, []int32{2, 2, 1, 2, 2}, h.ToSlice())
	assert.True(t, h.valid)
	assert.Equal(t, 2, h.MinIndex())
	assert.Equal(t, 4, h.MaxIndex())
}

func TestHistogramSingleValue(t *testing.T) {
	src := NewDoubleColumn("d", 0)
	for i := 0; i < 4; i++ {
		src.Add(3)
	}
	h := NewHistogramColumn(src, 0)
	assert.Equal(t, DefaultBins, h.Size())
	assert.Equal(t, int32(4), h.Get(0))
	lo, hi := h.BinRange(0)
	assert.Equal(t, 3.0, lo)
	assert.InDelta(t, 3.005, hi, 1e-9)
}

func TestHistogramUndefined(t *testing.T) {
	src := NewFloatColumn("f", 0)
	h := NewHistogramColumn(src, 3)
	assert.True(t, h.HasUndefinedValue())
	assert.True(t, h.IsValueUndefined(0))
	assert.Equal(t, -1, h.FirstValidRow())
	assert.Equal(t, -1, h.MinIndex())
	assert.Equal(t, -1, h.BinOf(1))
	assert.Nil(t, h.ObjectAt(1))
	assert.False(t, h.Iterator().HasNext())

	src.Add(1.5)
	assert.False(t, h.HasUndefinedValue())
	assert.Equal(t, int32(1), h.Get(0))
	assert.Equal(t, 2, h.LastValidRow())
}

func TestHistogramReadOnly(t *testing.T) {
	src := NewIntColumn("x", 0)
	src.Add(1)
	h := NewHistogramColumn(src, 4)

	var n NumberColumn = h
	for op, err := range map[string]error{
		"SetDoubleAt": n.SetDoubleAt(0, 1),
		"SetObjectAt": n.SetObjectAt(0, 1),
		"SetSize":     n.SetSize(1),
		"Clear":       n.Clear(),
	} {
		var roe *ReadOnlyError
		if !errors.As(err, &roe) || roe.Op != op {
			t.Fatalf("%s: got %v, want a read-only error", op, err)
		}
	}
	assert.Equal(t, 4, h.Size())

	require.NoError(t, h.SetBins(2))
	assert.Equal(t, []int32{1, 0}, h.ToSlice())
	assert.Error(t, h.SetBins(0))
}

func TestHistogramSourceSwitch(t *testing.T) {
	a := NewIntColumn("a", 0)
	a.Add(1)
	b := NewIntColumn("b", 0)
	b.Add(1)
	b.Add(2)

	h := NewHistogramColumn(a, 2)
	assert.Equal(t, []int32{1, 0}, h.ToSlice())
	h.SetSource(b)
	assert.Same(t, b, h.Source())
	assert.Equal(t, []int32{1, 1}, h.ToSlice())

	// a is no longer observed
	a.Add(5)
	assert.True(t, h.valid)

	h.Dispose()
	assert.Nil(t, h.Source())
	b.Add(3)
	assert.True(t, h.HasUndefinedValue())
}
