package columnar

import (
	"runtime"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infovis/intmap"
)

func TestIntSparseColumn(t *testing.T) {
	c := NewIntSparseColumn("s")
	assert.Equal(t, -1, c.FirstValidRow())
	assert.Equal(t, -1, c.MinIndex())

	c.SetExtend(1000, 5)
	assert.Equal(t, 1001, c.Size())
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.IsValueUndefined(0))
	assert.True(t, c.HasUndefinedValue())
	assert.Equal(t, int32(0), c.Get(0))
	assert.Nil(t, c.ObjectAt(0))

	c.SetExtend(10, 7)
	assert.Equal(t, []int{10, 1000}, slices.Collect(c.Rows()))
	var rows []int
	for it := c.Iterator(); it.HasNext(); {
		rows = append(rows, it.Next())
	}
	assert.Equal(t, []int{10, 1000}, rows)
	assert.Equal(t, 10, c.FirstValidRow())
	assert.Equal(t, 1000, c.LastValidRow())
	assert.Equal(t, 1000, c.MinIndex())
	assert.Equal(t, 10, c.MaxIndex())
	assert.Equal(t, -1, c.Compare(0, 10))
	assert.Equal(t, 1, c.Compare(10, 1000))

	r := &recorder{}
	c.AddChangeListener(r)
	require.NoError(t, c.SetSize(500))
	require.Len(t, r.events, 1)
	assert.Equal(t, []int{1000}, eventRows(t, r.events[0]))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 10, c.MaxIndex())

	require.NoError(t, c.SetValueAt(20, "-3"))
	assert.Equal(t, int32(-3), c.Get(20))
	assert.Equal(t, "-3", c.ValueAt(20))
	assert.Equal(t, "", c.ValueAt(21))
	assert.ErrorIs(t, c.SetValueAt(20, "x"), ErrParse)

	require.NoError(t, c.Clear())
	assert.Equal(t, 0, c.Size())
	assert.Equal(t, 0, c.Len())
}

func TestSparseFarRowStaysSmall(t *testing.T) {
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	c := NewIntSparseColumn("s")
	c.SetExtend(0, 1)
	c.SetExtend(20_000_000, 2)

	runtime.ReadMemStats(&after)
	assert.Equal(t, 20_000_001, c.Size())
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Dense())
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
	assert.Equal(t, int32(2), c.Get(20_000_000))
	assert.True(t, c.IsValueUndefined(10_000_000))

	for row := 0; row < 1000; row++ {
		c.Set(row, int32(row))
	}
	assert.False(t, c.Dense(), "a sorted column never switches layout")
}

func TestSparseDenseSwitch(t *testing.T) {
	c := NewMutatingIntSparseColumn("s", intmap.Heuristic{EvaluateEvery: 4})
	for i := 0; i < 100; i++ {
		c.Add(int32(i))
	}
	assert.Equal(t, 100, c.Len())
	assert.True(t, c.Dense())
	assert.False(t, c.HasUndefinedValue())
	for i := 0; i < 100; i++ {
		assert.Equal(t, int32(i), c.Get(i))
	}
	c.SetExtend(1<<20, 1)
	assert.Equal(t, 101, c.Len())
	assert.Equal(t, int32(99), c.Get(99))
	assert.Equal(t, int32(1), c.Get(1<<20))
}
