package columnar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	a := NewIntColumn("a", 0)
	b := NewChunkedIntColumn("b", 0)
	for _, v := range []int32{1, 2, 3} {
		a.Add(v)
		b.Add(v)
	}
	assert.True(t, Equal(a, b))

	b.Set(1, 5)
	assert.False(t, Equal(a, b))
	b.Set(1, 2)
	b.SetValueUndefined(2, true)
	assert.False(t, Equal(a, b))
	a.SetValueUndefined(2, true)
	assert.True(t, Equal(a, b))

	a.Add(4)
	assert.False(t, Equal(a, b))
	assert.False(t, Equal(NewIdColumn("id", 3), NewIntColumn("empty", 0)))
}

func TestCompareValues(t *testing.T) {
	ints := NewIntColumn("i", 0)
	ints.SetExtend(1, 3)
	doubles := NewDoubleColumn("d", 0)
	doubles.Add(2.5)

	assert.Equal(t, 1, CompareValues(ints, 1, doubles, 0))
	assert.Equal(t, -1, CompareValues(ints, 0, doubles, 0))
	assert.Equal(t, 1, CompareValues(doubles, 0, ints, 0))
	assert.Equal(t, 0, CompareValues(ints, 0, ints, 5))

	names := NewConstantColumn("n", 1, "b")
	other := NewConstantColumn("o", 1, "a")
	assert.Equal(t, 1, CompareValues(names, 0, other, 0))
}

func TestValueCounts(t *testing.T) {
	c := NewIntColumn("x", 0)
	for _, v := range []int32{3, 1, 3, 3} {
		c.Add(v)
	}
	c.SetValueUndefined(6, true)

	counts := ValueCounts(c)
	assert.Equal(t, map[any]int{int32(3): 3, int32(1): 1}, counts)
	assert.Equal(t, []any{int32(1), int32(3)}, DistinctValues(c))
	assert.Equal(t, []int{4, 5, 6, 1, 0, 2, 3}, SortedRows(c))
}
