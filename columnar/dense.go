package columnar

import (
	"cmp"
	"fmt"
	"slices"

	"infovis/bitset"
)

// DenseColumn stores one value per row in a growable slice.
type DenseColumn[T Number] struct {
	literal
	values []T
}

type (
	IntColumn    = DenseColumn[int32]
	LongColumn   = DenseColumn[int64]
	FloatColumn  = DenseColumn[float32]
	DoubleColumn = DenseColumn[float64]
)

// NewDenseColumn returns an empty column with room for reserve rows.
func NewDenseColumn[T Number](name string, reserve int) *DenseColumn[T] {
	c := &DenseColumn[T]{values: make([]T, 0, max(reserve, 0))}
	c.initLiteral(name, c, c, defaultFormat[T]())
	return c
}

func NewIntColumn(name string, reserve int) *IntColumn { return NewDenseColumn[int32](name, reserve) }

func NewLongColumn(name string, reserve int) *LongColumn { return NewDenseColumn[int64](name, reserve) }

func NewFloatColumn(name string, reserve int) *FloatColumn { return NewDenseColumn[float32](name, reserve) }

func NewDoubleColumn(name string, reserve int) *DoubleColumn {
	return NewDenseColumn[float64](name, reserve)
}

func (c *DenseColumn[T]) resize(n int) {
	if n > len(c.values) {
		c.values = slices.Grow(c.values, n-len(c.values))
	}
	c.values = c.values[:n]
}

func (c *DenseColumn[T]) capacity() int { return cap(c.values) }

func (c *DenseColumn[T]) ensureCapacity(n int) {
	if n > cap(c.values) {
		c.values = slices.Grow(c.values, n-len(c.values))
	}
}

func (c *DenseColumn[T]) compareValues(row1, row2 int) int {
	return cmp.Compare(c.values[row1], c.values[row2])
}

func (c *DenseColumn[T]) objectAt(row int) any { return c.values[row] }

func (c *DenseColumn[T]) setObject(row int, v any) error {
	x, err := coerce[T](v)
	if err != nil {
		return &ParseError{Input: fmt.Sprint(v), Err: err}
	}
	c.SetExtend(row, x)
	return nil
}

// Get returns the value of row, which must be in [0, Size()). The value
// of an undefined row is whatever was last stored there.
func (c *DenseColumn[T]) Get(row int) T {
	checkRow(row, c.size)
	return c.values[row]
}

// Set stores v at row, which must be in [0, Size()), and defines it.
func (c *DenseColumn[T]) Set(row int, v T) {
	checkRow(row, c.size)
	c.values[row] = v
	c.defined(row)
	c.modified(row)
}

// SetExtend stores v at row, growing the column first when needed. Rows
// added in between are undefined.
func (c *DenseColumn[T]) SetExtend(row int, v T) {
	checkIndex(row)
	if row >= c.size {
		c.DisableNotify()
		defer c.EnableNotify()
		c.SetSize(row + 1)
	}
	c.Set(row, v)
}

// Add appends v.
func (c *DenseColumn[T]) Add(v T) { c.SetExtend(c.size, v) }

// AddExtend adds delta to the value of row, or stores delta when the row
// is undefined.
func (c *DenseColumn[T]) AddExtend(row int, delta T) {
	if c.IsValueUndefined(row) {
		c.SetExtend(row, delta)
		return
	}
	c.Set(row, c.values[row]+delta)
}

// Fill defines every row with v and notifies once.
func (c *DenseColumn[T]) Fill(v T) {
	c.DisableNotify()
	defer c.EnableNotify()
	for i := range c.values {
		c.values[i] = v
	}
	c.undefined = nil
	c.modifiedRange(0, c.size)
	if c.size == 0 {
		c.extremes = extremes{fresh: true, min: -1, max: -1}
	} else {
		c.extremes = extremes{fresh: true, min: 0, max: c.size - 1}
	}
}

// Min returns the smallest defined value, or zero when no row is defined.
func (c *DenseColumn[T]) Min() T {
	if i := c.MinIndex(); i != -1 {
		return c.values[i]
	}
	var zero T
	return zero
}

// Max returns the largest defined value, or zero when no row is defined.
func (c *DenseColumn[T]) Max() T {
	if i := c.MaxIndex(); i != -1 {
		return c.values[i]
	}
	var zero T
	return zero
}

// Sort orders the values with cmp. Undefined rows move to the front.
func (c *DenseColumn[T]) Sort(cmp func(a, b T) int) { c.sortValues(cmp, false) }

// StableSort is Sort keeping equal values in their current order.
func (c *DenseColumn[T]) StableSort(cmp func(a, b T) int) { c.sortValues(cmp, true) }

func (c *DenseColumn[T]) sortValues(order func(a, b T) int, stable bool) {
	if c.size < 2 {
		return
	}
	c.DisableNotify()
	defer c.EnableNotify()

	if !c.HasUndefinedValue() {
		if stable {
			slices.SortStableFunc(c.values, order)
		} else {
			slices.SortFunc(c.values, order)
		}
	} else {
		perm := make([]int, c.size)
		for i := range perm {
			perm[i] = i
		}
		byValue := func(r1, r2 int) int { return order(c.values[r1], c.values[r2]) }
		rows := func(r1, r2 int) int { return compareRows(c.IsValueUndefined, byValue, r1, r2) }
		if stable {
			slices.SortStableFunc(perm, rows)
		} else {
			slices.SortFunc(perm, rows)
		}
		values := make([]T, c.size, cap(c.values))
		undefined := bitset.New(c.size)
		for i, r := range perm {
			values[i] = c.values[r]
			if c.undefined.Get(r) {
				undefined.Set(i)
			}
		}
		c.values = values
		c.undefined = undefined
	}
	c.invalidate()
	c.modifiedRange(0, c.size)
}

// ByRow orders the values of a permutation column, whose values are row
// indexes, with a row comparator.
func ByRow[T Number](rc RowComparator) func(a, b T) int {
	return func(a, b T) int { return rc.Compare(int(a), int(b)) }
}

// ToSlice returns a copy of the stored values, undefined rows included.
func (c *DenseColumn[T]) ToSlice() []T { return slices.Clone(c.values) }

// BinarySearch looks for v in a column sorted in increasing order and
// returns the position where it is or would be inserted.
func (c *DenseColumn[T]) BinarySearch(v T) (int, bool) {
	return slices.BinarySearch(c.values, v)
}

func (c *DenseColumn[T]) IntAt(row int) int { return int(c.Get(row)) }

func (c *DenseColumn[T]) LongAt(row int) int64 { return int64(c.Get(row)) }

func (c *DenseColumn[T]) FloatAt(row int) float32 { return float32(c.Get(row)) }

func (c *DenseColumn[T]) DoubleAt(row int) float64 { return float64(c.Get(row)) }

func (c *DenseColumn[T]) SetDoubleAt(row int, v float64) error { return c.SetObjectAt(row, v) }
