package columnar

import (
	"cmp"
	"fmt"
	"iter"
	"strings"

	"infovis/bitset"
	"infovis/intmap"
)

// sortedIntMap is the map behind an IntSparseColumn. *intmap.Sorted and
// *intmap.Mutating implement it.
type sortedIntMap interface {
	Len() int
	Get(key int) (int, bool)
	Contains(key int) bool
	Put(key, value int) bool
	Remove(key int) bool
	RemoveFrom(from int)
	Clear()
	MaxKey() int
	NextKey(from int) int
	Keys() iter.Seq[int]
}

// IntSparseColumn stores int32 values in a map keyed by row. A row is
// undefined exactly when it has no entry, so memory follows the number of
// defined rows rather than Size().
type IntSparseColumn struct {
	base
	values sortedIntMap
	// values of rows undefined through SetValueUndefined, restored when the
	// row is defined again
	parked   *intmap.Sorted
	size     int
	extremes extremes
}

// NewIntSparseColumn returns an empty column backed by an intmap.Sorted.
// It never switches to a dense layout.
func NewIntSparseColumn(name string) *IntSparseColumn {
	return newIntSparseColumn(name, intmap.NewSorted())
}

// NewMutatingIntSparseColumn returns an empty column backed by an
// intmap.Mutating, which moves between dense and sparse layouts as the
// heuristic dictates. The zero heuristic selects intmap.DefaultHeuristic.
// Use it for columns expected to fill up.
func NewMutatingIntSparseColumn(name string, h intmap.Heuristic) *IntSparseColumn {
	return newIntSparseColumn(name, intmap.NewMutating(h))
}

func newIntSparseColumn(name string, values sortedIntMap) *IntSparseColumn {
	c := &IntSparseColumn{values: values, parked: intmap.NewSorted()}
	c.init(name, c, IntFormat{})
	return c
}

// Dense reports whether the backing map currently uses a dense layout.
// Only columns built by NewMutatingIntSparseColumn can be dense.
func (c *IntSparseColumn) Dense() bool {
	m, ok := c.values.(*intmap.Mutating)
	return ok && m.Dense()
}

func (c *IntSparseColumn) Size() int { return c.size }

func (c *IntSparseColumn) IsEmpty() bool { return c.size == 0 }

func (c *IntSparseColumn) Capacity() int { return c.size }

func (c *IntSparseColumn) EnsureCapacity(int) {}

func (c *IntSparseColumn) ReadOnly() bool { return false }

// Len returns the number of defined rows.
func (c *IntSparseColumn) Len() int { return c.values.Len() }

func (c *IntSparseColumn) SetSize(n int) error {
	if n < 0 {
		n = 0
	}
	old := c.size
	if n == old {
		return nil
	}
	c.DisableNotify()
	defer c.EnableNotify()
	c.size = n
	if n > old {
		c.modifiedRange(old, n)
		return nil
	}
	dropped := bitset.NewSparse()
	for r := c.values.NextKey(n); r != -1; r = c.values.NextKey(r + 1) {
		dropped.Set(r)
	}
	c.values.RemoveFrom(n)
	c.parked.RemoveFrom(n)
	c.extremes.fresh = false
	c.modifiedSet(dropped)
	return nil
}

func (c *IntSparseColumn) Clear() error {
	old := c.size
	c.values.Clear()
	c.parked.Clear()
	c.size = 0
	c.extremes.fresh = false
	c.modifiedRange(0, old)
	return nil
}

func (c *IntSparseColumn) IsValueUndefined(row int) bool { return !c.values.Contains(row) }

func (c *IntSparseColumn) SetValueUndefined(row int, undef bool) error {
	checkIndex(row)
	if undef {
		if row >= c.size {
			return c.SetSize(row + 1)
		}
		if v, ok := c.values.Get(row); ok {
			c.values.Remove(row)
			c.parked.Put(row, v)
			c.extremes.fresh = false
			c.modified(row)
		}
		return nil
	}
	if c.values.Contains(row) {
		return nil
	}
	v, _ := c.parked.Get(row)
	c.SetExtend(row, int32(v))
	return nil
}

func (c *IntSparseColumn) HasUndefinedValue() bool { return c.values.Len() < c.size }

func (c *IntSparseColumn) FirstValidRow() int { return c.values.NextKey(0) }

func (c *IntSparseColumn) LastValidRow() int { return c.values.MaxKey() }

// Get returns the value of row, which must be in [0, Size()), or 0 when
// the row is undefined.
func (c *IntSparseColumn) Get(row int) int32 {
	checkRow(row, c.size)
	v, _ := c.values.Get(row)
	return int32(v)
}

// Set stores v at row, which must be in [0, Size()).
func (c *IntSparseColumn) Set(row int, v int32) {
	checkRow(row, c.size)
	c.values.Put(row, int(v))
	c.parked.Remove(row)
	c.extremes.fresh = false
	c.modified(row)
}

// SetExtend stores v at row, growing the column first when needed.
func (c *IntSparseColumn) SetExtend(row int, v int32) {
	checkIndex(row)
	if row >= c.size {
		c.DisableNotify()
		defer c.EnableNotify()
		c.SetSize(row + 1)
	}
	c.Set(row, v)
}

// Add appends v.
func (c *IntSparseColumn) Add(v int32) { c.SetExtend(c.size, v) }

func (c *IntSparseColumn) ObjectAt(row int) any {
	v, ok := c.values.Get(row)
	if !ok {
		return nil
	}
	return int32(v)
}

func (c *IntSparseColumn) SetObjectAt(row int, v any) error {
	if v == nil {
		return c.SetValueUndefined(row, true)
	}
	checkIndex(row)
	x, err := coerce[int32](v)
	if err != nil {
		return &ParseError{Input: fmt.Sprint(v), Err: err}
	}
	c.SetExtend(row, x)
	return nil
}

func (c *IntSparseColumn) ValueAt(row int) string {
	return c.format.Format(c.ObjectAt(row))
}

func (c *IntSparseColumn) SetValueAt(row int, s string) error {
	if strings.TrimSpace(s) == "" {
		return c.SetValueUndefined(row, true)
	}
	v, err := c.format.Parse(s)
	if err != nil {
		return err
	}
	return c.SetObjectAt(row, v)
}

func (c *IntSparseColumn) CopyValueFrom(to int, src Column, from int) error {
	if src.IsValueUndefined(from) {
		return c.SetValueUndefined(to, true)
	}
	return c.SetObjectAt(to, src.ObjectAt(from))
}

func (c *IntSparseColumn) compareValues(row1, row2 int) int {
	v1, _ := c.values.Get(row1)
	v2, _ := c.values.Get(row2)
	return cmp.Compare(v1, v2)
}

func (c *IntSparseColumn) Compare(row1, row2 int) int {
	return compareRows(c.IsValueUndefined, c.compareValues, row1, row2)
}

func (c *IntSparseColumn) MinIndex() int {
	c.updateExtremes()
	return c.extremes.min
}

func (c *IntSparseColumn) MaxIndex() int {
	c.updateExtremes()
	return c.extremes.max
}

func (c *IntSparseColumn) updateExtremes() {
	if !c.extremes.fresh {
		c.extremes = scanExtremes(c.Rows(), c.compareValues)
	}
}

func (c *IntSparseColumn) Iterator() bitset.RowIterator {
	return &keyIterator{m: c.values, next: c.values.NextKey(0)}
}

func (c *IntSparseColumn) Rows() iter.Seq[int] { return c.values.Keys() }

func (c *IntSparseColumn) IntAt(row int) int { return int(c.Get(row)) }

func (c *IntSparseColumn) LongAt(row int) int64 { return int64(c.Get(row)) }

func (c *IntSparseColumn) FloatAt(row int) float32 { return float32(c.Get(row)) }

func (c *IntSparseColumn) DoubleAt(row int) float64 { return float64(c.Get(row)) }

func (c *IntSparseColumn) SetDoubleAt(row int, v float64) error { return c.SetObjectAt(row, v) }

// keyIterator walks the keys of a map in increasing order.
type keyIterator struct {
	m    sortedIntMap
	next int
}

func (it *keyIterator) HasNext() bool { return it.next != -1 }

func (it *keyIterator) Peek() int { return it.next }

func (it *keyIterator) Next() int {
	n := it.next
	if n != -1 {
		it.next = it.m.NextKey(n + 1)
	}
	return n
}

func (it *keyIterator) Copy() bitset.RowIterator {
	c := *it
	return &c
}
