package columnar

import (
	"cmp"
	"iter"

	"github.com/spf13/cast"

	"infovis/bitset"
)

// StringFormat formats any value with its string conversion and parses
// strings as themselves.
type StringFormat struct{}

func (StringFormat) Format(v any) string { return cast.ToString(v) }

func (StringFormat) Parse(s string) (any, error) { return s, nil }

// readOnly is the base of computed columns: every mutator except SetName
// fails with a *ReadOnlyError.
type readOnly struct {
	base
	size int
}

func (c *readOnly) fail(op string) error { return &ReadOnlyError{Column: c.name, Op: op} }

func (c *readOnly) Size() int { return c.size }

func (c *readOnly) IsEmpty() bool { return c.size == 0 }

func (c *readOnly) Capacity() int { return c.size }

func (c *readOnly) EnsureCapacity(int) {}

func (c *readOnly) ReadOnly() bool { return true }

func (c *readOnly) SetSize(int) error { return c.fail("SetSize") }

func (c *readOnly) Clear() error { return c.fail("Clear") }

func (c *readOnly) SetValueUndefined(int, bool) error { return c.fail("SetValueUndefined") }

func (c *readOnly) SetObjectAt(int, any) error { return c.fail("SetObjectAt") }

func (c *readOnly) SetValueAt(int, string) error { return c.fail("SetValueAt") }

func (c *readOnly) CopyValueFrom(int, Column, int) error { return c.fail("CopyValueFrom") }

func (c *readOnly) inRange(row int) bool { return row >= 0 && row < c.size }

// ConstantColumn has the same value at every row. A nil value makes every
// row undefined.
type ConstantColumn struct {
	readOnly
	value any
}

// NewConstantColumn returns a column of size rows holding value.
func NewConstantColumn(name string, size int, value any) *ConstantColumn {
	c := &ConstantColumn{value: value}
	c.size = max(size, 0)
	c.init(name, c, StringFormat{})
	return c
}

// Value returns the constant.
func (c *ConstantColumn) Value() any { return c.value }

func (c *ConstantColumn) IsValueUndefined(row int) bool {
	return c.value == nil || !c.inRange(row)
}

func (c *ConstantColumn) HasUndefinedValue() bool { return c.value == nil && c.size > 0 }

func (c *ConstantColumn) FirstValidRow() int {
	if c.value == nil || c.size == 0 {
		return -1
	}
	return 0
}

func (c *ConstantColumn) LastValidRow() int {
	if c.value == nil {
		return -1
	}
	return c.size - 1
}

func (c *ConstantColumn) ObjectAt(row int) any {
	if c.IsValueUndefined(row) {
		return nil
	}
	return c.value
}

func (c *ConstantColumn) ValueAt(row int) string {
	if c.IsValueUndefined(row) {
		return ""
	}
	return c.format.Format(c.value)
}

func (c *ConstantColumn) Compare(row1, row2 int) int {
	return compareRows(c.IsValueUndefined, func(int, int) int { return 0 }, row1, row2)
}

func (c *ConstantColumn) MinIndex() int { return c.FirstValidRow() }

func (c *ConstantColumn) MaxIndex() int { return c.LastValidRow() }

func (c *ConstantColumn) Iterator() bitset.RowIterator {
	if c.value == nil {
		return bitset.NewRangeIterator(0, 0)
	}
	return bitset.NewRangeIterator(0, c.size)
}

func (c *ConstantColumn) Rows() iter.Seq[int] { return rowsOf(c.Iterator()) }

// IdColumn holds its own row index at every row.
type IdColumn struct {
	readOnly
}

// NewIdColumn returns a column of size rows.
func NewIdColumn(name string, size int) *IdColumn {
	c := &IdColumn{}
	c.size = max(size, 0)
	c.init(name, c, IntFormat{})
	return c
}

func (c *IdColumn) IsValueUndefined(row int) bool { return !c.inRange(row) }

func (c *IdColumn) HasUndefinedValue() bool { return false }

func (c *IdColumn) FirstValidRow() int {
	if c.size == 0 {
		return -1
	}
	return 0
}

func (c *IdColumn) LastValidRow() int { return c.size - 1 }

// Get returns row, which must be in [0, Size()).
func (c *IdColumn) Get(row int) int {
	checkRow(row, c.size)
	return row
}

func (c *IdColumn) ObjectAt(row int) any {
	if !c.inRange(row) {
		return nil
	}
	return row
}

func (c *IdColumn) ValueAt(row int) string {
	if !c.inRange(row) {
		return ""
	}
	return c.format.Format(row)
}

func (c *IdColumn) Compare(row1, row2 int) int {
	return compareRows(c.IsValueUndefined, cmp.Compare[int], row1, row2)
}

func (c *IdColumn) MinIndex() int { return c.FirstValidRow() }

func (c *IdColumn) MaxIndex() int { return c.LastValidRow() }

func (c *IdColumn) Iterator() bitset.RowIterator { return bitset.NewRangeIterator(0, c.size) }

func (c *IdColumn) Rows() iter.Seq[int] { return rowsOf(c.Iterator()) }

func (c *IdColumn) IntAt(row int) int { return c.Get(row) }

func (c *IdColumn) LongAt(row int) int64 { return int64(c.Get(row)) }

func (c *IdColumn) FloatAt(row int) float32 { return float32(c.Get(row)) }

func (c *IdColumn) DoubleAt(row int) float64 { return float64(c.Get(row)) }

func (c *IdColumn) SetDoubleAt(int, float64) error { return c.fail("SetDoubleAt") }

func rowsOf(it bitset.RowIterator) iter.Seq[int] {
	return func(yield func(int) bool) {
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}
