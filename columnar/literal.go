package columnar

import (
	"iter"
	"strings"

	"infovis/bitset"
)

// storage is implemented by the concrete columns built on literal.
type storage interface {
	// resize makes the backing store hold n rows. New rows need not be
	// zeroed; literal marks them undefined.
	resize(n int)
	capacity() int
	ensureCapacity(n int)
	compareValues(row1, row2 int) int
	objectAt(row int) any
	// setObject coerces v and stores it at row, growing the column.
	setObject(row int, v any) error
}

// extremes caches the rows of the smallest and largest defined values.
type extremes struct {
	fresh    bool
	min, max int
}

// literal implements the Column behaviour shared by columns that keep an
// explicit undefined set next to their values.
type literal struct {
	base
	st        storage
	size      int
	undefined *bitset.BitSet
	extremes  extremes
}

func (c *literal) initLiteral(name string, self Column, st storage, format Format) {
	c.base.init(name, self, format)
	c.st = st
}

func (c *literal) Size() int { return c.size }

func (c *literal) IsEmpty() bool { return c.size == 0 }

func (c *literal) Capacity() int { return c.st.capacity() }

func (c *literal) EnsureCapacity(n int) { c.st.ensureCapacity(n) }

func (c *literal) ReadOnly() bool { return false }

func (c *literal) invalidate() { c.extremes.fresh = false }

// SetSize grows or shrinks the column. Grown rows are undefined.
func (c *literal) SetSize(n int) error {
	if n < 0 {
		n = 0
	}
	old := c.size
	if n == old {
		return nil
	}
	c.DisableNotify()
	defer c.EnableNotify()

	c.st.resize(n)
	c.size = n
	if n > old {
		if c.undefined == nil {
			c.undefined = bitset.New(n)
		}
		c.undefined.SetRange(old, n)
		c.modifiedRange(old, n)
	} else {
		if c.undefined != nil {
			c.undefined.ClearRange(n, old)
		}
		c.modifiedRange(n, old)
	}
	c.invalidate()
	return nil
}

func (c *literal) Clear() error {
	old := c.size
	c.st.resize(0)
	c.size = 0
	c.undefined = nil
	c.invalidate()
	c.modifiedRange(0, old)
	return nil
}

func (c *literal) IsValueUndefined(row int) bool {
	if row < 0 || row >= c.size {
		return true
	}
	return c.undefined != nil && c.undefined.Get(row)
}

func (c *literal) SetValueUndefined(row int, undef bool) error {
	checkIndex(row)
	if row >= c.size {
		c.DisableNotify()
		defer c.EnableNotify()
		c.SetSize(row + 1)
		if !undef {
			c.undefined.Clear(row)
		}
		return nil
	}
	if c.undefined == nil {
		if !undef {
			return nil
		}
		c.undefined = bitset.New(c.size)
	}
	c.undefined.SetTo(row, undef)
	c.invalidate()
	c.modified(row)
	return nil
}

// defined clears the undefined bit of a row about to be written.
func (c *literal) defined(row int) {
	if c.undefined != nil {
		c.undefined.Clear(row)
	}
	c.invalidate()
}

func (c *literal) HasUndefinedValue() bool {
	return c.undefined != nil && !c.undefined.IsEmpty()
}

func (c *literal) nextDefined(from int) int {
	if from >= c.size {
		return -1
	}
	if c.undefined == nil {
		return from
	}
	if r := c.undefined.NextClear(from); r < c.size {
		return r
	}
	return -1
}

func (c *literal) FirstValidRow() int { return c.nextDefined(0) }

func (c *literal) LastValidRow() int {
	for r := c.size - 1; r >= 0; r-- {
		if !c.IsValueUndefined(r) {
			return r
		}
	}
	return -1
}

// TrimUndefined drops the trailing undefined rows.
func (c *literal) TrimUndefined() error {
	return c.SetSize(c.LastValidRow() + 1)
}

func (c *literal) ObjectAt(row int) any {
	if c.IsValueUndefined(row) {
		return nil
	}
	return c.st.objectAt(row)
}

func (c *literal) SetObjectAt(row int, v any) error {
	if v == nil {
		return c.SetValueUndefined(row, true)
	}
	checkIndex(row)
	return c.st.setObject(row, v)
}

func (c *literal) ValueAt(row int) string {
	if c.IsValueUndefined(row) {
		return ""
	}
	return c.format.Format(c.st.objectAt(row))
}

func (c *literal) SetValueAt(row int, s string) error {
	if strings.TrimSpace(s) == "" {
		return c.SetValueUndefined(row, true)
	}
	v, err := c.format.Parse(s)
	if err != nil {
		return err
	}
	return c.SetObjectAt(row, v)
}

func (c *literal) CopyValueFrom(to int, src Column, from int) error {
	if src.IsValueUndefined(from) {
		return c.SetValueUndefined(to, true)
	}
	return c.SetObjectAt(to, src.ObjectAt(from))
}

func (c *literal) Compare(row1, row2 int) int {
	return compareRows(c.IsValueUndefined, c.st.compareValues, row1, row2)
}

func (c *literal) MinIndex() int {
	c.updateExtremes()
	return c.extremes.min
}

func (c *literal) MaxIndex() int {
	c.updateExtremes()
	return c.extremes.max
}

func (c *literal) updateExtremes() {
	if c.extremes.fresh {
		return
	}
	c.extremes = scanExtremes(c.Rows(), c.st.compareValues)
}

func (c *literal) Iterator() bitset.RowIterator {
	if c.undefined == nil {
		return bitset.NewRangeIterator(0, c.size)
	}
	return &definedIterator{col: c, next: c.nextDefined(0)}
}

func (c *literal) Rows() iter.Seq[int] {
	return func(yield func(int) bool) {
		for r := c.nextDefined(0); r != -1; r = c.nextDefined(r + 1) {
			if !yield(r) {
				return
			}
		}
	}
}

// definedIterator walks the rows of a literal column that are not
// undefined.
type definedIterator struct {
	col  *literal
	next int
}

func (it *definedIterator) HasNext() bool { return it.next != -1 }

func (it *definedIterator) Peek() int { return it.next }

func (it *definedIterator) Next() int {
	n := it.next
	if n != -1 {
		it.next = it.col.nextDefined(n + 1)
	}
	return n
}

func (it *definedIterator) Copy() bitset.RowIterator {
	c := *it
	return &c
}

// compareRows orders undefined rows before defined ones and defers to cmp
// otherwise.
func compareRows(undefined func(int) bool, cmp func(int, int) int, row1, row2 int) int {
	u1, u2 := undefined(row1), undefined(row2)
	switch {
	case u1 && u2:
		return 0
	case u1:
		return -1
	case u2:
		return 1
	}
	return cmp(row1, row2)
}

func scanExtremes(rows iter.Seq[int], cmp func(int, int) int) extremes {
	e := extremes{fresh: true, min: -1, max: -1}
	for r := range rows {
		if e.min == -1 || cmp(r, e.min) < 0 {
			e.min = r
		}
		if e.max == -1 || cmp(r, e.max) >= 0 {
			e.max = r
		}
	}
	return e
}
