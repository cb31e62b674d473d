package columnar

import (
	"fmt"

	"github.com/spf13/cast"

	"infovis/bitset"
)

// BooleanColumn stores one bit per row.
type BooleanColumn struct {
	literal
	values  *bitset.BitSet
	reserve int
}

// NewBooleanColumn returns an empty column with room for reserve rows.
func NewBooleanColumn(name string, reserve int) *BooleanColumn {
	c := &BooleanColumn{values: bitset.New(reserve), reserve: max(reserve, 0)}
	c.initLiteral(name, c, c, BoolFormat{})
	return c
}

func (c *BooleanColumn) resize(n int) {
	if n < c.size {
		c.values.ClearRange(n, c.size)
	}
}

func (c *BooleanColumn) capacity() int { return max(c.reserve, c.size) }

func (c *BooleanColumn) ensureCapacity(n int) { c.reserve = max(c.reserve, n) }

func (c *BooleanColumn) compareValues(row1, row2 int) int {
	b1, b2 := c.values.Get(row1), c.values.Get(row2)
	switch {
	case b1 == b2:
		return 0
	case b1:
		return 1
	default:
		return -1
	}
}

func (c *BooleanColumn) objectAt(row int) any { return c.values.Get(row) }

func (c *BooleanColumn) setObject(row int, v any) error {
	b, err := cast.ToBoolE(v)
	if err != nil {
		return &ParseError{Input: fmt.Sprint(v), Err: err}
	}
	c.SetExtend(row, b)
	return nil
}

// Get returns the value of row, which must be in [0, Size()).
func (c *BooleanColumn) Get(row int) bool {
	checkRow(row, c.size)
	return c.values.Get(row)
}

// Set stores v at row, which must be in [0, Size()), and defines it.
func (c *BooleanColumn) Set(row int, v bool) {
	checkRow(row, c.size)
	c.values.SetTo(row, v)
	c.defined(row)
	c.modified(row)
}

// SetExtend stores v at row, growing the column first when needed.
func (c *BooleanColumn) SetExtend(row int, v bool) {
	checkIndex(row)
	if row >= c.size {
		c.DisableNotify()
		defer c.EnableNotify()
		c.SetSize(row + 1)
	}
	c.Set(row, v)
}

// Add appends v.
func (c *BooleanColumn) Add(v bool) { c.SetExtend(c.size, v) }

// Fill defines every row with v and notifies once.
func (c *BooleanColumn) Fill(v bool) {
	c.DisableNotify()
	defer c.EnableNotify()
	if v {
		c.values.SetRange(0, c.size)
	} else {
		c.values.ClearAll()
	}
	c.undefined = nil
	c.invalidate()
	c.modifiedRange(0, c.size)
}

// Count returns the number of defined rows holding true.
func (c *BooleanColumn) Count() int {
	n := 0
	for r := c.values.NextSet(0); r != -1 && r < c.size; r = c.values.NextSet(r + 1) {
		if c.undefined == nil || !c.undefined.Get(r) {
			n++
		}
	}
	return n
}

func (c *BooleanColumn) IntAt(row int) int {
	if c.Get(row) {
		return 1
	}
	return 0
}

func (c *BooleanColumn) LongAt(row int) int64 { return int64(c.IntAt(row)) }

func (c *BooleanColumn) FloatAt(row int) float32 { return float32(c.IntAt(row)) }

func (c *BooleanColumn) DoubleAt(row int) float64 { return float64(c.IntAt(row)) }

func (c *BooleanColumn) SetDoubleAt(row int, v float64) error {
	checkIndex(row)
	c.SetExtend(row, v != 0)
	return nil
}
