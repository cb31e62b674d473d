// Package columnar implements typed in-memory columns: dense arrays,
// sparse maps, and chunked storage that can spill to a page pool.
//
// Every column tracks which rows are undefined, caches its minimum and
// maximum rows lazily, and reports modifications through a
// notify.ChangeManager. The Detail of the events it sends is a
// bitset.IntSet holding the rows modified since the previous event.
//
// Columns are not safe for concurrent use.
package columnar

import (
	"errors"
	"fmt"
	"iter"

	"infovis/bitset"
	"infovis/notify"
)

// Errors
var (
	ErrReadOnly = errors.New("column is read-only")
	ErrParse    = errors.New("cannot parse value")
)

// ReadOnlyError is returned by mutators of read-only columns. It matches
// ErrReadOnly.
type ReadOnlyError struct {
	Column string
	Op     string
}

func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("column %q is read-only: %s", e.Column, e.Op)
}

func (e *ReadOnlyError) Is(target error) bool { return target == ErrReadOnly }

// ParseError reports a malformed string value. Pos is the byte offset of
// the first offending character, or 0 when unknown. It matches ErrParse.
type ParseError struct {
	Input string
	Pos   int
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q at %d: %v", e.Input, e.Pos, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Column is an ordered, resizable sequence of values of one type.
//
// Rows outside [0, Size()) read as undefined. Mutators return an error
// only for read-only columns.
type Column interface {
	Name() string
	SetName(name string)
	Size() int
	SetSize(n int) error
	// Clear removes every row and forgets undefined state.
	Clear() error
	IsEmpty() bool
	Capacity() int
	EnsureCapacity(n int)

	IsValueUndefined(row int) bool
	// SetValueUndefined marks row as undefined or defined, growing the
	// column when row >= Size(). The stored value is kept, so defining a
	// row again restores it.
	SetValueUndefined(row int, undefined bool) error
	HasUndefinedValue() bool
	// FirstValidRow and LastValidRow return -1 when no row is defined.
	FirstValidRow() int
	LastValidRow() int

	// ObjectAt returns the value of row, or nil when it is undefined.
	ObjectAt(row int) any
	// SetObjectAt stores v at row, growing the column as needed. A nil v
	// marks the row undefined.
	SetObjectAt(row int, v any) error
	// ValueAt formats the value of row; undefined rows format as "".
	ValueAt(row int) string
	// SetValueAt parses s with the column format and stores it at row,
	// growing the column as needed. An empty s marks the row undefined.
	SetValueAt(row int, s string) error
	// CopyValueFrom copies row from of src into row to, including its
	// undefined state.
	CopyValueFrom(to int, src Column, from int) error

	// Compare orders two rows. Undefined rows sort before defined ones.
	Compare(row1, row2 int) int
	// MinIndex is the first row holding the smallest value and MaxIndex the
	// last row holding the largest; both are -1 when no row is defined.
	MinIndex() int
	MaxIndex() int

	Format() Format
	SetFormat(f Format)
	Metadata() map[string]any
	ReadOnly() bool

	DisableNotify()
	EnableNotify()
	AddChangeListener(l notify.ChangeListener)
	RemoveChangeListener(l notify.ChangeListener)

	// Iterator walks the defined rows in increasing order.
	Iterator() bitset.RowIterator
	// Rows yields the defined rows in increasing order.
	Rows() iter.Seq[int]
}

// NumberColumn is a Column whose values convert to and from float64.
type NumberColumn interface {
	Column
	IntAt(row int) int
	LongAt(row int) int64
	FloatAt(row int) float32
	DoubleAt(row int) float64
	// SetDoubleAt converts v to the column type and stores it at row,
	// growing the column. Values outside the range of the column type
	// fail with a *ParseError.
	SetDoubleAt(row int, v float64) error
}

// RowComparator orders rows of a column or table.
type RowComparator interface {
	Compare(row1, row2 int) int
}

// RowComparatorFunc adapts a function to RowComparator.
type RowComparatorFunc func(row1, row2 int) int

func (f RowComparatorFunc) Compare(row1, row2 int) int { return f(row1, row2) }

// Number is the set of element types of numeric columns.
type Number interface {
	int32 | int64 | float32 | float64
}

func checkRow(row, size int) {
	if row < 0 || row >= size {
		panic(fmt.Sprintf("columnar: row %d out of range [0, %d)", row, size))
	}
}

func checkIndex(row int) {
	if row < 0 {
		panic(fmt.Sprintf("columnar: negative row %d", row))
	}
}
