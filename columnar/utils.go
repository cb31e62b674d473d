package columnar

import (
	"cmp"
	"maps"
	"slices"
)

// Equal reports whether a and b have the same size, the same undefined
// rows and format the same value at every defined row.
func Equal(a, b Column) bool {
	if a.Size() != b.Size() {
		return false
	}
	for row := 0; row < a.Size(); row++ {
		ua, ub := a.IsValueUndefined(row), b.IsValueUndefined(row)
		if ua != ub {
			return false
		}
		if !ua && a.ValueAt(row) != b.ValueAt(row) {
			return false
		}
	}
	return true
}

// CompareValues orders row1 of a against row2 of b. Undefined values sort
// first. Numeric columns compare as float64, others by formatted value.
func CompareValues(a Column, row1 int, b Column, row2 int) int {
	u1, u2 := a.IsValueUndefined(row1), b.IsValueUndefined(row2)
	switch {
	case u1 && u2:
		return 0
	case u1:
		return -1
	case u2:
		return 1
	}
	na, ok1 := a.(NumberColumn)
	nb, ok2 := b.(NumberColumn)
	if ok1 && ok2 {
		return cmp.Compare(na.DoubleAt(row1), nb.DoubleAt(row2))
	}
	return cmp.Compare(a.ValueAt(row1), b.ValueAt(row2))
}

// ValueCounts returns how many defined rows hold each value.
func ValueCounts(c Column) map[any]int {
	counts := make(map[any]int)
	for row := range c.Rows() {
		counts[c.ObjectAt(row)]++
	}
	return counts
}

// SortedRows returns the rows of c ordered by Column.Compare, undefined
// rows first. Equal rows keep their order.
func SortedRows(c Column) []int {
	rows := make([]int, c.Size())
	for i := range rows {
		rows[i] = i
	}
	slices.SortStableFunc(rows, c.Compare)
	return rows
}

// DistinctValues returns the distinct defined values of c ordered by
// their formatted value.
func DistinctValues(c Column) []any {
	counts := ValueCounts(c)
	values := slices.Collect(maps.Keys(counts))
	slices.SortFunc(values, func(a, b any) int {
		return cmp.Compare(c.Format().Format(a), c.Format().Format(b))
	})
	return values
}
