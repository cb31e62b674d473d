// Package bitset provides the integer sets used by columns to track
// undefined values and modified rows.
//
// Two representations share the IntSet interface: BitSet is dense (one bit
// per index, backed by bits-and-blooms/bitset) and SparseSet is compressed
// (backed by a Roaring bitmap). Indexes are non-negative; negative indexes
// are never members.
package bitset

import "iter"

// IntSet is a set of non-negative integers.
type IntSet interface {
	// Set adds index to the set.
	Set(index int)
	// SetRange adds every index in [from, to).
	SetRange(from, to int)
	// SetTo adds or removes index depending on value.
	SetTo(index int, value bool)
	// ClearRange removes every index in [from, to).
	ClearRange(from, to int)
	// Clear removes index from the set.
	Clear(index int)
	// ClearAll empties the set.
	ClearAll()
	// Get reports whether index is a member.
	Get(index int) bool
	// Flip toggles membership of index.
	Flip(index int)
	// Cardinality returns the number of members.
	Cardinality() int
	// Length returns the highest member plus one, or 0 when empty.
	Length() int
	IsEmpty() bool
	// NextSet returns the first member >= from, or -1.
	NextSet(from int) int
	// NextClear returns the first non-member >= from.
	NextClear(from int) int
	// Or adds every member of other.
	Or(other IntSet)
	// And keeps only the members also in other.
	And(other IntSet)
	Clone() IntSet
	// Iterator returns a forward iterator over the members.
	Iterator() RowIterator
	// All yields the members in increasing order.
	All() iter.Seq[int]
}

// RowIterator walks row indexes forward. A copy continues independently
// from the current position.
type RowIterator interface {
	HasNext() bool
	// Next returns the current row and advances.
	Next() int
	// Peek returns the current row without advancing.
	Peek() int
	Copy() RowIterator
}

// Equal reports whether a and b hold the same members.
func Equal(a, b IntSet) bool {
	if a.Cardinality() != b.Cardinality() {
		return false
	}
	for i := a.NextSet(0); i != -1; i = a.NextSet(i + 1) {
		if !b.Get(i) {
			return false
		}
	}
	return true
}

// setIterator iterates any IntSet through NextSet.
type setIterator struct {
	set  IntSet
	next int
}

func newSetIterator(s IntSet, from int) *setIterator {
	return &setIterator{set: s, next: s.NextSet(from)}
}

func (it *setIterator) HasNext() bool { return it.next != -1 }

func (it *setIterator) Peek() int { return it.next }

func (it *setIterator) Next() int {
	n := it.next
	if n != -1 {
		it.next = it.set.NextSet(n + 1)
	}
	return n
}

func (it *setIterator) Copy() RowIterator {
	return &setIterator{set: it.set, next: it.next}
}

func allOf(s IntSet) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := s.NextSet(0); i != -1; i = s.NextSet(i + 1) {
			if !yield(i) {
				return
			}
		}
	}
}

// RangeIterator iterates [from, to).
type RangeIterator struct {
	next, end int
}

// NewRangeIterator returns an iterator over [from, to).
func NewRangeIterator(from, to int) *RangeIterator {
	return &RangeIterator{next: from, end: to}
}

func (it *RangeIterator) HasNext() bool { return it.next < it.end }

func (it *RangeIterator) Peek() int { return it.next }

func (it *RangeIterator) Next() int {
	n := it.next
	it.next++
	return n
}

func (it *RangeIterator) Copy() RowIterator {
	c := *it
	return &c
}
