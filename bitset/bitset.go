package bitset

import (
	"iter"
	"math/bits"

	bbs "github.com/bits-and-blooms/bitset"
)

// BitSet is a dense IntSet, one bit per index.
type BitSet struct {
	bits *bbs.BitSet
}

// New returns an empty BitSet with room for n indexes.
func New(n int) *BitSet {
	if n < 0 {
		n = 0
	}
	return &BitSet{bits: bbs.New(uint(n))}
}

func (b *BitSet) Set(index int) {
	if index < 0 {
		return
	}
	b.bits.Set(uint(index))
}

func (b *BitSet) SetRange(from, to int) {
	if from < 0 {
		from = 0
	}
	for i := from; i < to; i++ {
		b.bits.Set(uint(i))
	}
}

func (b *BitSet) SetTo(index int, value bool) {
	if value {
		b.Set(index)
	} else {
		b.Clear(index)
	}
}

func (b *BitSet) Clear(index int) {
	if index < 0 {
		return
	}
	b.bits.Clear(uint(index))
}

func (b *BitSet) ClearRange(from, to int) {
	if from < 0 {
		from = 0
	}
	if l := b.Length(); to > l {
		to = l
	}
	for i := b.NextSet(from); i != -1 && i < to; i = b.NextSet(i + 1) {
		b.bits.Clear(uint(i))
	}
}

func (b *BitSet) ClearAll() { b.bits.ClearAll() }

func (b *BitSet) Get(index int) bool {
	if index < 0 {
		return false
	}
	return b.bits.Test(uint(index))
}

func (b *BitSet) Flip(index int) {
	if index < 0 {
		return
	}
	b.bits.Flip(uint(index))
}

func (b *BitSet) Cardinality() int { return int(b.bits.Count()) }

// Length returns the highest set bit plus one.
func (b *BitSet) Length() int {
	words := b.bits.Bytes()
	for w := len(words) - 1; w >= 0; w-- {
		if words[w] != 0 {
			return w*64 + bits.Len64(words[w])
		}
	}
	return 0
}

func (b *BitSet) IsEmpty() bool { return b.bits.None() }

func (b *BitSet) NextSet(from int) int {
	if from < 0 {
		from = 0
	}
	i, ok := b.bits.NextSet(uint(from))
	if !ok {
		return -1
	}
	return int(i)
}

func (b *BitSet) NextClear(from int) int {
	if from < 0 {
		from = 0
	}
	if i, ok := b.bits.NextClear(uint(from)); ok {
		return int(i)
	}
	// every allocated bit from "from" on is set
	return max(from, int(b.bits.Len()))
}

func (b *BitSet) Or(other IntSet) {
	if o, ok := other.(*BitSet); ok {
		b.bits.InPlaceUnion(o.bits)
		return
	}
	for i := other.NextSet(0); i != -1; i = other.NextSet(i + 1) {
		b.Set(i)
	}
}

func (b *BitSet) And(other IntSet) {
	if o, ok := other.(*BitSet); ok {
		b.bits.InPlaceIntersection(o.bits)
		return
	}
	for i := b.NextSet(0); i != -1; i = b.NextSet(i + 1) {
		if !other.Get(i) {
			b.Clear(i)
		}
	}
}

func (b *BitSet) Clone() IntSet { return &BitSet{bits: b.bits.Clone()} }

func (b *BitSet) Iterator() RowIterator { return newSetIterator(b, 0) }

func (b *BitSet) All() iter.Seq[int] { return allOf(b) }
