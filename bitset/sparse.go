package bitset

import (
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// SparseSet is a compressed IntSet backed by a Roaring bitmap. Ranges are
// stored as runs, which makes it the natural holder for modification
// ranges. Indexes must fit in a uint32.
type SparseSet struct {
	bm *roaring.Bitmap
}

// NewSparse returns an empty SparseSet.
func NewSparse() *SparseSet {
	return &SparseSet{bm: roaring.New()}
}

// Bitmap exposes the underlying Roaring bitmap.
func (s *SparseSet) Bitmap() *roaring.Bitmap { return s.bm }

func (s *SparseSet) Set(index int) {
	if index < 0 {
		return
	}
	s.bm.Add(uint32(index))
}

func (s *SparseSet) SetRange(from, to int) {
	if from < 0 {
		from = 0
	}
	if to <= from {
		return
	}
	s.bm.AddRange(uint64(from), uint64(to))
}

func (s *SparseSet) SetTo(index int, value bool) {
	if value {
		s.Set(index)
	} else {
		s.Clear(index)
	}
}

func (s *SparseSet) Clear(index int) {
	if index < 0 {
		return
	}
	s.bm.Remove(uint32(index))
}

func (s *SparseSet) ClearRange(from, to int) {
	if from < 0 {
		from = 0
	}
	if to <= from {
		return
	}
	s.bm.RemoveRange(uint64(from), uint64(to))
}

func (s *SparseSet) ClearAll() { s.bm.Clear() }

func (s *SparseSet) Get(index int) bool {
	if index < 0 || index > math.MaxUint32 {
		return false
	}
	return s.bm.Contains(uint32(index))
}

func (s *SparseSet) Flip(index int) {
	if index < 0 {
		return
	}
	s.bm.Flip(uint64(index), uint64(index)+1)
}

func (s *SparseSet) Cardinality() int { return int(s.bm.GetCardinality()) }

func (s *SparseSet) Length() int {
	if s.bm.IsEmpty() {
		return 0
	}
	return int(s.bm.Maximum()) + 1
}

func (s *SparseSet) IsEmpty() bool { return s.bm.IsEmpty() }

func (s *SparseSet) NextSet(from int) int {
	if from < 0 {
		from = 0
	}
	if from > math.MaxUint32 {
		return -1
	}
	it := s.bm.Iterator()
	it.AdvanceIfNeeded(uint32(from))
	if !it.HasNext() {
		return -1
	}
	return int(it.Next())
}

func (s *SparseSet) NextClear(from int) int {
	if from < 0 {
		from = 0
	}
	it := s.bm.Iterator()
	it.AdvanceIfNeeded(uint32(from))
	want := from
	for it.HasNext() {
		if int(it.Next()) != want {
			break
		}
		want++
	}
	return want
}

func (s *SparseSet) Or(other IntSet) {
	if o, ok := other.(*SparseSet); ok {
		s.bm.Or(o.bm)
		return
	}
	for i := other.NextSet(0); i != -1; i = other.NextSet(i + 1) {
		s.Set(i)
	}
}

func (s *SparseSet) And(other IntSet) {
	if o, ok := other.(*SparseSet); ok {
		s.bm.And(o.bm)
		return
	}
	drop := roaring.New()
	it := s.bm.Iterator()
	for it.HasNext() {
		v := it.Next()
		if !other.Get(int(v)) {
			drop.Add(v)
		}
	}
	s.bm.AndNot(drop)
}

func (s *SparseSet) Clone() IntSet { return &SparseSet{bm: s.bm.Clone()} }

func (s *SparseSet) Iterator() RowIterator { return newSetIterator(s, 0) }

func (s *SparseSet) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		it := s.bm.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}
