// Package intmap provides maps from non-negative int keys to int values
// that iterate in key order.
package intmap

import (
	"iter"

	"infovis/bitset"
)

// Sorted keeps its keys in a compressed bitmap, so iteration is ordered
// and range removal is cheap.
type Sorted struct {
	keys   *bitset.SparseSet
	values map[int]int
}

// NewSorted returns an empty map.
func NewSorted() *Sorted {
	return &Sorted{keys: bitset.NewSparse(), values: make(map[int]int)}
}

func (s *Sorted) Len() int { return len(s.values) }

func (s *Sorted) Get(key int) (int, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Sorted) Contains(key int) bool {
	_, ok := s.values[key]
	return ok
}

// Put stores value under key and reports whether key is new. Negative keys
// panic.
func (s *Sorted) Put(key, value int) bool {
	if key < 0 {
		panic("intmap: negative key")
	}
	_, existed := s.values[key]
	s.values[key] = value
	if !existed {
		s.keys.Set(key)
	}
	return !existed
}

func (s *Sorted) Remove(key int) bool {
	if _, ok := s.values[key]; !ok {
		return false
	}
	delete(s.values, key)
	s.keys.Clear(key)
	return true
}

// RemoveFrom drops every key >= from.
func (s *Sorted) RemoveFrom(from int) {
	for k := s.keys.NextSet(from); k != -1; k = s.keys.NextSet(k + 1) {
		delete(s.values, k)
	}
	s.keys.ClearRange(from, s.keys.Length())
}

func (s *Sorted) Clear() {
	s.keys.ClearAll()
	clear(s.values)
}

// MaxKey returns the largest key, or -1 when the map is empty.
func (s *Sorted) MaxKey() int { return s.keys.Length() - 1 }

// NextKey returns the first key >= from, or -1.
func (s *Sorted) NextKey(from int) int { return s.keys.NextSet(from) }

// Keys yields the keys in increasing order.
func (s *Sorted) Keys() iter.Seq[int] { return s.keys.All() }

// All yields the entries in increasing key order.
func (s *Sorted) All() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for k := range s.keys.All() {
			if !yield(k, s.values[k]) {
				return
			}
		}
	}
}

func (s *Sorted) Clone() *Sorted {
	values := make(map[int]int, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	return &Sorted{keys: s.keys.Clone().(*bitset.SparseSet), values: values}
}
