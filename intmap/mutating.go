package intmap

import (
	"iter"

	"infovis/bitset"
)

// Heuristic decides when a Mutating map switches representation. Costs
// are estimated memory footprints in bytes.
type Heuristic struct {
	// EvaluateEvery is the number of insertions and removals between two
	// evaluations of the representation.
	EvaluateEvery int
	// MinLoadFactor is the lowest fill ratio of the sparse representation.
	MinLoadFactor float64
}

// DefaultHeuristic returns the heuristic used by NewMutating.
func DefaultHeuristic() Heuristic {
	return Heuristic{EvaluateEvery: 64, MinLoadFactor: 0.2}
}

// SparseCost estimates the footprint of n sparse entries.
func (h Heuristic) SparseCost(n int) int {
	return int(float64(n) * 9 / h.MinLoadFactor)
}

// DenseCost estimates the footprint of a dense array covering span keys
// with holes absent ones.
func (h Heuristic) DenseCost(span, holes int) int {
	return span*4 + h.SparseCost(holes)
}

// Mutating is an int map that switches between a dense array with a hole
// set and a Sorted map depending on how densely its keys are packed.
type Mutating struct {
	h Heuristic

	// dense mode when dense != nil; holes marks absent keys below len(dense)
	dense []int
	holes *bitset.SparseSet

	sparse *Sorted

	mods         int
	lastMutation int
}

// NewMutating returns an empty map. A zero Heuristic selects
// DefaultHeuristic.
func NewMutating(h Heuristic) *Mutating {
	def := DefaultHeuristic()
	if h.EvaluateEvery <= 0 {
		h.EvaluateEvery = def.EvaluateEvery
	}
	if h.MinLoadFactor <= 0 || h.MinLoadFactor >= 1 {
		h.MinLoadFactor = def.MinLoadFactor
	}
	return &Mutating{h: h, sparse: NewSorted()}
}

// Dense reports whether the map currently uses the dense representation.
func (m *Mutating) Dense() bool { return m.dense != nil }

func (m *Mutating) Len() int {
	if m.dense != nil {
		return len(m.dense) - m.holes.Cardinality()
	}
	return m.sparse.Len()
}

func (m *Mutating) Contains(key int) bool {
	if m.dense != nil {
		return key >= 0 && key < len(m.dense) && !m.holes.Get(key)
	}
	return m.sparse.Contains(key)
}

func (m *Mutating) Get(key int) (int, bool) {
	if m.dense != nil {
		if !m.Contains(key) {
			return 0, false
		}
		return m.dense[key], true
	}
	return m.sparse.Get(key)
}

// MaxKey returns the largest key, or -1 when the map is empty.
func (m *Mutating) MaxKey() int {
	if m.dense != nil {
		return len(m.dense) - 1
	}
	return m.sparse.MaxKey()
}

func (m *Mutating) worthEvaluating() bool {
	return m.mods-m.lastMutation > m.h.EvaluateEvery
}

// Put stores value under key and reports whether key is new. Negative keys
// panic.
func (m *Mutating) Put(key, value int) bool {
	if key < 0 {
		panic("intmap: negative key")
	}
	if m.Contains(key) {
		if m.dense != nil {
			m.dense[key] = value
		} else {
			m.sparse.Put(key, value)
		}
		return false
	}
	m.mods++
	if m.dense == nil && m.sparse.Len() == 0 && key == 0 {
		m.dense = make([]int, 0, 16)
		m.holes = bitset.NewSparse()
	}
	if m.worthEvaluating() {
		n := m.Len() + 1
		if m.dense != nil && key > len(m.dense) {
			holes := m.holes.Cardinality() + key - len(m.dense)
			if m.h.SparseCost(n) < m.h.DenseCost(key+1, holes) {
				m.toSparse()
			}
		} else if m.dense == nil {
			span := max(m.sparse.MaxKey(), key) + 1
			if m.h.SparseCost(n) > m.h.DenseCost(span, span-n) {
				m.toDense()
			}
		}
	}
	m.insert(key, value)
	return true
}

func (m *Mutating) insert(key, value int) {
	if m.dense == nil {
		m.sparse.Put(key, value)
		return
	}
	switch n := len(m.dense); {
	case key < n:
		m.holes.Clear(key)
		m.dense[key] = value
	case key == n:
		m.dense = append(m.dense, value)
	default:
		m.holes.SetRange(n, key)
		m.dense = append(m.dense, make([]int, key-n)...)
		m.dense = append(m.dense, value)
	}
}

// Remove deletes key and reports whether it was present.
func (m *Mutating) Remove(key int) bool {
	if !m.Contains(key) {
		return false
	}
	m.mods++
	if m.dense == nil {
		m.sparse.Remove(key)
		return true
	}
	if key == len(m.dense)-1 {
		m.truncate(key)
	} else {
		m.holes.Set(key)
	}
	m.rebalance()
	return true
}

// RemoveFrom drops every key >= from.
func (m *Mutating) RemoveFrom(from int) {
	if from < 0 {
		from = 0
	}
	if m.dense == nil {
		m.sparse.RemoveFrom(from)
		return
	}
	if from < len(m.dense) {
		m.truncate(from)
	}
}

// truncate cuts the dense array to n entries, then drops trailing holes.
func (m *Mutating) truncate(n int) {
	m.holes.ClearRange(n, len(m.dense))
	for n > 0 && m.holes.Get(n-1) {
		n--
		m.holes.Clear(n)
	}
	m.dense = m.dense[:n]
}

// rebalance switches a dense map that became too holey back to sparse.
func (m *Mutating) rebalance() {
	if m.dense == nil || !m.worthEvaluating() {
		return
	}
	if m.h.SparseCost(m.Len()) < m.h.DenseCost(len(m.dense), m.holes.Cardinality()) {
		m.toSparse()
	}
}

func (m *Mutating) toSparse() {
	m.lastMutation = m.mods
	s := NewSorted()
	for k, v := range m.All() {
		s.Put(k, v)
	}
	m.sparse = s
	m.dense = nil
	m.holes = nil
}

func (m *Mutating) toDense() {
	m.lastMutation = m.mods
	span := m.sparse.MaxKey() + 1
	m.dense = make([]int, span, span*3/2+1)
	m.holes = bitset.NewSparse()
	m.holes.SetRange(0, span)
	for k, v := range m.sparse.All() {
		m.dense[k] = v
		m.holes.Clear(k)
	}
	m.sparse = NewSorted()
}

func (m *Mutating) Clear() {
	m.dense = nil
	m.holes = nil
	m.sparse.Clear()
}

// Keys yields the keys in increasing order.
func (m *Mutating) Keys() iter.Seq[int] {
	return func(yield func(int) bool) {
		for k := range m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// All yields the entries in increasing key order.
func (m *Mutating) All() iter.Seq2[int, int] {
	if m.dense == nil {
		return m.sparse.All()
	}
	return func(yield func(int, int) bool) {
		for k, v := range m.dense {
			if m.holes.Get(k) {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// NextKey returns the first key >= from, or -1.
func (m *Mutating) NextKey(from int) int {
	if from < 0 {
		from = 0
	}
	if m.dense == nil {
		return m.sparse.NextKey(from)
	}
	if from >= len(m.dense) {
		return -1
	}
	k := m.holes.NextClear(from)
	if k >= len(m.dense) {
		return -1
	}
	return k
}

func (m *Mutating) Clone() *Mutating {
	c := *m
	c.sparse = m.sparse.Clone()
	if m.dense != nil {
		c.dense = append([]int(nil), m.dense...)
		c.holes = m.holes.Clone().(*bitset.SparseSet)
	}
	return &c
}
