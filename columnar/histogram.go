package columnar

import (
	"cmp"
	"fmt"
	"iter"

	"infovis/bitset"
	"infovis/notify"
)

// DefaultBins is the number of bins of a histogram built with bins <= 0.
const DefaultBins = 200

// HistogramColumn counts the defined values of a NumberColumn in
// equal-width bins, one row per bin. It listens to its source and
// recomputes the counts the first time a bin is read after the source
// changed. Its own listeners hear about every source change.
//
// The bins span [min, max] of the source, widened by a tenth of a bin so
// the maximum falls inside the last bin. A source holding one distinct
// value v uses [v, v+1). When the source has no defined value every bin is
// undefined.
//
// Reading a histogram over a paged column may panic with a
// *pagepool.PageError.
type HistogramColumn struct {
	readOnly
	source NumberColumn
	counts []int32
	lo     float64
	width  float64
	valid  bool
}

// NewHistogramColumn returns a histogram of source with the given number
// of bins, named after the source.
func NewHistogramColumn(source NumberColumn, bins int) *HistogramColumn {
	if bins <= 0 {
		bins = DefaultBins
	}
	c := &HistogramColumn{source: source}
	c.size = bins
	c.init("#BinsFor_"+source.Name(), c, IntFormat{})
	source.AddChangeListener(c)
	return c
}

// Source returns the column being counted, or nil after Dispose.
func (c *HistogramColumn) Source() NumberColumn { return c.source }

// SetSource moves the histogram to src.
func (c *HistogramColumn) SetSource(src NumberColumn) {
	if src == c.source {
		return
	}
	if c.source != nil {
		c.source.RemoveChangeListener(c)
	}
	c.source = src
	if src != nil {
		src.AddChangeListener(c)
	}
	c.invalidate()
}

// SetBins changes the number of bins.
func (c *HistogramColumn) SetBins(n int) error {
	if n <= 0 {
		return fmt.Errorf("columnar: histogram needs at least one bin, got %d", n)
	}
	if n == c.size {
		return nil
	}
	old := c.size
	c.size = n
	c.valid = false
	c.modifiedRange(0, max(old, n))
	return nil
}

// StateChanged marks the counts stale when the source changes.
func (c *HistogramColumn) StateChanged(ev notify.ChangeEvent) {
	if c.source != nil && ev.Source == c.source {
		c.invalidate()
	}
}

// Dispose detaches the histogram from its source and drops its listeners.
func (c *HistogramColumn) Dispose() {
	if c.source != nil {
		c.source.RemoveChangeListener(c)
	}
	c.source = nil
	c.counts = nil
	c.valid = true
	c.changes.Dispose()
}

func (c *HistogramColumn) invalidate() {
	c.valid = false
	c.modifiedRange(0, c.size)
}

func (c *HistogramColumn) validate() {
	if c.valid {
		return
	}
	src := c.source
	if src == nil || src.MinIndex() == -1 {
		c.counts = nil
		c.valid = true
		return
	}
	lo, hi := src.DoubleAt(src.MinIndex()), src.DoubleAt(src.MaxIndex())
	if lo == hi {
		hi = lo + 1
	} else {
		hi += (hi - lo) / float64(c.size) / 10
	}
	counts := make([]int32, c.size)
	c.lo, c.width = lo, (hi-lo)/float64(c.size)
	for r := range src.Rows() {
		counts[c.bin(src.DoubleAt(r))]++
	}
	c.counts = counts
	c.valid = true
}

func (c *HistogramColumn) bin(v float64) int {
	return min(max(int((v-c.lo)/c.width), 0), c.size-1)
}

// BinOf returns the bin v falls in, or -1 when the source has no defined
// value.
func (c *HistogramColumn) BinOf(v float64) int {
	c.validate()
	if c.counts == nil {
		return -1
	}
	return c.bin(v)
}

// BinRange returns the lower and upper edge of bin. Both are 0 when the
// source has no defined value.
func (c *HistogramColumn) BinRange(bin int) (lo, hi float64) {
	checkRow(bin, c.size)
	c.validate()
	if c.counts == nil {
		return 0, 0
	}
	lo = c.lo + float64(bin)*c.width
	return lo, lo + c.width
}

// Get returns the count of bin, which must be in [0, Size()).
func (c *HistogramColumn) Get(bin int) int32 {
	checkRow(bin, c.size)
	c.validate()
	if c.counts == nil {
		return 0
	}
	return c.counts[bin]
}

// ToSlice returns a copy of the counts.
func (c *HistogramColumn) ToSlice() []int32 {
	c.validate()
	out := make([]int32, c.size)
	copy(out, c.counts)
	return out
}

func (c *HistogramColumn) IsValueUndefined(row int) bool {
	if !c.inRange(row) {
		return true
	}
	c.validate()
	return c.counts == nil
}

func (c *HistogramColumn) HasUndefinedValue() bool {
	c.validate()
	return c.counts == nil && c.size > 0
}

func (c *HistogramColumn) FirstValidRow() int {
	if c.HasUndefinedValue() || c.size == 0 {
		return -1
	}
	return 0
}

func (c *HistogramColumn) LastValidRow() int {
	if c.HasUndefinedValue() {
		return -1
	}
	return c.size - 1
}

func (c *HistogramColumn) ObjectAt(row int) any {
	if c.IsValueUndefined(row) {
		return nil
	}
	return c.counts[row]
}

func (c *HistogramColumn) ValueAt(row int) string {
	if c.IsValueUndefined(row) {
		return ""
	}
	return c.format.Format(c.counts[row])
}

func (c *HistogramColumn) compareValues(row1, row2 int) int {
	return cmp.Compare(c.counts[row1], c.counts[row2])
}

func (c *HistogramColumn) Compare(row1, row2 int) int {
	return compareRows(c.IsValueUndefined, c.compareValues, row1, row2)
}

func (c *HistogramColumn) MinIndex() int { return scanExtremes(c.Rows(), c.compareValues).min }

func (c *HistogramColumn) MaxIndex() int { return scanExtremes(c.Rows(), c.compareValues).max }

func (c *HistogramColumn) Iterator() bitset.RowIterator {
	if c.HasUndefinedValue() {
		return bitset.NewRangeIterator(0, 0)
	}
	return bitset.NewRangeIterator(0, c.size)
}

func (c *HistogramColumn) Rows() iter.Seq[int] { return rowsOf(c.Iterator()) }

func (c *HistogramColumn) IntAt(row int) int { return int(c.Get(row)) }

func (c *HistogramColumn) LongAt(row int) int64 { return int64(c.Get(row)) }

func (c *HistogramColumn) FloatAt(row int) float32 { return float32(c.Get(row)) }

func (c *HistogramColumn) DoubleAt(row int) float64 { return float64(c.Get(row)) }

func (c *HistogramColumn) SetDoubleAt(int, float64) error { return c.fail("SetDoubleAt") }
