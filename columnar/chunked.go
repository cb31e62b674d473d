package columnar

import (
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"infovis/pagepool"
)

// chunkStore holds the fixed-size pages of a chunked column.
type chunkStore interface {
	// page returns chunk i, marking it modified when write is set. Paging
	// failures panic with a *pagepool.PageError.
	page(i int, write bool) []byte
	chunks() int
	resize(chunks int)
	swapIn() error
	swapOut()
	pool() *pagepool.Pool
}

// heapStore keeps every chunk in memory.
type heapStore struct {
	pages [][]byte
}

func (s *heapStore) page(i int, _ bool) []byte { return s.pages[i] }

func (s *heapStore) chunks() int { return len(s.pages) }

func (s *heapStore) resize(n int) {
	for len(s.pages) < n {
		s.pages = append(s.pages, make([]byte, pagepool.PageBytes))
	}
	clear(s.pages[n:])
	s.pages = s.pages[:n]
}

func (s *heapStore) swapIn() error { return nil }

func (s *heapStore) swapOut() {}

func (s *heapStore) pool() *pagepool.Pool { return nil }

// pagedStore keeps one pool Ref per chunk.
type pagedStore struct {
	p    *pagepool.Pool
	refs []*pagepool.Ref
}

func (s *pagedStore) page(i int, write bool) []byte {
	ref := s.refs[i]
	buf, err := ref.Buffer()
	if err != nil {
		panic(asPageError(err))
	}
	if write {
		ref.Touch()
	}
	return buf
}

func (s *pagedStore) chunks() int { return len(s.refs) }

func (s *pagedStore) resize(n int) {
	for len(s.refs) < n {
		s.refs = append(s.refs, s.p.CreateRef())
	}
	for _, ref := range s.refs[n:] {
		ref.Delete()
	}
	clear(s.refs[n:])
	s.refs = s.refs[:n]
}

func (s *pagedStore) swapIn() error {
	for _, ref := range s.refs {
		if _, err := ref.Buffer(); err != nil {
			return err
		}
	}
	return nil
}

func (s *pagedStore) swapOut() {
	for _, ref := range s.refs {
		ref.Bury()
	}
}

func (s *pagedStore) pool() *pagepool.Pool { return s.p }

func asPageError(err error) *pagepool.PageError {
	var pe *pagepool.PageError
	if errors.As(err, &pe) {
		return pe
	}
	return &pagepool.PageError{Op: "page", Offset: -1, Err: err}
}

// ChunkedColumn stores its values in fixed-size chunks of one pool page
// each, either on the heap or in a pagepool.Pool. Columns with 4-byte
// values hold pagepool.ChunkSize values per chunk, 8-byte columns half as
// many.
//
// Get and Set of a paged column may have to page a chunk in and panic
// with a *pagepool.PageError when that fails; see pagepool.Catch.
type ChunkedColumn[T Number] struct {
	literal
	store chunkStore

	width  int
	bits   uint
	mask   int
	decode func([]byte) T
	encode func([]byte, T)
}

type (
	ChunkedIntColumn   = ChunkedColumn[int32]
	ChunkedFloatColumn = ChunkedColumn[float32]
	PagedIntColumn     = ChunkedColumn[int32]
	PagedFloatColumn   = ChunkedColumn[float32]
	PagedDoubleColumn  = ChunkedColumn[float64]
	PagedLongColumn    = ChunkedColumn[int64]
)

// NewChunkedColumn returns an empty column keeping its chunks on the heap.
func NewChunkedColumn[T Number](name string, reserve int) *ChunkedColumn[T] {
	return newChunkedColumn[T](name, reserve, &heapStore{})
}

// NewPagedColumn returns an empty column whose chunks live in pool.
func NewPagedColumn[T Number](name string, reserve int, pool *pagepool.Pool) *ChunkedColumn[T] {
	if pool == nil {
		panic("columnar: paged column needs a pool")
	}
	return newChunkedColumn[T](name, reserve, &pagedStore{p: pool})
}

func NewChunkedIntColumn(name string, reserve int) *ChunkedIntColumn {
	return NewChunkedColumn[int32](name, reserve)
}

func NewChunkedFloatColumn(name string, reserve int) *ChunkedFloatColumn {
	return NewChunkedColumn[float32](name, reserve)
}

func NewPagedIntColumn(name string, reserve int, pool *pagepool.Pool) *PagedIntColumn {
	return NewPagedColumn[int32](name, reserve, pool)
}

func NewPagedFloatColumn(name string, reserve int, pool *pagepool.Pool) *PagedFloatColumn {
	return NewPagedColumn[float32](name, reserve, pool)
}

func NewPagedDoubleColumn(name string, reserve int, pool *pagepool.Pool) *PagedDoubleColumn {
	return NewPagedColumn[float64](name, reserve, pool)
}

func NewPagedLongColumn(name string, reserve int, pool *pagepool.Pool) *PagedLongColumn {
	return NewPagedColumn[int64](name, reserve, pool)
}

func newChunkedColumn[T Number](name string, reserve int, store chunkStore) *ChunkedColumn[T] {
	c := &ChunkedColumn[T]{store: store}
	c.width, c.decode, c.encode = cellCodec[T]()
	c.bits = pagepool.ChunkBits
	if c.width == 8 {
		c.bits--
	}
	c.mask = 1<<c.bits - 1
	c.initLiteral(name, c, c, defaultFormat[T]())
	c.ensureCapacity(reserve)
	return c
}

// cellCodec returns the width and little-endian codec of T.
func cellCodec[T Number]() (int, func([]byte) T, func([]byte, T)) {
	var zero T
	switch any(zero).(type) {
	case int32:
		return 4,
			func(b []byte) T { return T(int32(binary.LittleEndian.Uint32(b))) },
			func(b []byte, v T) { binary.LittleEndian.PutUint32(b, uint32(int32(v))) }
	case float32:
		return 4,
			func(b []byte) T { return T(math.Float32frombits(binary.LittleEndian.Uint32(b))) },
			func(b []byte, v T) { binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v))) }
	case int64:
		return 8,
			func(b []byte) T { return T(int64(binary.LittleEndian.Uint64(b))) },
			func(b []byte, v T) { binary.LittleEndian.PutUint64(b, uint64(int64(v))) }
	case float64:
		return 8,
			func(b []byte) T { return T(math.Float64frombits(binary.LittleEndian.Uint64(b))) },
			func(b []byte, v T) { binary.LittleEndian.PutUint64(b, math.Float64bits(float64(v))) }
	}
	panic(fmt.Sprintf("columnar: no cell codec for %T", zero))
}

// ChunkSize returns the number of values per chunk.
func (c *ChunkedColumn[T]) ChunkSize() int { return 1 << c.bits }

// IndexToChunk returns the chunk holding row.
func (c *ChunkedColumn[T]) IndexToChunk(row int) int { return row >> c.bits }

// IndexToCIndex returns the position of row within its chunk.
func (c *ChunkedColumn[T]) IndexToCIndex(row int) int { return row & c.mask }

// Chunks returns the number of allocated chunks.
func (c *ChunkedColumn[T]) Chunks() int { return c.store.chunks() }

// Pool returns the pool of a paged column, or nil for a heap column.
func (c *ChunkedColumn[T]) Pool() *pagepool.Pool { return c.store.pool() }

func (c *ChunkedColumn[T]) chunksFor(n int) int {
	return (n + c.mask) >> c.bits
}

func (c *ChunkedColumn[T]) resize(n int) {
	need := c.chunksFor(n)
	if n < c.size || need > c.store.chunks() {
		c.store.resize(need)
	}
}

func (c *ChunkedColumn[T]) capacity() int { return c.store.chunks() << c.bits }

func (c *ChunkedColumn[T]) ensureCapacity(n int) {
	if need := c.chunksFor(n); need > c.store.chunks() {
		c.store.resize(need)
	}
}

func (c *ChunkedColumn[T]) get(row int) T {
	buf := c.store.page(row>>c.bits, false)
	off := (row & c.mask) * c.width
	return c.decode(buf[off : off+c.width])
}

func (c *ChunkedColumn[T]) put(row int, v T) {
	buf := c.store.page(row>>c.bits, true)
	off := (row & c.mask) * c.width
	c.encode(buf[off:off+c.width], v)
}

func (c *ChunkedColumn[T]) compareValues(row1, row2 int) int {
	return cmp.Compare(c.get(row1), c.get(row2))
}

func (c *ChunkedColumn[T]) objectAt(row int) any { return c.get(row) }

func (c *ChunkedColumn[T]) setObject(row int, v any) error {
	x, err := coerce[T](v)
	if err != nil {
		return &ParseError{Input: fmt.Sprint(v), Err: err}
	}
	c.SetExtend(row, x)
	return nil
}

// Get returns the value of row, which must be in [0, Size()).
func (c *ChunkedColumn[T]) Get(row int) T {
	checkRow(row, c.size)
	return c.get(row)
}

// Set stores v at row, which must be in [0, Size()), and defines it.
func (c *ChunkedColumn[T]) Set(row int, v T) {
	checkRow(row, c.size)
	c.put(row, v)
	c.defined(row)
	c.modified(row)
}

// SetExtend stores v at row, growing the column first when needed.
func (c *ChunkedColumn[T]) SetExtend(row int, v T) {
	checkIndex(row)
	if row >= c.size {
		c.DisableNotify()
		defer c.EnableNotify()
		c.SetSize(row + 1)
	}
	c.Set(row, v)
}

// Add appends v.
func (c *ChunkedColumn[T]) Add(v T) { c.SetExtend(c.size, v) }

// AddExtend adds delta to the value of row, or stores delta when the row
// is undefined.
func (c *ChunkedColumn[T]) AddExtend(row int, delta T) {
	if c.IsValueUndefined(row) {
		c.SetExtend(row, delta)
		return
	}
	c.Set(row, c.get(row)+delta)
}

// Fill defines every row with v and notifies once.
func (c *ChunkedColumn[T]) Fill(v T) {
	c.DisableNotify()
	defer c.EnableNotify()
	for row := 0; row < c.size; row++ {
		c.put(row, v)
	}
	c.undefined = nil
	c.modifiedRange(0, c.size)
	if c.size == 0 {
		c.extremes = extremes{fresh: true, min: -1, max: -1}
	} else {
		c.extremes = extremes{fresh: true, min: 0, max: c.size - 1}
	}
}

// Min returns the smallest defined value, or zero when no row is defined.
func (c *ChunkedColumn[T]) Min() T {
	if i := c.MinIndex(); i != -1 {
		return c.get(i)
	}
	var zero T
	return zero
}

// Max returns the largest defined value, or zero when no row is defined.
func (c *ChunkedColumn[T]) Max() T {
	if i := c.MaxIndex(); i != -1 {
		return c.get(i)
	}
	var zero T
	return zero
}

// SwapIn pages every chunk in. With a pool smaller than the column the
// last chunks win.
func (c *ChunkedColumn[T]) SwapIn() error { return c.store.swapIn() }

// SwapOut makes every chunk of the column the next to be evicted.
func (c *ChunkedColumn[T]) SwapOut() { c.store.swapOut() }

// Close releases every chunk and empties the column.
func (c *ChunkedColumn[T]) Close() error {
	err := c.Clear()
	c.store.resize(0)
	return err
}

func (c *ChunkedColumn[T]) IntAt(row int) int { return int(c.Get(row)) }

func (c *ChunkedColumn[T]) LongAt(row int) int64 { return int64(c.Get(row)) }

func (c *ChunkedColumn[T]) FloatAt(row int) float32 { return float32(c.Get(row)) }

func (c *ChunkedColumn[T]) DoubleAt(row int) float64 { return float64(c.Get(row)) }

func (c *ChunkedColumn[T]) SetDoubleAt(row int, v float64) error { return c.SetObjectAt(row, v) }
