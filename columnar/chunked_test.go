package columnar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infovis/pagepool"
)

func newTestPool(t *testing.T, pages int) *pagepool.Pool {
	t.Helper()
	p := pagepool.New(int64(pages)*pagepool.PageBytes, pagepool.WithDir(t.TempDir()))
	t.Cleanup(func() { p.Close() })
	return p
}

func TestChunkAddressing(t *testing.T) {
	c := NewChunkedIntColumn("x", 0)
	assert.Equal(t, pagepool.ChunkSize, c.ChunkSize())
	assert.Equal(t, 0, c.IndexToChunk(0))
	assert.Equal(t, 0, c.IndexToChunk(16383))
	assert.Equal(t, 1, c.IndexToChunk(16384))
	assert.Equal(t, 1, c.IndexToCIndex(16385))

	d := NewPagedDoubleColumn("y", 0, newTestPool(t, 4))
	assert.Equal(t, 8192, d.ChunkSize())
	assert.Equal(t, 0, d.IndexToChunk(8191))
	assert.Equal(t, 1, d.IndexToChunk(8192))
}

func TestChunkAllocation(t *testing.T) {
	c := NewChunkedFloatColumn("x", 0)
	assert.Equal(t, 0, c.Chunks())

	c.SetExtend(c.ChunkSize(), 1.5)
	assert.Equal(t, 2, c.Chunks())
	assert.Equal(t, 2*c.ChunkSize(), c.Capacity())
	assert.Equal(t, float32(1.5), c.Get(c.ChunkSize()))
	assert.True(t, c.IsValueUndefined(0))

	require.NoError(t, c.SetSize(10))
	assert.Equal(t, 1, c.Chunks())

	c.EnsureCapacity(3 * c.ChunkSize())
	assert.Equal(t, 3, c.Chunks())
	assert.Equal(t, 10, c.Size())

	require.NoError(t, c.Close())
	assert.Equal(t, 0, c.Chunks())
	assert.Equal(t, 0, c.Size())
}

func TestChunkedGrowthAcrossChunks(t *testing.T) {
	c := NewChunkedIntColumn("x", 0)
	n := c.ChunkSize() - 2
	for i := 0; i < n; i++ {
		c.Add(int32(i))
	}
	c.SetExtend(n+5, -1)

	require.Equal(t, n+6, c.Size())
	for i := 0; i < n; i += 97 {
		assert.Equal(t, int32(i), c.Get(i))
	}
	for i := n; i < n+5; i++ {
		assert.True(t, c.IsValueUndefined(i))
	}
	assert.Equal(t, int32(-1), c.Get(n+5))
	assert.Equal(t, n+5, c.MinIndex())
	assert.Equal(t, n-1, c.MaxIndex())
}

func TestUndefinedRoundTrip(t *testing.T) {
	pool := newTestPool(t, 2)
	columns := map[string]func() NumberColumn{
		"int":     func() NumberColumn { return NewIntColumn("c", 0) },
		"long":    func() NumberColumn { return NewLongColumn("c", 0) },
		"double":  func() NumberColumn { return NewDoubleColumn("c", 0) },
		"boolean": func() NumberColumn { return NewBooleanColumn("c", 0) },
		"sparse":  func() NumberColumn { return NewIntSparseColumn("c") },
		"chunked": func() NumberColumn { return NewChunkedIntColumn("c", 0) },
		"paged":   func() NumberColumn { return NewPagedFloatColumn("c", 0, pool) },
	}
	for name, mk := range columns {
		t.Run(name, func(t *testing.T) {
			c := mk()
			for row := 0; row < 10; row++ {
				require.NoError(t, c.SetDoubleAt(row, float64(row%2)))
			}
			for row := 0; row < 10; row++ {
				before := c.DoubleAt(row)
				require.NoError(t, c.SetValueUndefined(row, true))
				if !c.IsValueUndefined(row) || c.ObjectAt(row) != nil {
					t.Fatalf("row %d still defined", row)
				}
				require.NoError(t, c.SetValueUndefined(row, false))
				if c.IsValueUndefined(row) {
					t.Fatalf("row %d still undefined", row)
				}
				if got := c.DoubleAt(row); got != before {
					t.Errorf("row %d = %v after round trip, want %v", row, got, before)
				}
			}
		})
	}
}

func TestPagedColumnLargerThanPool(t *testing.T) {
	pool := newTestPool(t, 2)
	c := NewPagedIntColumn("big", 0, pool)
	n := 5 * c.ChunkSize()
	for i := 0; i < n; i++ {
		c.Add(int32(i))
	}
	assert.Equal(t, 5, c.Chunks())
	assert.Same(t, pool, c.Pool())

	st := pool.Stats()
	assert.LessOrEqual(t, st.Resident, 2)
	assert.Positive(t, st.PageOuts)

	for i := 0; i < n; i += 13 {
		if got := c.Get(i); got != int32(i) {
			t.Fatalf("Get(%d) = %d", i, got)
		}
	}
	assert.Positive(t, pool.Stats().PageIns)
	assert.Equal(t, int32(n-1), c.Max())

	c.SwapOut()
	require.NoError(t, c.SwapIn())
	assert.Equal(t, int32(n-1), c.Get(n-1))

	require.NoError(t, c.Close())
	assert.Equal(t, 0, pool.Len())
}

func TestPagedDoubleColumn(t *testing.T) {
	pool := newTestPool(t, 1)
	c := NewPagedDoubleColumn("d", 0, pool)
	c.SetExtend(3*c.ChunkSize()+1, 2.25)
	c.Set(0, -1)
	c.AddExtend(0, 0.5)
	assert.Equal(t, 2.25, c.Get(3*c.ChunkSize()+1))
	assert.Equal(t, -0.5, c.Get(0))
	assert.Equal(t, -0.5, c.Min())
	assert.Equal(t, "2.25", c.ValueAt(3*c.ChunkSize()+1))
}

func TestPagedFailureIsCaught(t *testing.T) {
	pool := newTestPool(t, 1)
	c := NewPagedIntColumn("x", 0, pool)
	require.NoError(t, c.SetSize(2*c.ChunkSize()))
	c.Set(0, 42)
	require.NoError(t, pool.Close())

	set := func(row int, v int32) (err error) {
		defer pagepool.Catch(&err)
		c.Set(row, v)
		return nil
	}
	err := set(c.ChunkSize(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pagepool.ErrPageIO))
	assert.True(t, errors.Is(err, pagepool.ErrPoolClosed))

	// the dirty victim could not be written back and is still resident
	assert.Equal(t, int32(42), c.Get(0))
}

func TestNewPagedColumnNeedsPool(t *testing.T) {
	assert.Panics(t, func() { NewPagedIntColumn("x", 0, nil) })
}
