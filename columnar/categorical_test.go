package columnar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoricalColumn(t *testing.T) {
	c := NewCategoricalColumn("color")
	assert.Equal(t, ValueCategoryCategorical, c.Metadata()[MetadataValueCategory])
	assert.False(t, c.Ordered())

	for row, v := range []string{"red", "green", "red", "", "blue"} {
		require.NoError(t, c.SetValueAt(row, v))
	}
	assert.Equal(t, 5, c.Size())
	assert.Equal(t, 3, c.CategoryCount())
	assert.Equal(t, []int32{0, 1, 0}, c.ToSlice()[:3])
	assert.True(t, c.IsValueUndefined(3))
	assert.Equal(t, "blue", c.ValueAt(4))
	assert.Equal(t, int32(2), c.ObjectAt(4))
	assert.Equal(t, 1, c.Category("green"))
	assert.Equal(t, -1, c.Category("mauve"))
	assert.Equal(t, "", c.CategoryName(7))

	require.NoError(t, c.SetObjectAt(5, "green"))
	assert.Equal(t, int32(1), c.Get(5))
	require.NoError(t, c.SetObjectAt(6, 2))
	assert.Equal(t, "blue", c.ValueAt(6))

	other := NewCategoricalColumn("other", "blue", "red")
	require.NoError(t, other.CopyValueFrom(0, c, 1))
	assert.Equal(t, "green", other.ValueAt(0))
	assert.Equal(t, 2, other.Category("green"))
	require.NoError(t, other.CopyValueFrom(1, c, 3))
	assert.True(t, other.IsValueUndefined(1))
	require.NoError(t, other.CopyValueFrom(2, NewConstantColumn("k", 1, "teal"), 0))
	assert.Equal(t, "teal", other.ValueAt(2))
}

func TestSortCategories(t *testing.T) {
	c := NewCategoricalColumn("sizes")
	for row, v := range []string{"10", "b", "9", "A", "b"} {
		require.NoError(t, c.SetValueAt(row, v))
	}
	before := make([]string, c.Size())
	for row := range before {
		before[row] = c.ValueAt(row)
	}

	r := &recorder{}
	c.AddChangeListener(r)
	c.SortCategories(nil)

	assert.True(t, c.Ordered())
	assert.Equal(t, []string{"9", "10", "A", "b"}, c.Categories().Names())
	for row, want := range before {
		assert.Equal(t, want, c.ValueAt(row), "row %d", row)
	}
	assert.Equal(t, []int32{1, 3, 0, 2, 3}, c.ToSlice())
	require.Len(t, r.events, 1)

	r.events = nil
	c.SortCategories(nil)
	assert.Empty(t, r.events, "sorting sorted categories changes nothing")

	c.SortCategories(func(a, b string) int { return -strings.Compare(a, b) })
	assert.Equal(t, []string{"b", "A", "9", "10"}, c.Categories().Names())
	assert.Equal(t, "10", c.ValueAt(0))
}

func TestCategoricalFormat(t *testing.T) {
	f := NewCategoricalFormat()
	f.PutCategory("x", 3)
	f.PutCategory("ignored", -1)
	assert.Equal(t, 1, f.CategoryCount())
	assert.Equal(t, 4, f.FindCategory("y"))
	assert.Equal(t, -1, f.FindCategory(""))

	_, err := f.Parse("")
	assert.ErrorIs(t, err, ErrParse)
	v, err := f.Parse("z")
	require.NoError(t, err)
	assert.Equal(t, int32(5), v)
	assert.Equal(t, "z", f.Format(int32(5)))
	assert.Equal(t, "", f.Format(nil))

	g := NewCategoricalFormat()
	g.FindCategory("y")
	g.Merge(f)
	assert.Equal(t, map[string]int{"y": 0, "x": 1, "z": 2}, g.Categories())
}

func TestCategoricalFromColumn(t *testing.T) {
	src := NewIntColumn("n", 0)
	src.Add(7)
	src.Add(3)
	require.NoError(t, src.SetValueUndefined(2, true))
	src.Add(7)

	c, err := NewCategoricalColumnFrom(src)
	require.NoError(t, err)
	assert.Equal(t, "n", c.Name())
	assert.Equal(t, 4, c.Size())
	assert.Equal(t, 2, c.CategoryCount())
	assert.True(t, c.IsValueUndefined(2))
	assert.Equal(t, "7", c.ValueAt(3))

	same, err := NewCategoricalColumnFrom(c)
	require.NoError(t, err)
	assert.Same(t, c, same)
}

func TestDateColumn(t *testing.T) {
	c := NewDateColumn("when", 0)
	require.NoError(t, c.SetValueAt(0, "16 10 2026 08:30:00"))
	want := time.Date(2026, time.October, 16, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, want.UnixMilli(), c.Get(0))
	assert.True(t, want.Equal(c.Time(0)))
	assert.Equal(t, "16 10 2026 08:30:00", c.ValueAt(0))

	require.NoError(t, c.SetObjectAt(2, want.Add(time.Hour)))
	assert.True(t, c.IsValueUndefined(1))
	assert.Equal(t, "16 10 2026 09:30:00", c.ValueAt(2))
	assert.Equal(t, 2, c.MaxIndex())

	require.NoError(t, c.SetObjectAt(1, int64(0)))
	assert.Equal(t, "01 01 1970 00:00:00", c.ValueAt(1))
	assert.ErrorIs(t, c.SetValueAt(3, "2026-10-16"), ErrParse)

	iso := NewDateColumnLayout("iso", 0, time.DateOnly)
	require.NoError(t, iso.SetObjectAt(0, "2026-10-16"))
	assert.Equal(t, "2026-10-16", iso.ValueAt(0))
}
