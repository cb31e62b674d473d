package columnar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooleanColumn(t *testing.T) {
	c := NewBooleanColumn("b", 0)
	assert.Equal(t, -1, c.FirstValidRow())
	assert.Equal(t, -1, c.LastValidRow())

	require.NoError(t, c.SetValueUndefined(3, true))
	assert.Equal(t, 4, c.Size())
	assert.Equal(t, -1, c.FirstValidRow(), "all rows undefined")
	assert.Equal(t, -1, c.LastValidRow(), "all rows undefined")

	c.SetExtend(1, true)
	c.SetExtend(2, false)
	assert.Equal(t, 1, c.FirstValidRow())
	assert.Equal(t, 2, c.LastValidRow())
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, "true", c.ValueAt(1))
	assert.Equal(t, "false", c.ValueAt(2))
	assert.Equal(t, 1, c.Compare(1, 2))
	assert.Equal(t, -1, c.Compare(0, 2))
	assert.Equal(t, 2, c.MinIndex())
	assert.Equal(t, 1, c.MaxIndex())

	require.NoError(t, c.SetValueUndefined(1, true))
	assert.Equal(t, 0, c.Count())
	require.NoError(t, c.SetValueUndefined(1, false))
	assert.True(t, c.Get(1))

	c.Fill(true)
	assert.Equal(t, 4, c.Count())
	assert.False(t, c.HasUndefinedValue())

	require.NoError(t, c.SetValueAt(0, "false"))
	assert.False(t, c.Get(0))
	assert.ErrorIs(t, c.SetValueAt(0, "nope"), ErrParse)
	require.NoError(t, c.SetObjectAt(5, 1))
	assert.True(t, c.Get(5))
	assert.Equal(t, 1, c.IntAt(5))
	require.NoError(t, c.SetDoubleAt(5, 0))
	assert.False(t, c.Get(5))

	require.NoError(t, c.SetSize(2))
	require.NoError(t, c.SetSize(6))
	assert.True(t, c.IsValueUndefined(5))
	assert.Equal(t, 1, c.Count())
}
