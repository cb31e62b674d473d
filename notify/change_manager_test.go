package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []ChangeEvent
}

func (r *recorder) StateChanged(ev ChangeEvent) { r.events = append(r.events, ev) }

func TestModifiedFiresImmediately(t *testing.T) {
	var m ChangeManager
	m.Init("src", nil)
	r := &recorder{}
	m.AddChangeListener(r)

	assert.True(t, m.Modified())
	assert.True(t, m.Modified())
	require.Len(t, r.events, 2)
	assert.Equal(t, "src", r.events[0].Source)
	assert.Equal(t, 0, m.ModCount())
}

func TestNestedDisableCoalesces(t *testing.T) {
	var m ChangeManager
	calls := 0
	m.Init(nil, func() ChangeEvent {
		calls++
		return ChangeEvent{Detail: calls}
	})
	r := &recorder{}
	m.AddChangeListener(r)

	m.DisableNotify()
	m.DisableNotify()
	for i := 0; i < 10; i++ {
		assert.False(t, m.Modified())
	}
	m.EnableNotify()
	assert.Empty(t, r.events)
	assert.True(t, m.Inhibited())
	m.EnableNotify()

	require.Len(t, r.events, 1)
	assert.Equal(t, 1, r.events[0].Detail)
	assert.Equal(t, 0, m.ModCount())
}

func TestNoEventWithoutModification(t *testing.T) {
	var m ChangeManager
	r := &recorder{}
	m.AddChangeListener(r)
	m.DisableNotify()
	m.EnableNotify()
	assert.Empty(t, r.events)
}

func TestUnbalancedEnableIsTolerated(t *testing.T) {
	var m ChangeManager
	r := &recorder{}
	m.AddChangeListener(r)
	m.EnableNotify()
	m.EnableNotify()
	assert.False(t, m.Inhibited())

	m.DisableNotify()
	m.Modified()
	m.EnableNotify()
	assert.Len(t, r.events, 1)
}

func TestWithoutListenersCountsOnly(t *testing.T) {
	var m ChangeManager
	assert.False(t, m.Modified())
	assert.Equal(t, 1, m.ModCount())
	m.DisableNotify()
	m.EnableNotify()
	// the pending count is consumed even when nobody listens
	assert.Equal(t, 0, m.ModCount())
}

func TestRemoveAndDispose(t *testing.T) {
	var m ChangeManager
	a, b := &recorder{}, &recorder{}
	m.AddChangeListener(a)
	m.AddChangeListener(b)
	m.RemoveChangeListener(a)
	m.Modified()
	assert.Empty(t, a.events)
	assert.Len(t, b.events, 1)

	m.Dispose()
	assert.False(t, m.HasListeners())
	m.Modified()
	assert.Len(t, b.events, 1)
}
