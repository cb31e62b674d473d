// Package notify implements deferred, nestable change notification.
//
// A ChangeManager counts modifications and delivers one coalesced
// ChangeEvent per logical batch. Bulk mutations should be wrapped in
// DisableNotify/EnableNotify:
//
//	m.DisableNotify()
//	defer m.EnableNotify()
//
// Listeners may then receive a single event describing a range of changes
// instead of one event per change.
package notify

import "slices"

// ChangeEvent describes a batch of modifications of Source. Detail is
// specific to the source; columns put the set of modified rows there.
type ChangeEvent struct {
	Source any
	Detail any
}

// ChangeListener receives change events. Listeners are compared by
// identity, so implementations should be pointer types.
type ChangeListener interface {
	StateChanged(ev ChangeEvent)
}

// ChangeManager tracks a modification counter and an inhibit depth. The
// zero value is ready to use and builds events with a nil Source.
type ChangeManager struct {
	modCount  int
	inhibit   int
	listeners []ChangeListener
	source    any
	newEvent  func() ChangeEvent
}

// Init sets the event source and, when factory is not nil, the function
// that builds each event.
func (m *ChangeManager) Init(source any, factory func() ChangeEvent) {
	m.source = source
	m.newEvent = factory
}

// SetEventFactory replaces the function used to build events.
func (m *ChangeManager) SetEventFactory(factory func() ChangeEvent) {
	m.newEvent = factory
}

// ModCount returns the number of modifications not yet notified.
func (m *ChangeManager) ModCount() int { return m.modCount }

// Inhibited reports whether notification is currently disabled.
func (m *ChangeManager) Inhibited() bool { return m.inhibit > 0 }

// DisableNotify suspends notification until the matching EnableNotify.
// Calls nest.
func (m *ChangeManager) DisableNotify() {
	m.inhibit++
}

// EnableNotify ends one DisableNotify region. When the outermost region
// ends, pending modifications are notified. Unbalanced calls clamp the
// depth at zero.
func (m *ChangeManager) EnableNotify() {
	m.inhibit--
	if m.inhibit <= 0 {
		m.inhibit = 0
		m.fireChanged()
	}
}

func (m *ChangeManager) fireChanged() {
	if m.inhibit > 0 || m.modCount == 0 {
		return
	}
	m.modCount = 0
	if len(m.listeners) == 0 {
		return
	}
	var ev ChangeEvent
	if m.newEvent != nil {
		ev = m.newEvent()
	} else {
		ev = ChangeEvent{Source: m.source}
	}
	// listeners may unregister themselves while being notified
	for _, l := range slices.Clone(m.listeners) {
		l.StateChanged(ev)
	}
}

// Modified records a modification and notifies immediately unless
// notification is disabled. It reports whether listeners were called.
func (m *ChangeManager) Modified() bool {
	m.modCount++
	if len(m.listeners) != 0 && m.inhibit == 0 {
		m.fireChanged()
		return true
	}
	return false
}

// AddChangeListener registers l.
func (m *ChangeManager) AddChangeListener(l ChangeListener) {
	m.listeners = append(m.listeners, l)
}

// RemoveChangeListener unregisters the first registration of l.
func (m *ChangeManager) RemoveChangeListener(l ChangeListener) {
	if i := slices.Index(m.listeners, l); i >= 0 {
		m.listeners = slices.Delete(m.listeners, i, i+1)
	}
}

// HasListeners reports whether any listener is registered.
func (m *ChangeManager) HasListeners() bool { return len(m.listeners) != 0 }

// Dispose drops every listener.
func (m *ChangeManager) Dispose() { m.listeners = nil }
