package columnar

import (
	"infovis/bitset"
	"infovis/notify"
)

// base holds the state shared by every column: name, format, metadata and
// change notification.
type base struct {
	name     string
	format   Format
	metadata map[string]any

	changes notify.ChangeManager
	// rows modified since the last event, allocated only while listened to
	modifs bitset.IntSet
}

func (b *base) init(name string, self Column, format Format) {
	b.name = name
	b.format = format
	b.changes.Init(self, func() notify.ChangeEvent {
		detail := b.modifs
		b.modifs = nil
		if detail == nil {
			// changes made before anyone listened are not recorded
			detail = bitset.NewSparse()
		}
		return notify.ChangeEvent{Source: self, Detail: detail}
	})
}

func (b *base) Name() string { return b.name }

func (b *base) SetName(name string) { b.name = name }

func (b *base) Format() Format { return b.format }

func (b *base) SetFormat(f Format) {
	if f != nil {
		b.format = f
	}
}

func (b *base) Metadata() map[string]any {
	if b.metadata == nil {
		b.metadata = make(map[string]any)
	}
	return b.metadata
}

func (b *base) DisableNotify() { b.changes.DisableNotify() }

func (b *base) EnableNotify() { b.changes.EnableNotify() }

func (b *base) AddChangeListener(l notify.ChangeListener) { b.changes.AddChangeListener(l) }

func (b *base) RemoveChangeListener(l notify.ChangeListener) {
	b.changes.RemoveChangeListener(l)
	if !b.changes.HasListeners() {
		b.modifs = nil
	}
}

func (b *base) trackModifs() bitset.IntSet {
	if b.modifs == nil {
		b.modifs = bitset.NewSparse()
	}
	return b.modifs
}

func (b *base) modified(row int) {
	if b.changes.HasListeners() {
		b.trackModifs().Set(row)
	}
	b.changes.Modified()
}

// modifiedRange records the rows in [from, to).
func (b *base) modifiedRange(from, to int) {
	if b.changes.HasListeners() && from < to {
		b.trackModifs().SetRange(from, to)
	}
	b.changes.Modified()
}

func (b *base) modifiedSet(rows bitset.IntSet) {
	if b.changes.HasListeners() && rows != nil {
		b.trackModifs().Or(rows)
	}
	b.changes.Modified()
}
