package pagepool

// Ref is a paged handle on one page of a Pool.
//
// A Ref moves between four states: unbound (no page, no file slot),
// resident (page in the LRU list), dirty (resident and touched, a write-back
// is pending) and paged out (no page, file slot assigned). Delete ends the
// lifecycle from any state.
type Ref struct {
	pool       *Pool
	dirty      bool
	fileOffset int64
	buf        []byte
	next, prev *Ref
	time       int
}

// Pool returns the pool managing r.
func (r *Ref) Pool() *Pool { return r.pool }

// Buffer returns the page of r, paging it in if needed, and marks it most
// recently used. The returned slice is only valid until the next call into
// the pool.
func (r *Ref) Buffer() ([]byte, error) {
	if r.buf == nil {
		if err := r.pool.pageIn(r); err != nil {
			return nil, err
		}
	} else {
		r.pool.moveToFront(r)
	}
	return r.buf, nil
}

// Resident reports whether r currently holds a page.
func (r *Ref) Resident() bool { return r.buf != nil }

// Bury moves a resident page to the least recently used end of the list so
// it is the next one evicted. It does not evict it.
func (r *Ref) Bury() {
	if r.buf != nil {
		r.pool.moveToBack(r)
	}
}

// Touch declares the page modified. A non-resident Ref has nothing to
// write back and is left untouched.
func (r *Ref) Touch() {
	if r.buf != nil {
		r.dirty = true
	}
}

// Dirty reports whether the page has changes not yet written back.
func (r *Ref) Dirty() bool { return r.dirty }

// FileOffset returns the page file slot of r, or -1 when it has none.
func (r *Ref) FileOffset() int64 { return r.fileOffset }

// Delete releases the page and the file slot of r. It reports whether r
// was resident.
func (r *Ref) Delete() bool {
	return r.pool.delete(r)
}
