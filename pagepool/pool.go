// Package pagepool maintains a bounded LRU pool of fixed-size pages with
// write-back to a private page file.
//
// Columns hold one Ref per chunk. A Ref's page is materialised by
// Ref.Buffer, which promotes it to most-recently-used; when the pool is
// full the least-recently-used page is written to the page file (only if
// it was touched since it was last paged in) and its memory is handed to
// the requesting Ref. Several columns may share a pool and therefore
// compete for the same page budget.
//
// A Pool is not safe for concurrent use. The statistics it exposes through
// Stats and the Prometheus collector may be read from other goroutines.
package pagepool

import (
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"

	"infovis/logging"
)

const (
	// ChunkBits is the number of index bits addressed within a chunk.
	ChunkBits = 14
	// ChunkSize is the number of 4-byte cells in a page.
	ChunkSize = 1 << ChunkBits
	// ChunkMask masks the within-chunk part of an index.
	ChunkMask = ChunkSize - 1
	// CellBytes is the width of the cells ChunkSize counts.
	CellBytes = 4
	// PageBytes is the size of every page managed by a pool.
	PageBytes = ChunkSize * CellBytes

	// DefaultPoolSize is used when no size is configured.
	DefaultPoolSize = "20m"

	maxPageFileAttempts = 100
	defaultPrefix       = "InfoVis"
)

// Pool is an LRU pool of pages. The list is circular around a sentinel
// header: header.next is the most recently used page, header.prev the
// least recently used one.
type Pool struct {
	maxPages   int
	size       int
	header     Ref
	lastTime   int
	lastOffset int64
	// freed file slots, reused last-in first-out
	freeOffsets []int64

	file   *pageFile
	dir    string
	prefix string
	codec  Compressor
	log    *zap.Logger
	closed bool

	stats counters
}

type counters struct {
	pageIns      atomic.Int64
	pageOuts     atomic.Int64
	evictions    atomic.Int64
	bytesRead    atomic.Int64
	bytesWritten atomic.Int64
	resident     atomic.Int64
	maxPages     atomic.Int64
}

// Stats is a snapshot of pool activity.
type Stats struct {
	MaxPages     int
	Resident     int
	PageIns      int64
	PageOuts     int64
	Evictions    int64
	BytesRead    int64
	BytesWritten int64
	FreeOffsets  int
	FileSize     int64
}

// Option configures a Pool.
type Option func(*Pool)

// WithDir places the page file in dir instead of the system temp directory.
func WithDir(dir string) Option {
	return func(p *Pool) { p.dir = dir }
}

// WithPrefix sets the page file name prefix.
func WithPrefix(prefix string) Option {
	return func(p *Pool) {
		if prefix != "" {
			p.prefix = prefix
		}
	}
}

// WithCompressor compresses pages written to the page file.
func WithCompressor(c Compressor) Option {
	return func(p *Pool) { p.codec = c }
}

// WithLogger sets the logger used for page file events. Without it the
// pool logs to logging.Get().
func WithLogger(log *zap.Logger) Option {
	return func(p *Pool) {
		if log != nil {
			p.log = log
		}
	}
}

// New creates a pool allowed to keep maxMemory bytes of pages resident.
// At least one page is always allowed.
func New(maxMemory int64, opts ...Option) *Pool {
	p := &Pool{
		maxPages: pagesFor(maxMemory),
		prefix:   defaultPrefix,
		log:      logging.Get(),
	}
	p.header.next = &p.header
	p.header.prev = &p.header
	for _, opt := range opts {
		opt(p)
	}
	p.stats.maxPages.Store(int64(p.maxPages))
	return p
}

func pagesFor(maxMemory int64) int {
	n := (maxMemory + PageBytes - 1) / PageBytes
	if n < 1 {
		n = 1
	}
	return int(n)
}

// MaxMemory returns the number of bytes the pool may keep resident.
func (p *Pool) MaxMemory() int64 { return int64(p.maxPages) * PageBytes }

// MaxPages returns the page budget.
func (p *Pool) MaxPages() int { return p.maxPages }

// Len returns the number of resident pages.
func (p *Pool) Len() int { return p.size }

// SetMaxMemory changes the page budget. Shrinking pages out the least
// recently used pages until the pool fits.
func (p *Pool) SetMaxMemory(maxMemory int64) error {
	maxPages := pagesFor(maxMemory)
	for p.size > maxPages {
		if err := p.pageOut(p.header.prev); err != nil {
			return err
		}
	}
	p.maxPages = maxPages
	p.stats.maxPages.Store(int64(maxPages))
	return nil
}

// CreateRef returns an unbound Ref. It owns no memory until its first
// Buffer call.
func (p *Pool) CreateRef() *Ref {
	return &Ref{pool: p, fileOffset: -1}
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	s := Stats{
		MaxPages:     int(p.stats.maxPages.Load()),
		Resident:     int(p.stats.resident.Load()),
		PageIns:      p.stats.pageIns.Load(),
		PageOuts:     p.stats.pageOuts.Load(),
		Evictions:    p.stats.evictions.Load(),
		BytesRead:    p.stats.bytesRead.Load(),
		BytesWritten: p.stats.bytesWritten.Load(),
		FreeOffsets:  len(p.freeOffsets),
	}
	if p.file != nil {
		s.FileSize = p.file.size()
	}
	return s
}

// PageFilePath returns the path of the page file, or "" when nothing has
// been written back yet.
func (p *Pool) PageFilePath() string {
	if p.file == nil {
		return ""
	}
	return p.file.path
}

// Close releases the page file. Pages that are not resident are lost.
func (p *Pool) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if p.file == nil {
		return nil
	}
	path := p.file.path
	err := p.file.close()
	p.file = nil
	if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}

func (p *Pool) String() string {
	return fmt.Sprintf("pagepool(%d/%d pages)", p.size, p.maxPages)
}

func (p *Pool) unlink(r *Ref) bool {
	if r == &p.header {
		panic("pagepool: unlinking the list header")
	}
	if r.next == nil {
		return false
	}
	r.prev.next = r.next
	r.next.prev = r.prev
	r.next, r.prev = nil, nil
	p.size--
	p.stats.resident.Store(int64(p.size))
	return true
}

// addBefore links r just before e, unlinking it first if needed.
func (p *Pool) addBefore(r, e *Ref) {
	p.unlink(r)
	r.next = e
	r.prev = e.prev
	r.prev.next = r
	r.next.prev = r
	p.size++
	p.stats.resident.Store(int64(p.size))
}

func (p *Pool) moveToFront(r *Ref) {
	if p.header.next == r {
		return
	}
	p.addBefore(r, p.header.next)
	r.time = p.lastTime
	p.lastTime++
}

func (p *Pool) moveToBack(r *Ref) {
	if p.header.prev == r {
		return
	}
	p.addBefore(r, &p.header)
}

// delete unlinks r for good and returns its file slot to the free stack.
func (p *Pool) delete(r *Ref) bool {
	ret := p.unlink(r)
	r.buf = nil
	r.dirty = false
	if r.fileOffset != -1 {
		p.freeOffsets = append(p.freeOffsets, r.fileOffset)
		p.log.Debug("reclaiming page file slot", zap.Int64("offset", r.fileOffset))
		r.fileOffset = -1
	}
	return ret
}

func (p *Pool) findFileOffset(r *Ref) int64 {
	if r.fileOffset == -1 {
		if n := len(p.freeOffsets); n > 0 {
			r.fileOffset = p.freeOffsets[n-1]
			p.freeOffsets = p.freeOffsets[:n-1]
		} else {
			r.fileOffset = p.lastOffset
			p.lastOffset += p.slotBytes()
		}
	}
	return r.fileOffset
}

func (p *Pool) slotBytes() int64 {
	if p.codec == nil {
		return PageBytes
	}
	return PageBytes + slotHeaderBytes
}

// pageOut evicts r. Its content is written back only when dirty; if the
// write fails r stays resident and nothing is lost.
func (p *Pool) pageOut(r *Ref) error {
	if r.dirty {
		off := p.findFileOffset(r)
		if err := p.writePage(off, r.buf); err != nil {
			p.log.Error("page write-back failed", zap.Int64("offset", off), zap.Error(err))
			return err
		}
		r.dirty = false
		p.stats.pageOuts.Add(1)
	}
	p.unlink(r)
	r.buf = nil
	p.stats.evictions.Add(1)
	return nil
}

// pageIn binds a page to r, evicting the least recently used page when
// the pool is full.
func (p *Pool) pageIn(r *Ref) error {
	var buf []byte
	if p.size < p.maxPages {
		buf = make([]byte, PageBytes)
	} else {
		oldest := p.header.prev
		buf = oldest.buf
		if err := p.pageOut(oldest); err != nil {
			return err
		}
		if r.fileOffset < 0 {
			clear(buf)
		}
	}
	if r.fileOffset >= 0 {
		if err := p.readPage(r.fileOffset, buf); err != nil {
			p.log.Error("page read failed", zap.Int64("offset", r.fileOffset), zap.Error(err))
			return err
		}
		p.stats.pageIns.Add(1)
	}
	r.buf = buf
	r.dirty = false
	p.moveToFront(r)
	return nil
}
