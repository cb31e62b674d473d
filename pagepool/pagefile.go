package pagepool

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// slotHeaderBytes precedes every page in a compressed page file:
// codec (1), reserved (3), payload length (4), payload CRC32 (4), reserved (4).
const slotHeaderBytes = 16

// pageFile is the scratch file pages are written back to. It is private
// to one pool and holds an exclusive lock for its lifetime.
type pageFile struct {
	f    *os.File
	path string
}

// openLockPageFile creates or reuses dir/<prefix><i>.tmp for the first i
// whose file can be locked exclusively. Files locked by another pool or
// process are skipped.
func openLockPageFile(dir, prefix string, log *zap.Logger) (*pageFile, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	for i := 0; i < maxPageFileAttempts; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%s%d.tmp", prefix, i))
		_, statErr := os.Stat(path)
		exists := statErr == nil
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
		if err != nil {
			return nil, errors.Wrapf(err, "open page file %s", path)
		}
		if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
			f.Close()
			if errors.Is(err, unix.EWOULDBLOCK) {
				continue
			}
			return nil, errors.Wrapf(err, "lock page file %s", path)
		}
		if exists {
			if err := f.Truncate(0); err != nil {
				f.Close()
				return nil, errors.Wrapf(err, "reset page file %s", path)
			}
			log.Info("reusing page file", zap.String("path", path))
		} else {
			log.Info("creating page file", zap.String("path", path))
		}
		return &pageFile{f: f, path: path}, nil
	}
	return nil, errors.Wrapf(ErrNoPageFile, "%d candidates in %s", maxPageFileAttempts, dir)
}

func (pf *pageFile) size() int64 {
	info, err := pf.f.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}

func (pf *pageFile) close() error {
	unix.Flock(int(pf.f.Fd()), unix.LOCK_UN)
	return pf.f.Close()
}

func (p *Pool) getPageFile() (*pageFile, error) {
	if p.closed {
		return nil, ErrPoolClosed
	}
	if p.file == nil {
		pf, err := openLockPageFile(p.dir, p.prefix, p.log)
		if err != nil {
			return nil, err
		}
		p.file = pf
	}
	return p.file, nil
}

func (p *Pool) writePage(off int64, page []byte) error {
	pf, err := p.getPageFile()
	if err != nil {
		return &PageError{Op: "write", Offset: off, Err: err}
	}
	out := page
	if p.codec != nil {
		out, err = p.encodeSlot(page)
		if err != nil {
			return &PageError{Op: "compress", Offset: off, Err: err}
		}
	}
	n, err := pf.f.WriteAt(out, off)
	p.stats.bytesWritten.Add(int64(n))
	if err != nil {
		return &PageError{Op: "write", Offset: off, Err: errors.Wrapf(err, "write page at %d", off)}
	}
	return nil
}

func (p *Pool) readPage(off int64, page []byte) error {
	if p.file == nil {
		return &PageError{Op: "read", Offset: off, Err: errors.New("page file not open")}
	}
	if p.codec == nil {
		n, err := p.file.f.ReadAt(page, off)
		p.stats.bytesRead.Add(int64(n))
		if err != nil {
			return &PageError{Op: "read", Offset: off, Err: errors.Wrapf(err, "read page at %d", off)}
		}
		return nil
	}
	slot := make([]byte, PageBytes+slotHeaderBytes)
	n, err := p.file.f.ReadAt(slot, off)
	p.stats.bytesRead.Add(int64(n))
	if err != nil && !(errors.Is(err, io.EOF) && n >= slotHeaderBytes) {
		return &PageError{Op: "read", Offset: off, Err: errors.Wrapf(err, "read page at %d", off)}
	}
	if err := p.decodeSlot(slot[:n], page); err != nil {
		return &PageError{Op: "decompress", Offset: off, Err: err}
	}
	return nil
}

// encodeSlot compresses page behind a slot header. Pages that do not
// shrink are stored raw.
func (p *Pool) encodeSlot(page []byte) ([]byte, error) {
	payload, err := p.codec.Compress(page)
	if err != nil {
		return nil, err
	}
	codec := p.codec.Type()
	if len(payload) >= len(page) {
		payload = page
		codec = CompressionNone
	}
	slot := make([]byte, slotHeaderBytes+len(payload))
	slot[0] = byte(codec)
	binary.LittleEndian.PutUint32(slot[4:8], uint32(len(payload)))
	binary.LittleEndian.PutUint32(slot[8:12], crc32.ChecksumIEEE(payload))
	copy(slot[slotHeaderBytes:], payload)
	return slot, nil
}

func (p *Pool) decodeSlot(slot, page []byte) error {
	if len(slot) < slotHeaderBytes {
		return errors.Errorf("short slot: %d bytes", len(slot))
	}
	codec := CompressionType(slot[0])
	length := int(binary.LittleEndian.Uint32(slot[4:8]))
	if slotHeaderBytes+length > len(slot) {
		return errors.Errorf("slot payload of %d bytes exceeds %d available", length, len(slot)-slotHeaderBytes)
	}
	payload := slot[slotHeaderBytes : slotHeaderBytes+length]
	if sum := crc32.ChecksumIEEE(payload); sum != binary.LittleEndian.Uint32(slot[8:12]) {
		return errors.Errorf("checksum mismatch: calculated %x, stored %x", sum, binary.LittleEndian.Uint32(slot[8:12]))
	}
	if codec == CompressionNone {
		if len(payload) != len(page) {
			return errors.Errorf("raw page of %d bytes, want %d", len(payload), len(page))
		}
		copy(page, payload)
		return nil
	}
	if codec != p.codec.Type() {
		return errors.Errorf("page written with codec %s, pool uses %s", codec, p.codec.Type())
	}
	data, err := p.codec.Decompress(payload)
	if err != nil {
		return err
	}
	if len(data) != len(page) {
		return errors.Errorf("decompression size mismatch: expected %d, got %d", len(page), len(data))
	}
	copy(page, data)
	return nil
}
