package pagepool

import (
	"errors"
	"fmt"
)

var (
	ErrPageIO     = errors.New("page file I/O failed")
	ErrPoolClosed = errors.New("page pool is closed")
	ErrNoPageFile = errors.New("no lockable page file")
)

// PageError reports a failed page transfer between memory and the page
// file. It matches ErrPageIO.
type PageError struct {
	Op     string
	Offset int64
	Err    error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("pagepool: %s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

func (e *PageError) Is(target error) bool { return target == ErrPageIO }

// Catch recovers a *PageError panic raised by element accessors of paged
// columns and stores it in *errp. Other panics are re-raised.
//
//	func load(c *columnar.PagedIntColumn) (err error) {
//		defer pagepool.Catch(&err)
//		...
//	}
func Catch(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if pe, ok := r.(*PageError); ok {
		if *errp == nil {
			*errp = pe
		}
		return
	}
	panic(r)
}
