package pagepool

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultMaxMemory is DefaultPoolSize in bytes.
const DefaultMaxMemory int64 = 20 << 20

// ParseSize parses a byte count with an optional k, m or g suffix
// (case-insensitive, powers of 1024), as in "20m".
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty pool size")
	}
	mult := int64(1)
	switch s[len(s)-1] {
	case 'k', 'K':
		mult = 1 << 10
	case 'm', 'M':
		mult = 1 << 20
	case 'g', 'G':
		mult = 1 << 30
	}
	if mult != 1 {
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid pool size %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative pool size %d", n)
	}
	if n > math.MaxInt64/mult {
		return 0, fmt.Errorf("pool size %q overflows int64: %w", s, strconv.ErrRange)
	}
	return n * mult, nil
}
