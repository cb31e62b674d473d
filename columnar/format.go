package columnar

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Format converts column values to and from strings.
type Format interface {
	Format(v any) string
	Parse(s string) (any, error)
}

// IntFormat formats integers in base 10. Parse returns an int64.
type IntFormat struct{}

func (IntFormat) Format(v any) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(cast.ToInt64(v), 10)
}

func (IntFormat) Parse(s string) (any, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, &ParseError{Input: s, Pos: firstInvalid(s, "+-0123456789"), Err: err}
	}
	return n, nil
}

// FloatFormat formats floating point values with the shortest
// representation that round-trips at BitSize (32 or 64). Parse returns a
// float64.
type FloatFormat struct {
	BitSize int
}

func (f FloatFormat) bitSize() int {
	if f.BitSize == 32 {
		return 32
	}
	return 64
}

func (f FloatFormat) Format(v any) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(cast.ToFloat64(v), 'g', -1, f.bitSize())
}

func (f FloatFormat) Parse(s string) (any, error) {
	s = strings.TrimSpace(s)
	x, err := strconv.ParseFloat(s, f.bitSize())
	if err != nil {
		return nil, &ParseError{Input: s, Pos: firstInvalid(s, "+-0123456789.eE"), Err: err}
	}
	return x, nil
}

// BoolFormat formats booleans as "true" and "false".
type BoolFormat struct{}

func (BoolFormat) Format(v any) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(cast.ToBool(v))
}

func (BoolFormat) Parse(s string) (any, error) {
	s = strings.TrimSpace(s)
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, &ParseError{Input: s, Err: err}
	}
	return b, nil
}

// firstInvalid returns the offset of the first byte of s outside valid, or
// 0 when every byte is valid.
func firstInvalid(s, valid string) int {
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(valid, rune(s[i])) {
			return i
		}
	}
	return 0
}

func defaultFormat[T Number]() Format {
	var zero T
	switch any(zero).(type) {
	case float32:
		return FloatFormat{BitSize: 32}
	case float64:
		return FloatFormat{BitSize: 64}
	default:
		return IntFormat{}
	}
}

// coerce converts v to T. Strings are parsed, booleans map to 0 and 1.
// Values outside the range of T fail with an error wrapping
// strconv.ErrRange instead of wrapping around.
func coerce[T Number](v any) (T, error) {
	var zero T
	switch any(zero).(type) {
	case int32:
		x, err := toInt64(v)
		if err != nil {
			return zero, err
		}
		if x < math.MinInt32 || x > math.MaxInt32 {
			return zero, rangeError(v, "int32")
		}
		return T(x), nil
	case int64:
		x, err := toInt64(v)
		return T(x), err
	case float32:
		x, err := cast.ToFloat64E(v)
		if err != nil {
			return zero, err
		}
		if math.Abs(x) > math.MaxFloat32 && !math.IsInf(x, 0) {
			return zero, rangeError(v, "float32")
		}
		return T(x), nil
	default:
		x, err := cast.ToFloat64E(v)
		return T(x), err
	}
}

// toInt64 is cast.ToInt64E without its silent wrap of out of range
// floats and unsigned integers.
func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return 0, rangeError(v, "int64")
		}
	case float32:
		if f := float64(x); math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, rangeError(v, "int64")
		}
	case uint64:
		if x > math.MaxInt64 {
			return 0, rangeError(v, "int64")
		}
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, rangeError(v, "int64")
		}
	}
	return cast.ToInt64E(v)
}

func rangeError(v any, typ string) error {
	return fmt.Errorf("%v does not fit in %s: %w", v, typ, strconv.ErrRange)
}
