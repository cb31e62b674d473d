package columnar

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// DefaultDateLayout is the layout of DateFormat when none is set: day,
// month, year and time of day.
const DefaultDateLayout = "02 01 2006 15:04:05"

// DateFormat formats milliseconds since the Unix epoch as UTC times.
// Parse returns an int64.
type DateFormat struct {
	Layout string
}

func (f DateFormat) layout() string {
	if f.Layout == "" {
		return DefaultDateLayout
	}
	return f.Layout
}

func (f DateFormat) Format(v any) string {
	if v == nil {
		return ""
	}
	ms, err := cast.ToInt64E(v)
	if err != nil {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(f.layout())
}

func (f DateFormat) Parse(s string) (any, error) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation(f.layout(), s, time.UTC)
	if err != nil {
		return nil, &ParseError{Input: s, Err: err}
	}
	return t.UnixMilli(), nil
}

// DateColumn is a long column of milliseconds since the Unix epoch.
type DateColumn struct {
	LongColumn
}

// NewDateColumn returns an empty column formatted with DefaultDateLayout.
func NewDateColumn(name string, reserve int) *DateColumn {
	return NewDateColumnLayout(name, reserve, DefaultDateLayout)
}

// NewDateColumnLayout returns an empty column formatted with layout.
func NewDateColumnLayout(name string, reserve int, layout string) *DateColumn {
	c := &DateColumn{}
	c.values = make([]int64, 0, max(reserve, 0))
	c.initLiteral(name, c, &c.LongColumn, DateFormat{Layout: layout})
	return c
}

// Time returns the value of row, which must be in [0, Size()), as a UTC
// time.
func (c *DateColumn) Time(row int) time.Time {
	return time.UnixMilli(c.Get(row)).UTC()
}

// SetTime stores t at row, growing the column as needed.
func (c *DateColumn) SetTime(row int, t time.Time) {
	c.SetExtend(row, t.UnixMilli())
}

// SetObjectAt accepts a time.Time, a string in the column layout or a
// number of milliseconds.
func (c *DateColumn) SetObjectAt(row int, v any) error {
	switch x := v.(type) {
	case time.Time:
		checkIndex(row)
		c.SetTime(row, x)
		return nil
	case string:
		return c.SetValueAt(row, x)
	}
	return c.LongColumn.SetObjectAt(row, v)
}
