package columnar

import (
	"cmp"
	"errors"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Metadata keys and values set by typed columns.
const (
	MetadataValueCategory    = "value_category"
	ValueCategoryCategorical = "categorical"
)

var errNoCategory = errors.New("empty category name")

// CategoricalFormat is a dictionary between category names and dense int
// codes. Parse assigns the next free code to names it has not seen.
type CategoricalFormat struct {
	codes   map[string]int
	names   []string
	ordered bool
}

// NewCategoricalFormat returns an empty dictionary.
func NewCategoricalFormat() *CategoricalFormat {
	return &CategoricalFormat{codes: make(map[string]int)}
}

// PutCategory binds name to code. A negative code is ignored.
func (f *CategoricalFormat) PutCategory(name string, code int) {
	if code < 0 {
		return
	}
	f.codes[name] = code
	for len(f.names) <= code {
		f.names = append(f.names, "")
	}
	f.names[code] = name
}

// Category returns the code of name, or -1.
func (f *CategoricalFormat) Category(name string) int {
	if code, ok := f.codes[name]; ok {
		return code
	}
	return -1
}

// FindCategory returns the code of name, adding it with the first code
// past the largest one when missing. The empty name has no code and
// returns -1.
func (f *CategoricalFormat) FindCategory(name string) int {
	if name == "" {
		return -1
	}
	if code, ok := f.codes[name]; ok {
		return code
	}
	code := len(f.names)
	f.PutCategory(name, code)
	return code
}

// CategoryName returns the name bound to code, or "".
func (f *CategoricalFormat) CategoryName(code int) string {
	if code < 0 || code >= len(f.names) {
		return ""
	}
	return f.names[code]
}

func (f *CategoricalFormat) CategoryCount() int { return len(f.codes) }

// Categories returns a copy of the name to code mapping.
func (f *CategoricalFormat) Categories() map[string]int { return maps.Clone(f.codes) }

// Names returns the category names in code order.
func (f *CategoricalFormat) Names() []string { return slices.Clone(f.names) }

// Ordered reports whether the codes follow a meaningful order of the
// names, as after SortCategories.
func (f *CategoricalFormat) Ordered() bool { return f.ordered }

func (f *CategoricalFormat) SetOrdered(ordered bool) { f.ordered = ordered }

// Merge adds the categories of other missing from f, after the existing
// ones and in other's code order.
func (f *CategoricalFormat) Merge(other *CategoricalFormat) {
	for _, name := range other.names {
		f.FindCategory(name)
	}
}

func (f *CategoricalFormat) Clear() {
	clear(f.codes)
	f.names = f.names[:0]
}

func (f *CategoricalFormat) Format(v any) string {
	if v == nil {
		return ""
	}
	code, err := cast.ToIntE(v)
	if err != nil {
		return ""
	}
	return f.CategoryName(code)
}

// Parse returns the int32 code of s, registering s when it is new.
func (f *CategoricalFormat) Parse(s string) (any, error) {
	code := f.FindCategory(s)
	if code == -1 {
		return nil, &ParseError{Input: s, Err: errNoCategory}
	}
	return int32(code), nil
}

// CompareCategories orders names numerically when both are integers and
// case-insensitively otherwise.
func CompareCategories(a, b string) int {
	if x, err := strconv.Atoi(a); err == nil {
		if y, err := strconv.Atoi(b); err == nil {
			return cmp.Compare(x, y)
		}
	}
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}

// CategoricalColumn is an int column of category codes whose format is a
// CategoricalFormat. Its string values are category names.
type CategoricalColumn struct {
	IntColumn
	categories *CategoricalFormat
}

// NewCategoricalColumn returns an empty column. Categories given here get
// codes in argument order and make the column ordered.
func NewCategoricalColumn(name string, categories ...string) *CategoricalColumn {
	c := &CategoricalColumn{categories: NewCategoricalFormat()}
	c.initLiteral(name, c, &c.IntColumn, c.categories)
	c.Metadata()[MetadataValueCategory] = ValueCategoryCategorical
	for _, cat := range categories {
		c.categories.FindCategory(cat)
	}
	if len(categories) > 0 {
		c.categories.SetOrdered(true)
	}
	return c
}

// NewCategoricalColumnFrom builds a categorical column holding the
// formatted values of src. A categorical src is returned as is.
func NewCategoricalColumnFrom(src Column) (*CategoricalColumn, error) {
	if c, ok := src.(*CategoricalColumn); ok {
		return c, nil
	}
	c := NewCategoricalColumn(src.Name())
	if err := c.SetSize(src.Size()); err != nil {
		return nil, err
	}
	for r := range src.Rows() {
		if err := c.SetValueAt(r, src.ValueAt(r)); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Categories returns the dictionary of the column.
func (c *CategoricalColumn) Categories() *CategoricalFormat { return c.categories }

// SetFormat keeps the dictionary: a categorical column only accepts a
// *CategoricalFormat.
func (c *CategoricalColumn) SetFormat(f Format) {
	if cf, ok := f.(*CategoricalFormat); ok {
		c.categories = cf
		c.base.SetFormat(cf)
	}
}

func (c *CategoricalColumn) FindCategory(name string) int { return c.categories.FindCategory(name) }

func (c *CategoricalColumn) Category(name string) int { return c.categories.Category(name) }

func (c *CategoricalColumn) CategoryName(code int) string { return c.categories.CategoryName(code) }

func (c *CategoricalColumn) CategoryCount() int { return c.categories.CategoryCount() }

func (c *CategoricalColumn) Ordered() bool { return c.categories.Ordered() }

// SetObjectAt stores a category name when v is a string and a code
// otherwise.
func (c *CategoricalColumn) SetObjectAt(row int, v any) error {
	if s, ok := v.(string); ok {
		return c.SetValueAt(row, s)
	}
	return c.IntColumn.SetObjectAt(row, v)
}

// CopyValueFrom copies the category name of a categorical src, and the
// value otherwise.
func (c *CategoricalColumn) CopyValueFrom(to int, src Column, from int) error {
	if src.IsValueUndefined(from) {
		return c.SetValueUndefined(to, true)
	}
	if _, ok := src.(*CategoricalColumn); ok {
		return c.SetValueAt(to, src.ValueAt(from))
	}
	return c.SetObjectAt(to, src.ObjectAt(from))
}

// SortCategories renumbers the categories in the order of compare and
// recodes every row to match. A nil compare selects CompareCategories.
// The column becomes ordered.
func (c *CategoricalColumn) SortCategories(compare func(a, b string) int) {
	if compare == nil {
		compare = CompareCategories
	}
	f := c.categories
	names := slices.Clone(f.names)
	// perm[newCode] = oldCode
	perm := make([]int, len(names))
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int { return compare(names[a], names[b]) })
	f.SetOrdered(true)
	if slices.IsSorted(perm) {
		return
	}

	recode := make([]int32, len(names))
	f.Clear()
	for code, old := range perm {
		recode[old] = int32(code)
		if names[old] != "" {
			f.PutCategory(names[old], code)
		}
	}

	c.DisableNotify()
	defer c.EnableNotify()
	for r := range c.Rows() {
		if code := c.Get(r); code >= 0 && int(code) < len(recode) {
			c.Set(r, recode[code])
		}
	}
}
