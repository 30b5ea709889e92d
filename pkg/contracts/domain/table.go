package domain

import (
	"fmt"
	"math"
	"strconv"
)

// ColumnKind describes the type of values held by a column
type ColumnKind string

const (
	KindString ColumnKind = "string"
	KindFloat  ColumnKind = "float"
	KindInt    ColumnKind = "int"
)

// Column is a named, typed column. Exactly one of the backing slices is used,
// selected by Kind.
type Column struct {
	Name    string     `json:"name"`
	Kind    ColumnKind `json:"kind"`
	Strings []string   `json:"strings,omitempty"`
	Floats  []float64  `json:"floats,omitempty"`
	Ints    []int64    `json:"ints,omitempty"`
}

// NewStringColumn creates a string column
func NewStringColumn(name string, values []string) *Column {
	return &Column{Name: name, Kind: KindString, Strings: values}
}

// NewFloatColumn creates a float column
func NewFloatColumn(name string, values []float64) *Column {
	return &Column{Name: name, Kind: KindFloat, Floats: values}
}

// NewIntColumn creates an integer column
func NewIntColumn(name string, values []int64) *Column {
	return &Column{Name: name, Kind: KindInt, Ints: values}
}

// Len returns the number of values in the column
func (c *Column) Len() int {
	switch c.Kind {
	case KindFloat:
		return len(c.Floats)
	case KindInt:
		return len(c.Ints)
	default:
		return len(c.Strings)
	}
}

// Value returns the i-th value as an interface
func (c *Column) Value(i int) any {
	switch c.Kind {
	case KindFloat:
		return c.Floats[i]
	case KindInt:
		return c.Ints[i]
	default:
		return c.Strings[i]
	}
}

// Text returns the i-th value formatted as text
func (c *Column) Text(i int) string {
	switch c.Kind {
	case KindFloat:
		return strconv.FormatFloat(c.Floats[i], 'f', -1, 64)
	case KindInt:
		return strconv.FormatInt(c.Ints[i], 10)
	default:
		return c.Strings[i]
	}
}

// Float returns the i-th value as float64. String values that do not parse
// yield NaN.
func (c *Column) Float(i int) float64 {
	switch c.Kind {
	case KindFloat:
		return c.Floats[i]
	case KindInt:
		return float64(c.Ints[i])
	default:
		f, err := strconv.ParseFloat(c.Strings[i], 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
}

// Int returns the i-th value as int64 when it can be represented exactly
func (c *Column) Int(i int) (int64, bool) {
	switch c.Kind {
	case KindInt:
		return c.Ints[i], true
	case KindFloat:
		f := c.Floats[i]
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	default:
		n, err := strconv.ParseInt(c.Strings[i], 10, 64)
		return n, err == nil
	}
}

// subset returns a copy of the column holding only the given rows
func (c *Column) subset(rows []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	switch c.Kind {
	case KindFloat:
		out.Floats = make([]float64, len(rows))
		for j, i := range rows {
			out.Floats[j] = c.Floats[i]
		}
	case KindInt:
		out.Ints = make([]int64, len(rows))
		for j, i := range rows {
			out.Ints[j] = c.Ints[i]
		}
	default:
		out.Strings = make([]string, len(rows))
		for j, i := range rows {
			out.Strings[j] = c.Strings[i]
		}
	}
	return out
}

// Table is a named result table stored column-wise
type Table struct {
	Name    string    `json:"name"`
	Columns []*Column `json:"columns"`
}

// NewTable creates a table from columns. All columns must have the same length.
func NewTable(name string, columns ...*Column) (*Table, error) {
	t := &Table{Name: name}
	for _, c := range columns {
		if err := t.SetColumn(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Len returns the number of rows
func (t *Table) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Empty reports whether the table has no rows
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// ColumnNames returns the column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column or -1
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table has the named column
func (t *Table) HasColumn(name string) bool {
	return t.Index(name) >= 0
}

// Column returns the named column or nil
func (t *Table) Column(name string) *Column {
	if i := t.Index(name); i >= 0 {
		return t.Columns[i]
	}
	return nil
}

// SetColumn replaces the column with the same name or appends it
func (t *Table) SetColumn(c *Column) error {
	if len(t.Columns) > 0 && c.Len() != t.Len() {
		return fmt.Errorf("column %q has %d rows, table %q has %d", c.Name, c.Len(), t.Name, t.Len())
	}
	if i := t.Index(c.Name); i >= 0 {
		t.Columns[i] = c
		return nil
	}
	t.Columns = append(t.Columns, c)
	return nil
}

// DropColumns removes the named columns that exist and returns how many were removed
func (t *Table) DropColumns(names ...string) int {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	kept := t.Columns[:0]
	removed := 0
	for _, c := range t.Columns {
		if drop[c.Name] {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	t.Columns = kept
	return removed
}

// RenameColumn renames a column. It fails if the source is missing or the
// target name is already taken by another column.
func (t *Table) RenameColumn(from, to string) error {
	i := t.Index(from)
	if i < 0 {
		return fmt.Errorf("column %q not found in table %q", from, t.Name)
	}
	if from == to {
		return nil
	}
	if t.HasColumn(to) {
		return fmt.Errorf("column %q already exists in table %q", to, t.Name)
	}
	t.Columns[i].Name = to
	return nil
}

// Row returns the i-th row as a map from column name to value
func (t *Table) Row(i int) map[string]any {
	row := make(map[string]any, len(t.Columns))
	for _, c := range t.Columns {
		row[c.Name] = c.Value(i)
	}
	return row
}

// Rows returns all rows as maps
func (t *Table) Rows() []map[string]any {
	rows := make([]map[string]any, t.Len())
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}

// Filter returns a new table holding the rows for which keep returns true
func (t *Table) Filter(keep func(i int) bool) *Table {
	var rows []int
	for i := 0; i < t.Len(); i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	out := &Table{Name: t.Name, Columns: make([]*Column, len(t.Columns))}
	for j, c := range t.Columns {
		out.Columns[j] = c.subset(rows)
	}
	return out
}
