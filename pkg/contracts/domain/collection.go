package domain

import "sort"

// Collection maps table names to tables. It is created fresh for every import
// and owned by the caller afterwards.
type Collection map[string]*Table

// Names returns the table names sorted alphabetically
func (c Collection) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named table
func (c Collection) Get(name string) (*Table, bool) {
	t, ok := c[name]
	return t, ok
}

// Has reports whether the collection contains the named table
func (c Collection) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// Delete removes the named table. Missing names are ignored.
func (c Collection) Delete(name string) bool {
	if _, ok := c[name]; !ok {
		return false
	}
	delete(c, name)
	return true
}

// TableSummary describes a table without its data
type TableSummary struct {
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

// Summaries returns a summary per table, sorted by name
func (c Collection) Summaries() []TableSummary {
	out := make([]TableSummary, 0, len(c))
	for _, name := range c.Names() {
		t := c[name]
		out = append(out, TableSummary{Name: name, Rows: t.Len(), Columns: t.ColumnNames()})
	}
	return out
}
