// Package stats holds the in-memory statistics table loaded from a harness CSV file.
//
// Columns are stored column-major as float64; cells that are empty or not numeric are NaN.
// A column whose cells are not all numeric also keeps its raw text (timestamps such as Timepoint).
package stats

import (
	"fmt"
	"math"
)

// Column is one named series of the table.
type Column struct {
	Name    string
	Values  []float64
	Raw     []string // only set when at least one cell is not numeric
	Integer bool     // every non-NaN value is a whole number
}

// Table is an ordered sequence of sampling intervals.
// The first row is the time origin; rows keep file order.
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// NewTable returns an empty table with a fixed row count.
func NewTable(rows int) *Table {
	return &Table{index: map[string]int{}, rows: rows}
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Has reports whether the column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column or nil.
func (t *Table) Column(name string) *Column {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	return t.cols[i]
}

// Values returns the numeric values of a column. The slice is shared with the table.
func (t *Table) Values(name string) ([]float64, bool) {
	c := t.Column(name)
	if c == nil {
		return nil, false
	}
	return c.Values, true
}

// Raw returns the raw text cells of a column, if retained.
func (t *Table) Raw(name string) ([]string, bool) {
	c := t.Column(name)
	if c == nil || c.Raw == nil {
		return nil, false
	}
	return c.Raw, true
}

// Integer reports whether the column holds whole numbers.
func (t *Table) Integer(name string) bool {
	c := t.Column(name)
	return c != nil && c.Integer
}

// AddColumn appends a column or replaces an existing one with the same name.
func (t *Table) AddColumn(name string, values []float64, integer bool) error {
	return t.addColumn(&Column{Name: name, Values: values, Integer: integer})
}

func (t *Table) addColumn(c *Column) error {
	if c.Name == "" {
		return fmt.Errorf("empty column name")
	}
	if len(c.Values) != t.rows {
		return fmt.Errorf("column %s has %d values, table has %d rows", c.Name, len(c.Values), t.rows)
	}
	if i, ok := t.index[c.Name]; ok {
		t.cols[i] = c
		return nil
	}
	t.index[c.Name] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// Sum adds all non-NaN values of a column, the way a dataframe column sum skips missing cells.
func (t *Table) Sum(name string) (float64, bool) {
	vals, ok := t.Values(name)
	if !ok {
		return 0, false
	}
	s := 0.0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		s += v
	}
	return s, true
}

// Filter returns a new table with the rows for which keep returns true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	var rows []int
	for i := 0; i < t.rows; i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	out := NewTable(len(rows))
	for _, c := range t.cols {
		nc := &Column{Name: c.Name, Integer: c.Integer, Values: make([]float64, len(rows))}
		if c.Raw != nil {
			nc.Raw = make([]string, len(rows))
		}
		for j, r := range rows {
			nc.Values[j] = c.Values[r]
			if c.Raw != nil {
				nc.Raw[j] = c.Raw[r]
			}
		}
		_ = out.addColumn(nc)
	}
	return out
}

// Unique returns the distinct non-NaN values of a column in first-appearance order.
func (t *Table) Unique(name string) []float64 {
	vals, ok := t.Values(name)
	if !ok {
		return nil
	}
	seen := map[float64]bool{}
	var out []float64
	for _, v := range vals {
		if math.IsNaN(v) || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
