/*
Copyright © 2026 the Porygon authors.
This file is part of Porygon.

Porygon is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Porygon is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Porygon.  If not, see <http://www.gnu.org/licenses/>.
*/

package porygon

import (
	"math"
)

// Reserved column names.
const (
	Latitude  = "latitude"
	Longitude = "longitude"
	IDColumn  = "id"
	Geometry  = "geometry"
)

type column struct {
	name string
	f    []float64 // nil for string columns
	s    []string  // nil for numeric columns
}

func (c column) isFloat() bool { return c.s == nil }

// Table is an ordered set of named, equal-length columns. Numeric
// columns hold float64 values, with NaN representing a missing value.
// String columns hold text, with "" representing a missing value.
//
// Functions in this package never modify a Table they are given;
// slices returned by Float and String must likewise be treated as
// read-only.
type Table struct {
	cols []column
	n    int
}

// NewTable returns a table with no columns.
func NewTable() *Table { return new(Table) }

// Len returns the number of rows in t.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.n
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	o := make([]string, len(t.cols))
	for i, c := range t.cols {
		o[i] = c.name
	}
	return o
}

func (t *Table) lookup(name string) (column, bool) {
	if t == nil {
		return column{}, false
	}
	for _, c := range t.cols {
		if c.name == name {
			return c, true
		}
	}
	return column{}, false
}

// Has returns whether t has a column with the given name.
func (t *Table) Has(name string) bool {
	_, ok := t.lookup(name)
	return ok
}

// IsFloat returns whether the named column exists and is numeric.
func (t *Table) IsFloat(name string) bool {
	c, ok := t.lookup(name)
	return ok && c.isFloat()
}

// Float returns the named numeric column.
func (t *Table) Float(name string) ([]float64, bool) {
	c, ok := t.lookup(name)
	if !ok || !c.isFloat() {
		return nil, false
	}
	return c.f, true
}

// String returns the named string column.
func (t *Table) String(name string) ([]string, bool) {
	c, ok := t.lookup(name)
	if !ok || c.isFloat() {
		return nil, false
	}
	return c.s, true
}

func (t *Table) checkNew(name string, n int) error {
	if name == "" {
		return validationErrorf("Table", "column name must not be empty")
	}
	if t.Has(name) {
		return validationErrorf("Table", "duplicate column %q", name)
	}
	if len(t.cols) > 0 && n != t.n {
		return validationErrorf("Table", "column %q has %d rows; table has %d", name, n, t.n)
	}
	return nil
}

// AddFloat appends a copy of v to t as a numeric column.
func (t *Table) AddFloat(name string, v []float64) error {
	if err := t.checkNew(name, len(v)); err != nil {
		return err
	}
	t.cols = append(t.cols, column{name: name, f: append(make([]float64, 0, len(v)), v...)})
	t.n = len(v)
	return nil
}

// AddString appends a copy of v to t as a string column.
func (t *Table) AddString(name string, v []string) error {
	if err := t.checkNew(name, len(v)); err != nil {
		return err
	}
	t.cols = append(t.cols, column{name: name, s: append(make([]string, 0, len(v)), v...)})
	t.n = len(v)
	return nil
}

// Copy returns a deep copy of t.
func (t *Table) Copy() *Table {
	o := NewTable()
	if t == nil {
		return o
	}
	o.n = t.n
	for _, c := range t.cols {
		nc := column{name: c.name}
		if c.isFloat() {
			nc.f = append(make([]float64, 0, len(c.f)), c.f...)
		} else {
			nc.s = append(make([]string, 0, len(c.s)), c.s...)
		}
		o.cols = append(o.cols, nc)
	}
	return o
}

// Drop returns a copy of t without the named columns. Names that
// are not present are ignored.
func (t *Table) Drop(names ...string) *Table {
	o := t.Copy()
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	cols := o.cols[:0]
	for _, c := range o.cols {
		if !drop[c.name] {
			cols = append(cols, c)
		}
	}
	o.cols = cols
	if len(o.cols) == 0 {
		o.n = 0
	}
	return o
}

// Take returns a new table holding the given rows of t, in the
// given order.
func (t *Table) Take(rows []int) *Table {
	o := NewTable()
	if t == nil {
		return o
	}
	for _, c := range t.cols {
		nc := column{name: c.name}
		if c.isFloat() {
			nc.f = make([]float64, len(rows))
			for i, r := range rows {
				nc.f[i] = c.f[r]
			}
		} else {
			nc.s = make([]string, len(rows))
			for i, r := range rows {
				nc.s[i] = c.s[r]
			}
		}
		o.cols = append(o.cols, nc)
	}
	if len(o.cols) > 0 {
		o.n = len(rows)
	}
	return o
}

// stringColumns returns the names of the non-numeric columns in t.
func (t *Table) stringColumns() []string {
	var o []string
	if t == nil {
		return o
	}
	for _, c := range t.cols {
		if !c.isFloat() {
			o = append(o, c.name)
		}
	}
	return o
}

func isMissing(v float64) bool { return math.IsNaN(v) }
