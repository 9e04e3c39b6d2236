package models

import "github.com/iancoleman/orderedmap"

// FlatRow is one denormalized output record. Columns keep the position in
// which they were first set; setting an existing column replaces its value.
type FlatRow struct {
	m *orderedmap.OrderedMap
}

// NewFlatRow creates an empty row.
func NewFlatRow() *FlatRow {
	return &FlatRow{m: orderedmap.New()}
}

// Set assigns a column value.
func (r *FlatRow) Set(column string, v Value) {
	r.m.Set(column, v)
}

// Get returns the value of a column and whether the row carries it.
func (r *FlatRow) Get(column string) (Value, bool) {
	raw, ok := r.m.Get(column)
	if !ok {
		return Null, false
	}
	return raw.(Value), true
}

// Has reports whether the row carries the column.
func (r *FlatRow) Has(column string) bool {
	_, ok := r.m.Get(column)
	return ok
}

// Columns returns column names in insertion order.
func (r *FlatRow) Columns() []string {
	return r.m.Keys()
}

// Len returns the number of columns on the row.
func (r *FlatRow) Len() int {
	return len(r.m.Keys())
}

// Table is the final column-selected output.
type Table struct {
	Columns []string
	Rows    [][]Value
}
