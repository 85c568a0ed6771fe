package core

import (
	"encoding/json"
	"math"
	"slices"
)

// TimeColumn is the name of the first column of every primary table.
const TimeColumn = "Time"

// Table is one sweep's data, row-major. Missing values are NaN.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	return slices.Index(t.Columns, name)
}

// Column returns a copy of the named column, or nil if it does not exist.
func (t *Table) Column(name string) []float64 {
	return columnValues(t.Rows, t.ColumnIndex(name))
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: slices.Clone(t.Columns),
		Rows:    make([][]float64, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = slices.Clone(row)
	}
	return out
}

// MarshalJSON encodes NaN cells as null.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}{t.Columns, jsonRows(t.Rows)})
}

// RowKey is the two-level index of a merged table row.
type RowKey struct {
	Sweep string `json:"sweep"`
	Row   int    `json:"row"`
}

// IndexedTable is the folder-level table: all sweeps stacked in label
// order, each row keyed by (sweep label, row within the sweep).
type IndexedTable struct {
	Columns []string
	Index   []RowKey
	Rows    [][]float64
}

// Len returns the number of rows across all sweeps.
func (t *IndexedTable) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of the named column, or -1.
func (t *IndexedTable) ColumnIndex(name string) int {
	return slices.Index(t.Columns, name)
}

// Column returns a copy of the named column across all sweeps, or nil.
func (t *IndexedTable) Column(name string) []float64 {
	return columnValues(t.Rows, t.ColumnIndex(name))
}

// Sweeps returns the distinct sweep labels in table order.
func (t *IndexedTable) Sweeps() []string {
	var labels []string
	for _, k := range t.Index {
		if len(labels) == 0 || labels[len(labels)-1] != k.Sweep {
			labels = append(labels, k.Sweep)
		}
	}
	return labels
}

// Sweep returns the rows of one sweep as a Table, or nil if the label is unknown.
func (t *IndexedTable) Sweep(label string) *Table {
	var out *Table
	for i, k := range t.Index {
		if k.Sweep != label {
			continue
		}
		if out == nil {
			out = &Table{Columns: slices.Clone(t.Columns)}
		}
		out.Rows = append(out.Rows, slices.Clone(t.Rows[i]))
	}
	return out
}

// MarshalJSON encodes NaN cells as null.
func (t *IndexedTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Columns []string `json:"columns"`
		Index   []RowKey `json:"index"`
		Rows    [][]any  `json:"rows"`
	}{t.Columns, t.Index, jsonRows(t.Rows)})
}

func columnValues(rows [][]float64, col int) []float64 {
	if col < 0 {
		return nil
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row[col]
	}
	return out
}

func jsonRows(rows [][]float64) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		r := make([]any, len(row))
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				r[j] = nil
			} else {
				r[j] = v
			}
		}
		out[i] = r
	}
	return out
}
