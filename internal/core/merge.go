package core

import (
	"fmt"
	"math"
)

// LabeledTable is one sweep's calibrated table tagged with its sweep label.
type LabeledTable struct {
	Label string
	Table *Table
}

// MergeTables stacks per-sweep tables into one IndexedTable, in the order
// given, keeping each sweep's row order. The column set is the union of all
// tables in first-seen order; cells a sweep does not have are NaN.
// Returns nil when there is nothing to merge.
func MergeTables(parts []LabeledTable) (*IndexedTable, error) {
	if len(parts) == 0 {
		return nil, nil
	}

	seenLabels := make(map[string]bool, len(parts))
	colPos := make(map[string]int)
	merged := &IndexedTable{}
	total := 0

	for _, p := range parts {
		if seenLabels[p.Label] {
			return nil, fmt.Errorf("merge: duplicate sweep label %q", p.Label)
		}
		seenLabels[p.Label] = true

		for _, c := range uniqueColumns(p.Table.Columns) {
			if _, ok := colPos[c]; !ok {
				colPos[c] = len(merged.Columns)
				merged.Columns = append(merged.Columns, c)
			}
		}
		total += p.Table.Len()
	}

	merged.Index = make([]RowKey, 0, total)
	merged.Rows = make([][]float64, 0, total)

	for _, p := range parts {
		// Map this sweep's columns onto the merged layout once per sweep.
		cols := uniqueColumns(p.Table.Columns)
		dest := make([]int, len(cols))
		for i, c := range cols {
			dest[i] = colPos[c]
		}

		for i, src := range p.Table.Rows {
			row := make([]float64, len(merged.Columns))
			for j := range row {
				row[j] = math.NaN()
			}
			for j, v := range src {
				if j < len(dest) {
					row[dest[j]] = v
				}
			}
			merged.Index = append(merged.Index, RowKey{Sweep: p.Label, Row: i})
			merged.Rows = append(merged.Rows, row)
		}
	}

	return merged, nil
}

// uniqueColumns renames repeated column names within one table to
// "name.1", "name.2", ... so no column is lost in the merge.
func uniqueColumns(cols []string) []string {
	out := make([]string, len(cols))
	seen := make(map[string]int, len(cols))
	for i, c := range cols {
		n := seen[c]
		seen[c] = n + 1
		if n == 0 {
			out[i] = c
		} else {
			out[i] = fmt.Sprintf("%s.%d", c, n)
		}
	}
	return out
}
