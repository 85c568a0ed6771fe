package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	tbl, err := MergeTables([]LabeledTable{
		{Label: "Sweep0001", Table: &Table{
			Columns: []string{"Time", "Primary"},
			Rows:    [][]float64{{0, 1}, {1, 2}, {2, 3}, {3, math.NaN()}},
		}},
		{Label: "Sweep0002", Table: &Table{
			Columns: []string{"Time"},
			Rows:    [][]float64{{4}},
		}},
	})
	require.NoError(t, err)

	got := Summarize(tbl)
	require.Len(t, got, 4)

	primary := got[1]
	assert.Equal(t, "Sweep0001", primary.Sweep)
	assert.Equal(t, "Primary", primary.Column)
	assert.Equal(t, 3, primary.N, "NaN cells are ignored")
	assert.InDelta(t, 2.0, primary.Mean, 1e-12)
	assert.InDelta(t, 1.0, primary.StdDev, 1e-12)
	assert.Equal(t, 1.0, primary.Min)
	assert.Equal(t, 3.0, primary.Max)

	single := got[2]
	assert.Equal(t, "Sweep0002", single.Sweep)
	assert.Equal(t, "Time", single.Column)
	assert.Equal(t, 1, single.N)
	assert.Equal(t, 4.0, single.Mean)
	assert.Equal(t, 0.0, single.StdDev)

	// Sweep0002 has no Primary column of its own, so the merged column is all NaN.
	empty := got[3]
	assert.Equal(t, "Primary", empty.Column)
	assert.Equal(t, 0, empty.N)
	assert.True(t, math.IsNaN(empty.Mean))
	assert.True(t, math.IsNaN(empty.Min))
}

func TestSummarize_Nil(t *testing.T) {
	assert.Nil(t, Summarize(nil))
}
