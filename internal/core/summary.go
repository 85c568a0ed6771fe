package core

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ChannelSummary describes one column of one sweep. NaN cells are ignored;
// a column with no values has N == 0 and NaN statistics.
type ChannelSummary struct {
	Sweep  string  `json:"sweep"`
	Column string  `json:"column"`
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes per-sweep, per-column statistics of a merged table,
// in sweep order then column order. A nil table has no summaries.
func Summarize(t *IndexedTable) []ChannelSummary {
	if t == nil {
		return nil
	}

	var out []ChannelSummary
	for _, label := range t.Sweeps() {
		sweep := t.Sweep(label)
		for col, name := range sweep.Columns {
			out = append(out, summarizeColumn(label, name, columnValues(sweep.Rows, col)))
		}
	}
	return out
}

func summarizeColumn(sweep, column string, values []float64) ChannelSummary {
	s := ChannelSummary{Sweep: sweep, Column: column}

	finite := values[:0]
	for _, v := range values {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	s.N = len(finite)

	switch s.N {
	case 0:
		s.Mean, s.StdDev, s.Min, s.Max = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return s
	case 1:
		s.Mean, s.StdDev = finite[0], 0
	default:
		s.Mean, s.StdDev = stat.MeanStdDev(finite, nil)
	}
	s.Min = floats.Min(finite)
	s.Max = floats.Max(finite)
	return s
}
