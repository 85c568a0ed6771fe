package core

import (
	"regexp"
	"strings"
)

// msPerSecond converts instrument time stamps (ms) to seconds.
const msPerSecond = 1000

// unitSuffix matches the trailing unit profile exports append to column
// labels, e.g. "(ms)" or "(mV)". Parenthesised text containing spaces, such
// as "(Ch 2)", is part of the label and is kept.
var unitSuffix = regexp.MustCompile(`\s*\([^()\s]+\)\s*$`)

// roleColumns maps each calibration role to the column it scales.
var roleColumns = map[ChannelRole]string{
	RolePrimary:   "Primary",
	RoleSecondary: "Secondary",
}

// CalibratePrimary converts a raw primary table to physical units: time to
// seconds, and each configured ephys channel divided by its divisor. Other
// channels pass through. raw is not modified.
func CalibratePrimary(raw *Table, meta *SweepMetadata) (*Table, error) {
	out := raw.Clone()

	if col := out.ColumnIndex(TimeColumn); col >= 0 {
		divideColumn(out.Rows, col, msPerSecond)
	}

	for _, role := range []ChannelRole{RolePrimary, RoleSecondary} {
		cfg, ok := meta.Calibration(role)
		if !ok {
			continue
		}
		col := out.ColumnIndex(roleColumns[role])
		if col < 0 {
			continue
		}
		if cfg.Divisor == 0 {
			return nil, &CalibrationError{Path: meta.Source, Role: role, Divisor: cfg.Divisor}
		}
		divideColumn(out.Rows, col, cfg.Divisor)
	}

	return out, nil
}

// CalibrateAuxiliary strips unit suffixes from the headers and converts the
// time columns (every even-indexed column) to seconds. raw is not modified.
func CalibrateAuxiliary(raw *Table) *Table {
	out := raw.Clone()
	for i, h := range out.Columns {
		out.Columns[i] = StripUnitSuffix(h)
	}
	for col := 0; col < len(out.Columns); col += 2 {
		divideColumn(out.Rows, col, msPerSecond)
	}
	return out
}

// StripUnitSuffix removes a trailing unit such as "(ms)" from a column label.
func StripUnitSuffix(label string) string {
	return strings.TrimSpace(unitSuffix.ReplaceAllString(label, ""))
}

func divideColumn(rows [][]float64, col int, divisor float64) {
	for _, row := range rows {
		if col < len(row) {
			row[col] /= divisor
		}
	}
}
