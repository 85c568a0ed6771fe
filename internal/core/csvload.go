package core

// csvload.go reads the CSV files a sweep references into raw Tables.
//
// Primary recordings must have exactly one column per channel plus time;
// the header row is replaced by ["Time", channels...]. Auxiliary profiles
// keep their own header labels, and because each profile can be a
// different length, short rows are padded with NaN.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// csvExt is appended to extension-less file references.
const csvExt = ".csv"

// PrimaryPath returns the on-disk path of a sweep's primary CSV.
func PrimaryPath(folder, ref string) string {
	return filepath.Join(folder, ref+csvExt)
}

// AuxiliaryPath returns the on-disk path of a sweep's auxiliary CSV.
// Profile references usually carry the extension already; a data file that
// turned out to be a profile does not.
func AuxiliaryPath(folder, ref string) string {
	if !strings.HasSuffix(strings.ToLower(ref), csvExt) {
		ref += csvExt
	}
	return filepath.Join(folder, ref)
}

// LoadPrimaryCSV reads a primary recording for the given channel list.
func LoadPrimaryCSV(path string, channels []string) (*Table, error) {
	var t *Table
	err := withCSVFile(path, func(r io.Reader) error {
		var err error
		t, err = ReadPrimaryCSV(r, path, channels)
		return err
	})
	return t, err
}

// LoadAuxiliaryCSV reads an auxiliary profile file.
func LoadAuxiliaryCSV(path string) (*Table, error) {
	var t *Table
	err := withCSVFile(path, func(r io.Reader) error {
		var err error
		t, err = ReadAuxiliaryCSV(r, path)
		return err
	})
	return t, err
}

// withCSVFile opens path, runs fn on the wrapped reader and always closes it.
func withCSVFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &FileNotFoundError{Path: path}
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return fn(wrapCSVReader(f))
}

// ReadPrimaryCSV parses a primary recording. source names the file in errors.
func ReadPrimaryCSV(r io.Reader, source string, channels []string) (*Table, error) {
	want := 1 + len(channels)

	cr := newCSVReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &MalformedDocumentError{Path: source, Detail: "empty file"}
	}
	if err != nil {
		return nil, csvError(err, source)
	}
	if len(header) != want {
		return nil, &ColumnCountMismatchError{Path: source, Line: 1, Expected: want, Got: len(header)}
	}

	t := &Table{Columns: append([]string{TimeColumn}, channels...)}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(err, source)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) != want {
			return nil, &ColumnCountMismatchError{Path: source, Line: line, Expected: want, Got: len(rec)}
		}
		row, err := parseRow(rec, want, source, line)
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadAuxiliaryCSV parses an auxiliary profile file. source names the file in errors.
func ReadAuxiliaryCSV(r io.Reader, source string) (*Table, error) {
	cr := newCSVReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &MalformedDocumentError{Path: source, Detail: "empty file"}
	}
	if err != nil {
		return nil, csvError(err, source)
	}

	// Profile exports often end every line with a separator.
	for len(header) > 0 && strings.TrimSpace(header[len(header)-1]) == "" {
		header = header[:len(header)-1]
	}
	want := len(header)

	t := &Table{Columns: make([]string, want)}
	for i, h := range header {
		t.Columns[i] = strings.TrimSpace(h)
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(err, source)
		}
		line, _ := cr.FieldPos(0)
		for len(rec) > want && strings.TrimSpace(rec[len(rec)-1]) == "" {
			rec = rec[:len(rec)-1]
		}
		if len(rec) > want {
			return nil, &ColumnCountMismatchError{Path: source, Line: line, Expected: want, Got: len(rec)}
		}
		row, err := parseRow(rec, want, source, line)
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	// Widths are checked by the callers so mismatches get a typed error.
	cr.FieldsPerRecord = -1
	return cr
}

// parseRow converts a record to floats, padding to width with NaN.
func parseRow(rec []string, width int, source string, line int) ([]float64, error) {
	row := make([]float64, width)
	for i := range row {
		if i >= len(rec) {
			row[i] = math.NaN()
			continue
		}
		cell := strings.TrimSpace(rec[i])
		if cell == "" {
			row[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, &MalformedDocumentError{
				Path:   source,
				Detail: fmt.Sprintf("line %d column %d: invalid number %q", line, i+1, cell),
			}
		}
		row[i] = v
	}
	return row, nil
}

// csvError translates encoding/csv failures into the import's error types.
func csvError(err error, source string) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &MalformedDocumentError{Path: source, Detail: fmt.Sprintf("line %d", pe.Line), Err: pe.Err}
	}
	return fmt.Errorf("reading %s: %w", source, err)
}
