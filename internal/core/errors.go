package core

// errors.go defines the typed failures of the folder import.
//
// Every failure aborts the whole import. Parser and loader errors carry the
// path of the file they came from; the importer wraps them in a SweepError
// so callers also see the sweep ordinal and label without re-parsing.
// Use errors.As to reach the concrete type through the wrapping.

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrImportCancelled is returned when the caller's context ends while
	// sweeps are still being processed. Any partial work is discarded.
	ErrImportCancelled = errors.New("import cancelled, partial work discarded")

	// ErrFolderOutsideRoot is returned when a requested folder resolves to a
	// path outside the configured data root.
	ErrFolderOutsideRoot = errors.New("folder outside data root")
)

// MissingFieldError reports a required metadata element that is absent or empty.
type MissingFieldError struct {
	Path  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Path, e.Field)
}

// MalformedDocumentError reports a document that cannot be read as the
// expected schema: invalid XML, a non-numeric value, a bad CSV cell.
type MalformedDocumentError struct {
	Path   string
	Field  string
	Detail string
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	msg := fmt.Sprintf("%s: malformed document", e.Path)
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %q)", e.Field)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

// InvalidChannelTypeError reports a patch-clamp channel code other than 0 or 1.
type InvalidChannelTypeError struct {
	Path    string
	Channel string
	Code    string
}

func (e *InvalidChannelTypeError) Error() string {
	return fmt.Sprintf("%s: invalid channel type %q for channel %q", e.Path, e.Code, e.Channel)
}

// CalibrationError reports a zero or missing divisor on a calibration target.
type CalibrationError struct {
	Path    string
	Role    ChannelRole
	Divisor float64
	Detail  string
}

func (e *CalibrationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: calibration error for %s channel: %s", e.Path, e.Role, e.Detail)
	}
	return fmt.Sprintf("%s: calibration error for %s channel: divisor %g", e.Path, e.Role, e.Divisor)
}

// ColumnCountMismatchError reports a CSV whose column count disagrees with
// the channel list derived from the sweep's metadata.
type ColumnCountMismatchError struct {
	Path     string
	Line     int
	Expected int
	Got      int
}

func (e *ColumnCountMismatchError) Error() string {
	return fmt.Sprintf("%s: line %d: column count mismatch: got %d, expected %d",
		e.Path, e.Line, e.Got, e.Expected)
}

// FileNotFoundError reports a referenced CSV that does not exist on disk.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

func (e *FileNotFoundError) Unwrap() error {
	return fs.ErrNotExist
}

// SweepError attaches the sweep ordinal and label to a per-sweep failure.
type SweepError struct {
	Ordinal int
	Label   string
	Path    string
	Err     error
}

func (e *SweepError) Error() string {
	return fmt.Sprintf("sweep %d (%s, %s): %v", e.Ordinal, e.Label, e.Path, e.Err)
}

func (e *SweepError) Unwrap() error {
	return e.Err
}
