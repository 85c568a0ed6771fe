package core

import "strings"

// DefaultAuxiliaryMarker is the token that identifies a linescan profile file
// by name when the metadata carries no explicit profile reference.
const DefaultAuxiliaryMarker = "LineScan"

// FileRole is the outcome of deciding which referenced file is the primary
// recording and which is the auxiliary profile.
type FileRole int

const (
	// HasAuxiliary: the data file is primary and the profile reference is auxiliary.
	HasAuxiliary FileRole = iota + 1
	// DataFileIsAuxiliary: no profile reference, and the data file itself is a profile.
	DataFileIsAuxiliary
	// DataFileIsPrimary: no profile reference, and the data file is a primary recording.
	DataFileIsPrimary
)

var fileRoleNames = map[FileRole]string{
	HasAuxiliary:        "has_auxiliary",
	DataFileIsAuxiliary: "data_file_is_auxiliary",
	DataFileIsPrimary:   "data_file_is_primary",
}

func (r FileRole) String() string {
	if n, ok := fileRoleNames[r]; ok {
		return n
	}
	return "unknown"
}

// MarshalText encodes the role by name so JSON output stays readable.
func (r FileRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ResolveFileRoles classifies a sweep's file references. An explicit
// auxiliary reference always wins; otherwise the data file name decides.
func ResolveFileRoles(dataFile, auxRef, marker string) FileRole {
	if marker == "" {
		marker = DefaultAuxiliaryMarker
	}
	switch {
	case auxRef != "":
		return HasAuxiliary
	case strings.Contains(dataFile, marker):
		return DataFileIsAuxiliary
	default:
		return DataFileIsPrimary
	}
}

// Files returns the primary and auxiliary references implied by the role.
// An empty string means the file is absent.
func (r FileRole) Files(dataFile, auxRef string) (primary, auxiliary string) {
	switch r {
	case HasAuxiliary:
		return dataFile, auxRef
	case DataFileIsAuxiliary:
		return "", dataFile
	default:
		return dataFile, ""
	}
}
