package core

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
)

// DefaultMetadataPattern matches the per-sweep metadata documents written
// alongside each voltage recording.
const DefaultMetadataPattern = "*_VoltageRecording_*.xml"

// DiscoveredSweep is one metadata document found in a folder.
// Ordinal and Label come from its position in the sorted listing.
type DiscoveredSweep struct {
	Ordinal int    `json:"ordinal"`
	Label   string `json:"label"`
	Path    string `json:"path"`
}

// SweepLabel returns the label for the k-th sweep (1-based).
func SweepLabel(k int) string {
	return fmt.Sprintf("Sweep%04d", k)
}

// MetadataKey returns the metadata map key for the k-th sweep (1-based).
func MetadataKey(k int) string {
	return fmt.Sprintf("File%d", k)
}

// Discovery finds metadata documents in a folder.
type Discovery struct {
	Folder  string
	Pattern string // defaults to DefaultMetadataPattern
}

// All yields the folder's metadata documents in lexicographic name order.
// Each range over the sequence re-lists the folder. A folder with no
// matching documents yields nothing; a listing failure is yielded once as
// an error and ends the sequence.
func (d Discovery) All() iter.Seq2[DiscoveredSweep, error] {
	return func(yield func(DiscoveredSweep, error) bool) {
		names, err := d.matchingNames()
		if err != nil {
			yield(DiscoveredSweep{}, err)
			return
		}
		for i, name := range names {
			k := i + 1
			ds := DiscoveredSweep{
				Ordinal: k,
				Label:   SweepLabel(k),
				Path:    filepath.Join(d.Folder, name),
			}
			if !yield(ds, nil) {
				return
			}
		}
	}
}

// List collects All into a slice.
func (d Discovery) List() ([]DiscoveredSweep, error) {
	var out []DiscoveredSweep
	for ds, err := range d.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, nil
}

func (d Discovery) matchingNames() ([]string, error) {
	pattern := d.Pattern
	if pattern == "" {
		pattern = DefaultMetadataPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid metadata pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(d.Folder)
	if err != nil {
		return nil, fmt.Errorf("reading folder %s: %w", d.Folder, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(pattern, entry.Name()); ok {
			names = append(names, entry.Name())
		}
	}

	// Labels are positional, so the order must not depend on the filesystem.
	slices.Sort(names)
	return names, nil
}
