package core

// importer.go drives a whole folder import:
//
//  1. Discovery lists the metadata documents and assigns sweep labels
//  2. Each sweep is parsed, loaded and calibrated on a bounded worker pool
//  3. Results are reduced strictly in discovery order and merged
//
// Sweeps share nothing while they are processed, so the fan-out is safe;
// the ordered reduce makes the output independent of completion order.
// The first failing sweep cancels the others and fails the import.

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/JonMunkholm/pvimport/internal/logging"
	"golang.org/x/sync/errgroup"
)

// FolderResult is the output of a folder import. A nil field means
// "nothing of this kind was found", which is not an error.
type FolderResult struct {
	Primary   *IndexedTable            `json:"primary"`
	Auxiliary *IndexedTable            `json:"auxiliary"`
	Metadata  map[string]SweepMetadata `json:"metadata"`
}

// Empty reports whether the folder contained no sweeps at all.
func (r *FolderResult) Empty() bool {
	return r.Primary == nil && r.Auxiliary == nil && r.Metadata == nil
}

// ImportOptions configures an Importer. Zero values select defaults.
type ImportOptions struct {
	Workers         int    // parallel sweeps; defaults to GOMAXPROCS
	Pattern         string // metadata file glob; defaults to DefaultMetadataPattern
	AuxiliaryMarker string // defaults to DefaultAuxiliaryMarker
	Logger          *slog.Logger
}

// Importer turns experiment folders into FolderResults. It holds no state
// between calls and is safe for concurrent use.
type Importer struct {
	workers int
	pattern string
	parser  MetadataParser
	logger  *slog.Logger
}

// NewImporter creates an Importer from opts.
func NewImporter(opts ImportOptions) *Importer {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		workers: workers,
		pattern: opts.Pattern,
		parser:  MetadataParser{AuxiliaryMarker: opts.AuxiliaryMarker},
		logger:  logger,
	}
}

// contextLogger prefers a logger attached to ctx (carrying request and
// import IDs) over the importer's own.
func (im *Importer) contextLogger(ctx context.Context) *slog.Logger {
	if logger, ok := logging.Attached(ctx); ok {
		return logger
	}
	return im.logger
}

// Discover lists the sweeps an import of folder would process.
func (im *Importer) Discover(folder string) ([]DiscoveredSweep, error) {
	return Discovery{Folder: folder, Pattern: im.pattern}.List()
}

// sweepResult is the output of one sweep's processing.
type sweepResult struct {
	meta      *SweepMetadata
	primary   *Table
	auxiliary *Table
}

// ImportFolder imports every sweep in folder.
func (im *Importer) ImportFolder(ctx context.Context, folder string) (*FolderResult, error) {
	start := time.Now()
	logger := im.contextLogger(ctx).With("folder", folder)

	sweeps, err := im.Discover(folder)
	if err != nil {
		return nil, err
	}
	if len(sweeps) == 0 {
		logger.Info("no sweeps found")
		return &FolderResult{}, nil
	}

	results := make([]sweepResult, len(sweeps))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers)
	for i, ds := range sweeps {
		g.Go(func() error {
			res, err := im.processSweep(gctx, folder, ds)
			if err != nil {
				return &SweepError{Ordinal: ds.Ordinal, Label: ds.Label, Path: ds.Path, Err: err}
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrImportCancelled, ctxErr)
		}
		return nil, err
	}

	out, err := reduceSweeps(sweeps, results)
	if err != nil {
		return nil, err
	}

	logger.Info("folder imported",
		"sweeps", len(sweeps),
		"primary_rows", rowCount(out.Primary),
		"auxiliary_rows", rowCount(out.Auxiliary),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// processSweep parses, loads and calibrates one sweep.
func (im *Importer) processSweep(ctx context.Context, folder string, ds DiscoveredSweep) (sweepResult, error) {
	if err := ctx.Err(); err != nil {
		return sweepResult{}, err
	}

	meta, err := im.parser.ParseFile(ds.Path)
	if err != nil {
		return sweepResult{}, err
	}
	res := sweepResult{meta: meta}

	if meta.HasPrimary() {
		if err := ctx.Err(); err != nil {
			return sweepResult{}, err
		}
		raw, err := LoadPrimaryCSV(PrimaryPath(folder, meta.PrimaryFile), meta.Channels)
		if err != nil {
			return sweepResult{}, err
		}
		if res.primary, err = CalibratePrimary(raw, meta); err != nil {
			return sweepResult{}, err
		}
	}

	if meta.HasAuxiliary() {
		if err := ctx.Err(); err != nil {
			return sweepResult{}, err
		}
		raw, err := LoadAuxiliaryCSV(AuxiliaryPath(folder, meta.AuxiliaryFile))
		if err != nil {
			return sweepResult{}, err
		}
		res.auxiliary = CalibrateAuxiliary(raw)
	}

	im.contextLogger(ctx).Debug("sweep processed",
		"sweep", ds.Label,
		"role", meta.Role.String(),
		"channels", len(meta.Channels),
		"primary_rows", tableLen(res.primary),
		"auxiliary_rows", tableLen(res.auxiliary),
	)
	return res, nil
}

// reduceSweeps assembles per-sweep results in discovery order.
func reduceSweeps(sweeps []DiscoveredSweep, results []sweepResult) (*FolderResult, error) {
	var primary, auxiliary []LabeledTable
	metadata := make(map[string]SweepMetadata, len(sweeps))

	for i, ds := range sweeps {
		res := results[i]
		metadata[MetadataKey(ds.Ordinal)] = *res.meta
		if res.primary != nil {
			primary = append(primary, LabeledTable{Label: ds.Label, Table: res.primary})
		}
		if res.auxiliary != nil {
			auxiliary = append(auxiliary, LabeledTable{Label: ds.Label, Table: res.auxiliary})
		}
	}

	out := &FolderResult{Metadata: metadata}
	var err error
	if out.Primary, err = MergeTables(primary); err != nil {
		return nil, err
	}
	if out.Auxiliary, err = MergeTables(auxiliary); err != nil {
		return nil, err
	}
	return out, nil
}

func tableLen(t *Table) int {
	if t == nil {
		return 0
	}
	return t.Len()
}

func rowCount(t *IndexedTable) int {
	if t == nil {
		return 0
	}
	return t.Len()
}
