// Package core imports PrairieView voltage recording folders.
//
// This package contains all import logic independent of any transport. It
// is used by the HTTP service, the CLI and tests without modification.
//
// # Pipeline
//
// An import of one experiment folder runs these steps:
//
//  1. [Discovery] lists the *_VoltageRecording_*.xml documents in
//     lexicographic order and labels them Sweep0001, Sweep0002, ...
//  2. [MetadataParser] reads each document into a [SweepMetadata]: enabled
//     physical channels, calibration of the patch-clamp channels, sampling
//     rate, duration and the referenced files.
//  3. [ResolveFileRoles] decides whether the data file is a primary
//     recording or a linescan profile.
//  4. The referenced CSVs are loaded and calibrated ([CalibratePrimary],
//     [CalibrateAuxiliary]).
//  5. [MergeTables] stacks the per-sweep tables into [IndexedTable]s keyed by
//     (sweep label, row).
//
// [Importer.ImportFolder] runs steps 2-4 for all sweeps on a bounded worker
// pool and reduces the results in discovery order.
//
// # Absence
//
// A folder with no metadata documents yields a [FolderResult] whose three
// fields are nil. A nil Primary or Auxiliary table alone means no sweep
// produced that kind of file.
//
// # Error Handling
//
// Any failing sweep aborts the import. Errors are typed ([MissingFieldError],
// [MalformedDocumentError], [InvalidChannelTypeError], [CalibrationError],
// [ColumnCountMismatchError], [FileNotFoundError]) and wrapped in a
// [SweepError]. [MapError] turns them into user-facing messages with codes:
//
//   - META001-META003: metadata document errors
//   - CAL001: calibration errors
//   - CSV001: CSV shape errors
//   - FILE001: missing files
//   - IMP001-IMP003: import request errors (cancelled, busy, bad folder)
package core
