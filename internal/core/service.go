package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/pvimport/internal/config"
	"github.com/JonMunkholm/pvimport/internal/logging"
	"github.com/google/uuid"
)

// Service is the entry point the HTTP layer uses: it confines folders to the
// data root, limits concurrent imports and applies the import timeout.
type Service struct {
	importer *Importer
	limiter  *ImportLimiter
	dataRoot string
	timeout  time.Duration
}

// NewService creates a Service from configuration.
func NewService(cfg *config.Config) (*Service, error) {
	root, err := filepath.Abs(cfg.Import.DataRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve data root: %w", err)
	}

	return &Service{
		importer: NewImporter(ImportOptions{
			Workers:         cfg.Import.Workers,
			Pattern:         cfg.Import.Pattern,
			AuxiliaryMarker: cfg.Import.AuxiliaryMarker,
		}),
		limiter:  NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
		dataRoot: root,
		timeout:  cfg.Import.Timeout,
	}, nil
}

// ImportReport is one completed import request.
type ImportReport struct {
	ImportID string        `json:"import_id"`
	Folder   string        `json:"folder"`
	Sweeps   int           `json:"sweeps"`
	Result   *FolderResult `json:"result"`
}

// ResolveFolder maps a folder relative to the data root to an absolute path,
// rejecting anything that escapes the root.
func (s *Service) ResolveFolder(folder string) (string, error) {
	if filepath.IsAbs(folder) {
		return "", fmt.Errorf("%w: %q is absolute", ErrFolderOutsideRoot, folder)
	}
	full := filepath.Join(s.dataRoot, filepath.Clean(folder))
	rel, err := filepath.Rel(s.dataRoot, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrFolderOutsideRoot, folder)
	}
	return full, nil
}

// Discover lists the sweeps in a folder under the data root.
func (s *Service) Discover(folder string) ([]DiscoveredSweep, error) {
	full, err := s.ResolveFolder(folder)
	if err != nil {
		return nil, err
	}
	return s.importer.Discover(full)
}

// Import runs a folder import under the concurrency limit and timeout.
func (s *Service) Import(ctx context.Context, folder string) (*ImportReport, error) {
	full, err := s.ResolveFolder(folder)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	id := uuid.NewString()
	logger := logging.WithFields(ctx, "import_id", id)
	logger.Info("import started", "folder", folder)
	ctx = logging.NewContext(ctx, logger)

	result, err := s.importer.ImportFolder(ctx, full)
	if err != nil {
		logger.Warn("import failed", "folder", folder, "error", err, "code", MapError(err).Code)
		return nil, err
	}

	return &ImportReport{
		ImportID: id,
		Folder:   folder,
		Sweeps:   len(result.Metadata),
		Result:   result,
	}, nil
}

// LimiterStatus returns the import limiter state.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx ends.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
