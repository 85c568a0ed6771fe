package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/pvimport/internal/core"
	"github.com/JonMunkholm/pvimport/internal/logging"
	"github.com/JonMunkholm/pvimport/internal/web/templates"
)

// maxRequestBody bounds the import request body; it only carries a folder name.
const maxRequestBody = 64 << 10

// HealthResponse is returned by the liveness endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatusResponse reports the import limiter state.
type StatusResponse struct {
	Imports core.ImportLimiterStatus `json:"imports"`
}

// DiscoverResponse lists the sweeps an import of Folder would process.
type DiscoverResponse struct {
	Folder string                 `json:"folder"`
	Sweeps []core.DiscoveredSweep `json:"sweeps"`
}

// ImportRequest is the body of POST /api/import.
type ImportRequest struct {
	Folder string `json:"folder"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Imports: s.service.LimiterStatus()})
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	folder := r.URL.Query().Get("folder")

	sweeps, err := s.service.Discover(folder)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if sweeps == nil {
		sweeps = []core.DiscoveredSweep{}
	}

	writeJSON(w, http.StatusOK, DiscoverResponse{Folder: folder, Sweeps: sweeps})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req ImportRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.respondMessage(w, r, fmt.Errorf("decode import request: %w", err), msgBadRequest, http.StatusBadRequest)
		return
	}

	report, err := s.service.Import(r.Context(), req.Folder)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("import completed",
		"import_id", report.ImportID,
		"folder", report.Folder,
		"sweeps", report.Sweeps,
	)
	writeJSON(w, http.StatusOK, report)
}

// handleReport imports a folder and renders the result as an HTML page.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	folder := r.URL.Query().Get("folder")

	report, err := s.service.Import(r.Context(), folder)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	page := templates.ReportPage(report, core.Summarize(report.Result.Primary))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render report", "error", err, "import_id", report.ImportID)
	}
}
