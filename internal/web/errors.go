package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted as JSON for API routes and as an HTML page for the report
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.MapError to get a user message and code
//  4. The code picks the HTTP status
//  5. Technical error + context is logged with request ID for correlation

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/pvimport/internal/core"
	"github.com/JonMunkholm/pvimport/internal/logging"
	"github.com/JonMunkholm/pvimport/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// msgBadRequest is returned for request bodies that cannot be decoded.
var msgBadRequest = core.UserMessage{
	Message: "The request body is not valid",
	Action:  `Send a JSON object like {"folder": "experiment/run1"}`,
	Code:    "REQ001",
}

// statusForCode maps support codes to HTTP status codes.
var statusForCode = map[string]int{
	"META001": http.StatusUnprocessableEntity,
	"META002": http.StatusUnprocessableEntity,
	"META003": http.StatusUnprocessableEntity,
	"CAL001":  http.StatusUnprocessableEntity,
	"CSV001":  http.StatusUnprocessableEntity,
	"FILE001": http.StatusNotFound,
	"IMP002":  http.StatusTooManyRequests,
	"IMP003":  http.StatusBadRequest,
	"REQ001":  http.StatusBadRequest,
}

// statusFor picks the HTTP status for an error.
func statusFor(err error, msg core.UserMessage) int {
	if msg.Code == "IMP001" {
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusServiceUnavailable
	}
	if status, ok := statusForCode[msg.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns JSON or HTML
// depending on the request.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := core.MapError(err)
	s.respondMessage(w, r, err, msg, statusFor(err, msg))
}

func (s *Server) respondMessage(w http.ResponseWriter, r *http.Request, err error, msg core.UserMessage, status int) {
	logger := logging.FromContext(r.Context())
	logArgs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", logArgs...)
	} else {
		logger.Warn("request error", logArgs...)
	}

	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "30")
	}

	if wantsJSON(r) {
		respondErrorJSON(w, msg, status)
	} else {
		respondErrorHTML(w, r, msg, status)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	writeJSON(w, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML renders the error page.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ErrorPage(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error page", "error", err)
	}
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	// API routes always answer in JSON
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
