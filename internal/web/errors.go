package web

// errors.go provides unified error response handling for the web layer.
// Handlers call respondError with whatever the core returned; the error is
// logged with full detail server-side and mapped to a user-facing message
// with a support code via core.MapError before it reaches the client.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"parqedit/internal/core"
	"parqedit/internal/storage"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Action string `json:"action,omitempty"`
}

// InfoResponse carries an informational (non-error) message, such as the
// prompt shown when upload mode is selected but no file was supplied.
type InfoResponse struct {
	Info string `json:"info"`
}

// respondError logs the technical error and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	userMsg := core.MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", chimiddleware.GetReqID(r.Context()),
	)

	writeJSON(w, status, ErrorResponse{
		Error:  userMsg.Message,
		Code:   userMsg.Code,
		Action: userMsg.Action,
	})
}

// statusForError picks the HTTP status for a workflow error.
func statusForError(err error) int {
	var backupErr *core.BackupError
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrNoPendingDeletion):
		return http.StatusConflict
	case errors.Is(err, core.ErrDecode):
		return http.StatusBadRequest
	case errors.As(err, &backupErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondBadRequest writes a plain 400 for malformed requests that never
// reached the core.
func respondBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: "REQ001"})
}

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
