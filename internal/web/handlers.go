package web

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleLoadRemote loads the configured bucket table into a new session.
func (s *Server) handleLoadRemote(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.CreateRemoteSession(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// handleLoadUpload creates a session from an uploaded Parquet file. A
// request without a file is answered with an informational prompt, not an
// error: the workflow simply has not started yet.
func (s *Server) handleLoadUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	if err := r.ParseMultipartForm(s.cfg.Upload.MaxFileSize); err != nil {
		respondBadRequest(w, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusOK, InfoResponse{
			Info: "Please upload a Parquet file or load the bucket table.",
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondBadRequest(w, "failed to read uploaded file")
		return
	}

	view, err := s.service.CreateUploadSession(r.Context(), header.Filename, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// handleGetSession returns the session snapshot.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.View(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleDeleteSession discards the session.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.service.DeleteSession(chi.URLParam(r, "sessionID")) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "session not found", Code: "SES001"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetTable returns the session's current table.
func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	tbl, err := s.service.TableSnapshot(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromTable(tbl))
}

// handleGetSummary returns descriptive statistics of the current table.
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.Summary(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleExport streams the current table as a Parquet download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, filename, err := s.service.Export(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}

// saveRequest selects the save destination.
type saveRequest struct {
	Destination string `json:"destination"`    // "remote" | "local"
	Path        string `json:"path,omitempty"` // local only, optional
}

// handleSave dispatches a save to the selected destination.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req saveRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	switch req.Destination {
	case "remote":
		result, err := s.service.SaveRemote(r.Context(), sessionID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	case "local":
		result, err := s.service.SaveLocal(r.Context(), sessionID, req.Path)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	default:
		respondBadRequest(w, fmt.Sprintf("unknown destination %q (want remote or local)", req.Destination))
	}
}
