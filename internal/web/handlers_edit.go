package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleSubmitEdits accepts a full edited grid. Submissions that do not
// shrink the table are applied immediately; submissions with fewer rows
// open the confirmation gate.
func (s *Server) handleSubmitEdits(w http.ResponseWriter, r *http.Request) {
	var payload tablePayload
	if err := decodeJSON(r, &payload); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	edited, err := toTable(payload)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	outcome, err := s.service.SubmitEdits(chi.URLParam(r, "sessionID"), edited)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// cellRequest addresses a single cell edit.
type cellRequest struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  any    `json:"value"`
}

// handleUpdateCell applies a single cell edit. Never gated.
func (s *Server) handleUpdateCell(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	if err := s.service.UpdateCell(chi.URLParam(r, "sessionID"), req.Row, req.Column, req.Value); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// rowRequest carries the values of a new row, one per column.
type rowRequest struct {
	Values []any `json:"values"`
}

// handleAppendRow appends one row. Never gated.
func (s *Server) handleAppendRow(w http.ResponseWriter, r *http.Request) {
	var req rowRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	if err := s.service.AppendRow(chi.URLParam(r, "sessionID"), req.Values); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// confirmRequest carries the deletion confirmation code.
type confirmRequest struct {
	Code string `json:"code"`
}

// handleConfirmDeletion resolves the pending confirmation gate. Both
// outcomes are 200s: an incorrect code is a recoverable user condition
// reported in the body, not a transport error.
func (s *Server) handleConfirmDeletion(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	outcome, err := s.service.ConfirmDeletion(chi.URLParam(r, "sessionID"), req.Code)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// decodeJSON decodes a JSON request body.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
