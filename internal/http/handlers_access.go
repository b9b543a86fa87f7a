package http

import (
	"encoding/json"
	"net/http"

	"contas/internal/core"
)

func (s *Server) handleListAccessRequests(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	requests, err := s.approvals.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if requests == nil {
		requests = []core.AccessRequest{}
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *Server) handleSetApproval(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	var req struct {
		Approved bool `json:"approved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	email := r.PathValue("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "missing email")
		return
	}

	if err := s.approvals.SetApproval(r.Context(), email, req.Approved); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"email": email, "approved": req.Approved})
}
