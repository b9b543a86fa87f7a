package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"contas/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	owner := identityFromContext(r.Context())

	categories, err := s.categories.List(r.Context(), owner.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if categories == nil {
		categories = []core.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

type categoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Icon string `json:"icon"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	owner := identityFromContext(r.Context())
	created, err := s.categories.Create(r.Context(), owner.ID, core.Category{
		Name: strings.TrimSpace(req.Name),
		Type: core.TransactionType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Icon: strings.TrimSpace(req.Icon),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	owner := identityFromContext(r.Context())
	renamed, err := s.categories.Rename(r.Context(), owner.ID, r.PathValue("id"), strings.TrimSpace(req.Name))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renamed)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	owner := identityFromContext(r.Context())
	if err := s.categories.Delete(r.Context(), owner.ID, r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.invalidateCaches()
	writeJSON(w, http.StatusNoContent, nil)
}
