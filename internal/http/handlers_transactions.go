package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"contas/internal/core"
)

// transactionRequest is the POST body. Amount accepts either a JSON number
// or a localized string ("1.234,56"), matching what spreadsheet-minded
// users paste in.
type transactionRequest struct {
	Type         string          `json:"type"`
	Description  string          `json:"description"`
	Amount       json.RawMessage `json:"amount"`
	DueDate      string          `json:"dueDate"`
	CategoryID   string          `json:"categoryId"`
	Status       string          `json:"status"`
	Installments int             `json:"installments"`
	Recurrence   string          `json:"recurrence"`
}

func (req transactionRequest) toDraft() (core.Draft, error) {
	amount, err := parseAmountField(req.Amount)
	if err != nil {
		return core.Draft{}, err
	}

	dueDate, err := core.ParseDate(req.DueDate)
	if err != nil {
		return core.Draft{}, fmt.Errorf("invalid due date: %w", err)
	}

	draft := core.Draft{
		Type:         core.TransactionType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Description:  strings.TrimSpace(req.Description),
		Amount:       amount,
		DueDate:      dueDate,
		CategoryID:   strings.TrimSpace(req.CategoryID),
		Status:       core.Status(strings.ToUpper(strings.TrimSpace(req.Status))),
		Installments: req.Installments,
		Recurrence:   core.Recurrence(strings.ToUpper(strings.TrimSpace(req.Recurrence))),
	}
	if draft.Installments == 0 {
		draft.Installments = 1
	}
	return draft, nil
}

func parseAmountField(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, core.ErrInvalidAmount
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return core.ParseAmount(s)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, core.ErrInvalidAmount
	}
	return n, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	draft, err := req.toDraft()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	owner := identityFromContext(r.Context())
	stored, err := s.ledger.Record(r.Context(), owner.ID, draft)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner := identityFromContext(r.Context())

	year, month, err := monthFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := fmt.Sprintf("%s:%04d-%02d", owner.ID, year, month)
	if cached, ok := s.listCache.Get(key); ok {
		// Statuses are derived from today's date, so a cached list can go
		// stale at midnight even though the rows have not changed.
		// Re-derive on the way out.
		writeJSON(w, http.StatusOK, restatused(cached))
		return
	}

	records, err := s.ledger.List(r.Context(), owner.ID, year, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if records == nil {
		records = []core.Transaction{}
	}

	s.listCache.Set(key, records)
	writeJSON(w, http.StatusOK, records)
}

// restatused copies the slice before touching statuses; the cached one is
// shared between requests.
func restatused(records []core.Transaction) []core.Transaction {
	today := core.Today()
	out := make([]core.Transaction, len(records))
	for i, t := range records {
		t.Status = core.EffectiveStatus(t, today)
		out[i] = t
	}
	return out
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	owner := identityFromContext(r.Context())

	record, err := s.ledger.Get(r.Context(), owner.ID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type transactionPatchRequest struct {
	Description *string         `json:"description"`
	Amount      json.RawMessage `json:"amount"`
	DueDate     *string         `json:"dueDate"`
	CategoryID  *string         `json:"categoryId"`
	Status      *string         `json:"status"`
}

func (req transactionPatchRequest) toPatch() (core.TransactionPatch, error) {
	patch := core.TransactionPatch{
		Description: req.Description,
		CategoryID:  req.CategoryID,
	}
	if len(req.Amount) > 0 {
		amount, err := parseAmountField(req.Amount)
		if err != nil {
			return core.TransactionPatch{}, err
		}
		patch.Amount = &amount
	}
	if req.DueDate != nil {
		dueDate, err := core.ParseDate(*req.DueDate)
		if err != nil {
			return core.TransactionPatch{}, fmt.Errorf("invalid due date: %w", err)
		}
		patch.DueDate = &dueDate
	}
	if req.Status != nil {
		status := core.Status(strings.ToUpper(strings.TrimSpace(*req.Status)))
		patch.Status = &status
	}
	return patch, nil
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	owner := identityFromContext(r.Context())
	updated, err := s.ledger.Update(r.Context(), owner.ID, r.PathValue("id"), patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteTransaction removes one record, or the whole series when
// ?group=1 is passed and the record belongs to one.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner := identityFromContext(r.Context())
	id := r.PathValue("id")

	if r.URL.Query().Get("group") == "1" {
		record, err := s.ledger.Get(r.Context(), owner.ID, id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		if record.RecurrenceID == "" {
			writeError(w, http.StatusBadRequest, "transaction is not part of a series")
			return
		}
		if err := s.ledger.DeleteGroup(r.Context(), owner.ID, record.RecurrenceID); err != nil {
			writeDomainError(w, r, err)
			return
		}
	} else if err := s.ledger.Delete(r.Context(), owner.ID, id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusNoContent, nil)
}

// monthFilter reads optional ?year=&month= query parameters. Both absent
// means no filter; one without the other is an error.
func monthFilter(r *http.Request) (int, int, error) {
	yearStr := r.URL.Query().Get("year")
	monthStr := r.URL.Query().Get("month")
	if yearStr == "" && monthStr == "" {
		return 0, 0, nil
	}
	if yearStr == "" || monthStr == "" {
		return 0, 0, fmt.Errorf("year and month must be given together")
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1 {
		return 0, 0, fmt.Errorf("invalid year: %s", yearStr)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month: %s", monthStr)
	}
	return year, month, nil
}
