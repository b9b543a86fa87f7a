package http

import (
	"fmt"
	"net/http"
	"time"
)

// handleSummary returns one month's totals. Defaults to the current month;
// results are cached per owner and month until the next write.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	owner := identityFromContext(r.Context())

	year, month, err := monthFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if year == 0 {
		now := time.Now()
		year, month = now.Year(), int(now.Month())
	}

	key := fmt.Sprintf("%s:%04d-%02d", owner.ID, year, month)
	if cached, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.ledger.Summary(r.Context(), owner.ID, year, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.summaryCache.Set(key, summary)
	writeJSON(w, http.StatusOK, summary)
}
