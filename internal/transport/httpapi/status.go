package httpapi

import (
	"net/http"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/clock"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
)

// handleLogCount reads one daily counter. date defaults to the current UTC day.
func (s *Server) handleLogCount(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	date := qs.Get("date")
	if date == "" {
		date = clock.Day(time.Now())
	}
	n, err := s.facade.LogCount(r.Context(), date, model.CounterCategory(qs.Get("category")), qs.Get("address"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.facade.Status(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newStatusDTO(st, s.facade.MaxLag()))
}
