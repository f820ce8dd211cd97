package httpapi

import (
	"net/http"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
)

func pendingFilter(r *http.Request) (index.PendingFilter, error) {
	t, err := parseTxType(r)
	if err != nil {
		return index.PendingFilter{}, err
	}
	return index.PendingFilter{Address: r.URL.Query().Get("address"), Type: t}, nil
}

func (s *Server) handlePendingCount(w http.ResponseWriter, r *http.Request) {
	filter, err := pendingFilter(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	n, err := s.facade.PendingTransactionCount(r.Context(), filter)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	filter, err := pendingFilter(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	req, err := parsePageRequest(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	page, err := s.facade.PendingTransactions(r.Context(), filter, req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPageDTO(page, newPendingDTO))
}
