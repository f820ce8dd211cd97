package httpapi

import (
	"net/http"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/service/explorer"
	"github.com/gorilla/mux"
)

func txQuery(r *http.Request) (index.TxFilter, explorer.Confirmation, error) {
	t, err := parseTxType(r)
	if err != nil {
		return index.TxFilter{}, explorer.Confirmation{}, err
	}
	c, err := parseConfirmation(r)
	if err != nil {
		return index.TxFilter{}, explorer.Confirmation{}, err
	}
	return index.TxFilter{Address: r.URL.Query().Get("address"), Type: t}, c, nil
}

func (s *Server) handleTransactionCount(w http.ResponseWriter, r *http.Request) {
	filter, c, err := txQuery(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	n, err := s.facade.TransactionCount(r.Context(), filter, c)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	filter, c, err := txQuery(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	req, err := parsePageRequest(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	page, err := s.facade.Transactions(r.Context(), filter, c, req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPageDTO(page, newTransactionDTO))
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.facade.Transaction(r.Context(), mux.Vars(r)["hash"])
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if tx == nil {
		writeNotFound(w, "transaction")
		return
	}
	writeJSON(w, http.StatusOK, newTransactionDTO(*tx))
}
