package httpapi

import (
	"net/http"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
	"github.com/gorilla/mux"
)

func blockFilter(r *http.Request) index.BlockFilter {
	return index.BlockFilter{Author: r.URL.Query().Get("address")}
}

func (s *Server) handleBlockCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.facade.BlockCount(r.Context(), blockFilter(r))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (s *Server) handleBlocks(w http.ResponseWriter, r *http.Request) {
	req, err := parsePageRequest(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	page, err := s.facade.Blocks(r.Context(), blockFilter(r), req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPageDTO(page, newBlockDTO))
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	b, err := s.facade.Block(r.Context(), mux.Vars(r)["hashOrNumber"])
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if b == nil {
		writeNotFound(w, "block")
		return
	}
	writeJSON(w, http.StatusOK, newBlockDTO(*b))
}

func (s *Server) handleBlockTransactions(w http.ResponseWriter, r *http.Request) {
	req, err := parsePageRequest(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	page, err := s.facade.BlockTransactions(r.Context(), mux.Vars(r)["hashOrNumber"], req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if page == nil {
		writeNotFound(w, "block")
		return
	}
	writeJSON(w, http.StatusOK, newPageDTO(*page, newTransactionDTO))
}

func (s *Server) handleBlockTransactionTypes(w http.ResponseWriter, r *http.Request) {
	counts, err := s.facade.BlockTransactionTypeCounts(r.Context(), mux.Vars(r)["hashOrNumber"])
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if counts == nil {
		writeNotFound(w, "block")
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
