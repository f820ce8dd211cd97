package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

// writeFailure maps a query error to its HTTP status. Client errors echo their message;
// anything else is logged and reported as an internal error.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrMalformedCursor), errors.Is(err, model.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrSyncTimeout):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		level := s.logger.Error
		if errors.Is(err, r.Context().Err()) {
			level = s.logger.Debug
		}
		level("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeNotFound(w http.ResponseWriter, what string) {
	writeError(w, http.StatusNotFound, what+" not found")
}
