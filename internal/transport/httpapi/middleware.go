package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records every request under its route template.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		var route string
		if cur := mux.CurrentRoute(r); cur != nil {
			route, _ = cur.GetPathTemplate()
		}
		s.metrics.ObserveRequest(route, rec.code, started)
	})
}

// syncUntil holds a request until the index reaches the block in the syncUntil
// query parameter.
func (s *Server) syncUntil(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("syncUntil")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		number, err := parseUint("syncUntil", raw)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		if err := s.facade.WaitForSync(r.Context(), number); err != nil {
			s.writeFailure(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
