// Package httpapi exposes the explorer queries over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/pagination"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/service/explorer"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Facade is the query surface served by the API.
type Facade interface {
	Block(ctx context.Context, hashOrNumber string) (*model.Block, error)
	Blocks(ctx context.Context, filter index.BlockFilter, req pagination.Request) (pagination.Page[model.Block], error)
	BlockCount(ctx context.Context, filter index.BlockFilter) (int64, error)
	BlockTransactions(ctx context.Context, hashOrNumber string, req pagination.Request) (*pagination.Page[model.Transaction], error)
	BlockTransactionTypeCounts(ctx context.Context, hashOrNumber string) (map[model.TxType]int64, error)
	Transaction(ctx context.Context, hash string) (*model.Transaction, error)
	Transactions(ctx context.Context, filter index.TxFilter, c explorer.Confirmation, req pagination.Request) (pagination.Page[model.Transaction], error)
	TransactionCount(ctx context.Context, filter index.TxFilter, c explorer.Confirmation) (int64, error)
	PendingTransactions(ctx context.Context, filter index.PendingFilter, req pagination.Request) (pagination.Page[model.PendingTransaction], error)
	PendingTransactionCount(ctx context.Context, filter index.PendingFilter) (int64, error)
	LogCount(ctx context.Context, date string, category model.CounterCategory, subject string) (int64, error)
	Status(ctx context.Context) (explorer.Status, error)
	MaxLag() uint64
	WaitForSync(ctx context.Context, number uint64) error
}

// Server routes API requests to the facade.
type Server struct {
	logger  *zap.Logger
	facade  Facade
	metrics Metrics
}

// NewServer returns a Server instance.
func NewServer(facade Facade, metrics Metrics, logger *zap.Logger) (*Server, error) {
	if facade == nil {
		return nil, errors.New("explorer facade is required")
	}
	if metrics == nil {
		return nil, errors.New("api metrics is required")
	}
	return &Server{logger: logger, facade: facade, metrics: metrics}, nil
}

// NewRouter returns a router with every API route.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.instrument, s.syncUntil)

	r.HandleFunc("/block/count", s.handleBlockCount).Methods(http.MethodGet)
	r.HandleFunc("/block", s.handleBlocks).Methods(http.MethodGet)
	r.HandleFunc("/block/{hashOrNumber}", s.handleBlock).Methods(http.MethodGet)
	r.HandleFunc("/block/{hashOrNumber}/tx", s.handleBlockTransactions).Methods(http.MethodGet)
	r.HandleFunc("/block/{hashOrNumber}/tx-types", s.handleBlockTransactionTypes).Methods(http.MethodGet)

	r.HandleFunc("/tx/count", s.handleTransactionCount).Methods(http.MethodGet)
	r.HandleFunc("/tx", s.handleTransactions).Methods(http.MethodGet)
	r.HandleFunc("/tx/{hash}", s.handleTransaction).Methods(http.MethodGet)

	r.HandleFunc("/pending-tx/count", s.handlePendingCount).Methods(http.MethodGet)
	r.HandleFunc("/pending-tx", s.handlePending).Methods(http.MethodGet)

	r.HandleFunc("/log/count", s.handleLogCount).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// Handler returns the router wrapped with permissive CORS.
func (s *Server) Handler() http.Handler {
	return cors.Default().Handler(s.NewRouter())
}
