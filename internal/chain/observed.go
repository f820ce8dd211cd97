package chain

import (
	"context"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
)

// ObservedSource records metrics for every call to the wrapped source.
type ObservedSource struct {
	source  Source
	metrics Metrics
}

func NewObservedSource(source Source, metrics Metrics) *ObservedSource {
	return &ObservedSource{
		source:  source,
		metrics: metrics,
	}
}

func (s *ObservedSource) LatestBlockNumber(ctx context.Context) (number uint64, err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe("latest_block_number", err, started)
	}()
	return s.source.LatestBlockNumber(ctx)
}

func (s *ObservedSource) Block(ctx context.Context, number uint64) (block *Block, err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe("block", err, started)
	}()
	return s.source.Block(ctx, number)
}

func (s *ObservedSource) PendingTransactions(ctx context.Context) (txs []model.Transaction, err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe("pending_transactions", err, started)
	}()
	return s.source.PendingTransactions(ctx)
}
