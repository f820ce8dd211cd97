package explorer

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/pagination"
)

func pendingKey(tx model.PendingTransaction) pagination.Key {
	return pagination.Key{tx.ObservedSeq}
}

// PendingTransactions lists mempool transactions, most recently observed first.
func (f *Facade) PendingTransactions(ctx context.Context, filter index.PendingFilter, req pagination.Request) (pagination.Page[model.PendingTransaction], error) {
	page, err := pagination.Paginate(ctx, pagination.PendingOrdering, req,
		func(ctx context.Context, s pagination.Scan) ([]model.PendingTransaction, error) {
			return f.store.ScanPending(ctx, filter, s)
		}, pendingKey)
	if err != nil {
		return page, fmt.Errorf("list pending transactions: %w", err)
	}
	return page, nil
}

// PendingTransactionCount counts mempool transactions.
func (f *Facade) PendingTransactionCount(ctx context.Context, filter index.PendingFilter) (int64, error) {
	n, err := f.store.CountPending(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count pending transactions: %w", err)
	}
	return n, nil
}
