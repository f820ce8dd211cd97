package explorer

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/pagination"
)

func transactionKey(tx model.Transaction) pagination.Key {
	var number int64
	if tx.BlockNumber != nil {
		number = int64(*tx.BlockNumber)
	}
	return pagination.Key{number, int64(tx.Index)}
}

// Transaction returns a canonical or retracted transaction by hash, or nil.
func (f *Facade) Transaction(ctx context.Context, hash string) (*model.Transaction, error) {
	if hash == "" {
		return nil, fmt.Errorf("%w: transaction hash is required", model.ErrInvalidArgument)
	}
	tx, err := f.store.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", hash, err)
	}
	return tx, nil
}

// Transactions lists canonical transactions, newest first.
func (f *Facade) Transactions(ctx context.Context, filter index.TxFilter, c Confirmation, req pagination.Request) (pagination.Page[model.Transaction], error) {
	filter, ok, err := f.confirmed(ctx, filter, c)
	if err != nil {
		return pagination.Page[model.Transaction]{}, err
	}
	if !ok {
		// Validate the request even when nothing can match.
		if _, err := req.Limit(); err != nil {
			return pagination.Page[model.Transaction]{}, err
		}
		return pagination.Page[model.Transaction]{Items: []model.Transaction{}}, nil
	}
	page, err := f.transactions(ctx, filter, req)
	if err != nil {
		return page, fmt.Errorf("list transactions: %w", err)
	}
	return page, nil
}

// TransactionCount counts canonical transactions.
func (f *Facade) TransactionCount(ctx context.Context, filter index.TxFilter, c Confirmation) (int64, error) {
	filter, ok, err := f.confirmed(ctx, filter, c)
	if err != nil || !ok {
		return 0, err
	}
	n, err := f.store.CountTransactions(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (f *Facade) transactions(ctx context.Context, filter index.TxFilter, req pagination.Request) (pagination.Page[model.Transaction], error) {
	return pagination.Paginate(ctx, pagination.TransactionOrdering, req,
		func(ctx context.Context, s pagination.Scan) ([]model.Transaction, error) {
			return f.store.ScanTransactions(ctx, filter, s)
		}, transactionKey)
}

// confirmed bounds filter to blocks at or below head - threshold. ok is false when no
// block is deep enough yet.
func (f *Facade) confirmed(ctx context.Context, filter index.TxFilter, c Confirmation) (_ index.TxFilter, ok bool, err error) {
	if !c.Only {
		return filter, true, nil
	}
	head, err := f.store.CanonicalHead(ctx)
	if err != nil {
		return filter, false, fmt.Errorf("canonical head: %w", err)
	}
	if head == nil || head.Number < c.Threshold {
		return filter, false, nil
	}
	limit := head.Number - c.Threshold
	if filter.MaxBlockNumber != nil && *filter.MaxBlockNumber < limit {
		limit = *filter.MaxBlockNumber
	}
	filter.MaxBlockNumber = &limit
	return filter, true, nil
}
