package sqldb

import (
	"context"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/pagination"
)

// ScanTransactions reads one keyset window of canonical transactions.
func (r *Repository) ScanTransactions(ctx context.Context, filter index.TxFilter, scan pagination.Scan) (_ []model.Transaction, err error) {
	defer r.observe("scan_transactions", time.Now(), &err)

	var rows []transactionRow
	q := txFilter(r.db.WithContext(ctx).Model(&transactionRow{}), filter)
	if err = keyset(q, pagination.TransactionOrdering, scan).Find(&rows).Error; err != nil {
		return nil, storageErr("scan transactions", err)
	}

	txs, err := transactionModels(rows)
	if err != nil {
		return nil, storageErr("decode transactions", err)
	}
	return txs, nil
}

// CountTransactions counts canonical transactions matching filter.
func (r *Repository) CountTransactions(ctx context.Context, filter index.TxFilter) (_ int64, err error) {
	defer r.observe("count_transactions", time.Now(), &err)

	var n int64
	if err = txFilter(r.db.WithContext(ctx).Model(&transactionRow{}), filter).Count(&n).Error; err != nil {
		return 0, storageErr("count transactions", err)
	}
	return n, nil
}
