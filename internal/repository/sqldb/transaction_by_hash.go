package sqldb

import (
	"context"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
)

// TransactionByHash returns an included transaction, canonical or retracted.
func (r *Repository) TransactionByHash(ctx context.Context, hash string) (_ *model.Transaction, err error) {
	defer r.observe("transaction_by_hash", time.Now(), &err)

	var row transactionRow
	err = r.db.WithContext(ctx).Where("hash = ?", hash).Take(&row).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("query transaction by hash", err)
	}

	tx, err := row.model()
	if err != nil {
		return nil, storageErr("decode transaction", err)
	}
	return &tx, nil
}
