package sqldb

import (
	"context"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
)

// BlockTransactions returns the transactions attached to a block in position order.
func (r *Repository) BlockTransactions(ctx context.Context, blockHash string) (_ []model.Transaction, err error) {
	defer r.observe("block_transactions", time.Now(), &err)

	var rows []transactionRow
	err = r.db.WithContext(ctx).
		Where("block_hash = ?", blockHash).
		Order("tx_index ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storageErr("query block transactions", err)
	}

	txs, err := transactionModels(rows)
	if err != nil {
		return nil, storageErr("decode transactions", err)
	}
	return txs, nil
}

// CanonicalTransactionHashes returns the subset of hashes included in canonical blocks.
func (r *Repository) CanonicalTransactionHashes(ctx context.Context, hashes []string) (_ []string, err error) {
	defer r.observe("canonical_transaction_hashes", time.Now(), &err)

	if len(hashes) == 0 {
		return nil, nil
	}

	var found []string
	err = r.db.WithContext(ctx).
		Model(&transactionRow{}).
		Where("hash IN ? AND canonical = ?", hashes, true).
		Pluck("hash", &found).Error
	if err != nil {
		return nil, storageErr("query canonical transaction hashes", err)
	}
	return found, nil
}
