package sqldb

import (
	"context"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"gorm.io/gorm/clause"
)

const insertBatchSize = 200

// SaveTransactions upserts included transactions by hash. A hash already stored for a
// retracted block is re-attached to the new block.
func (r *Repository) SaveTransactions(ctx context.Context, txs []model.Transaction) (err error) {
	defer r.observe("save_transactions", time.Now(), &err)

	if len(txs) == 0 {
		return nil
	}

	rows := make([]transactionRow, 0, len(txs))
	for _, tx := range txs {
		row, convErr := newTransactionRow(tx)
		if convErr != nil {
			return storageErr("encode transaction", convErr)
		}
		rows = append(rows, row)
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "hash"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"block_hash", "block_number", "tx_index", "canonical", "timestamp",
			}),
		}).
		CreateInBatches(rows, insertBatchSize).Error
	if err != nil {
		return storageErr("save transactions", err)
	}
	return nil
}
