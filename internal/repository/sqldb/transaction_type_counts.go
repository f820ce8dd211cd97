package sqldb

import (
	"context"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
)

// TransactionTypeCounts tallies the transactions of a block per type. The rows of a block
// carry its canonical flag, so no canonical condition is needed.
func (r *Repository) TransactionTypeCounts(ctx context.Context, blockHash string) (_ map[model.TxType]int64, err error) {
	defer r.observe("transaction_type_counts", time.Now(), &err)

	var rows []struct {
		TxType string
		Total  int64
	}
	err = r.db.WithContext(ctx).
		Model(&transactionRow{}).
		Select("tx_type, COUNT(*) AS total").
		Where("block_hash = ?", blockHash).
		Group("tx_type").
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr("count transaction types", err)
	}

	counts := make(map[model.TxType]int64, len(rows))
	for _, row := range rows {
		counts[model.ParseTxType(row.TxType)] += row.Total
	}
	return counts, nil
}
