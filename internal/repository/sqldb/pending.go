package sqldb

import (
	"context"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/pagination"
	"gorm.io/gorm/clause"
)

// ScanPending reads one keyset window of pending transactions.
func (r *Repository) ScanPending(ctx context.Context, filter index.PendingFilter, scan pagination.Scan) (_ []model.PendingTransaction, err error) {
	defer r.observe("scan_pending", time.Now(), &err)

	var rows []pendingRow
	q := pendingFilter(r.db.WithContext(ctx).Model(&pendingRow{}), filter)
	if err = keyset(q, pagination.PendingOrdering, scan).Find(&rows).Error; err != nil {
		return nil, storageErr("scan pending transactions", err)
	}

	out := make([]model.PendingTransaction, 0, len(rows))
	for _, row := range rows {
		p, convErr := row.model()
		if convErr != nil {
			return nil, storageErr("decode pending transaction", convErr)
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *Repository) CountPending(ctx context.Context, filter index.PendingFilter) (_ int64, err error) {
	defer r.observe("count_pending", time.Now(), &err)

	var n int64
	if err = pendingFilter(r.db.WithContext(ctx).Model(&pendingRow{}), filter).Count(&n).Error; err != nil {
		return 0, storageErr("count pending transactions", err)
	}
	return n, nil
}

// PendingHashes lists the hashes of every pending row.
func (r *Repository) PendingHashes(ctx context.Context) (_ []string, err error) {
	defer r.observe("pending_hashes", time.Now(), &err)

	var hashes []string
	if err = r.db.WithContext(ctx).Model(&pendingRow{}).Order("seq ASC").Pluck("hash", &hashes).Error; err != nil {
		return nil, storageErr("query pending hashes", err)
	}
	return hashes, nil
}

// SavePending inserts newly observed pending transactions; known hashes keep their sequence.
func (r *Repository) SavePending(ctx context.Context, txs []model.PendingTransaction) (err error) {
	defer r.observe("save_pending", time.Now(), &err)

	if len(txs) == 0 {
		return nil
	}

	rows := make([]pendingRow, 0, len(txs))
	for _, tx := range txs {
		row, convErr := newPendingRow(tx)
		if convErr != nil {
			return storageErr("encode pending transaction", convErr)
		}
		rows = append(rows, row)
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "hash"}}, DoNothing: true}).
		CreateInBatches(rows, insertBatchSize).Error
	if err != nil {
		return storageErr("save pending transactions", err)
	}
	return nil
}

// DeletePending removes pending rows by hash, typically once they are included in a block.
func (r *Repository) DeletePending(ctx context.Context, hashes []string) (_ int64, err error) {
	defer r.observe("delete_pending", time.Now(), &err)

	if len(hashes) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).Where("hash IN ?", hashes).Delete(&pendingRow{})
	if err = res.Error; err != nil {
		return 0, storageErr("delete pending transactions", err)
	}
	return res.RowsAffected, nil
}

func (r *Repository) DeletePendingExcept(ctx context.Context, keep []string) (_ int64, err error) {
	defer r.observe("delete_pending_except", time.Now(), &err)

	q := r.db.WithContext(ctx)
	if len(keep) == 0 {
		q = q.Where("1 = 1")
	} else {
		q = q.Where("hash NOT IN ?", keep)
	}

	res := q.Delete(&pendingRow{})
	if err = res.Error; err != nil {
		return 0, storageErr("expire pending transactions", err)
	}
	return res.RowsAffected, nil
}
