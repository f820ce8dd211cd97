package ingester

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"go.uber.org/zap"
)

// syncPending mirrors the node's mempool: newly reported parcels that are not yet in a
// canonical block are added, rows the node no longer reports are expired.
func (e *Engine) syncPending(ctx context.Context, res *SyncResult) error {
	var reported []model.Transaction
	err := e.call(ctx, "pending_transactions", func(ctx context.Context) error {
		var err error
		reported, err = e.source.PendingTransactions(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("pending transactions: %w", err)
	}

	hashes := make([]string, 0, len(reported))
	for _, tx := range reported {
		hashes = append(hashes, tx.Hash)
	}

	now := e.now()
	err = e.store.Atomic(ctx, func(w index.Writer) error {
		included, err := w.CanonicalTransactionHashes(ctx, hashes)
		if err != nil {
			return err
		}
		skip := make(map[string]struct{}, len(included))
		for _, h := range included {
			skip[h] = struct{}{}
		}

		keep := make([]string, 0, len(reported))
		pending := make([]model.PendingTransaction, 0, len(reported))
		for _, tx := range reported {
			if _, ok := skip[tx.Hash]; ok {
				continue
			}
			tx.BlockHash = ""
			tx.BlockNumber = nil
			tx.Canonical = false
			if tx.Timestamp.IsZero() {
				tx.Timestamp = now
			}
			keep = append(keep, tx.Hash)
			pending = append(pending, model.PendingTransaction{Transaction: tx, ObservedAt: now})
		}

		if err := w.SavePending(ctx, pending); err != nil {
			return err
		}
		expired, err := w.DeletePendingExcept(ctx, keep)
		if err != nil {
			return err
		}
		res.PendingSeen = len(pending)
		res.PendingExpired = expired
		return nil
	})
	if err != nil {
		return fmt.Errorf("store pending transactions: %w", err)
	}

	if res.PendingExpired > 0 {
		e.logger.Debug("expired pending transactions", zap.Int64("count", res.PendingExpired))
	}
	return nil
}
