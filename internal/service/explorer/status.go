package explorer

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/counter"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"github.com/goodnatureofminers/ledgerindex-backend/pkg/safe"
	"go.uber.org/zap"
)

// Status describes how far the index has advanced.
type Status struct {
	Indexed       bool
	IndexHead     uint64
	IndexHeadHash string
	// ChainHead is nil when no head source is configured or the node did not answer.
	ChainHead    *uint64
	Lag          uint64
	PendingCount int64
}

// Healthy reports whether the index follows the node within maxLag blocks.
func (s Status) Healthy(maxLag uint64) bool {
	return s.ChainHead != nil && s.Lag <= maxLag
}

// LogCount reads a daily counter. Days without activity count zero.
func (f *Facade) LogCount(ctx context.Context, date string, category model.CounterCategory, subject string) (int64, error) {
	if category == "" {
		return 0, fmt.Errorf("%w: counter category is required", model.ErrInvalidArgument)
	}
	return counter.Read(ctx, f.store, model.CounterKey{Date: date, Category: category, Subject: subject})
}

// Status reports the index head, the node head and the pending pool size.
func (f *Facade) Status(ctx context.Context) (Status, error) {
	var s Status
	head, err := f.store.CanonicalHead(ctx)
	if err != nil {
		return s, fmt.Errorf("canonical head: %w", err)
	}
	if head != nil {
		s.Indexed = true
		s.IndexHead = head.Number
		s.IndexHeadHash = head.Hash
	}
	if s.PendingCount, err = f.store.CountPending(ctx, index.PendingFilter{}); err != nil {
		return s, fmt.Errorf("count pending transactions: %w", err)
	}

	if f.heads == nil {
		return s, nil
	}
	chainHead, err := f.heads.LatestBlockNumber(ctx)
	if err != nil {
		f.logger.Warn("node head unavailable", zap.Error(err))
		return s, nil
	}
	s.ChainHead = &chainHead
	if s.Indexed {
		s.Lag = safe.Sub(chainHead, s.IndexHead)
	} else {
		s.Lag = chainHead + 1
	}
	return s, nil
}

// MaxLag is the configured healthy lag bound.
func (f *Facade) MaxLag() uint64 {
	return f.cfg.MaxLag
}

// WaitForSync blocks until the canonical head reaches number. It gives up with
// model.ErrSyncTimeout after the configured wait timeout.
func (f *Facade) WaitForSync(ctx context.Context, number uint64) error {
	deadline := time.Now().Add(f.cfg.WaitTimeout)
	for {
		head, err := f.store.CanonicalHead(ctx)
		if err != nil {
			return fmt.Errorf("canonical head: %w", err)
		}
		if head != nil && head.Number >= number {
			return nil
		}

		wait := time.Until(deadline)
		if wait <= 0 {
			return fmt.Errorf("%w: block %d not indexed within %s", model.ErrSyncTimeout, number, f.cfg.WaitTimeout)
		}
		if wait > f.cfg.WaitInterval {
			wait = f.cfg.WaitInterval
		}
		if err := f.sleep(ctx, wait); err != nil {
			return fmt.Errorf("wait for block %d: %w", number, err)
		}
	}
}
