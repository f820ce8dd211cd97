package ingester

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/chain"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/clock"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/counter"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"github.com/goodnatureofminers/ledgerindex-backend/pkg/safe"
	"github.com/goodnatureofminers/ledgerindex-backend/pkg/workerpool"
	"go.uber.org/zap"
)

// errParentMismatch reports a block that does not extend the stored canonical chain.
var errParentMismatch = errors.New("parent hash mismatch")

type commitOutcome int

const (
	outcomeCommitted commitOutcome = iota
	outcomeSkipped
)

func (e *Engine) syncBlocks(ctx context.Context, res *SyncResult) error {
	var chainHead uint64
	err := e.call(ctx, "latest_block_number", func(ctx context.Context) error {
		var err error
		chainHead, err = e.source.LatestBlockNumber(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("latest block number: %w", err)
	}
	res.ChainHead = chainHead

	head, err := e.store.CanonicalHead(ctx)
	if err != nil {
		return fmt.Errorf("canonical head: %w", err)
	}
	next := e.cfg.StartNumber
	if head != nil {
		next = head.Number + 1
		res.IndexHead = head.Number
	}

window:
	for next <= chainHead {
		last := next + uint64(e.cfg.PrefetchWindow) - 1
		if last > chainHead {
			last = chainHead
		}
		blocks, err := e.fetchRange(ctx, next, last)
		if err != nil {
			return err
		}

		for i, b := range blocks {
			number := next + uint64(i)
			if b == nil {
				e.logger.Warn("node reported head but has no block", zap.Uint64("number", number), zap.Uint64("chain_head", chainHead))
				return nil
			}
			if b.Block.Number != number {
				return fmt.Errorf("%w: node returned block %d for number %d", model.ErrConsistencyViolation, b.Block.Number, number)
			}

			outcome, err := e.commit(ctx, b)
			if errors.Is(err, errParentMismatch) {
				fork, retracted, err := e.reorganize(ctx, number-1)
				if err != nil {
					return err
				}
				res.Reorgs++
				res.Retracted += retracted
				res.IndexHead = fork
				next = fork + 1
				continue window
			}
			if err != nil {
				return err
			}

			if outcome == outcomeCommitted {
				res.Committed++
			} else {
				res.Skipped++
			}
			res.IndexHead = number
		}
		next = last + 1
	}
	return nil
}

func (e *Engine) fetchRange(ctx context.Context, first, last uint64) ([]*chain.Block, error) {
	numbers := make([]uint64, 0, last-first+1)
	for n := first; n <= last; n++ {
		numbers = append(numbers, n)
	}
	return workerpool.Map(ctx, e.cfg.Workers, numbers, e.fetchBlock)
}

func (e *Engine) fetchBlock(ctx context.Context, number uint64) (*chain.Block, error) {
	var b *chain.Block
	err := e.call(ctx, "block", func(ctx context.Context) error {
		var err error
		b, err = e.source.Block(ctx, number)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch block %d: %w", number, err)
	}
	return b, nil
}

// commit stores one block as a single atomic unit. A block already canonical under the
// same hash is skipped, so re-running a sync never double counts.
func (e *Engine) commit(ctx context.Context, b *chain.Block) (outcome commitOutcome, err error) {
	started := time.Now()
	number := b.Block.Number
	defer func() {
		if !errors.Is(err, errParentMismatch) {
			e.metrics.ObserveCommit(err, number, started)
		}
	}()

	err = e.store.Atomic(ctx, func(w index.Writer) error {
		if number > 0 {
			parent, err := w.CanonicalBlockByNumber(ctx, number-1)
			if err != nil {
				return err
			}
			if parent != nil && parent.Hash != b.Block.ParentHash {
				return errParentMismatch
			}
		}

		existing, err := w.CanonicalBlockByNumber(ctx, number)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Hash == b.Block.Hash {
				outcome = outcomeSkipped
				return nil
			}
			if err := e.retractFrom(ctx, w, *existing); err != nil {
				return err
			}
		}

		outcome = outcomeCommitted
		return e.commitBlock(ctx, w, b)
	})
	return outcome, err
}

func (e *Engine) commitBlock(ctx context.Context, w index.Writer, b *chain.Block) error {
	block := b.Block
	// Block numbers are cursor values, which are int64.
	if _, err := safe.Int64(block.Number); err != nil {
		return fmt.Errorf("%w: block number: %v", model.ErrConsistencyViolation, err)
	}
	block.Canonical = true
	block.TransactionCount = len(b.Transactions)
	block.CountedOn = clock.Day(block.Timestamp)

	txs := make([]model.Transaction, len(b.Transactions))
	hashes := make([]string, len(b.Transactions))
	for i, tx := range b.Transactions {
		number := block.Number
		tx.BlockHash = block.Hash
		tx.BlockNumber = &number
		tx.Canonical = true
		if tx.Timestamp.IsZero() {
			tx.Timestamp = block.Timestamp
		}
		txs[i] = tx
		hashes[i] = tx.Hash
	}

	if err := w.SaveBlock(ctx, block); err != nil {
		return err
	}
	if err := w.SaveTransactions(ctx, txs); err != nil {
		return err
	}
	if _, err := w.DeletePending(ctx, hashes); err != nil {
		return err
	}
	return counter.Apply(ctx, w, counter.ForBlock(block.CountedOn, block, txs))
}

// retractFrom retracts existing and every canonical block above it.
func (e *Engine) retractFrom(ctx context.Context, w index.Writer, existing model.Block) error {
	above, err := w.CanonicalBlocksAbove(ctx, existing.Number)
	if err != nil {
		return err
	}
	for _, b := range append(above, existing) {
		if err := e.retract(ctx, w, b); err != nil {
			return err
		}
	}
	return nil
}

// retract clears the canonical status of a block and takes back the counter
// increments booked for it on the day it was counted.
func (e *Engine) retract(ctx context.Context, w index.Writer, b model.Block) error {
	txs, err := w.BlockTransactions(ctx, b.Hash)
	if err != nil {
		return err
	}
	canonical := txs[:0]
	for _, tx := range txs {
		if tx.Canonical {
			canonical = append(canonical, tx)
		}
	}
	if err := w.RetractBlock(ctx, b.Hash); err != nil {
		return err
	}
	if err := counter.Apply(ctx, w, counter.ForBlock(b.CountedOn, b, canonical).Negate()); err != nil {
		return fmt.Errorf("retract block %d %s: %w", b.Number, b.Hash, err)
	}
	e.logger.Info("retracted block", zap.Uint64("number", b.Number), zap.String("hash", b.Hash))
	return nil
}

// reorganize walks back from number until the stored canonical block matches the node,
// then retracts everything above that fork point in one atomic unit.
func (e *Engine) reorganize(ctx context.Context, number uint64) (fork uint64, retracted int, err error) {
	fork = number
	for depth := uint64(0); ; depth++ {
		if depth >= e.cfg.MaxReorgDepth {
			err = fmt.Errorf("%w: reorganization below block %d is deeper than %d blocks", model.ErrConsistencyViolation, number, e.cfg.MaxReorgDepth)
			e.logger.Error("reorganization too deep", zap.Uint64("from", number), zap.Error(err))
			return 0, 0, err
		}

		stored, err := e.store.CanonicalBlockByNumber(ctx, fork)
		if err != nil {
			return 0, 0, fmt.Errorf("stored block %d: %w", fork, err)
		}
		if stored == nil {
			break
		}
		remote, err := e.fetchBlock(ctx, fork)
		if err != nil {
			return 0, 0, err
		}
		if remote != nil && remote.Block.Hash == stored.Hash {
			break
		}
		if fork == 0 {
			err = fmt.Errorf("%w: genesis block %s is not on the node's chain", model.ErrConsistencyViolation, stored.Hash)
			e.logger.Error("genesis mismatch", zap.Error(err))
			return 0, 0, err
		}
		fork--
	}

	retracted, err = e.retractAbove(ctx, fork)
	if err != nil {
		return 0, 0, err
	}
	e.metrics.ObserveReorg(number + 1 - fork)
	e.logger.Warn("followed reorganization", zap.Uint64("fork_point", fork), zap.Int("retracted", retracted))
	return fork, retracted, nil
}

func (e *Engine) retractAbove(ctx context.Context, number uint64) (int, error) {
	var retracted int
	err := e.store.Atomic(ctx, func(w index.Writer) error {
		blocks, err := w.CanonicalBlocksAbove(ctx, number)
		if err != nil {
			return err
		}
		for _, b := range blocks {
			if err := e.retract(ctx, w, b); err != nil {
				return err
			}
		}
		retracted = len(blocks)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("retract blocks above %d: %w", number, err)
	}
	return retracted, nil
}
