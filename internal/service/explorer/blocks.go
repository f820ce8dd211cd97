package explorer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/pagination"
	"go.uber.org/zap"
)

func blockKey(b model.Block) pagination.Key {
	return pagination.Key{int64(b.Number)}
}

// Block looks a block up by decimal number or by hash. Numbers resolve to the
// canonical block; a hash may also resolve to a retracted block. It returns nil when
// nothing matches.
func (f *Facade) Block(ctx context.Context, hashOrNumber string) (*model.Block, error) {
	if hashOrNumber == "" {
		return nil, fmt.Errorf("%w: block hash or number is required", model.ErrInvalidArgument)
	}

	// The epoch is read before the block so a retraction racing this lookup can only
	// make the new entry look stale, never fresh.
	epoch, err := f.store.RetractionEpoch(ctx)
	if err != nil {
		return nil, fmt.Errorf("retraction epoch: %w", err)
	}
	head, err := f.store.CanonicalHead(ctx)
	if err != nil {
		return nil, fmt.Errorf("canonical head: %w", err)
	}
	key := blockCacheKey(hashOrNumber)
	if cached, ok := f.cachedBlock(key, epoch, head); ok {
		return cached, nil
	}

	var b *model.Block
	if number, parseErr := strconv.ParseUint(hashOrNumber, 10, 64); parseErr == nil {
		b, err = f.store.CanonicalBlockByNumber(ctx, number)
	} else {
		b, err = f.store.BlockByHash(ctx, hashOrNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("block %s: %w", hashOrNumber, err)
	}
	if b != nil && f.finalized(*b, head) {
		f.blocks.Add(key, cacheEntry{epoch: epoch, block: *b})
	}
	return b, nil
}

// Blocks lists canonical blocks, newest first.
func (f *Facade) Blocks(ctx context.Context, filter index.BlockFilter, req pagination.Request) (pagination.Page[model.Block], error) {
	page, err := pagination.Paginate(ctx, pagination.BlockOrdering, req,
		func(ctx context.Context, s pagination.Scan) ([]model.Block, error) {
			return f.store.ScanBlocks(ctx, filter, s)
		}, blockKey)
	if err != nil {
		return page, fmt.Errorf("list blocks: %w", err)
	}
	return page, nil
}

// BlockCount counts canonical blocks.
func (f *Facade) BlockCount(ctx context.Context, filter index.BlockFilter) (int64, error) {
	n, err := f.store.CountBlocks(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count blocks: %w", err)
	}
	return n, nil
}

// BlockTransactions lists the transactions of one block, last first. A retracted block
// lists the transactions it carried. It returns nil when the block is unknown.
func (f *Facade) BlockTransactions(ctx context.Context, hashOrNumber string, req pagination.Request) (*pagination.Page[model.Transaction], error) {
	b, err := f.Block(ctx, hashOrNumber)
	if err != nil || b == nil {
		return nil, err
	}
	page, err := f.transactions(ctx, index.TxFilter{BlockHash: b.Hash, IncludeRetracted: !b.Canonical}, req)
	if err != nil {
		return nil, fmt.Errorf("list transactions of block %s: %w", b.Hash, err)
	}
	return &page, nil
}

// BlockTransactionTypeCounts tallies the transaction types of one block. It returns nil
// when the block is unknown.
func (f *Facade) BlockTransactionTypeCounts(ctx context.Context, hashOrNumber string) (map[model.TxType]int64, error) {
	b, err := f.Block(ctx, hashOrNumber)
	if err != nil || b == nil {
		return nil, err
	}
	counts, err := f.store.TransactionTypeCounts(ctx, b.Hash)
	if err != nil {
		return nil, fmt.Errorf("transaction types of block %s: %w", b.Hash, err)
	}
	return counts, nil
}

func blockCacheKey(hashOrNumber string) string {
	return "block:" + hashOrNumber
}

// finalized reports whether b is buried deep enough that the engine will not retract it.
func (f *Facade) finalized(b model.Block, head *model.Block) bool {
	return b.Canonical && head != nil && head.Number >= b.Number+f.cfg.FinalityDepth
}

type cacheEntry struct {
	epoch uint64
	block model.Block
}

// cachedBlock serves a cached block only if no retraction was committed since it was
// cached and the head still buries it.
func (f *Facade) cachedBlock(key string, epoch uint64, head *model.Block) (*model.Block, bool) {
	v, ok := f.blocks.Get(key)
	if !ok {
		return nil, false
	}
	entry := v.(cacheEntry)
	if entry.epoch != epoch || !f.finalized(entry.block, head) {
		f.blocks.Remove(key)
		f.logger.Debug("dropped stale cached block",
			zap.Uint64("number", entry.block.Number),
			zap.String("hash", entry.block.Hash),
			zap.Uint64("cached_epoch", entry.epoch),
			zap.Uint64("epoch", epoch))
		return nil, false
	}
	b := entry.block
	return &b, true
}
