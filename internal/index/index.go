// Package index declares the read and write contracts of the index store.
package index

import (
	"context"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/pagination"
)

type (
	// BlockFilter narrows canonical block listings.
	BlockFilter struct {
		// Author keeps blocks mined by this address.
		Author string
	}

	// TxFilter narrows canonical transaction listings.
	TxFilter struct {
		// Address keeps transactions sent by or addressed to this address.
		Address string
		// BlockHash keeps the transactions of one block.
		BlockHash string
		// Type keeps one transaction type.
		Type model.TxType
		// MaxBlockNumber keeps transactions included at or below this number.
		MaxBlockNumber *uint64
		// IncludeRetracted also keeps rows of retracted blocks. Combined with BlockHash
		// it lists the transactions of a retracted block.
		IncludeRetracted bool
	}

	// PendingFilter narrows pending transaction listings.
	PendingFilter struct {
		Address string
		Type    model.TxType
	}
)

// Reader is the read path. Every method is a single statement, so readers see the
// store at block commit granularity and never need locks. Missing rows are reported
// as nil results, not errors.
type Reader interface {
	CanonicalHead(ctx context.Context) (*model.Block, error)
	BlockByHash(ctx context.Context, hash string) (*model.Block, error)
	CanonicalBlockByNumber(ctx context.Context, number uint64) (*model.Block, error)
	TransactionByHash(ctx context.Context, hash string) (*model.Transaction, error)
	ScanBlocks(ctx context.Context, filter BlockFilter, scan pagination.Scan) ([]model.Block, error)
	CountBlocks(ctx context.Context, filter BlockFilter) (int64, error)
	ScanTransactions(ctx context.Context, filter TxFilter, scan pagination.Scan) ([]model.Transaction, error)
	CountTransactions(ctx context.Context, filter TxFilter) (int64, error)
	// TransactionTypeCounts tallies the transactions of a block, canonical or retracted.
	TransactionTypeCounts(ctx context.Context, blockHash string) (map[model.TxType]int64, error)
	ScanPending(ctx context.Context, filter PendingFilter, scan pagination.Scan) ([]model.PendingTransaction, error)
	CountPending(ctx context.Context, filter PendingFilter) (int64, error)
	PendingHashes(ctx context.Context) ([]string, error)
	Counter(ctx context.Context, key model.CounterKey) (int64, error)
	// RetractionEpoch changes whenever a committed unit retracted a block.
	RetractionEpoch(ctx context.Context) (uint64, error)
}

// Writer is the write path. It is only handed out by Store.Atomic and every call joins
// the surrounding transaction.
type Writer interface {
	CanonicalHead(ctx context.Context) (*model.Block, error)
	CanonicalBlockByNumber(ctx context.Context, number uint64) (*model.Block, error)
	// CanonicalBlocksAbove returns the canonical blocks with a number greater than the
	// given one, highest first.
	CanonicalBlocksAbove(ctx context.Context, number uint64) ([]model.Block, error)
	BlockTransactions(ctx context.Context, blockHash string) ([]model.Transaction, error)
	CanonicalTransactionHashes(ctx context.Context, hashes []string) ([]string, error)
	SaveBlock(ctx context.Context, block model.Block) error
	SaveTransactions(ctx context.Context, txs []model.Transaction) error
	// RetractBlock clears the canonical flag of a block and of its transactions.
	RetractBlock(ctx context.Context, hash string) error
	SavePending(ctx context.Context, txs []model.PendingTransaction) error
	DeletePending(ctx context.Context, hashes []string) (int64, error)
	// DeletePendingExcept drops every pending row whose hash is not in keep.
	DeletePendingExcept(ctx context.Context, keep []string) (int64, error)
	AddCounter(ctx context.Context, key model.CounterKey, delta int64) (int64, error)
}

// Store is the index store. Atomic runs fn in one transaction: either everything fn
// wrote becomes visible or nothing does.
type Store interface {
	Reader
	Atomic(ctx context.Context, fn func(w Writer) error) error
}
