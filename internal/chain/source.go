// Package chain defines the read contract of the ledger node the indexer follows.
package chain

import (
	"context"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Source reads chain data from a ledger node.
	Source interface {
		LatestBlockNumber(ctx context.Context) (uint64, error)
		// Block returns nil when the node has no block at number.
		Block(ctx context.Context, number uint64) (*Block, error)
		PendingTransactions(ctx context.Context) ([]model.Transaction, error)
	}

	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

// Block wraps a block and its transactions, in block order.
type Block struct {
	Block        model.Block
	Transactions []model.Transaction
}
