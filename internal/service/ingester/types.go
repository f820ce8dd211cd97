package ingester

import (
	"context"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/chain"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Source interface {
		LatestBlockNumber(ctx context.Context) (uint64, error)
		Block(ctx context.Context, number uint64) (*chain.Block, error)
		PendingTransactions(ctx context.Context) ([]model.Transaction, error)
	}

	Metrics interface {
		ObserveSync(err error, committed int, started time.Time)
		ObserveCommit(err error, number uint64, started time.Time)
		ObserveReorg(depth uint64)
		SetHeads(chainHead, indexHead uint64)
	}
)
