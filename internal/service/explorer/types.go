package explorer

import "context"

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

// HeadSource reports the ledger node's current head, used to compute the index lag.
type HeadSource interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
}
