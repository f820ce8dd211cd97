package grpchealth

import (
	"context"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/service/explorer"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

// StatusSource reports the index lag the health status is derived from.
type StatusSource interface {
	Status(ctx context.Context) (explorer.Status, error)
	MaxLag() uint64
}
