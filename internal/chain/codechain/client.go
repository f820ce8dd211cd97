// Package codechain reads blocks and mempool parcels from a CodeChain style JSON-RPC node.
package codechain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/chain"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"go.uber.org/ratelimit"
)

const (
	methodBestBlockNumber = "chain_getBestBlockNumber"
	methodBlockByNumber   = "chain_getBlockByNumber"
	methodPendingParcels  = "mempool_getPendingParcels"
)

// Config holds node connection settings.
type Config struct {
	URL               string        `long:"url" env:"URL" description:"node JSON-RPC endpoint" default:"http://localhost:8080"`
	RequestsPerSecond int           `long:"rps" env:"RPS" description:"max node requests per second, 0 disables the limit" default:"50"`
	Timeout           time.Duration `long:"timeout" env:"TIMEOUT" description:"per request timeout" default:"10s"`
}

// Client implements chain.Source over JSON-RPC.
type Client struct {
	rpc     *rpc.Client
	limiter ratelimit.Limiter
	timeout time.Duration
}

var _ chain.Source = (*Client)(nil)

// Dial connects to the node described by cfg.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("node url is required")
	}
	c, err := rpc.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial node %s: %w", cfg.URL, err)
	}
	return NewClient(c, cfg), nil
}

// NewClient wraps an established rpc client.
func NewClient(c *rpc.Client, cfg Config) *Client {
	limiter := ratelimit.NewUnlimited()
	if cfg.RequestsPerSecond > 0 {
		limiter = ratelimit.New(cfg.RequestsPerSecond)
	}
	return &Client{rpc: c, limiter: limiter, timeout: cfg.Timeout}
}

// Close closes the underlying connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// LatestBlockNumber returns the node's best block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	var number uint64
	if err := c.call(ctx, &number, methodBestBlockNumber); err != nil {
		return 0, err
	}
	return number, nil
}

// Block returns the block at number with its parcels, or nil when the node has none.
func (c *Client) Block(ctx context.Context, number uint64) (*chain.Block, error) {
	var raw *rpcBlock
	if err := c.call(ctx, &raw, methodBlockByNumber, number); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	b, err := convertBlock(*raw)
	if err != nil {
		return nil, fmt.Errorf("convert block %d: %w", number, err)
	}
	return b, nil
}

// PendingTransactions returns the parcels currently in the node's mempool.
func (c *Client) PendingTransactions(ctx context.Context) ([]model.Transaction, error) {
	var raw []rpcTransaction
	if err := c.call(ctx, &raw, methodPendingParcels); err != nil {
		return nil, err
	}
	txs := make([]model.Transaction, 0, len(raw))
	for _, r := range raw {
		tx, err := convertTransaction(r)
		if err != nil {
			return nil, fmt.Errorf("convert pending parcel %s: %w", r.Hash, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (c *Client) call(ctx context.Context, result any, method string, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.limiter.Take()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := c.rpc.CallContext(ctx, result, method, args...); err != nil {
		return mapError(method, err)
	}
	return nil
}

// mapError keeps JSON-RPC errors answered by the node as they are and reports
// transport level failures as adapter unavailability.
func mapError(method string, err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return fmt.Errorf("%s: %w", method, err)
	}
	return fmt.Errorf("%w: %s: %w", model.ErrAdapterUnavailable, method, err)
}
