package ingester

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/chain"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/repository/sqldb"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var baseTime = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

const testDay = "2024-03-01"

// fakeChain is an in-memory ledger node. blocks[i] holds block number i.
type fakeChain struct {
	mu       sync.Mutex
	blocks   []*chain.Block
	pending  []model.Transaction
	failures int
}

func (c *fakeChain) LatestBlockNumber(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures > 0 {
		c.failures--
		return 0, fmt.Errorf("%w: connection refused", model.ErrAdapterUnavailable)
	}
	return uint64(len(c.blocks) - 1), nil
}

func (c *fakeChain) Block(_ context.Context, number uint64) (*chain.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if number >= uint64(len(c.blocks)) {
		return nil, nil
	}
	return c.blocks[number], nil
}

func (c *fakeChain) PendingTransactions(context.Context) ([]model.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Transaction(nil), c.pending...), nil
}

// extend appends blocks on top of the block at parent, dropping anything above it.
func (c *fakeChain) extend(parent uint64, branch string, txTypes ...[]model.TxType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocks = c.blocks[:parent+1]
	for _, types := range txTypes {
		prev := c.blocks[len(c.blocks)-1]
		c.blocks = append(c.blocks, makeBlock(prev.Block.Number+1, prev.Block.Hash, branch, types...))
	}
}

func newFakeChain(txTypes ...[]model.TxType) *fakeChain {
	c := &fakeChain{blocks: []*chain.Block{makeBlock(0, "", "g")}}
	c.extend(0, "a", txTypes...)
	return c
}

func makeBlock(number uint64, parent, branch string, txTypes ...model.TxType) *chain.Block {
	hash := fmt.Sprintf("0x%s%04d", branch, number)
	ts := baseTime.Add(time.Duration(number) * time.Minute)
	b := &chain.Block{Block: model.Block{
		Hash:       hash,
		Number:     number,
		ParentHash: parent,
		Author:     "tccq-miner-" + branch,
		Timestamp:  ts,
		Score:      "1",
	}}
	for i, t := range txTypes {
		b.Transactions = append(b.Transactions, makeTx(fmt.Sprintf("%s-tx%d", hash, i), t))
	}
	return b
}

func makeTx(hash string, t model.TxType) model.Transaction {
	var payload model.Payload
	switch t {
	case model.TxPayment:
		payload = model.PaymentPayload{Receiver: "tccq-bob", Amount: "1"}
	case model.TxSetRegularKey:
		payload = model.SetRegularKeyPayload{Key: "0xkey"}
	case model.TxMintAsset:
		payload = model.MintAssetPayload{ShardID: 0, Metadata: "gold", Output: model.AssetOutput{AssetType: "0xgold", Recipient: "tccq-bob", Amount: "1"}}
	case model.TxTransferAsset:
		payload = model.TransferAssetPayload{Outputs: []model.AssetOutput{{AssetType: "0xgold", Recipient: "tccq-carol", Amount: "1"}}}
	default:
		payload = model.CreateShardPayload{}
		t = model.TxCreateShard
	}
	return model.Transaction{
		Hash:     hash,
		Sender:   "tccq-alice",
		Receiver: model.PrimaryReceiver(payload),
		Fee:      "10",
		Type:     t,
		Payload:  payload,
	}
}

func payments(n int) []model.TxType {
	out := make([]model.TxType, n)
	for i := range out {
		out[i] = model.TxPayment
	}
	return out
}

type nopStoreMetrics struct{}

func (nopStoreMetrics) Observe(string, error, time.Time) {}

func openStore(t *testing.T) *sqldb.Repository {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	repo, err := sqldb.Open(context.Background(), sqldb.Config{
		Dialect:      sqldb.DialectSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns: 1,
	}, zaptest.NewLogger(t), nopStoreMetrics{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func relaxedMetrics(ctrl *gomock.Controller) *MockMetrics {
	m := NewMockMetrics(ctrl)
	m.EXPECT().ObserveSync(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	m.EXPECT().ObserveCommit(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	m.EXPECT().ObserveReorg(gomock.Any()).AnyTimes()
	m.EXPECT().SetHeads(gomock.Any(), gomock.Any()).AnyTimes()
	return m
}

func newTestEngine(t *testing.T, store *sqldb.Repository, source Source, cfg Config) *Engine {
	t.Helper()
	if cfg.StartNumber == 0 {
		cfg.StartNumber = 1
	}
	e, err := NewEngine(store, source, relaxedMetrics(gomock.NewController(t)), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	e.retry.InitialDelay = time.Millisecond
	e.retry.MaxDelay = time.Millisecond
	e.now = func() time.Time { return baseTime.Add(time.Hour) }
	return e
}

func counterValue(t *testing.T, store *sqldb.Repository, cat model.CounterCategory) int64 {
	t.Helper()
	v, err := store.Counter(context.Background(), model.CounterKey{Date: testDay, Category: cat})
	require.NoError(t, err)
	return v
}
