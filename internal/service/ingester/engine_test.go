package ingester

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/chain"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSyncTwoBlocks(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	node := newFakeChain(payments(1), payments(2))
	e := newTestEngine(t, store, node, Config{})

	res, err := e.Sync(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, res.Committed)
	require.Equal(t, uint64(2), res.ChainHead)
	require.Equal(t, uint64(2), res.IndexHead)

	require.Equal(t, int64(2), counterValue(t, store, model.BlockCount))
	require.Equal(t, int64(3), counterValue(t, store, model.TxCount))
	require.Equal(t, int64(3), counterValue(t, store, model.ParcelCount))
	require.Equal(t, int64(3), counterValue(t, store, model.TxTypeCategory(model.TxPayment)))

	n, err := store.CountBlocks(ctx, index.BlockFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	head, err := store.CanonicalHead(ctx)
	require.NoError(t, err)
	require.Equal(t, testDay, head.CountedOn)
	require.Equal(t, 2, head.TransactionCount)
}

func TestSyncIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	node := newFakeChain(payments(1), []model.TxType{model.TxMintAsset, model.TxSetRegularKey})
	e := newTestEngine(t, store, node, Config{})

	_, err := e.Sync(ctx)
	require.NoError(t, err)
	res, err := e.Sync(ctx)
	require.NoError(t, err)
	require.Zero(t, res.Committed)

	for _, b := range node.blocks[1:] {
		outcome, err := e.commit(ctx, b)
		require.NoError(t, err)
		require.Equal(t, outcomeSkipped, outcome)
	}

	require.Equal(t, int64(2), counterValue(t, store, model.BlockCount))
	require.Equal(t, int64(3), counterValue(t, store, model.TxCount))
	require.Equal(t, int64(1), counterValue(t, store, model.AssetTransactionCount))
	mined, err := store.Counter(ctx, model.CounterKey{Date: testDay, Category: model.BlockMiningCount, Subject: "tccq-miner-a"})
	require.NoError(t, err)
	require.Equal(t, int64(2), mined)

	n, err := store.CountTransactions(ctx, index.TxFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
}

func TestSyncFollowsReorganization(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	node := newFakeChain(payments(1), payments(2), payments(3))
	e := newTestEngine(t, store, node, Config{})

	_, err := e.Sync(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(6), counterValue(t, store, model.TxCount))

	orphan := node.blocks[2].Block.Hash
	node.extend(1, "b", payments(1), []model.TxType{model.TxMintAsset}, nil)

	res, err := e.Sync(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.Reorgs)
	require.Equal(t, 2, res.Retracted)
	require.Equal(t, 3, res.Committed)
	require.Equal(t, uint64(4), res.IndexHead)

	at2, err := store.CanonicalBlockByNumber(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, node.blocks[2].Block.Hash, at2.Hash)

	old, err := store.BlockByHash(ctx, orphan)
	require.NoError(t, err)
	require.False(t, old.Canonical)

	// counters equal the tally of blocks 1, 2b, 3b, 4b
	require.Equal(t, int64(4), counterValue(t, store, model.BlockCount))
	require.Equal(t, int64(3), counterValue(t, store, model.TxCount))
	require.Equal(t, int64(2), counterValue(t, store, model.TxTypeCategory(model.TxPayment)))
	require.Equal(t, int64(1), counterValue(t, store, model.AssetTransactionCount))
	orphanMined, err := store.Counter(ctx, model.CounterKey{Date: testDay, Category: model.BlockMiningCount, Subject: "tccq-miner-a"})
	require.NoError(t, err)
	require.Equal(t, int64(1), orphanMined)

	n, err := store.CountTransactions(ctx, index.TxFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
}

func TestSyncRejectsDeepReorganization(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	node := newFakeChain(payments(1), payments(1), payments(1))
	e := newTestEngine(t, store, node, Config{MaxReorgDepth: 2})

	_, err := e.Sync(ctx)
	require.NoError(t, err)

	node.extend(0, "b", nil, nil, nil, nil)
	_, err = e.Sync(ctx)
	require.ErrorIs(t, err, model.ErrConsistencyViolation)

	head, err := store.CanonicalHead(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(3), head.Number)
	require.Equal(t, int64(3), counterValue(t, store, model.BlockCount))
}

func TestSyncRetriesUnavailableNode(t *testing.T) {
	store := openStore(t)
	node := newFakeChain(payments(1))
	node.failures = 2
	e := newTestEngine(t, store, node, Config{RetryAttempts: 3})

	res, err := e.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Committed)
}

func TestSyncSurfacesUnavailableNode(t *testing.T) {
	store := openStore(t)
	node := newFakeChain(payments(1))
	node.failures = 10
	e := newTestEngine(t, store, node, Config{RetryAttempts: 2})

	_, err := e.Sync(context.Background())
	require.ErrorIs(t, err, model.ErrAdapterUnavailable)

	head, err := store.CanonicalHead(context.Background())
	require.NoError(t, err)
	require.Nil(t, head)
}

func TestSyncRejectsConcurrentCalls(t *testing.T) {
	store := openStore(t)
	e := newTestEngine(t, store, newFakeChain(), Config{})

	e.mu.Lock()
	_, err := e.Sync(context.Background())
	require.ErrorIs(t, err, model.ErrSyncInProgress)
	_, err = e.Rollback(context.Background(), 0)
	require.ErrorIs(t, err, model.ErrSyncInProgress)
	e.mu.Unlock()

	_, err = e.Sync(context.Background())
	require.NoError(t, err)
}

func TestSyncPendingLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	node := newFakeChain(payments(1))
	node.pending = []model.Transaction{makeTx("0xp1", model.TxPayment), makeTx("0xp2", model.TxSetRegularKey)}
	e := newTestEngine(t, store, node, Config{})

	res, err := e.Sync(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, res.PendingSeen)

	hashes, err := store.PendingHashes(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"0xp1", "0xp2"}, hashes)

	next := makeBlock(2, node.blocks[1].Block.Hash, "a")
	next.Transactions = []model.Transaction{makeTx("0xp1", model.TxPayment)}
	node.blocks = append(node.blocks, next)
	node.pending = []model.Transaction{makeTx("0xp3", model.TxPayment)}

	res, err = e.Sync(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.PendingExpired)

	hashes, err = store.PendingHashes(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"0xp3"}, hashes)

	promoted, err := store.TransactionByHash(ctx, "0xp1")
	require.NoError(t, err)
	require.NotNil(t, promoted)
	require.True(t, promoted.Canonical)
	require.Equal(t, uint64(2), *promoted.BlockNumber)
}

func TestSyncSkipsPendingAlreadyIncluded(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	node := newFakeChain(payments(1))
	node.pending = []model.Transaction{node.blocks[1].Transactions[0]}
	e := newTestEngine(t, store, node, Config{})

	res, err := e.Sync(ctx)
	require.NoError(t, err)
	require.Zero(t, res.PendingSeen)

	n, err := store.CountPending(ctx, index.PendingFilter{})
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestRollbackRestoresCounters(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	node := newFakeChain(payments(1), payments(2), payments(3))
	e := newTestEngine(t, store, node, Config{})

	_, err := e.Sync(ctx)
	require.NoError(t, err)

	retracted, err := e.Rollback(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, retracted)
	require.Equal(t, int64(1), counterValue(t, store, model.BlockCount))
	require.Equal(t, int64(1), counterValue(t, store, model.TxCount))

	res, err := e.Sync(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, res.Committed)
	require.Equal(t, int64(3), counterValue(t, store, model.BlockCount))
	require.Equal(t, int64(6), counterValue(t, store, model.TxCount))
}

type failingStore struct {
	index.Store
	err error
}

func (s failingStore) Atomic(ctx context.Context, fn func(w index.Writer) error) error {
	return s.Store.Atomic(ctx, func(w index.Writer) error {
		return fn(failingWriter{Writer: w, err: s.err})
	})
}

type failingWriter struct {
	index.Writer
	err error
}

func (w failingWriter) AddCounter(context.Context, model.CounterKey, int64) (int64, error) {
	return 0, w.err
}

func TestCommitIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	node := newFakeChain(payments(2))
	storageErr := errors.New("disk full")

	e, err := NewEngine(failingStore{Store: store, err: storageErr}, node, relaxedMetrics(gomock.NewController(t)), Config{StartNumber: 1}, zap.NewNop())
	require.NoError(t, err)

	_, err = e.Sync(ctx)
	require.ErrorIs(t, err, storageErr)

	head, err := store.CanonicalHead(ctx)
	require.NoError(t, err)
	require.Nil(t, head)

	n, err := store.CountTransactions(ctx, index.TxFilter{})
	require.NoError(t, err)
	require.Zero(t, n)
	require.Zero(t, counterValue(t, store, model.BlockCount))
}

func TestEngine_Run(t *testing.T) {
	t.Parallel()

	type fields struct {
		source  Source
		metrics Metrics
		sleep   func(context.Context, time.Duration) error
	}
	tests := []struct {
		name       string
		prepare    func(t *testing.T, ctrl *gomock.Controller, slept *[]time.Duration) fields
		wantSleeps []time.Duration
	}{
		{
			name: "backs off after a failed cycle",
			prepare: func(t *testing.T, ctrl *gomock.Controller, slept *[]time.Duration) fields {
				source := NewMockSource(ctrl)
				metrics := NewMockMetrics(ctrl)
				nodeErr := errors.New("method not found")

				gomock.InOrder(
					source.EXPECT().LatestBlockNumber(gomock.Any()).Return(uint64(0), nodeErr),
					metrics.EXPECT().ObserveSync(gomock.Any(), 0, gomock.Any()),
					source.EXPECT().LatestBlockNumber(gomock.Any()).Return(uint64(0), nil),
					source.EXPECT().PendingTransactions(gomock.Any()).Return(nil, nil),
					metrics.EXPECT().SetHeads(uint64(0), uint64(0)),
					metrics.EXPECT().ObserveSync(nil, 0, gomock.Any()),
				)

				calls := 0
				return fields{
					source:  source,
					metrics: metrics,
					sleep: func(_ context.Context, d time.Duration) error {
						*slept = append(*slept, d)
						calls++
						if calls == 2 {
							return context.Canceled
						}
						return nil
					},
				}
			},
			wantSleeps: []time.Duration{time.Second, time.Millisecond},
		},
		{
			name: "commits available blocks then polls",
			prepare: func(t *testing.T, ctrl *gomock.Controller, slept *[]time.Duration) fields {
				source := NewMockSource(ctrl)
				metrics := relaxedMetrics(ctrl)
				b := makeBlock(1, "0xg0000", "a", model.TxPayment)

				source.EXPECT().LatestBlockNumber(gomock.Any()).Return(uint64(1), nil)
				source.EXPECT().Block(gomock.Any(), uint64(1)).Return(&chain.Block{Block: b.Block, Transactions: b.Transactions}, nil)
				source.EXPECT().PendingTransactions(gomock.Any()).Return(nil, nil)

				return fields{
					source:  source,
					metrics: metrics,
					sleep: func(_ context.Context, d time.Duration) error {
						*slept = append(*slept, d)
						return context.Canceled
					},
				}
			},
			wantSleeps: []time.Duration{time.Millisecond},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			var slept []time.Duration
			f := tt.prepare(t, ctrl, &slept)

			e, err := NewEngine(openStore(t), f.source, f.metrics, Config{
				StartNumber:     1,
				PollInterval:    time.Millisecond,
				BackoffInterval: time.Second,
				RetryAttempts:   1,
			}, zap.NewNop())
			require.NoError(t, err)
			e.sleep = f.sleep

			err = e.Run(context.Background())
			require.ErrorIs(t, err, context.Canceled)
			require.Equal(t, tt.wantSleeps, slept)
		})
	}
}

func TestNewEngineValidates(t *testing.T) {
	_, err := NewEngine(nil, newFakeChain(), nil, Config{}, zap.NewNop())
	require.ErrorContains(t, err, "index store is required")
}
