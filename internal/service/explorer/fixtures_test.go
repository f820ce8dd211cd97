package explorer

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/clock"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/counter"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/repository/sqldb"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var baseTime = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

const testDay = "2024-03-01"

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

func newTestFacade(t *testing.T, store index.Reader, heads HeadSource, cfg Config) *Facade {
	t.Helper()
	f, err := NewFacade(store, heads, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	return f
}

func blockHash(number uint64) string {
	return fmt.Sprintf("0xb%04d", number)
}

func testTx(hash, sender string, t model.TxType) model.Transaction {
	var payload model.Payload
	switch t {
	case model.TxMintAsset:
		payload = model.MintAssetPayload{Metadata: "gold", Output: model.AssetOutput{AssetType: "0xgold", Recipient: "tccq-bob", Amount: "1"}}
	case model.TxSetRegularKey:
		payload = model.SetRegularKeyPayload{Key: "0xkey"}
	default:
		t = model.TxPayment
		payload = model.PaymentPayload{Receiver: "tccq-bob", Amount: "7"}
	}
	return model.Transaction{
		Hash:     hash,
		Sender:   sender,
		Receiver: model.PrimaryReceiver(payload),
		Fee:      "10",
		Type:     t,
		Payload:  payload,
	}
}

// seedChain commits canonical blocks 1..len(txTypes) the way the ingester does.
func seedChain(t *testing.T, store index.Store, txTypes ...[]model.TxType) {
	t.Helper()
	ctx := context.Background()
	for i, types := range txTypes {
		number := uint64(i + 1)
		b := model.Block{
			Hash:             blockHash(number),
			Number:           number,
			ParentHash:       blockHash(number - 1),
			Author:           "tccq-miner",
			Timestamp:        baseTime.Add(time.Duration(number) * time.Minute),
			Canonical:        true,
			TransactionCount: len(types),
		}
		b.CountedOn = clock.Day(b.Timestamp)

		txs := make([]model.Transaction, len(types))
		for j, typ := range types {
			n := number
			tx := testTx(fmt.Sprintf("%s-%d", b.Hash, j), fmt.Sprintf("tccq-sender-%d", j), typ)
			tx.BlockHash = b.Hash
			tx.BlockNumber = &n
			tx.Index = j
			tx.Timestamp = b.Timestamp
			tx.Canonical = true
			txs[j] = tx
		}

		err := store.Atomic(ctx, func(w index.Writer) error {
			if err := w.SaveBlock(ctx, b); err != nil {
				return err
			}
			if err := w.SaveTransactions(ctx, txs); err != nil {
				return err
			}
			return counter.Apply(ctx, w, counter.ForBlock(b.CountedOn, b, txs))
		})
		require.NoError(t, err)
	}
}

func seedPending(t *testing.T, store index.Store, hashes ...string) {
	t.Helper()
	ctx := context.Background()
	pending := make([]model.PendingTransaction, len(hashes))
	for i, h := range hashes {
		tx := testTx(h, "tccq-alice", model.TxPayment)
		tx.Timestamp = baseTime
		pending[i] = model.PendingTransaction{Transaction: tx, ObservedAt: baseTime}
	}
	require.NoError(t, store.Atomic(ctx, func(w index.Writer) error {
		return w.SavePending(ctx, pending)
	}))
}
