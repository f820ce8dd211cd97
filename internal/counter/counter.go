// Package counter owns the daily activity counters (LogCounter rows).
//
// Counters are only ever changed by applying a Delta inside the same store transaction as
// the block write that caused it, so every counter equals the tally of the canonical blocks
// booked into its day.
package counter

import (
	"context"
	"fmt"
	"sort"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
)

type (
	// Writer adds to a counter and returns its new total. Implementations must be
	// bound to the transaction of the triggering block write.
	Writer interface {
		AddCounter(ctx context.Context, key model.CounterKey, delta int64) (int64, error)
	}
	// Reader returns a counter total, zero when the row does not exist.
	Reader interface {
		Counter(ctx context.Context, key model.CounterKey) (int64, error)
	}
)

// Delta is a set of pending counter changes.
type Delta map[model.CounterKey]int64

// ForBlock returns the increments booked for one canonical block and its transactions.
func ForBlock(day string, b model.Block, txs []model.Transaction) Delta {
	d := Delta{}
	d.add(model.CounterKey{Date: day, Category: model.BlockCount}, 1)
	if b.Author != "" {
		d.add(model.CounterKey{Date: day, Category: model.BlockMiningCount, Subject: b.Author}, 1)
	}
	d.add(model.CounterKey{Date: day, Category: model.ParcelCount}, int64(len(txs)))
	d.add(model.CounterKey{Date: day, Category: model.TxCount}, int64(len(txs)))
	for _, tx := range txs {
		d.add(model.CounterKey{Date: day, Category: model.TxTypeCategory(tx.Type)}, 1)
		if tx.Type.IsAssetTransaction() {
			d.add(model.CounterKey{Date: day, Category: model.AssetTransactionCount}, 1)
		}
	}
	return d
}

// Negate returns the delta that undoes d.
func (d Delta) Negate() Delta {
	out := make(Delta, len(d))
	for k, v := range d {
		out[k] = -v
	}
	return out
}

// Merge adds other into d.
func (d Delta) Merge(other Delta) {
	for k, v := range other {
		d.add(k, v)
	}
}

// Keys returns the non-zero keys in a stable order.
func (d Delta) Keys() []model.CounterKey {
	keys := make([]model.CounterKey, 0, len(d))
	for k, v := range d {
		if v != 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

func (d Delta) add(k model.CounterKey, v int64) {
	if v == 0 {
		if _, ok := d[k]; !ok {
			d[k] = 0
		}
		return
	}
	d[k] += v
}

// Apply writes d through w in key order. A counter driven below zero means an item
// was retracted that was never counted, which is reported as a consistency violation.
func Apply(ctx context.Context, w Writer, d Delta) error {
	for _, k := range d.Keys() {
		total, err := w.AddCounter(ctx, k, d[k])
		if err != nil {
			return fmt.Errorf("add counter %s: %w", k, err)
		}
		if total < 0 {
			return fmt.Errorf("%w: counter %s would drop to %d", model.ErrConsistencyViolation, k, total)
		}
	}
	return nil
}

// Read returns the total of one counter, zero when it has never been incremented.
func Read(ctx context.Context, r Reader, key model.CounterKey) (int64, error) {
	if _, err := parseDay(key.Date); err != nil {
		return 0, err
	}
	total, err := r.Counter(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("read counter %s: %w", key, err)
	}
	return total, nil
}
