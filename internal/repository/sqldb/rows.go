package sqldb

import (
	"fmt"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
)

type blockRow struct {
	ID               uint64    `gorm:"primaryKey"`
	Hash             string    `gorm:"size:66;not null;uniqueIndex:idx_blocks_hash"`
	Number           uint64    `gorm:"not null;index:idx_blocks_canonical_number,priority:2"`
	Canonical        bool      `gorm:"not null;index:idx_blocks_canonical_number,priority:1"`
	ParentHash       string    `gorm:"size:66;not null"`
	Author           string    `gorm:"size:128;index:idx_blocks_author"`
	Timestamp        time.Time `gorm:"not null"`
	TransactionsRoot string    `gorm:"size:66"`
	StateRoot        string    `gorm:"size:66"`
	Score            string    `gorm:"size:80"`
	TransactionCount int       `gorm:"not null"`
	CountedOn        string    `gorm:"size:10;not null"`
}

func (*blockRow) TableName() string {
	return "blocks"
}

type transactionRow struct {
	ID          uint64    `gorm:"primaryKey"`
	Hash        string    `gorm:"size:66;not null;uniqueIndex:idx_transactions_hash"`
	BlockHash   string    `gorm:"size:66;not null;index:idx_transactions_block_hash"`
	BlockNumber uint64    `gorm:"not null;index:idx_transactions_canonical_position,priority:2"`
	TxIndex     int       `gorm:"column:tx_index;not null;index:idx_transactions_canonical_position,priority:3"`
	Canonical   bool      `gorm:"not null;index:idx_transactions_canonical_position,priority:1"`
	Sender      string    `gorm:"size:128;index:idx_transactions_sender"`
	Receiver    string    `gorm:"size:128;index:idx_transactions_receiver"`
	Seq         uint64    `gorm:"not null"`
	Fee         string    `gorm:"size:80"`
	NetworkID   string    `gorm:"size:8"`
	Timestamp   time.Time `gorm:"not null"`
	Type        string    `gorm:"column:tx_type;size:32;not null"`
	Payload     string    `gorm:"type:text"`
}

func (*transactionRow) TableName() string {
	return "transactions"
}

type pendingRow struct {
	Seq        int64     `gorm:"primaryKey;autoIncrement"`
	Hash       string    `gorm:"size:66;not null;uniqueIndex:idx_pending_transactions_hash"`
	Sender     string    `gorm:"size:128;index:idx_pending_transactions_sender"`
	Receiver   string    `gorm:"size:128;index:idx_pending_transactions_receiver"`
	TxSeq      uint64    `gorm:"not null"`
	Fee        string    `gorm:"size:80"`
	NetworkID  string    `gorm:"size:8"`
	Timestamp  time.Time `gorm:"not null"`
	Type       string    `gorm:"column:tx_type;size:32;not null"`
	Payload    string    `gorm:"type:text"`
	ObservedAt time.Time `gorm:"not null"`
}

func (*pendingRow) TableName() string {
	return "pending_transactions"
}

type counterRow struct {
	ID       uint64 `gorm:"primaryKey"`
	Day      string `gorm:"size:10;not null;uniqueIndex:idx_log_counters_key,priority:1"`
	Category string `gorm:"size:64;not null;uniqueIndex:idx_log_counters_key,priority:2"`
	Subject  string `gorm:"size:128;not null;uniqueIndex:idx_log_counters_key,priority:3"`
	Total    int64  `gorm:"not null"`
}

func (*counterRow) TableName() string {
	return "log_counters"
}

// epochRow is a single-row table counting block retractions.
type epochRow struct {
	ID    uint64 `gorm:"primaryKey;autoIncrement:false"`
	Epoch uint64 `gorm:"not null"`
}

func (*epochRow) TableName() string {
	return "retraction_epochs"
}

const retractionEpochID = 1

func tables() []any {
	return []any{&blockRow{}, &transactionRow{}, &pendingRow{}, &counterRow{}, &epochRow{}}
}

func newBlockRow(b model.Block) blockRow {
	return blockRow{
		Hash:             b.Hash,
		Number:           b.Number,
		Canonical:        b.Canonical,
		ParentHash:       b.ParentHash,
		Author:           b.Author,
		Timestamp:        b.Timestamp.UTC(),
		TransactionsRoot: b.TransactionsRoot,
		StateRoot:        b.StateRoot,
		Score:            b.Score,
		TransactionCount: b.TransactionCount,
		CountedOn:        b.CountedOn,
	}
}

func (r blockRow) model() model.Block {
	return model.Block{
		Hash:             r.Hash,
		Number:           r.Number,
		ParentHash:       r.ParentHash,
		Author:           r.Author,
		Timestamp:        r.Timestamp.UTC(),
		TransactionsRoot: r.TransactionsRoot,
		StateRoot:        r.StateRoot,
		Score:            r.Score,
		TransactionCount: r.TransactionCount,
		Canonical:        r.Canonical,
		CountedOn:        r.CountedOn,
	}
}

func newTransactionRow(tx model.Transaction) (transactionRow, error) {
	if tx.BlockNumber == nil {
		return transactionRow{}, fmt.Errorf("transaction %s has no block number", tx.Hash)
	}
	payload, err := model.EncodePayload(tx.Type, tx.Payload)
	if err != nil {
		return transactionRow{}, fmt.Errorf("transaction %s: %w", tx.Hash, err)
	}
	return transactionRow{
		Hash:        tx.Hash,
		BlockHash:   tx.BlockHash,
		BlockNumber: *tx.BlockNumber,
		TxIndex:     tx.Index,
		Canonical:   tx.Canonical,
		Sender:      tx.Sender,
		Receiver:    tx.Receiver,
		Seq:         tx.Seq,
		Fee:         tx.Fee,
		NetworkID:   tx.NetworkID,
		Timestamp:   tx.Timestamp.UTC(),
		Type:        string(tx.Type),
		Payload:     string(payload),
	}, nil
}

func (r transactionRow) model() (model.Transaction, error) {
	t := model.ParseTxType(r.Type)
	payload, err := model.DecodePayload(t, []byte(r.Payload))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", r.Hash, err)
	}
	number := r.BlockNumber
	return model.Transaction{
		Hash:        r.Hash,
		BlockHash:   r.BlockHash,
		BlockNumber: &number,
		Index:       r.TxIndex,
		Sender:      r.Sender,
		Receiver:    r.Receiver,
		Seq:         r.Seq,
		Fee:         r.Fee,
		NetworkID:   r.NetworkID,
		Timestamp:   r.Timestamp.UTC(),
		Canonical:   r.Canonical,
		Type:        t,
		Payload:     payload,
	}, nil
}

func newPendingRow(p model.PendingTransaction) (pendingRow, error) {
	payload, err := model.EncodePayload(p.Type, p.Payload)
	if err != nil {
		return pendingRow{}, fmt.Errorf("pending transaction %s: %w", p.Hash, err)
	}
	return pendingRow{
		Hash:       p.Hash,
		Sender:     p.Sender,
		Receiver:   p.Receiver,
		TxSeq:      p.Seq,
		Fee:        p.Fee,
		NetworkID:  p.NetworkID,
		Timestamp:  p.Timestamp.UTC(),
		Type:       string(p.Type),
		Payload:    string(payload),
		ObservedAt: p.ObservedAt.UTC(),
	}, nil
}

func (r pendingRow) model() (model.PendingTransaction, error) {
	t := model.ParseTxType(r.Type)
	payload, err := model.DecodePayload(t, []byte(r.Payload))
	if err != nil {
		return model.PendingTransaction{}, fmt.Errorf("pending transaction %s: %w", r.Hash, err)
	}
	return model.PendingTransaction{
		Transaction: model.Transaction{
			Hash:      r.Hash,
			Sender:    r.Sender,
			Receiver:  r.Receiver,
			Seq:       r.TxSeq,
			Fee:       r.Fee,
			NetworkID: r.NetworkID,
			Timestamp: r.Timestamp.UTC(),
			Type:      t,
			Payload:   payload,
		},
		ObservedSeq: r.Seq,
		ObservedAt:  r.ObservedAt.UTC(),
	}, nil
}

func transactionModels(rows []transactionRow) ([]model.Transaction, error) {
	out := make([]model.Transaction, 0, len(rows))
	for _, r := range rows {
		tx, err := r.model()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}
