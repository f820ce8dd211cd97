package codechain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/chain"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
)

type rpcBlock struct {
	Hash             string           `json:"hash"`
	Number           uint64           `json:"number"`
	ParentHash       string           `json:"parentHash"`
	Author           string           `json:"author"`
	Timestamp        int64            `json:"timestamp"`
	TransactionsRoot string           `json:"transactionsRoot"`
	StateRoot        string           `json:"stateRoot"`
	Score            string           `json:"score"`
	Transactions     []rpcTransaction `json:"transactions"`
}

type rpcTransaction struct {
	Hash             string          `json:"hash"`
	BlockHash        string          `json:"blockHash,omitempty"`
	BlockNumber      *uint64         `json:"blockNumber,omitempty"`
	TransactionIndex *int            `json:"transactionIndex,omitempty"`
	Signer           string          `json:"signer"`
	Seq              uint64          `json:"seq"`
	Fee              string          `json:"fee"`
	NetworkID        string          `json:"networkId"`
	Action           json.RawMessage `json:"action"`
}

func convertBlock(b rpcBlock) (*chain.Block, error) {
	if b.Hash == "" {
		return nil, fmt.Errorf("block %d has no hash", b.Number)
	}

	block := model.Block{
		Hash:             b.Hash,
		Number:           b.Number,
		ParentHash:       b.ParentHash,
		Author:           b.Author,
		Timestamp:        time.Unix(b.Timestamp, 0).UTC(),
		TransactionsRoot: b.TransactionsRoot,
		StateRoot:        b.StateRoot,
		Score:            b.Score,
		TransactionCount: len(b.Transactions),
		Canonical:        true,
	}

	txs := make([]model.Transaction, 0, len(b.Transactions))
	for i, raw := range b.Transactions {
		tx, err := convertTransaction(raw)
		if err != nil {
			return nil, fmt.Errorf("parcel %d: %w", i, err)
		}
		number := b.Number
		tx.BlockHash = b.Hash
		tx.BlockNumber = &number
		tx.Index = i
		if raw.TransactionIndex != nil {
			tx.Index = *raw.TransactionIndex
		}
		tx.Timestamp = block.Timestamp
		tx.Canonical = true
		txs = append(txs, tx)
	}

	return &chain.Block{Block: block, Transactions: txs}, nil
}

func convertTransaction(t rpcTransaction) (model.Transaction, error) {
	if t.Hash == "" {
		return model.Transaction{}, fmt.Errorf("parcel has no hash")
	}

	var head struct {
		Type string `json:"type"`
	}
	if len(t.Action) > 0 {
		if err := json.Unmarshal(t.Action, &head); err != nil {
			return model.Transaction{}, fmt.Errorf("decode action of %s: %w", t.Hash, err)
		}
	}

	txType := model.ParseTxType(head.Type)
	var (
		payload model.Payload
		err     error
	)
	if txType == model.TxUnknown {
		payload = model.RawPayload{Tag: head.Type, Body: t.Action}
	} else if payload, err = model.DecodePayload(txType, t.Action); err != nil {
		return model.Transaction{}, fmt.Errorf("decode action of %s: %w", t.Hash, err)
	}

	return model.Transaction{
		Hash:      t.Hash,
		Sender:    t.Signer,
		Receiver:  model.PrimaryReceiver(payload),
		Seq:       t.Seq,
		Fee:       t.Fee,
		NetworkID: t.NetworkID,
		Type:      txType,
		Payload:   payload,
	}, nil
}
