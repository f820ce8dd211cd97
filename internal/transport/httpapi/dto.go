package httpapi

import (
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/pagination"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/service/explorer"
)

type blockDTO struct {
	Hash             string `json:"hash"`
	Number           uint64 `json:"number"`
	ParentHash       string `json:"parentHash"`
	Author           string `json:"author"`
	Timestamp        int64  `json:"timestamp"`
	TransactionsRoot string `json:"transactionsRoot"`
	StateRoot        string `json:"stateRoot"`
	Score            string `json:"score"`
	TransactionCount int    `json:"transactionCount"`
	Canonical        bool   `json:"canonical"`
}

type transactionDTO struct {
	Hash        string        `json:"hash"`
	BlockHash   string        `json:"blockHash,omitempty"`
	BlockNumber *uint64       `json:"blockNumber"`
	Index       int           `json:"transactionIndex"`
	Sender      string        `json:"sender"`
	Receiver    string        `json:"receiver,omitempty"`
	Seq         uint64        `json:"seq"`
	Fee         string        `json:"fee"`
	NetworkID   string        `json:"networkId"`
	Timestamp   int64         `json:"timestamp"`
	Canonical   bool          `json:"canonical"`
	Type        model.TxType  `json:"type"`
	Payload     model.Payload `json:"payload"`
	ObservedAt  int64         `json:"observedAt,omitempty"`
}

type pageDTO[T any] struct {
	Data              []T    `json:"data"`
	FirstEvaluatedKey string `json:"firstEvaluatedKey,omitempty"`
	LastEvaluatedKey  string `json:"lastEvaluatedKey,omitempty"`
	HasNextPage       bool   `json:"hasNextPage"`
	HasPreviousPage   bool   `json:"hasPreviousPage"`
}

type statusDTO struct {
	Indexed       bool    `json:"indexed"`
	IndexHead     uint64  `json:"indexHead"`
	IndexHeadHash string  `json:"indexHeadHash,omitempty"`
	ChainHead     *uint64 `json:"chainHead"`
	Lag           uint64  `json:"lag"`
	PendingCount  int64   `json:"pendingCount"`
	Healthy       bool    `json:"healthy"`
}

func newBlockDTO(b model.Block) blockDTO {
	return blockDTO{
		Hash:             b.Hash,
		Number:           b.Number,
		ParentHash:       b.ParentHash,
		Author:           b.Author,
		Timestamp:        b.Timestamp.Unix(),
		TransactionsRoot: b.TransactionsRoot,
		StateRoot:        b.StateRoot,
		Score:            b.Score,
		TransactionCount: b.TransactionCount,
		Canonical:        b.Canonical,
	}
}

func newTransactionDTO(tx model.Transaction) transactionDTO {
	return transactionDTO{
		Hash:        tx.Hash,
		BlockHash:   tx.BlockHash,
		BlockNumber: tx.BlockNumber,
		Index:       tx.Index,
		Sender:      tx.Sender,
		Receiver:    tx.Receiver,
		Seq:         tx.Seq,
		Fee:         tx.Fee,
		NetworkID:   tx.NetworkID,
		Timestamp:   tx.Timestamp.Unix(),
		Canonical:   tx.Canonical,
		Type:        tx.Type,
		Payload:     tx.Payload,
	}
}

func newPendingDTO(tx model.PendingTransaction) transactionDTO {
	dto := newTransactionDTO(tx.Transaction)
	dto.ObservedAt = tx.ObservedAt.Unix()
	return dto
}

func newStatusDTO(s explorer.Status, maxLag uint64) statusDTO {
	return statusDTO{
		Indexed:       s.Indexed,
		IndexHead:     s.IndexHead,
		IndexHeadHash: s.IndexHeadHash,
		ChainHead:     s.ChainHead,
		Lag:           s.Lag,
		PendingCount:  s.PendingCount,
		Healthy:       s.Healthy(maxLag),
	}
}

func newPageDTO[T, R any](p pagination.Page[T], conv func(T) R) pageDTO[R] {
	out := pageDTO[R]{
		Data:              make([]R, 0, len(p.Items)),
		FirstEvaluatedKey: p.FirstEvaluatedKey,
		LastEvaluatedKey:  p.LastEvaluatedKey,
		HasNextPage:       p.HasNextPage,
		HasPreviousPage:   p.HasPreviousPage,
	}
	for _, item := range p.Items {
		out.Data = append(out.Data, conv(item))
	}
	return out
}
