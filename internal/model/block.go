// Package model defines domain models for ledger indexing.
package model

import "time"

// Block represents a ledger block persisted to the index.
type Block struct {
	Hash             string
	Number           uint64
	ParentHash       string
	Author           string
	Timestamp        time.Time
	TransactionsRoot string
	StateRoot        string
	Score            string
	TransactionCount int
	// Canonical is false once the block lost a reorganization or was rolled back.
	Canonical bool
	// CountedOn is the UTC day the block's counters were booked into.
	CountedOn string
}
