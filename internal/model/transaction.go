package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TxType is the tag of a transaction variant.
type TxType string

const (
	TxPayment        TxType = "payment"
	TxSetRegularKey  TxType = "setRegularKey"
	TxCreateShard    TxType = "createShard"
	TxSetShardOwners TxType = "setShardOwners"
	TxSetShardUsers  TxType = "setShardUsers"
	TxMintAsset      TxType = "mintAsset"
	TxTransferAsset  TxType = "transferAsset"
	TxComposeAsset   TxType = "composeAsset"
	TxDecomposeAsset TxType = "decomposeAsset"
	TxUnknown        TxType = "unknown"
)

// KnownTxTypes lists every modeled transaction tag.
var KnownTxTypes = []TxType{
	TxPayment,
	TxSetRegularKey,
	TxCreateShard,
	TxSetShardOwners,
	TxSetShardUsers,
	TxMintAsset,
	TxTransferAsset,
	TxComposeAsset,
	TxDecomposeAsset,
}

// IsAssetTransaction reports whether the type belongs to the assetTransaction family.
func (t TxType) IsAssetTransaction() bool {
	switch t {
	case TxMintAsset, TxTransferAsset, TxComposeAsset, TxDecomposeAsset:
		return true
	default:
		return false
	}
}

// ParseTxType maps a tag to a known type, falling back to TxUnknown.
func ParseTxType(s string) TxType {
	for _, t := range KnownTxTypes {
		if string(t) == s {
			return t
		}
	}
	return TxUnknown
}

// Transaction is the shared base record of every transaction variant.
type Transaction struct {
	Hash      string
	BlockHash string
	// BlockNumber is nil while the transaction is pending.
	BlockNumber *uint64
	Index       int
	Sender      string
	Receiver    string
	Seq         uint64
	Fee         string
	NetworkID   string
	Timestamp   time.Time
	Canonical   bool
	Type        TxType
	Payload     Payload
}

// PendingTransaction is a transaction seen in the mempool but not in a canonical block.
type PendingTransaction struct {
	Transaction
	// ObservedSeq is the store's insertion sequence, used as the listing order.
	ObservedSeq int64
	ObservedAt  time.Time
}

// Payload is the type-specific part of a transaction.
type Payload interface {
	TxType() TxType
}

type PaymentPayload struct {
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
}

type SetRegularKeyPayload struct {
	Key string `json:"key"`
}

type CreateShardPayload struct{}

type SetShardOwnersPayload struct {
	ShardID uint32   `json:"shardId"`
	Owners  []string `json:"owners"`
}

type SetShardUsersPayload struct {
	ShardID uint32   `json:"shardId"`
	Users   []string `json:"users"`
}

// AssetOutput is an asset amount locked to a recipient.
type AssetOutput struct {
	AssetType string `json:"assetType"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

// AssetInput spends an asset output of a previous transaction.
type AssetInput struct {
	TxHash    string `json:"txHash"`
	Index     int    `json:"index"`
	AssetType string `json:"assetType"`
	Amount    string `json:"amount"`
}

type MintAssetPayload struct {
	ShardID  uint32      `json:"shardId"`
	Metadata string      `json:"metadata"`
	Approver string      `json:"approver,omitempty"`
	Output   AssetOutput `json:"output"`
}

type TransferAssetPayload struct {
	Inputs  []AssetInput  `json:"inputs"`
	Outputs []AssetOutput `json:"outputs"`
}

type ComposeAssetPayload struct {
	ShardID  uint32       `json:"shardId"`
	Metadata string       `json:"metadata"`
	Inputs   []AssetInput `json:"inputs"`
	Output   AssetOutput  `json:"output"`
}

type DecomposeAssetPayload struct {
	Input   AssetInput    `json:"input"`
	Outputs []AssetOutput `json:"outputs"`
}

// RawPayload keeps the payload of a type the indexer does not model.
type RawPayload struct {
	Tag  string          `json:"tag"`
	Body json.RawMessage `json:"body"`
}

func (PaymentPayload) TxType() TxType        { return TxPayment }
func (SetRegularKeyPayload) TxType() TxType  { return TxSetRegularKey }
func (CreateShardPayload) TxType() TxType    { return TxCreateShard }
func (SetShardOwnersPayload) TxType() TxType { return TxSetShardOwners }
func (SetShardUsersPayload) TxType() TxType  { return TxSetShardUsers }
func (MintAssetPayload) TxType() TxType      { return TxMintAsset }
func (TransferAssetPayload) TxType() TxType  { return TxTransferAsset }
func (ComposeAssetPayload) TxType() TxType   { return TxComposeAsset }
func (DecomposeAssetPayload) TxType() TxType { return TxDecomposeAsset }
func (RawPayload) TxType() TxType            { return TxUnknown }

// PrimaryReceiver returns the address a transaction is addressed to, if any.
func PrimaryReceiver(p Payload) string {
	switch v := p.(type) {
	case PaymentPayload:
		return v.Receiver
	case MintAssetPayload:
		return v.Output.Recipient
	case ComposeAssetPayload:
		return v.Output.Recipient
	case TransferAssetPayload:
		if len(v.Outputs) > 0 {
			return v.Outputs[0].Recipient
		}
	case DecomposeAssetPayload:
		if len(v.Outputs) > 0 {
			return v.Outputs[0].Recipient
		}
	}
	return ""
}

// EncodePayload serializes a payload for storage; the type tag must match.
func EncodePayload(t TxType, p Payload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("encode payload: nil payload for %s", t)
	}
	if p.TxType() != t {
		return nil, fmt.Errorf("encode payload: tag %s does not match payload %s", t, p.TxType())
	}
	return json.Marshal(p)
}

// DecodePayload restores the payload variant selected by the type tag.
func DecodePayload(t TxType, data []byte) (Payload, error) {
	var (
		p   Payload
		err error
	)
	switch t {
	case TxPayment:
		p, err = decodeAs[PaymentPayload](data)
	case TxSetRegularKey:
		p, err = decodeAs[SetRegularKeyPayload](data)
	case TxCreateShard:
		p, err = decodeAs[CreateShardPayload](data)
	case TxSetShardOwners:
		p, err = decodeAs[SetShardOwnersPayload](data)
	case TxSetShardUsers:
		p, err = decodeAs[SetShardUsersPayload](data)
	case TxMintAsset:
		p, err = decodeAs[MintAssetPayload](data)
	case TxTransferAsset:
		p, err = decodeAs[TransferAssetPayload](data)
	case TxComposeAsset:
		p, err = decodeAs[ComposeAssetPayload](data)
	case TxDecomposeAsset:
		p, err = decodeAs[DecomposeAssetPayload](data)
	case TxUnknown:
		p, err = decodeAs[RawPayload](data)
	default:
		return nil, fmt.Errorf("decode payload: unsupported type %q", t)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return p, nil
}

func decodeAs[T Payload](data []byte) (Payload, error) {
	var v T
	if len(data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
