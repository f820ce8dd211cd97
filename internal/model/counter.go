package model

import "strings"

// CounterCategory names a daily activity counter.
type CounterCategory string

const (
	BlockCount            CounterCategory = "BLOCK_COUNT"
	ParcelCount           CounterCategory = "PARCEL_COUNT"
	TxCount               CounterCategory = "TX_COUNT"
	AssetTransactionCount CounterCategory = "TX_ASSET_TRANSACTION_COUNT"
	BlockMiningCount      CounterCategory = "BLOCK_MINING_COUNT"
	txTypeCategoryPrefix                  = "TX_"
	txTypeCategorySuffix                  = "_COUNT"
)

// TxTypeCategory returns the per-type counter category, e.g. TX_MINT_ASSET_COUNT.
func TxTypeCategory(t TxType) CounterCategory {
	return CounterCategory(txTypeCategoryPrefix + screamingSnake(string(t)) + txTypeCategorySuffix)
}

// CounterKey identifies one LogCounter row.
type CounterKey struct {
	Date     string
	Category CounterCategory
	// Subject is set only for per-address categories such as BLOCK_MINING_COUNT.
	Subject string
}

func (k CounterKey) String() string {
	if k.Subject == "" {
		return k.Date + "/" + string(k.Category)
	}
	return k.Date + "/" + string(k.Category) + "/" + k.Subject
}

// Counter is a stored LogCounter value.
type Counter struct {
	Key   CounterKey
	Total int64
}

func screamingSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}
