// Package pagination implements keyset pagination with opaque cursors.
//
// A page boundary is always the literal tuple of ordering-column values of a row, so pages
// stay stable while rows are inserted concurrently: a cursor never refers to a row offset.
package pagination

// Ordering is a total order over a result set. All columns share one direction; the last
// column must be a unique tiebreak within the filtered set.
type Ordering struct {
	// Name tags cursors so a cursor issued for one listing is rejected by another.
	Name    string
	Columns []string
	Desc    bool
}

var (
	// BlockOrdering lists canonical blocks newest first.
	BlockOrdering = Ordering{Name: "block", Columns: []string{"number"}, Desc: true}
	// TransactionOrdering lists transactions newest first, by position inside the block.
	TransactionOrdering = Ordering{Name: "tx", Columns: []string{"block_number", "tx_index"}, Desc: true}
	// PendingOrdering lists pending transactions by observation sequence, newest first.
	PendingOrdering = Ordering{Name: "pending", Columns: []string{"seq"}, Desc: true}
)

// Key is the tuple of ordering-column values of one row.
type Key []int64

// Compare orders two keys of equal length lexicographically, ascending.
func (k Key) Compare(other Key) int {
	for i := range k {
		switch {
		case k[i] < other[i]:
			return -1
		case k[i] > other[i]:
			return 1
		}
	}
	return 0
}

// Scan describes one bounded read against an ordering.
type Scan struct {
	// After is the exclusive boundary; nil starts from the beginning of the ordering.
	After Key
	// Reverse walks the ordering backwards: rows before After, nearest first.
	Reverse bool
	Limit   int
}

// Descending reports the SQL direction the scan must use.
func (s Scan) Descending(o Ordering) bool {
	return o.Desc != s.Reverse
}
