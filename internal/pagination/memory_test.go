package pagination

import (
	"context"
	"sort"
	"sync"
)

type row struct {
	Block int64
	Index int64
}

func (r row) key() Key { return Key{r.Block, r.Index} }

// memoryTable is a sorted in-memory table honoring Scan semantics for TransactionOrdering.
type memoryTable struct {
	mu   sync.Mutex
	rows []row
}

func (m *memoryTable) insert(rs ...row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, rs...)
	sort.Slice(m.rows, func(i, j int) bool { return m.rows[i].key().Compare(m.rows[j].key()) > 0 })
}

func (m *memoryTable) scan(_ context.Context, s Scan) ([]row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ordered := append([]row(nil), m.rows...)
	if s.Reverse {
		reverse(ordered)
	}
	desc := s.Descending(TransactionOrdering)
	out := make([]row, 0, s.Limit)
	for _, r := range ordered {
		if s.After != nil {
			cmp := r.key().Compare(s.After)
			if (desc && cmp >= 0) || (!desc && cmp <= 0) {
				continue
			}
		}
		out = append(out, r)
		if len(out) == s.Limit {
			break
		}
	}
	return out, nil
}
