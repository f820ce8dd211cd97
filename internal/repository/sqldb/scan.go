package sqldb

import (
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/pagination"
	"gorm.io/gorm"
)

func (r *Repository) observe(operation string, started time.Time, err *error) {
	r.metrics.Observe(operation, *err, started)
}

// keyset bounds q to one pagination scan.
func keyset(q *gorm.DB, o pagination.Ordering, s pagination.Scan) *gorm.DB {
	if cond, args := pagination.Condition(o, s); cond != "" {
		q = q.Where(cond, args...)
	}
	q = q.Order(pagination.OrderBy(o, s))
	if s.Limit > 0 {
		q = q.Limit(s.Limit)
	}
	return q
}

func blockFilter(q *gorm.DB, f index.BlockFilter) *gorm.DB {
	q = q.Where("canonical = ?", true)
	if f.Author != "" {
		q = q.Where("author = ?", f.Author)
	}
	return q
}

func txFilter(q *gorm.DB, f index.TxFilter) *gorm.DB {
	if !f.IncludeRetracted {
		q = q.Where("canonical = ?", true)
	}
	if f.Address != "" {
		q = q.Where("sender = ? OR receiver = ?", f.Address, f.Address)
	}
	if f.BlockHash != "" {
		q = q.Where("block_hash = ?", f.BlockHash)
	}
	if f.Type != "" {
		q = q.Where("tx_type = ?", string(f.Type))
	}
	if f.MaxBlockNumber != nil {
		q = q.Where("block_number <= ?", *f.MaxBlockNumber)
	}
	return q
}

func pendingFilter(q *gorm.DB, f index.PendingFilter) *gorm.DB {
	if f.Address != "" {
		q = q.Where("sender = ? OR receiver = ?", f.Address, f.Address)
	}
	if f.Type != "" {
		q = q.Where("tx_type = ?", string(f.Type))
	}
	return q
}
