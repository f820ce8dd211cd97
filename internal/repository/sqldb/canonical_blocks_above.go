package sqldb

import (
	"context"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
)

// CanonicalBlocksAbove returns canonical blocks numbered above number, highest first.
func (r *Repository) CanonicalBlocksAbove(ctx context.Context, number uint64) (_ []model.Block, err error) {
	defer r.observe("canonical_blocks_above", time.Now(), &err)

	var rows []blockRow
	err = r.db.WithContext(ctx).
		Where("canonical = ? AND number > ?", true, number).
		Order("number DESC").
		Find(&rows).Error
	if err != nil {
		return nil, storageErr("query canonical blocks above", err)
	}

	blocks := make([]model.Block, 0, len(rows))
	for _, row := range rows {
		blocks = append(blocks, row.model())
	}
	return blocks, nil
}
