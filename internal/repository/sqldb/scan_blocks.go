package sqldb

import (
	"context"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/pagination"
)

// ScanBlocks reads one keyset window of canonical blocks.
func (r *Repository) ScanBlocks(ctx context.Context, filter index.BlockFilter, scan pagination.Scan) (_ []model.Block, err error) {
	defer r.observe("scan_blocks", time.Now(), &err)

	var rows []blockRow
	q := blockFilter(r.db.WithContext(ctx).Model(&blockRow{}), filter)
	if err = keyset(q, pagination.BlockOrdering, scan).Find(&rows).Error; err != nil {
		return nil, storageErr("scan blocks", err)
	}

	blocks := make([]model.Block, 0, len(rows))
	for _, row := range rows {
		blocks = append(blocks, row.model())
	}
	return blocks, nil
}

// CountBlocks counts canonical blocks matching filter.
func (r *Repository) CountBlocks(ctx context.Context, filter index.BlockFilter) (_ int64, err error) {
	defer r.observe("count_blocks", time.Now(), &err)

	var n int64
	if err = blockFilter(r.db.WithContext(ctx).Model(&blockRow{}), filter).Count(&n).Error; err != nil {
		return 0, storageErr("count blocks", err)
	}
	return n, nil
}
