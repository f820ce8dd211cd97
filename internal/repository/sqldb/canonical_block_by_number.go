package sqldb

import (
	"context"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
)

func (r *Repository) CanonicalBlockByNumber(ctx context.Context, number uint64) (_ *model.Block, err error) {
	defer r.observe("canonical_block_by_number", time.Now(), &err)

	var row blockRow
	err = r.db.WithContext(ctx).
		Where("canonical = ? AND number = ?", true, number).
		Take(&row).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("query block by number", err)
	}

	b := row.model()
	return &b, nil
}
