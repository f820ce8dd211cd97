package sqldb

import (
	"context"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
)

// BlockByHash returns a block whether or not it is canonical.
func (r *Repository) BlockByHash(ctx context.Context, hash string) (_ *model.Block, err error) {
	defer r.observe("block_by_hash", time.Now(), &err)

	var row blockRow
	err = r.db.WithContext(ctx).Where("hash = ?", hash).Take(&row).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("query block by hash", err)
	}

	b := row.model()
	return &b, nil
}
