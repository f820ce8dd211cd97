package sqldb

import (
	"context"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
)

// CanonicalHead returns the highest canonical block, nil on an empty index.
func (r *Repository) CanonicalHead(ctx context.Context) (_ *model.Block, err error) {
	defer r.observe("canonical_head", time.Now(), &err)

	var row blockRow
	err = r.db.WithContext(ctx).
		Where("canonical = ?", true).
		Order("number DESC").
		Take(&row).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("query canonical head", err)
	}

	b := row.model()
	return &b, nil
}
