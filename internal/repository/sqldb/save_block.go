package sqldb

import (
	"context"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"gorm.io/gorm/clause"
)

// SaveBlock inserts a block or, when the hash is known, refreshes its canonical state.
func (r *Repository) SaveBlock(ctx context.Context, block model.Block) (err error) {
	defer r.observe("save_block", time.Now(), &err)

	row := newBlockRow(block)
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hash"}},
			DoUpdates: clause.AssignmentColumns([]string{"canonical", "counted_on"}),
		}).
		Create(&row).Error
	if err != nil {
		return storageErr("save block", err)
	}
	return nil
}
