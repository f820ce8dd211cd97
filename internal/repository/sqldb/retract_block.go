package sqldb

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RetractBlock marks a block and its transactions as no longer canonical and bumps the
// retraction epoch. Rows are kept.
func (r *Repository) RetractBlock(ctx context.Context, hash string) (err error) {
	defer r.observe("retract_block", time.Now(), &err)

	db := r.db.WithContext(ctx)
	if err = db.Model(&blockRow{}).Where("hash = ?", hash).Update("canonical", false).Error; err != nil {
		return storageErr("retract block", err)
	}
	err = db.Model(&transactionRow{}).
		Where("block_hash = ? AND canonical = ?", hash, true).
		Update("canonical", false).Error
	if err != nil {
		return storageErr("retract block transactions", err)
	}
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"epoch": gorm.Expr("retraction_epochs.epoch + 1"),
		}),
	}).Create(&epochRow{ID: retractionEpochID, Epoch: 1}).Error
	if err != nil {
		return storageErr("bump retraction epoch", err)
	}
	return nil
}

// RetractionEpoch returns how many block retractions the store has committed, zero
// before the first one.
func (r *Repository) RetractionEpoch(ctx context.Context) (_ uint64, err error) {
	defer r.observe("retraction_epoch", time.Now(), &err)

	var row epochRow
	err = r.db.WithContext(ctx).Where("id = ?", retractionEpochID).Take(&row).Error
	if notFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, storageErr("read retraction epoch", err)
	}
	return row.Epoch, nil
}
