package sqldb

import (
	"context"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddCounter adds delta to a counter row, creating it on first use, and returns the new total.
func (r *Repository) AddCounter(ctx context.Context, key model.CounterKey, delta int64) (_ int64, err error) {
	defer r.observe("add_counter", time.Now(), &err)

	db := r.db.WithContext(ctx)
	row := counterRow{Day: key.Date, Category: string(key.Category), Subject: key.Subject, Total: delta}
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "day"}, {Name: "category"}, {Name: "subject"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total": gorm.Expr("log_counters.total + ?", delta),
		}),
	}).Create(&row).Error
	if err != nil {
		return 0, storageErr("upsert counter", err)
	}

	var stored counterRow
	if err = counterByKey(db, key).Take(&stored).Error; err != nil {
		return 0, storageErr("read counter", err)
	}
	return stored.Total, nil
}

// Counter returns a counter total, zero for a row that was never created.
func (r *Repository) Counter(ctx context.Context, key model.CounterKey) (_ int64, err error) {
	defer r.observe("counter", time.Now(), &err)

	var row counterRow
	err = counterByKey(r.db.WithContext(ctx), key).Take(&row).Error
	if notFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, storageErr("read counter", err)
	}
	return row.Total, nil
}

func counterByKey(db *gorm.DB, key model.CounterKey) *gorm.DB {
	return db.Where("day = ? AND category = ? AND subject = ?", key.Date, string(key.Category), key.Subject)
}
