package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/infra/database/models"
)

type PendingRepository struct {
	db *gorm.DB
}

func NewPendingRepository(db *gorm.DB) *PendingRepository {
	return &PendingRepository{db: db}
}

// Set replaces any previous intent of senderID.
func (r *PendingRepository) Set(ctx context.Context, senderID, targetID int64, at time.Time) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sender_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"target_id", "created_at"}),
	}).Create(&models.PendingIntent{
		SenderID:  senderID,
		TargetID:  targetID,
		CreatedAt: at.UTC(),
	}).Error
	return storeError("pending.Set", "pending intent", err)
}

func (r *PendingRepository) Get(ctx context.Context, senderID int64) (int64, bool, error) {
	var row models.PendingIntent
	err := r.db.WithContext(ctx).Where("sender_id = ?", senderID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, storeError("pending.Get", "pending intent", err)
	}
	return row.TargetID, true, nil
}

func (r *PendingRepository) Clear(ctx context.Context, senderID int64) error {
	err := r.db.WithContext(ctx).Where("sender_id = ?", senderID).Delete(&models.PendingIntent{}).Error
	return storeError("pending.Clear", "pending intent", err)
}
