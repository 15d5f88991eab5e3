package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/infra/database/models"
)

type BlockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

func (r *BlockRepository) IsBlocked(ctx context.Context, recipientID, senderID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Block{}).
		Where("recipient_id = ? AND sender_id = ?", recipientID, senderID).
		Count(&count).Error
	if err != nil {
		return false, storeError("block.IsBlocked", "block", err)
	}
	return count > 0, nil
}

func (r *BlockRepository) Block(ctx context.Context, recipientID, senderID int64, at time.Time) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		DoNothing: true,
	}).Create(&models.Block{
		RecipientID: recipientID,
		SenderID:    senderID,
		CreatedAt:   at.UTC(),
	}).Error
	return storeError("block.Block", "block", err)
}

type BanRepository struct {
	db *gorm.DB
}

func NewBanRepository(db *gorm.DB) *BanRepository {
	return &BanRepository{db: db}
}

func (r *BanRepository) IsBanned(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GlobalBan{}).
		Where("user_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, storeError("ban.IsBanned", "ban", err)
	}
	return count > 0, nil
}

func (r *BanRepository) Ban(ctx context.Context, id int64, at time.Time) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		DoNothing: true,
	}).Create(&models.GlobalBan{
		UserID:    id,
		CreatedAt: at.UTC(),
	}).Error
	return storeError("ban.Ban", "ban", err)
}

func (r *BanRepository) Unban(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Where("user_id = ?", id).Delete(&models.GlobalBan{}).Error
	return storeError("ban.Unban", "ban", err)
}

func (r *BanRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.GlobalBan{}).Count(&count).Error; err != nil {
		return 0, storeError("ban.Count", "ban", err)
	}
	return count, nil
}
