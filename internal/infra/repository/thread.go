package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/domain"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/infra/database/models"
)

type ThreadRepository struct {
	db *gorm.DB
}

func NewThreadRepository(db *gorm.DB) *ThreadRepository {
	return &ThreadRepository{db: db}
}

func (r *ThreadRepository) ThreadFor(ctx context.Context, recipientID, senderID int64, now time.Time) (domain.Thread, error) {
	var row models.Thread
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("recipient_id = ? AND sender_id = ?", recipientID, senderID).
			Take(&row).Error
		if err == nil {
			at := now.UTC()
			row.ActiveAt = &at
			return tx.Model(&models.Thread{}).
				Where("id = ?", row.ID).
				Update("updated_at", at).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		at := now.UTC()
		row = models.Thread{
			RecipientID: recipientID,
			SenderID:    senderID,
			CreatedAt:   at,
			ActiveAt:    &at,
		}
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipient_id"}, {Name: "sender_id"}},
			DoNothing: true,
		}).Create(&row)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			row = models.Thread{}
			return tx.Where("recipient_id = ? AND sender_id = ?", recipientID, senderID).Take(&row).Error
		}
		return nil
	})
	if err != nil {
		return domain.Thread{}, storeError("thread.ThreadFor", "thread", err)
	}
	return threadFromModel(row), nil
}

func (r *ThreadRepository) Get(ctx context.Context, threadID int64) (domain.Thread, error) {
	var row models.Thread
	if err := r.db.WithContext(ctx).Where("id = ?", threadID).Take(&row).Error; err != nil {
		return domain.Thread{}, storeError("thread.Get", "thread", err)
	}
	return threadFromModel(row), nil
}

func (r *ThreadRepository) Recent(ctx context.Context, recipientID int64, limit int) ([]domain.Thread, error) {
	var rows []models.Thread
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("COALESCE(updated_at, created_at) DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, storeError("thread.Recent", "thread", err)
	}

	threads := make([]domain.Thread, 0, len(rows))
	for _, row := range rows {
		threads = append(threads, threadFromModel(row))
	}
	return threads, nil
}

func (r *ThreadRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Thread{}).Count(&count).Error; err != nil {
		return 0, storeError("thread.Count", "thread", err)
	}
	return count, nil
}

func threadFromModel(row models.Thread) domain.Thread {
	return domain.Thread{
		ID:          row.ID,
		RecipientID: row.RecipientID,
		SenderID:    row.SenderID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.ActiveAt,
	}
}
