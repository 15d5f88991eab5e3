package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/domain"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/infra/database/models"
)

type RateLimitRepository struct {
	db *gorm.DB
}

func NewRateLimitRepository(db *gorm.DB) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

// CheckAndConsume reads, decides, and writes the pair state inside one transaction.
func (r *RateLimitRepository) CheckAndConsume(ctx context.Context, senderID, recipientID int64, p domain.RatePolicy, now time.Time) (domain.RateDecision, error) {
	now = now.UTC()

	var decision domain.RateDecision
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		first := rateModel(domain.FirstContact(senderID, recipientID, now, p))
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sender_id"}, {Name: "recipient_id"}},
			DoNothing: true,
		}).Create(&first)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 1 {
			decision = domain.Accepted()
			return nil
		}

		var current models.RatePair
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("sender_id = ? AND recipient_id = ?", senderID, recipientID).
			Take(&current).Error
		if err != nil {
			return err
		}

		next, d := rateState(current).Consume(now, p)
		decision = d
		if !d.Accepted {
			return nil
		}

		return tx.Model(&models.RatePair{}).
			Where("sender_id = ? AND recipient_id = ?", senderID, recipientID).
			Updates(map[string]any{
				"last_sent_at": next.LastSentAt,
				"day":          next.Day,
				"day_count":    next.DayCount,
			}).Error
	})
	if err != nil {
		return domain.RateDecision{}, storeError("ratelimit.CheckAndConsume", "rate pair", err)
	}
	return decision, nil
}

func rateModel(s domain.RatePairState) models.RatePair {
	return models.RatePair{
		SenderID:    s.SenderID,
		RecipientID: s.RecipientID,
		LastSentAt:  s.LastSentAt,
		Day:         s.Day,
		DayCount:    s.DayCount,
	}
}

func rateState(m models.RatePair) domain.RatePairState {
	return domain.RatePairState{
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		LastSentAt:  m.LastSentAt,
		Day:         m.Day,
		DayCount:    m.DayCount,
	}
}
