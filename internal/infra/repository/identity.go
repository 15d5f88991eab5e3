package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/domain"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/infra/database/models"
)

type IdentityRepository struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) Get(ctx context.Context, id int64) (domain.Identity, error) {
	var row models.Identity
	err := r.db.WithContext(ctx).Where("user_id = ?", id).Take(&row).Error
	if err != nil {
		return domain.Identity{}, storeError("identity.Get", "identity", err)
	}
	return identityFromModel(row), nil
}

func (r *IdentityRepository) Create(ctx context.Context, identity domain.Identity) (domain.Identity, error) {
	row := models.Identity{
		UserID:      identity.ID,
		Code:        identity.Code,
		AnonEnabled: identity.AnonEnabled,
		BlockLinks:  identity.BlockLinks,
		CreatedAt:   identity.CreatedAt.UTC(),
	}

	var stored models.Identity
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&row).Error
		if err != nil {
			return err
		}
		// a concurrent first contact may have won the insert
		return tx.Where("user_id = ?", identity.ID).Take(&stored).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.Identity{}, domain.ErrCodeTaken
	}
	if err != nil {
		return domain.Identity{}, storeError("identity.Create", "identity", err)
	}
	return identityFromModel(stored), nil
}

func (r *IdentityRepository) ResolveByCode(ctx context.Context, code string) (int64, error) {
	var row models.Identity
	err := r.db.WithContext(ctx).Select("user_id").Where("code = ?", code).Take(&row).Error
	if err != nil {
		return 0, storeError("identity.ResolveByCode", "identity", err)
	}
	return row.UserID, nil
}

func (r *IdentityRepository) SetAnonEnabled(ctx context.Context, id int64, enabled bool) error {
	return r.update(ctx, "identity.SetAnonEnabled", id, "anon_enabled", enabled)
}

func (r *IdentityRepository) SetBlockLinks(ctx context.Context, id int64, enabled bool) error {
	return r.update(ctx, "identity.SetBlockLinks", id, "block_links", enabled)
}

func (r *IdentityRepository) update(ctx context.Context, op string, id int64, column string, value bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Identity{}).
		Where("user_id = ?", id).
		Update(column, value)
	if result.Error != nil {
		return storeError(op, "identity", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "identity"}
	}
	return nil
}

func (r *IdentityRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Identity{}).Count(&count).Error; err != nil {
		return 0, storeError("identity.Count", "identity", err)
	}
	return count, nil
}

func identityFromModel(row models.Identity) domain.Identity {
	return domain.Identity{
		ID:          row.UserID,
		Code:        row.Code,
		AnonEnabled: row.AnonEnabled,
		BlockLinks:  row.BlockLinks,
		CreatedAt:   row.CreatedAt,
	}
}
