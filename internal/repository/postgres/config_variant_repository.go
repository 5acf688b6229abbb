package postgres

import (
	"context"
	"errors"

	"aiImageStudio/business/recommend"
	"aiImageStudio/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConfigVariantRepository struct {
	DB *gorm.DB
}

var _ recommend.VariantRepository = (*ConfigVariantRepository)(nil)

func NewConfigVariantRepository(db *gorm.DB) *ConfigVariantRepository {
	return &ConfigVariantRepository{DB: db}
}

func (r *ConfigVariantRepository) GetVariant(ctx context.Context, userID uint) (int, bool, error) {
	var row domain.UserConfigVariant
	err := r.DB.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return row.Variant, true, nil
}

func (r *ConfigVariantRepository) UpsertVariant(ctx context.Context, userID uint, variant int) error {
	row := domain.UserConfigVariant{
		UserID:  userID,
		Variant: variant,
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"variant", "updated_at"}),
		}).
		Create(&row).Error
}

// DeleteVariant removes a pin so the user falls back to the hashed variant.
func (r *ConfigVariantRepository) DeleteVariant(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).
		Delete(&domain.UserConfigVariant{}, "user_id = ?", userID).Error
}
