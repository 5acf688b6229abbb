package postgres

import (
	"context"
	"errors"

	"aiImageStudio/business/recommend"
	"aiImageStudio/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecommendConfigRepository struct {
	DB *gorm.DB
}

var _ recommend.ConfigRepository = (*RecommendConfigRepository)(nil)

func NewRecommendConfigRepository(db *gorm.DB) *RecommendConfigRepository {
	return &RecommendConfigRepository{DB: db}
}

func (r *RecommendConfigRepository) GetConfig(ctx context.Context, name string, variant int) (domain.RecommendConfig, bool, error) {
	var cfg domain.RecommendConfig

	err := r.DB.WithContext(ctx).
		Where("name = ? AND variant = ?", name, variant).
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.RecommendConfig{}, false, nil
	}
	if err != nil {
		return domain.RecommendConfig{}, false, err
	}

	return cfg, true, nil
}

func (r *RecommendConfigRepository) UpsertConfig(ctx context.Context, cfg domain.RecommendConfig) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "variant"}},
			DoUpdates: clause.AssignmentColumns([]string{"settings", "updated_at"}),
		}).
		Create(&cfg).Error
}
