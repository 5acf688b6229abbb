package postgres

import (
	"context"
	"errors"
	"fmt"

	"aiImageStudio/business/recommend"
	"aiImageStudio/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserProfileRepository struct {
	DB *gorm.DB
}

var _ recommend.ProfileStore = (*UserProfileRepository)(nil)

func NewUserProfileRepository(db *gorm.DB) *UserProfileRepository {
	return &UserProfileRepository{DB: db}
}

func (r *UserProfileRepository) LoadUserProfile(ctx context.Context, userID uint) (domain.UserProfile, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserProfile{}, false, fmt.Errorf("context error: %w", err)
	}

	var p domain.UserProfile
	err := r.DB.WithContext(ctx).First(&p, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.UserProfile{}, false, nil
	}
	if err != nil {
		return domain.UserProfile{}, false, fmt.Errorf("failed to query user_profiles: %w", err)
	}

	return p, true, nil
}

func (r *UserProfileRepository) SaveUserProfile(ctx context.Context, profile *domain.UserProfile) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"preferred_categories",
				"preferred_providers",
				"quality_threshold",
				"speed_preference",
				"expertise_level",
				"exploration_score",
				"exploration_willingness",
				"category_affinity",
				"provider_affinity",
				"total_interactions",
				"avg_session_seconds",
				"session_samples",
				"hourly_activity",
				"most_active_hour",
				"updated_at",
			}),
		}).
		Create(profile).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user profile: %w", err)
	}

	return nil
}
