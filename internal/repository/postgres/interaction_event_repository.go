package postgres

import (
	"context"
	"fmt"

	"aiImageStudio/business/recommend"
	"aiImageStudio/domain"

	"gorm.io/gorm"
)

type InteractionEventRepository struct {
	DB *gorm.DB
}

var _ recommend.InteractionLog = (*InteractionEventRepository)(nil)

func NewInteractionEventRepository(db *gorm.DB) *InteractionEventRepository {
	return &InteractionEventRepository{DB: db}
}

func (r *InteractionEventRepository) AppendInteractionEvent(ctx context.Context, event domain.InteractionEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	event.ID = 0
	if err := r.DB.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("failed to save interaction event: %w", err)
	}

	return nil
}
