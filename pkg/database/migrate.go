package database

import (
	"fmt"

	"aiImageStudio/domain"

	"gorm.io/gorm"
)

// Migrate creates or updates the tables the recommendation engine owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Candidate{},
		&domain.UserProfile{},
		&domain.InteractionEvent{},
		&domain.RecommendConfig{},
		&domain.UserConfigVariant{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
