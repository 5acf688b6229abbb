package domain

import (
	"time"

	"gorm.io/datatypes"
)

// RecommendConfig stores a partial JSON override of the scoring configuration
// for one experiment variant. Variant 0 is the control arm.
type RecommendConfig struct {
	Name      string         `gorm:"column:name;primaryKey" json:"name"`
	Variant   int            `gorm:"column:variant;primaryKey;autoIncrement:false" json:"variant"`
	Settings  datatypes.JSON `gorm:"column:settings;type:jsonb" json:"settings"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (RecommendConfig) TableName() string {
	return "recommend_configs"
}

// UserConfigVariant pins a user to one config variant, overriding the hash.
type UserConfigVariant struct {
	UserID    uint      `gorm:"column:user_id;primaryKey" json:"user_id"`
	Variant   int       `gorm:"column:variant;not null" json:"variant"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (UserConfigVariant) TableName() string {
	return "user_config_variants"
}
