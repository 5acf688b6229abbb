package domain

import (
	"time"

	"gorm.io/datatypes"
)

type InteractionType string

const (
	InteractionView     InteractionType = "view"
	InteractionLike     InteractionType = "like"
	InteractionBookmark InteractionType = "bookmark"
	InteractionGenerate InteractionType = "generate"
	InteractionShare    InteractionType = "share"
	InteractionDownload InteractionType = "download"
)

type DeviceClass string

const (
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
	DeviceDesktop DeviceClass = "desktop"
)

// InteractionEvent is append-only; it is never updated once recorded.
type InteractionEvent struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"column:user_id;not null;index" json:"user_id"`
	CandidateID     uint64          `gorm:"column:candidate_id;not null" json:"candidate_id"`
	InteractionType InteractionType `gorm:"column:interaction_type;not null" json:"interaction_type"`
	EngagementLevel int             `gorm:"column:engagement_level;not null" json:"engagement_level"`
	Device          DeviceClass     `gorm:"column:device" json:"device,omitempty"`
	OccurredAt      time.Time       `gorm:"column:occurred_at" json:"occurred_at"`
	Variant         int             `gorm:"column:variant;default:0" json:"variant"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// nil when the client did not report a session length
	SessionDuration *time.Duration `gorm:"-" json:"-"`

	Context datatypes.JSONMap `gorm:"column:context;type:jsonb" json:"context"`
}

func (InteractionEvent) TableName() string {
	return "interaction_events"
}
