package domain

import "time"

type SpeedPreference string

const (
	SpeedPreferenceFast     SpeedPreference = "fast"
	SpeedPreferenceBalanced SpeedPreference = "balanced"
	SpeedPreferenceQuality  SpeedPreference = "quality"
)

type ExpertiseLevel string

const (
	ExpertiseNovice       ExpertiseLevel = "novice"
	ExpertiseIntermediate ExpertiseLevel = "intermediate"
	ExpertiseExpert       ExpertiseLevel = "expert"
	ExpertisePowerUser    ExpertiseLevel = "power_user"
)

type ExplorationWillingness string

const (
	ExplorationConservative ExplorationWillingness = "conservative"
	ExplorationModerate     ExplorationWillingness = "moderate"
	ExplorationAdventurous  ExplorationWillingness = "adventurous"
)

// UserProfile is the behavioral model of one user. Only the feedback
// recorder writes it.
type UserProfile struct {
	UserID uint `gorm:"column:user_id;primaryKey" json:"user_id"`

	PreferredCategories []string        `gorm:"column:preferred_categories;serializer:json" json:"preferred_categories"`
	PreferredProviders  []string        `gorm:"column:preferred_providers;serializer:json" json:"preferred_providers"`
	QualityThreshold    float64         `gorm:"column:quality_threshold;type:numeric" json:"quality_threshold"`
	SpeedPreference     SpeedPreference `gorm:"column:speed_preference;type:text" json:"speed_preference"`
	ExpertiseLevel      ExpertiseLevel  `gorm:"column:expertise_level;type:text" json:"expertise_level"`

	ExplorationScore       float64                `gorm:"column:exploration_score;type:numeric" json:"exploration_score"`
	ExplorationWillingness ExplorationWillingness `gorm:"column:exploration_willingness;type:text" json:"exploration_willingness"`

	CategoryAffinity map[string]float64 `gorm:"column:category_affinity;serializer:json" json:"category_affinity"`
	ProviderAffinity map[string]float64 `gorm:"column:provider_affinity;serializer:json" json:"provider_affinity"`

	TotalInteractions int     `gorm:"column:total_interactions;default:0" json:"total_interactions"`
	AvgSessionSeconds float64 `gorm:"column:avg_session_seconds;type:numeric" json:"avg_session_seconds"`
	SessionSamples    int     `gorm:"column:session_samples;default:0" json:"session_samples"`
	HourlyActivity    [24]int `gorm:"column:hourly_activity;serializer:json" json:"hourly_activity"`
	MostActiveHour    int     `gorm:"column:most_active_hour;default:0" json:"most_active_hour"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// Clone returns a deep copy so callers can treat the original as a read-only snapshot.
func (p UserProfile) Clone() UserProfile {
	out := p
	out.PreferredCategories = append([]string(nil), p.PreferredCategories...)
	out.PreferredProviders = append([]string(nil), p.PreferredProviders...)
	out.CategoryAffinity = make(map[string]float64, len(p.CategoryAffinity))
	for k, v := range p.CategoryAffinity {
		out.CategoryAffinity[k] = v
	}
	out.ProviderAffinity = make(map[string]float64, len(p.ProviderAffinity))
	for k, v := range p.ProviderAffinity {
		out.ProviderAffinity[k] = v
	}
	return out
}
