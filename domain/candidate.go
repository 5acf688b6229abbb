package domain

import "time"

type SpeedTier string

const (
	SpeedUltraFast SpeedTier = "ultra_fast"
	SpeedFast      SpeedTier = "fast"
	SpeedStandard  SpeedTier = "standard"
	SpeedDetailed  SpeedTier = "detailed"
)

// CREATE TABLE public.candidates (
//     id                BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     name              TEXT NOT NULL,
//     category          TEXT NOT NULL,
//     provider          TEXT NOT NULL,
//     quality_rating    NUMERIC,
//     popularity        NUMERIC,
//     satisfaction      NUMERIC,
//     performance_index NUMERIC,
//     featured          BOOLEAN DEFAULT FALSE,
//     features          JSONB,
//     speed_tier        TEXT,
//     created_at        TIMESTAMPTZ DEFAULT NOW()
// );

// Candidate is an image model that can be recommended.
type Candidate struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string    `gorm:"column:name;type:text" json:"name"`
	Category         string    `gorm:"column:category;type:text;index" json:"category"`
	Provider         string    `gorm:"column:provider;type:text;index" json:"provider"`
	QualityRating    float64   `gorm:"column:quality_rating;type:numeric" json:"quality_rating"`
	Popularity       float64   `gorm:"column:popularity;type:numeric" json:"popularity"`
	Satisfaction     float64   `gorm:"column:satisfaction;type:numeric" json:"satisfaction"`
	PerformanceIndex float64   `gorm:"column:performance_index;type:numeric" json:"performance_index"`
	Featured         bool      `gorm:"column:featured;default:false" json:"featured"`
	Features         []string  `gorm:"column:features;serializer:json" json:"features"`
	SpeedTier        SpeedTier `gorm:"column:speed_tier;type:text" json:"speed_tier"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// CandidateFilter narrows what LoadCandidates returns. Zero values mean "no constraint".
type CandidateFilter struct {
	IDs        []uint64
	ExcludeIDs []uint64
	Limit      int
}
