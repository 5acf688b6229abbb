package domain

import "time"

type RecommendationCategory string

const (
	CategoryPerfectMatch   RecommendationCategory = "perfect_match"
	CategoryTrending       RecommendationCategory = "trending"
	CategoryExploration    RecommendationCategory = "exploration"
	CategoryQualityUpgrade RecommendationCategory = "quality_upgrade"
)

// RecommendationContext is built fresh for every request.
type RecommendationContext struct {
	Now             time.Time
	SessionDuration *time.Duration
	Device          DeviceClass
	CurrentCategory string
	ExcludeIDs      []uint64
	MaxResults      int
}

type Reason struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

type Recommendation struct {
	Candidate  Candidate              `json:"candidate"`
	Score      float64                `json:"score"`
	Confidence float64                `json:"confidence"`
	Reasons    []Reason               `json:"reasons"`
	Category   RecommendationCategory `json:"category"`
}

type ScoreBreakdown struct {
	CandidateID   uint64                 `json:"candidate_id"`
	Appeal        float64                `json:"appeal"`        // candidate-only appeal, 0-100
	BaseAppeal    float64                `json:"base_appeal"`   // weighted appeal
	Compatibility float64                `json:"compatibility"` // 0-100 before weighting
	Preference    float64                `json:"preference"`    // weighted compatibility
	Expertise     float64                `json:"expertise"`
	Exploration   float64                `json:"exploration"`
	Trending      float64                `json:"trending"`
	Upgrade       float64                `json:"quality_upgrade"`
	Contextual    float64                `json:"contextual"`
	Score         float64                `json:"score"` // clamped sum
	Confidence    float64                `json:"confidence"`
	Category      RecommendationCategory `json:"category"`
	Reasons       []Reason               `json:"reasons"`
	Discarded     bool                   `json:"discarded"` // at or below the relevance threshold
}
