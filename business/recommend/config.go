package recommend

import (
	"context"
	"errors"
	"fmt"

	"aiImageStudio/domain"
)

// DefaultConfigName is the row name holding the live override in recommend_configs.
const DefaultConfigName = "default"

// BaseVariant is the control arm; its row is merged over DefaultConfig and
// every other variant row is merged over the result.
const BaseVariant = 0

// Config holds every tunable constant of the engine. Overrides stored in the
// ConfigRepository are merged over DefaultConfig per request.
type Config struct {
	Scoring    ScoringConfig    `json:"scoring"`
	Confidence ConfidenceConfig `json:"confidence"`
	Diversity  DiversityConfig  `json:"diversity"`
	Profile    ProfileDefaults  `json:"profile"`
	Feedback   FeedbackConfig   `json:"feedback"`

	DefaultMaxResults int `json:"default_max_results"`
	MaxResultsLimit   int `json:"max_results_limit"`
	CandidatePoolSize int `json:"candidate_pool_size"`

	// users are split across [0, NumVariants) by a stable hash; 1 disables experiments
	NumVariants int `json:"num_variants"`
}

type ScoringConfig struct {
	// candidate-only appeal = pop*w + quality*w + satisfaction*w + performance*w
	AppealPopularityWeight   float64 `json:"appeal_popularity_weight"`
	AppealQualityWeight      float64 `json:"appeal_quality_weight"`
	AppealSatisfactionWeight float64 `json:"appeal_satisfaction_weight"`
	AppealPerformanceWeight  float64 `json:"appeal_performance_weight"`
	BaseAppealWeight         float64 `json:"base_appeal_weight"`
	HighAppealThreshold      float64 `json:"high_appeal_threshold"`

	CompatibilityWeight     float64                                                 `json:"compatibility_weight"`
	PreferredCategoryPoints float64                                                 `json:"preferred_category_points"`
	PreferredProviderPoints float64                                                 `json:"preferred_provider_points"`
	QualityMatchPoints      float64                                                 `json:"quality_match_points"`
	SpeedCompatibility      map[domain.SpeedPreference]map[domain.SpeedTier]float64 `json:"speed_compatibility"`

	ExpertiseBonus      float64 `json:"expertise_bonus"`
	SimpleMaxFeatures   int     `json:"simple_max_features"`
	AdvancedMinFeatures int     `json:"advanced_min_features"`

	ExplorationQualityFloor    float64 `json:"exploration_quality_floor"`
	NovelCategoryPoints        float64 `json:"novel_category_points"`
	NovelProviderPoints        float64 `json:"novel_provider_points"`
	FeaturedExplorationPoints  float64 `json:"featured_exploration_points"`
	FeaturedExplorationQuality float64 `json:"featured_exploration_quality"`

	TrendingFeaturedPopularity    float64 `json:"trending_featured_popularity"`
	TrendingFeaturedPopularPoints float64 `json:"trending_featured_popular_points"`
	TrendingPopularity            float64 `json:"trending_popularity"`
	TrendingPopularPoints         float64 `json:"trending_popular_points"`
	TrendingFeaturedPoints        float64 `json:"trending_featured_points"`

	QualityUpgradeMargin float64 `json:"quality_upgrade_margin"`
	QualityUpgradePoints float64 `json:"quality_upgrade_points"`

	// work hours are [WorkHourStart, WorkHourEnd) in the request's clock
	WorkHourStart    int     `json:"work_hour_start"`
	WorkHourEnd      int     `json:"work_hour_end"`
	TimeOfDayPoints  float64 `json:"time_of_day_points"`
	MobilePoints     float64 `json:"mobile_points"`
	ContinuityPoints float64 `json:"continuity_points"`

	PerfectMatchCompatibility    float64 `json:"perfect_match_compatibility"`
	TrendingCategoryThreshold    float64 `json:"trending_category_threshold"`
	ExplorationCategoryThreshold float64 `json:"exploration_category_threshold"`

	MinRelevance float64 `json:"min_relevance"`
	MaxReasons   int     `json:"max_reasons"`
}

type ConfidenceConfig struct {
	Base               float64 `json:"base"`
	HighInteractions   int     `json:"high_interactions"`
	HighBoost          float64 `json:"high_boost"`
	MediumInteractions int     `json:"medium_interactions"`
	MediumBoost        float64 `json:"medium_boost"`
	LowInteractions    int     `json:"low_interactions"`
	LowBoost           float64 `json:"low_boost"`
	PerReason          float64 `json:"per_reason"`
	MaxReasonBoost     float64 `json:"max_reason_boost"`
	PopularityAbove    float64 `json:"popularity_above"`
	PopularityBoost    float64 `json:"popularity_boost"`
}

type DiversityConfig struct {
	AlwaysKeepTop  int     `json:"always_keep_top"`
	MaxPerCategory int     `json:"max_per_category"`
	MaxPerProvider int     `json:"max_per_provider"`
	OverrideScore  float64 `json:"override_score"`

	// StrictCaps requires both the category and the provider cap to have room.
	// When false a candidate is admitted if either one has room.
	StrictCaps bool `json:"strict_caps"`
}

type ProfileDefaults struct {
	QualityThreshold float64                `json:"quality_threshold"`
	ExplorationScore float64                `json:"exploration_score"`
	Expertise        domain.ExpertiseLevel  `json:"expertise"`
	SpeedPreference  domain.SpeedPreference `json:"speed_preference"`

	// exploration score < ConservativeBelow is conservative, >= AdventurousFrom adventurous
	ConservativeBelow float64 `json:"conservative_below"`
	AdventurousFrom   float64 `json:"adventurous_from"`
}

type FeedbackConfig struct {
	InteractionBoosts map[domain.InteractionType]float64 `json:"interaction_boosts"`
	EngagementPivot   float64                            `json:"engagement_pivot"`
	ExplorationNudge  float64                            `json:"exploration_nudge"`
}

const (
	defaultBaseAppealWeight    = 0.3
	defaultCompatibilityWeight = 0.4
	defaultMinRelevance        = 30.0
	defaultMaxReasons          = 3

	defaultAlwaysKeepTop  = 5
	defaultMaxPerCategory = 4
	defaultMaxPerProvider = 3
	defaultOverrideScore  = 85.0

	defaultQualityThreshold = 70.0
	defaultExplorationScore = 60.0

	defaultMaxResults        = 10
	defaultMaxResultsLimit   = 50
	defaultCandidatePoolSize = 500
	defaultNumVariants       = 1
)

func DefaultConfig() Config {
	return Config{
		Scoring: ScoringConfig{
			AppealPopularityWeight:   0.3,
			AppealQualityWeight:      0.4,
			AppealSatisfactionWeight: 0.2,
			AppealPerformanceWeight:  0.1,
			BaseAppealWeight:         defaultBaseAppealWeight,
			HighAppealThreshold:      75,

			CompatibilityWeight:     defaultCompatibilityWeight,
			PreferredCategoryPoints: 30,
			PreferredProviderPoints: 20,
			QualityMatchPoints:      25,
			SpeedCompatibility:      defaultSpeedCompatibility(),

			ExpertiseBonus:      5,
			SimpleMaxFeatures:   2,
			AdvancedMinFeatures: 6,

			ExplorationQualityFloor:    70,
			NovelCategoryPoints:        15,
			NovelProviderPoints:        10,
			FeaturedExplorationPoints:  10,
			FeaturedExplorationQuality: 80,

			TrendingFeaturedPopularity:    85,
			TrendingFeaturedPopularPoints: 25,
			TrendingPopularity:            75,
			TrendingPopularPoints:         15,
			TrendingFeaturedPoints:        10,

			QualityUpgradeMargin: 15,
			QualityUpgradePoints: 10,

			WorkHourStart:    9,
			WorkHourEnd:      18,
			TimeOfDayPoints:  5,
			MobilePoints:     5,
			ContinuityPoints: 10,

			PerfectMatchCompatibility:    80,
			TrendingCategoryThreshold:    20,
			ExplorationCategoryThreshold: 15,

			MinRelevance: defaultMinRelevance,
			MaxReasons:   defaultMaxReasons,
		},
		Confidence: ConfidenceConfig{
			Base:               0.5,
			HighInteractions:   50,
			HighBoost:          0.3,
			MediumInteractions: 20,
			MediumBoost:        0.2,
			LowInteractions:    5,
			LowBoost:           0.1,
			PerReason:          0.05,
			MaxReasonBoost:     0.2,
			PopularityAbove:    80,
			PopularityBoost:    0.1,
		},
		Diversity: DiversityConfig{
			AlwaysKeepTop:  defaultAlwaysKeepTop,
			MaxPerCategory: defaultMaxPerCategory,
			MaxPerProvider: defaultMaxPerProvider,
			OverrideScore:  defaultOverrideScore,
			StrictCaps:     true,
		},
		Profile: ProfileDefaults{
			QualityThreshold:  defaultQualityThreshold,
			ExplorationScore:  defaultExplorationScore,
			Expertise:         domain.ExpertiseIntermediate,
			SpeedPreference:   domain.SpeedPreferenceBalanced,
			ConservativeBelow: 40,
			AdventurousFrom:   70,
		},
		Feedback: FeedbackConfig{
			InteractionBoosts: map[domain.InteractionType]float64{
				domain.InteractionView:     1,
				domain.InteractionLike:     3,
				domain.InteractionBookmark: 4,
				domain.InteractionGenerate: 5,
				domain.InteractionShare:    4,
				domain.InteractionDownload: 4,
			},
			EngagementPivot:  5,
			ExplorationNudge: 2,
		},
		DefaultMaxResults: defaultMaxResults,
		MaxResultsLimit:   defaultMaxResultsLimit,
		CandidatePoolSize: defaultCandidatePoolSize,
		NumVariants:       defaultNumVariants,
	}
}

func defaultSpeedCompatibility() map[domain.SpeedPreference]map[domain.SpeedTier]float64 {
	return map[domain.SpeedPreference]map[domain.SpeedTier]float64{
		domain.SpeedPreferenceFast: {
			domain.SpeedUltraFast: 25,
			domain.SpeedFast:      20,
			domain.SpeedStandard:  10,
			domain.SpeedDetailed:  0,
		},
		domain.SpeedPreferenceBalanced: {
			domain.SpeedUltraFast: 10,
			domain.SpeedFast:      20,
			domain.SpeedStandard:  25,
			domain.SpeedDetailed:  15,
		},
		domain.SpeedPreferenceQuality: {
			domain.SpeedUltraFast: 0,
			domain.SpeedFast:      10,
			domain.SpeedStandard:  20,
			domain.SpeedDetailed:  25,
		},
	}
}

// clone deep-copies the maps so a merged override never writes into the defaults.
func (c Config) clone() Config {
	out := c

	out.Scoring.SpeedCompatibility = make(map[domain.SpeedPreference]map[domain.SpeedTier]float64, len(c.Scoring.SpeedCompatibility))
	for pref, row := range c.Scoring.SpeedCompatibility {
		cp := make(map[domain.SpeedTier]float64, len(row))
		for tier, v := range row {
			cp[tier] = v
		}
		out.Scoring.SpeedCompatibility[pref] = cp
	}

	out.Feedback.InteractionBoosts = make(map[domain.InteractionType]float64, len(c.Feedback.InteractionBoosts))
	for k, v := range c.Feedback.InteractionBoosts {
		out.Feedback.InteractionBoosts[k] = v
	}

	return out
}

func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	s := c.Scoring
	check(s.BaseAppealWeight >= 0 && s.CompatibilityWeight >= 0, "scoring weights must be non-negative")
	check(inRange(s.MinRelevance, 0, 100), "min_relevance must be within [0,100], got %v", s.MinRelevance)
	check(s.MaxReasons > 0, "max_reasons must be positive")
	check(s.WorkHourStart >= 0 && s.WorkHourEnd <= 24 && s.WorkHourStart < s.WorkHourEnd,
		"work hours must satisfy 0 <= start < end <= 24")
	check(s.SimpleMaxFeatures < s.AdvancedMinFeatures, "simple_max_features must be below advanced_min_features")

	d := c.Diversity
	check(d.AlwaysKeepTop >= 0, "always_keep_top must be non-negative")
	check(d.MaxPerCategory > 0 && d.MaxPerProvider > 0, "diversity caps must be positive")

	p := c.Profile
	check(inRange(p.QualityThreshold, 0, 100), "profile quality_threshold must be within [0,100]")
	check(inRange(p.ExplorationScore, 0, 100), "profile exploration_score must be within [0,100]")
	check(p.ConservativeBelow <= p.AdventurousFrom, "conservative_below must not exceed adventurous_from")
	check(validExpertise(p.Expertise), "unknown expertise %q", p.Expertise)
	check(validSpeedPreference(p.SpeedPreference), "unknown speed preference %q", p.SpeedPreference)

	check(c.Feedback.EngagementPivot > 0, "engagement_pivot must be positive")

	check(c.DefaultMaxResults > 0 && c.DefaultMaxResults <= c.MaxResultsLimit,
		"default_max_results must be within (0, max_results_limit]")
	check(c.CandidatePoolSize > 0, "candidate_pool_size must be positive")
	check(c.NumVariants > 0, "num_variants must be positive")

	return errors.Join(errs...)
}

// ConfigRepository reads and writes the stored overrides, one row per
// (name, variant).
type ConfigRepository interface {
	GetConfig(ctx context.Context, name string, variant int) (domain.RecommendConfig, bool, error)
	UpsertConfig(ctx context.Context, cfg domain.RecommendConfig) error
}

// VariantRepository holds per-user variant pins that take precedence over
// the hashed assignment.
type VariantRepository interface {
	GetVariant(ctx context.Context, userID uint) (int, bool, error)
	UpsertVariant(ctx context.Context, userID uint, variant int) error
}
