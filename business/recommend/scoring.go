package recommend

import (
	"fmt"
	"sort"

	"aiImageStudio/domain"
)

// ScoreComponents are the weighted contributions that add up to a score.
type ScoreComponents struct {
	Appeal        float64 // candidate-only appeal before weighting
	BaseAppeal    float64
	Compatibility float64 // profile compatibility before weighting
	Preference    float64
	Expertise     float64
	Exploration   float64
	Trending      float64
	Upgrade       float64
	Contextual    float64
}

type ScoredCandidate struct {
	Candidate  domain.Candidate
	Score      float64
	Confidence float64
	Category   domain.RecommendationCategory
	Reasons    []domain.Reason // all reasons, strongest first
	Components ScoreComponents
}

const (
	ReasonHighAppeal        = "high_appeal"
	ReasonPreferredCategory = "preferred_category"
	ReasonPreferredProvider = "preferred_provider"
	ReasonQualityMatch      = "meets_quality_bar"
	ReasonSpeedMatch        = "speed_match"
	ReasonExpertiseMatch    = "expertise_match"
	ReasonExploration       = "exploration"
	ReasonTrending          = "trending"
	ReasonQualityUpgrade    = "quality_upgrade"
	ReasonTimeOfDay         = "time_of_day"
	ReasonMobileFriendly    = "mobile_friendly"
	ReasonContinuity        = "continuity"
)

// Scorer computes relevance for one (candidate, profile, context) triple.
// It performs no I/O and is safe for concurrent use.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Passes reports whether a scored candidate clears the relevance threshold.
func (s *Scorer) Passes(sc ScoredCandidate) bool {
	return sc.Score > s.cfg.Scoring.MinRelevance
}

func (s *Scorer) Score(c domain.Candidate, p domain.UserProfile, rctx domain.RecommendationContext) ScoredCandidate {
	sc := s.cfg.Scoring
	p = normalizeProfile(p, s.cfg.Profile)

	quality := clampScore(c.QualityRating)
	popularity := clampScore(c.Popularity)

	var (
		comp    ScoreComponents
		reasons reasonList
	)

	// base appeal
	comp.Appeal = clampScore(
		sc.AppealPopularityWeight*popularity +
			sc.AppealQualityWeight*quality +
			sc.AppealSatisfactionWeight*clampScore(c.Satisfaction) +
			sc.AppealPerformanceWeight*clampScore(c.PerformanceIndex),
	)
	comp.BaseAppeal = sc.BaseAppealWeight * comp.Appeal
	if comp.Appeal >= sc.HighAppealThreshold {
		reasons.add(ReasonHighAppeal, "Highly rated and popular with the community", comp.BaseAppeal)
	}

	// preference match
	var catPts, provPts, qualityPts, speedPts float64
	if containsFold(p.PreferredCategories, c.Category) {
		catPts = sc.PreferredCategoryPoints
	}
	if containsFold(p.PreferredProviders, c.Provider) {
		provPts = sc.PreferredProviderPoints
	}
	if quality >= p.QualityThreshold {
		qualityPts = sc.QualityMatchPoints
	}
	speedPts = speedCompatibility(p.SpeedPreference, c.SpeedTier, sc.SpeedCompatibility)

	comp.Compatibility = clampScore(catPts + provPts + qualityPts + speedPts)
	comp.Preference = sc.CompatibilityWeight * comp.Compatibility
	reasons.add(ReasonPreferredCategory, fmt.Sprintf("Matches your favorite category: %s", c.Category), sc.CompatibilityWeight*catPts)
	reasons.add(ReasonPreferredProvider, fmt.Sprintf("From a provider you like: %s", c.Provider), sc.CompatibilityWeight*provPts)
	reasons.add(ReasonQualityMatch, "Meets your quality standards", sc.CompatibilityWeight*qualityPts)
	reasons.add(ReasonSpeedMatch, "Fits your speed preference", sc.CompatibilityWeight*speedPts)

	// expertise
	if expertiseMatches(p.ExpertiseLevel, candidateComplexity(c, sc)) {
		comp.Expertise = sc.ExpertiseBonus
		reasons.add(ReasonExpertiseMatch, "Suited to your experience level", comp.Expertise)
	}

	// exploration
	comp.Exploration = s.explorationBonus(c, quality, p)
	reasons.add(ReasonExploration, "Something new to explore", comp.Exploration)

	// trending
	switch {
	case c.Featured && popularity > sc.TrendingFeaturedPopularity:
		comp.Trending = sc.TrendingFeaturedPopularPoints
	case popularity > sc.TrendingPopularity:
		comp.Trending = sc.TrendingPopularPoints
	case c.Featured:
		comp.Trending = sc.TrendingFeaturedPoints
	}
	reasons.add(ReasonTrending, "Trending right now", comp.Trending)

	// quality upgrade
	upgrade := quality-p.QualityThreshold > sc.QualityUpgradeMargin
	if upgrade {
		comp.Upgrade = sc.QualityUpgradePoints
		reasons.add(ReasonQualityUpgrade, "A step up from your usual quality", comp.Upgrade)
	}

	// context
	comp.Contextual = s.contextualBonus(c, rctx, &reasons)

	total := clampScore(comp.BaseAppeal + comp.Preference + comp.Expertise +
		comp.Exploration + comp.Trending + comp.Upgrade + comp.Contextual)

	reasons.sort()

	return ScoredCandidate{
		Candidate:  c,
		Score:      total,
		Confidence: s.confidence(p.TotalInteractions, len(reasons), popularity),
		Category:   s.category(comp, upgrade),
		Reasons:    reasons,
		Components: comp,
	}
}

func (s *Scorer) explorationBonus(c domain.Candidate, quality float64, p domain.UserProfile) float64 {
	sc := s.cfg.Scoring
	if p.ExplorationWillingness != domain.ExplorationAdventurous {
		return 0
	}

	var novelty float64
	if quality >= sc.ExplorationQualityFloor {
		if !engaged(c.Category, p.PreferredCategories, p.CategoryAffinity) {
			novelty += sc.NovelCategoryPoints
		}
		if !engaged(c.Provider, p.PreferredProviders, p.ProviderAffinity) {
			novelty += sc.NovelProviderPoints
		}
		novelty *= quality / 100
	}

	if novelty == 0 && c.Featured && quality >= sc.FeaturedExplorationQuality {
		return sc.FeaturedExplorationPoints
	}
	return novelty
}

func (s *Scorer) contextualBonus(c domain.Candidate, rctx domain.RecommendationContext, reasons *reasonList) float64 {
	sc := s.cfg.Scoring
	var bonus float64

	if !rctx.Now.IsZero() {
		work := isWorkHour(rctx.Now, sc)
		switch {
		case work && (c.SpeedTier == domain.SpeedUltraFast || c.SpeedTier == domain.SpeedFast):
			bonus += sc.TimeOfDayPoints
			reasons.add(ReasonTimeOfDay, "Quick results for your working hours", sc.TimeOfDayPoints)
		case !work && c.SpeedTier == domain.SpeedDetailed:
			bonus += sc.TimeOfDayPoints
			reasons.add(ReasonTimeOfDay, "Detailed results for your free time", sc.TimeOfDayPoints)
		}
	}

	if rctx.Device == domain.DeviceMobile && c.SpeedTier == domain.SpeedUltraFast {
		bonus += sc.MobilePoints
		reasons.add(ReasonMobileFriendly, "Fast enough for mobile", sc.MobilePoints)
	}

	if rctx.CurrentCategory != "" && rctx.CurrentCategory == c.Category {
		bonus += sc.ContinuityPoints
		reasons.add(ReasonContinuity, "Continues what you are browsing", sc.ContinuityPoints)
	}

	return bonus
}

func (s *Scorer) category(comp ScoreComponents, upgrade bool) domain.RecommendationCategory {
	sc := s.cfg.Scoring
	switch {
	case upgrade:
		return domain.CategoryQualityUpgrade
	case comp.Compatibility > sc.PerfectMatchCompatibility:
		return domain.CategoryPerfectMatch
	case comp.Trending > sc.TrendingCategoryThreshold:
		return domain.CategoryTrending
	case comp.Exploration > sc.ExplorationCategoryThreshold:
		return domain.CategoryExploration
	default:
		return domain.CategoryExploration
	}
}

func (s *Scorer) confidence(interactions, reasonCount int, popularity float64) float64 {
	cc := s.cfg.Confidence
	conf := cc.Base

	switch {
	case interactions > cc.HighInteractions:
		conf += cc.HighBoost
	case interactions > cc.MediumInteractions:
		conf += cc.MediumBoost
	case interactions > cc.LowInteractions:
		conf += cc.LowBoost
	}

	rb := cc.PerReason * float64(reasonCount)
	if rb > cc.MaxReasonBoost {
		rb = cc.MaxReasonBoost
	}
	conf += rb

	if popularity > cc.PopularityAbove {
		conf += cc.PopularityBoost
	}

	return clampUnit(conf)
}

type reasonList []domain.Reason

// add records a reason only when it contributed points.
func (r *reasonList) add(code, description string, weight float64) {
	if weight <= 0 {
		return
	}
	*r = append(*r, domain.Reason{Code: code, Description: description, Weight: weight})
}

func (r reasonList) sort() {
	sort.SliceStable(r, func(i, j int) bool { return r[i].Weight > r[j].Weight })
}

// topReasons returns a copy of the n strongest reasons.
func topReasons(reasons []domain.Reason, n int) []domain.Reason {
	if n > len(reasons) {
		n = len(reasons)
	}
	out := make([]domain.Reason, n)
	copy(out, reasons[:n])
	return out
}
