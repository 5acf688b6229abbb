package recommend

import (
	"math"

	"aiImageStudio/domain"
)

const (
	minEngagement = 1
	maxEngagement = 10
)

var knownInteractions = map[domain.InteractionType]struct{}{
	domain.InteractionView:     {},
	domain.InteractionLike:     {},
	domain.InteractionBookmark: {},
	domain.InteractionGenerate: {},
	domain.InteractionShare:    {},
	domain.InteractionDownload: {},
}

// AffinityBoost converts an interaction into affinity points.
// Stronger interaction types and higher engagement move affinity more.
func (f FeedbackConfig) AffinityBoost(t domain.InteractionType, engagement int) float64 {
	base, ok := f.InteractionBoosts[t]
	if !ok || base <= 0 || f.EngagementPivot <= 0 {
		return 0
	}
	return math.Round(base * float64(engagement) / f.EngagementPivot)
}
