package recommend

import (
	"strings"
	"time"

	"aiImageStudio/domain"
)

type complexity int

const (
	complexitySimple complexity = iota
	complexityModerate
	complexityAdvanced
)

// candidateComplexity is derived from the advertised feature count.
func candidateComplexity(c domain.Candidate, s ScoringConfig) complexity {
	n := len(c.Features)
	switch {
	case n <= s.SimpleMaxFeatures:
		return complexitySimple
	case n >= s.AdvancedMinFeatures:
		return complexityAdvanced
	default:
		return complexityModerate
	}
}

func expertiseMatches(level domain.ExpertiseLevel, cx complexity) bool {
	switch level {
	case domain.ExpertiseNovice:
		return cx == complexitySimple
	case domain.ExpertiseIntermediate:
		return cx == complexityModerate
	case domain.ExpertiseExpert, domain.ExpertisePowerUser:
		return cx == complexityAdvanced
	}
	return false
}

func speedCompatibility(pref domain.SpeedPreference, tier domain.SpeedTier, table map[domain.SpeedPreference]map[domain.SpeedTier]float64) float64 {
	row, ok := table[pref]
	if !ok {
		return 0
	}
	return row[tier]
}

func isWorkHour(t time.Time, s ScoringConfig) bool {
	h := t.Hour()
	return h >= s.WorkHourStart && h < s.WorkHourEnd
}

// containsFold matches names case-insensitively.
func containsFold(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

// engaged reports whether the user has shown interest in a category or provider,
// either by stating a preference or through recorded affinity.
func engaged(v string, preferred []string, affinity map[string]float64) bool {
	if containsFold(preferred, v) {
		return true
	}
	return affinity[v] > 0
}
