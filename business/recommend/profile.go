package recommend

import (
	"time"

	"aiImageStudio/domain"
)

// DefaultProfile is the profile used for users with no stored history.
func DefaultProfile(userID uint, d ProfileDefaults) domain.UserProfile {
	return domain.UserProfile{
		UserID:                 userID,
		PreferredCategories:    []string{},
		PreferredProviders:     []string{},
		QualityThreshold:       d.QualityThreshold,
		SpeedPreference:        d.SpeedPreference,
		ExpertiseLevel:         d.Expertise,
		ExplorationScore:       d.ExplorationScore,
		ExplorationWillingness: d.Willingness(d.ExplorationScore),
		CategoryAffinity:       map[string]float64{},
		ProviderAffinity:       map[string]float64{},
	}
}

// Willingness buckets an exploration score.
func (d ProfileDefaults) Willingness(score float64) domain.ExplorationWillingness {
	switch {
	case score < d.ConservativeBelow:
		return domain.ExplorationConservative
	case score < d.AdventurousFrom:
		return domain.ExplorationModerate
	default:
		return domain.ExplorationAdventurous
	}
}

// normalizeProfile fixes out-of-range scalars and unknown enum values.
// Maps and slices are shared with p and must be treated as read-only.
func normalizeProfile(p domain.UserProfile, d ProfileDefaults) domain.UserProfile {
	p.QualityThreshold = clampScore(p.QualityThreshold)
	p.ExplorationScore = clampScore(p.ExplorationScore)
	if !validSpeedPreference(p.SpeedPreference) {
		p.SpeedPreference = d.SpeedPreference
	}
	if !validExpertise(p.ExpertiseLevel) {
		p.ExpertiseLevel = d.Expertise
	}
	p.ExplorationWillingness = d.Willingness(p.ExplorationScore)
	if p.TotalInteractions < 0 {
		p.TotalInteractions = 0
	}
	if p.MostActiveHour < 0 || p.MostActiveHour > 23 {
		p.MostActiveHour = mostActiveHour(p.HourlyActivity)
	}
	return p
}

func validSpeedPreference(v domain.SpeedPreference) bool {
	switch v {
	case domain.SpeedPreferenceFast, domain.SpeedPreferenceBalanced, domain.SpeedPreferenceQuality:
		return true
	}
	return false
}

func validExpertise(v domain.ExpertiseLevel) bool {
	switch v {
	case domain.ExpertiseNovice, domain.ExpertiseIntermediate, domain.ExpertiseExpert, domain.ExpertisePowerUser:
		return true
	}
	return false
}

// mostActiveHour returns the busiest hour; ties resolve to the earliest hour.
func mostActiveHour(hist [24]int) int {
	best := 0
	for h := 1; h < len(hist); h++ {
		if hist[h] > hist[best] {
			best = h
		}
	}
	return best
}

// applyInteraction folds one event into p. candidate is nil when the
// catalog no longer knows the candidate; only the usage metrics move then.
func applyInteraction(p *domain.UserProfile, ev domain.InteractionEvent, candidate *domain.Candidate, boost float64, cfg Config) {
	if p.CategoryAffinity == nil {
		p.CategoryAffinity = map[string]float64{}
	}
	if p.ProviderAffinity == nil {
		p.ProviderAffinity = map[string]float64{}
	}

	if candidate != nil {
		if candidate.Category != "" {
			prev := p.CategoryAffinity[candidate.Category]
			if prev == 0 && cfg.Feedback.ExplorationNudge > 0 {
				p.ExplorationScore = clampScore(p.ExplorationScore + cfg.Feedback.ExplorationNudge)
			}
			p.CategoryAffinity[candidate.Category] = clampScore(prev + boost)
			capAffinity(p.CategoryAffinity, candidate.Category)
		}
		if candidate.Provider != "" {
			p.ProviderAffinity[candidate.Provider] = clampScore(p.ProviderAffinity[candidate.Provider] + boost)
			capAffinity(p.ProviderAffinity, candidate.Provider)
		}
	}

	p.TotalInteractions++

	if ev.SessionDuration != nil && *ev.SessionDuration > 0 {
		secs := ev.SessionDuration.Seconds()
		n := float64(p.SessionSamples)
		p.AvgSessionSeconds = (p.AvgSessionSeconds*n + secs) / (n + 1)
		p.SessionSamples++
	}

	at := ev.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	p.HourlyActivity[at.Hour()]++
	p.MostActiveHour = mostActiveHour(p.HourlyActivity)

	p.ExplorationWillingness = cfg.Profile.Willingness(p.ExplorationScore)
}
