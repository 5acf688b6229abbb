package recommend

import "aiImageStudio/domain"

// Diversify re-ranks a score-sorted list so no single category or provider
// dominates. Conservative users get their list back untouched. The top
// AlwaysKeepTop entries are always kept; later entries are admitted while
// their category and provider have room (or when they score above
// OverrideScore), and any remaining slots are backfilled in score order.
func Diversify(sorted []ScoredCandidate, profile domain.UserProfile, limit int, cfg DiversityConfig) []ScoredCandidate {
	if profile.ExplorationWillingness == domain.ExplorationConservative {
		return sorted
	}
	if limit <= 0 || len(sorted) == 0 {
		return []ScoredCandidate{}
	}
	if limit > len(sorted) {
		limit = len(sorted)
	}

	keep := cfg.AlwaysKeepTop
	if keep > limit {
		keep = limit
	}

	out := make([]ScoredCandidate, 0, limit)
	used := make([]bool, len(sorted))
	categoryCount := map[string]int{}
	providerCount := map[string]int{}

	take := func(i int) {
		c := sorted[i].Candidate
		out = append(out, sorted[i])
		used[i] = true
		categoryCount[c.Category]++
		providerCount[c.Provider]++
	}

	for i := 0; i < keep; i++ {
		take(i)
	}

	for i := keep; i < len(sorted) && len(out) < limit; i++ {
		if admit(sorted[i], categoryCount, providerCount, cfg) {
			take(i)
		}
	}

	for i := keep; i < len(sorted) && len(out) < limit; i++ {
		if !used[i] {
			out = append(out, sorted[i])
			used[i] = true
		}
	}

	return out
}

func admit(sc ScoredCandidate, categoryCount, providerCount map[string]int, cfg DiversityConfig) bool {
	if sc.Score > cfg.OverrideScore {
		return true
	}
	categoryRoom := categoryCount[sc.Candidate.Category] < cfg.MaxPerCategory
	providerRoom := providerCount[sc.Candidate.Provider] < cfg.MaxPerProvider
	if cfg.StrictCaps {
		return categoryRoom && providerRoom
	}
	return categoryRoom || providerRoom
}
