package recommend

import (
	"context"

	"aiImageStudio/domain"
	"aiImageStudio/pkg/logger"
)

// Explain returns the score components of every candidate in the pool,
// including those discarded by the relevance threshold, best first.
func (s *Service) Explain(
	ctx context.Context,
	userID uint,
	rctx domain.RecommendationContext,
) ([]domain.ScoreBreakdown, error) {

	in, err := s.prepare(ctx, userID, rctx)
	if err != nil {
		return nil, err
	}

	logger.Debug("recommend_explain",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", userID,
		"pool", len(in.candidates),
	)

	scorer := NewScorer(in.cfg)
	scored := make([]ScoredCandidate, 0, len(in.candidates))
	for _, c := range in.candidates {
		scored = append(scored, scorer.Score(c, in.profile, in.rctx))
	}
	sortScored(scored)

	out := make([]domain.ScoreBreakdown, 0, len(scored))
	for _, sc := range scored {
		comp := sc.Components
		out = append(out, domain.ScoreBreakdown{
			CandidateID:   sc.Candidate.ID,
			Appeal:        comp.Appeal,
			BaseAppeal:    comp.BaseAppeal,
			Compatibility: comp.Compatibility,
			Preference:    comp.Preference,
			Expertise:     comp.Expertise,
			Exploration:   comp.Exploration,
			Trending:      comp.Trending,
			Upgrade:       comp.Upgrade,
			Contextual:    comp.Contextual,
			Score:         sc.Score,
			Confidence:    sc.Confidence,
			Category:      sc.Category,
			Reasons:       sc.Reasons,
			Discarded:     !scorer.Passes(sc),
		})
	}

	return out, nil
}
