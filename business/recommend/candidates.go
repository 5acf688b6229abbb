package recommend

import (
	"context"
	"fmt"

	"aiImageStudio/domain"
	"aiImageStudio/pkg/logger"
)

// loadCandidates fetches the candidate pool and drops excluded, duplicate
// and ineligible entries.
func (s *Service) loadCandidates(
	ctx context.Context,
	userID uint,
	rctx domain.RecommendationContext,
	cfg Config,
) ([]domain.Candidate, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	fctx, cancel := s.withFetchTimeout(ctx)
	defer cancel()

	rows, err := s.candidates.LoadCandidates(fctx, domain.CandidateFilter{
		ExcludeIDs: rctx.ExcludeIDs,
		Limit:      cfg.CandidatePoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: load candidates: %w", ErrCollaboratorUnavailable, err)
	}
	if len(rows) == 0 {
		return []domain.Candidate{}, nil
	}

	excluded := make(map[uint64]struct{}, len(rctx.ExcludeIDs))
	for _, id := range rctx.ExcludeIDs {
		excluded[id] = struct{}{}
	}

	seen := make(map[uint64]struct{}, len(rows))
	out := make([]domain.Candidate, 0, len(rows))
	for _, c := range rows {
		if _, skip := excluded[c.ID]; skip {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}

		ok, err := s.eligChecker.IsEligible(ctx, userID, c)
		if err != nil {
			logger.Warn("recommend_eligibility_error",
				"trace_id", TraceIDFromContext(ctx),
				"user_id", userID,
				"candidate_id", c.ID,
				"error", err,
			)
			continue
		}
		if !ok {
			continue
		}
		out = append(out, c)
	}

	return out, nil
}
