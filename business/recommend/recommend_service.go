package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"aiImageStudio/domain"
	"aiImageStudio/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// ---- Repository interfaces ----

type CandidateRepository interface {
	LoadCandidates(ctx context.Context, filter domain.CandidateFilter) ([]domain.Candidate, error)
}

// ProfileStore returns ok=false when the user has no stored profile.
type ProfileStore interface {
	LoadUserProfile(ctx context.Context, userID uint) (domain.UserProfile, bool, error)
	SaveUserProfile(ctx context.Context, profile *domain.UserProfile) error
}

// InteractionLog is the append-only audit trail of interaction events.
type InteractionLog interface {
	AppendInteractionEvent(ctx context.Context, event domain.InteractionEvent) error
}

const defaultFetchTimeout = 2 * time.Second

// ---- Usecase / Service ----

type Service struct {
	configSource
	candidates   CandidateRepository
	profiles     ProfileStore
	eligChecker  EligibilityChecker
	fetchTimeout time.Duration
	now          func() time.Time
}

func NewService(
	candidates CandidateRepository,
	profiles ProfileStore,
	eligChecker EligibilityChecker,
	cfgRepo ConfigRepository,
	variantRepo VariantRepository,
	defaultCfg Config,
	fetchTimeout time.Duration,
) *Service {
	if eligChecker == nil {
		eligChecker = NoopEligibilityChecker{}
	}
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &Service{
		configSource: configSource{cfgRepo: cfgRepo, variantRepo: variantRepo, defaultCfg: defaultCfg},
		candidates:   candidates,
		profiles:     profiles,
		eligChecker:  eligChecker,
		fetchTimeout: fetchTimeout,
		now:          time.Now,
	}
}

// rankInput is everything one request needs after I/O is done.
type rankInput struct {
	cfg        Config
	variant    int
	profile    domain.UserProfile
	candidates []domain.Candidate
	rctx       domain.RecommendationContext
}

// Recommend returns at most rctx.MaxResults recommendations, best first.
// It never writes the profile.
func (s *Service) Recommend(
	ctx context.Context,
	userID uint,
	rctx domain.RecommendationContext,
) ([]domain.Recommendation, error) {

	in, err := s.prepare(ctx, userID, rctx)
	if err != nil {
		RecommendRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	scorer := NewScorer(in.cfg)
	scored := make([]ScoredCandidate, 0, len(in.candidates))
	for _, c := range in.candidates {
		sc := scorer.Score(c, in.profile, in.rctx)
		if scorer.Passes(sc) {
			scored = append(scored, sc)
		}
	}
	sortScored(scored)

	ranked := Diversify(scored, in.profile, in.rctx.MaxResults, in.cfg.Diversity)
	if len(ranked) > in.rctx.MaxResults {
		ranked = ranked[:in.rctx.MaxResults]
	}

	out := make([]domain.Recommendation, 0, len(ranked))
	for _, sc := range ranked {
		out = append(out, domain.Recommendation{
			Candidate:  sc.Candidate,
			Score:      sc.Score,
			Confidence: sc.Confidence,
			Reasons:    topReasons(sc.Reasons, in.cfg.Scoring.MaxReasons),
			Category:   sc.Category,
		})
	}

	outcome := "ok"
	if len(out) == 0 {
		outcome = "empty"
	}
	RecommendRequestsTotal.WithLabelValues(outcome).Inc()
	RecommendResultSize.Observe(float64(len(out)))

	logger.Debug("recommend",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", userID,
		"variant", in.variant,
		"willingness", in.profile.ExplorationWillingness,
		"pool", len(in.candidates),
		"relevant", len(scored),
		"returned", len(out),
	)

	return out, nil
}

// prepare resolves config and context, then loads the profile and the
// candidate pool concurrently.
func (s *Service) prepare(
	ctx context.Context,
	userID uint,
	rctx domain.RecommendationContext,
) (rankInput, error) {

	if err := ctx.Err(); err != nil {
		return rankInput{}, fmt.Errorf("context error: %w", err)
	}
	if userID == 0 {
		return rankInput{}, ErrInvalidUserID
	}

	cfg, variant := s.loadConfigForUser(ctx, userID)
	rctx = s.resolveContext(rctx, cfg)

	var (
		profile domain.UserProfile
		found   bool
		pool    []domain.Candidate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fctx, cancel := s.withFetchTimeout(gctx)
		defer cancel()

		p, ok, err := s.profiles.LoadUserProfile(fctx, userID)
		if err != nil {
			return fmt.Errorf("%w: load profile: %w", ErrCollaboratorUnavailable, err)
		}
		profile, found = p, ok
		return nil
	})
	g.Go(func() error {
		rows, err := s.loadCandidates(gctx, userID, rctx, cfg)
		if err != nil {
			return err
		}
		pool = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return rankInput{}, err
	}

	if !found {
		profile = DefaultProfile(userID, cfg.Profile)
	}
	profile = normalizeProfile(profile, cfg.Profile)

	return rankInput{
		cfg:        cfg,
		variant:    variant,
		profile:    profile,
		candidates: pool,
		rctx:       rctx,
	}, nil
}

func (s *Service) resolveContext(rctx domain.RecommendationContext, cfg Config) domain.RecommendationContext {
	if rctx.Now.IsZero() {
		rctx.Now = s.now()
	}
	switch {
	case rctx.MaxResults <= 0:
		rctx.MaxResults = cfg.DefaultMaxResults
	case rctx.MaxResults > cfg.MaxResultsLimit:
		rctx.MaxResults = cfg.MaxResultsLimit
	}
	return rctx
}

func (s *Service) withFetchTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.fetchTimeout)
}

// sortScored orders by score, then quality, then newest, then id.
func sortScored(list []ScoredCandidate) {
	sort.SliceStable(list, func(i, j int) bool {
		return rankBefore(list[i], list[j])
	})
}

func rankBefore(a, b ScoredCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	qa, qb := clampScore(a.Candidate.QualityRating), clampScore(b.Candidate.QualityRating)
	if qa != qb {
		return qa > qb
	}
	if !a.Candidate.CreatedAt.Equal(b.Candidate.CreatedAt) {
		return a.Candidate.CreatedAt.After(b.Candidate.CreatedAt)
	}
	return a.Candidate.ID < b.Candidate.ID
}
