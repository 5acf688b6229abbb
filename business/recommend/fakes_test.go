package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"aiImageStudio/domain"

	"gorm.io/datatypes"
)

var testNow = time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)

type fakeCandidates struct {
	mu         sync.Mutex
	rows       []domain.Candidate
	err        error
	calls      int
	lastFilter domain.CandidateFilter
}

func (f *fakeCandidates) LoadCandidates(ctx context.Context, filter domain.CandidateFilter) ([]domain.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	if len(filter.IDs) == 0 {
		return append([]domain.Candidate(nil), f.rows...), nil
	}
	var out []domain.Candidate
	for _, c := range f.rows {
		for _, id := range filter.IDs {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

type fakeProfiles struct {
	mu      sync.Mutex
	data    map[uint]domain.UserProfile
	loadErr error
	saveErr error
	saves   int
}

func newFakeProfiles(profiles ...domain.UserProfile) *fakeProfiles {
	f := &fakeProfiles{data: map[uint]domain.UserProfile{}}
	for _, p := range profiles {
		f.data[p.UserID] = p
	}
	return f
}

func (f *fakeProfiles) LoadUserProfile(ctx context.Context, userID uint) (domain.UserProfile, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return domain.UserProfile{}, false, f.loadErr
	}
	p, ok := f.data[userID]
	if !ok {
		return domain.UserProfile{}, false, nil
	}
	return p.Clone(), true, nil
}

func (f *fakeProfiles) SaveUserProfile(ctx context.Context, profile *domain.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.data[profile.UserID] = profile.Clone()
	return nil
}

func (f *fakeProfiles) get(userID uint) (domain.UserProfile, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.data[userID]
	return p, ok
}

type fakeEvents struct {
	mu     sync.Mutex
	events []domain.InteractionEvent
	err    error
}

func (f *fakeEvents) AppendInteractionEvent(ctx context.Context, event domain.InteractionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEvents) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeConfigRepo struct {
	rows map[int]domain.RecommendConfig
	err  error
}

func (f *fakeConfigRepo) GetConfig(ctx context.Context, name string, variant int) (domain.RecommendConfig, bool, error) {
	if f.err != nil {
		return domain.RecommendConfig{}, false, f.err
	}
	row, ok := f.rows[variant]
	return row, ok, nil
}

func (f *fakeConfigRepo) UpsertConfig(ctx context.Context, cfg domain.RecommendConfig) error {
	if f.rows == nil {
		f.rows = map[int]domain.RecommendConfig{}
	}
	f.rows[cfg.Variant] = cfg
	return nil
}

// overrideRepo stores settings as the base variant row.
func overrideRepo(settings string) *fakeConfigRepo {
	return variantRepo(map[int]string{BaseVariant: settings})
}

func variantRepo(settings map[int]string) *fakeConfigRepo {
	f := &fakeConfigRepo{rows: map[int]domain.RecommendConfig{}}
	for v, raw := range settings {
		f.rows[v] = domain.RecommendConfig{Name: DefaultConfigName, Variant: v, Settings: datatypes.JSON(raw)}
	}
	return f
}

type fakeVariantPins struct {
	pins map[uint]int
	err  error
}

func (f *fakeVariantPins) GetVariant(ctx context.Context, userID uint) (int, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	v, ok := f.pins[userID]
	return v, ok, nil
}

func (f *fakeVariantPins) UpsertVariant(ctx context.Context, userID uint, variant int) error {
	if f.pins == nil {
		f.pins = map[uint]int{}
	}
	f.pins[userID] = variant
	return nil
}

type denyList map[uint64]bool

func (d denyList) IsEligible(ctx context.Context, userID uint, candidate domain.Candidate) (bool, error) {
	return !d[candidate.ID], nil
}

// artisticCandidate and speedCandidate are the two reference candidates
// used across the scoring and orchestrator tests.
func artisticCandidate() domain.Candidate {
	return domain.Candidate{
		ID:               1,
		Name:             "Watercolor Dreams",
		Category:         "Artistic",
		Provider:         "Lumen",
		QualityRating:    90,
		Popularity:       40,
		Satisfaction:     80,
		PerformanceIndex: 70,
		SpeedTier:        domain.SpeedStandard,
		Features:         []string{"style-transfer", "inpainting", "upscale"},
	}
}

func speedCandidate() domain.Candidate {
	return domain.Candidate{
		ID:               2,
		Name:             "Flash Render",
		Category:         "Speed",
		Provider:         "Acme",
		QualityRating:    95,
		Popularity:       95,
		Satisfaction:     80,
		PerformanceIndex: 90,
		Featured:         true,
		SpeedTier:        domain.SpeedUltraFast,
		Features:         []string{"turbo"},
	}
}

func lowCandidate() domain.Candidate {
	return domain.Candidate{
		ID:               3,
		Name:             "Sketchpad",
		Category:         "Other",
		Provider:         "Nobody",
		QualityRating:    20,
		Popularity:       10,
		Satisfaction:     10,
		PerformanceIndex: 10,
		SpeedTier:        domain.SpeedDetailed,
	}
}

func conservativeProfile(userID uint) domain.UserProfile {
	return domain.UserProfile{
		UserID:              userID,
		PreferredCategories: []string{"Artistic"},
		QualityThreshold:    70,
		SpeedPreference:     domain.SpeedPreferenceBalanced,
		ExpertiseLevel:      domain.ExpertiseIntermediate,
		ExplorationScore:    20,
	}
}

func eveningContext() domain.RecommendationContext {
	return domain.RecommendationContext{Now: testNow, Device: domain.DeviceDesktop}
}

func reasonCodes(reasons []domain.Reason) []string {
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, r.Code)
	}
	return out
}

var (
	stressCategories = []string{"Artistic", "Photo", "Anime", "Logo", "Speed", "Abstract", "Sketch", "Pixel", "Comic", "Poster"}
	stressProviders  = []string{"Lumen", "Acme", "Nova", "Pixel", "Vega", "Orbit", "Prism", "Quill", "Ember", "Drift", "Halo", "Mosaic"}
	stressTiers      = []domain.SpeedTier{domain.SpeedUltraFast, domain.SpeedFast, domain.SpeedStandard, domain.SpeedDetailed}
)

func newStressRand() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

func randomCandidates(r *rand.Rand, n int) []domain.Candidate {
	out := make([]domain.Candidate, 0, n)
	for i := 0; i < n; i++ {
		features := make([]string, r.Intn(8))
		for f := range features {
			features[f] = fmt.Sprintf("f%d", f)
		}
		out = append(out, domain.Candidate{
			ID:               uint64(i + 1),
			Category:         stressCategories[r.Intn(len(stressCategories))],
			Provider:         stressProviders[r.Intn(len(stressProviders))],
			QualityRating:    r.Float64() * 100,
			Popularity:       r.Float64() * 100,
			Satisfaction:     r.Float64() * 100,
			PerformanceIndex: r.Float64() * 100,
			Featured:         r.Intn(5) == 0,
			SpeedTier:        stressTiers[r.Intn(len(stressTiers))],
			Features:         features,
		})
	}
	return out
}
