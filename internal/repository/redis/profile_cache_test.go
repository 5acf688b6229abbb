package redis

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"aiImageStudio/business/recommend"
	"aiImageStudio/domain"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu    sync.Mutex
	data  map[uint]domain.UserProfile
	loads int
	err   error
}

func (m *memoryStore) LoadUserProfile(ctx context.Context, userID uint) (domain.UserProfile, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.err != nil {
		return domain.UserProfile{}, false, m.err
	}
	p, ok := m.data[userID]
	return p, ok, nil
}

func (m *memoryStore) SaveUserProfile(ctx context.Context, profile *domain.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[profile.UserID] = profile.Clone()
	return nil
}

// testClient connects to TEST_REDIS_ADDR and skips otherwise.
func testClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis integration tests")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestProfileCache_ReadThroughAndInvalidate(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	const userID = 9001
	require.NoError(t, client.Del(ctx, profileKey(userID)).Err())

	store := &memoryStore{data: map[uint]domain.UserProfile{
		userID: {
			UserID:           userID,
			QualityThreshold: 70,
			CategoryAffinity: map[string]float64{"Artistic": 4},
		},
	}}
	cache := NewProfileCache(client, store, time.Minute)

	p, ok, err := cache.LoadUserProfile(ctx, userID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4.0, p.CategoryAffinity["Artistic"])

	_, _, err = cache.LoadUserProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, store.loads, "second read is served from redis")

	p.CategoryAffinity["Artistic"] = 9
	require.NoError(t, cache.SaveUserProfile(ctx, &p))

	got, ok, err := cache.LoadUserProfile(ctx, userID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 9.0, got.CategoryAffinity["Artistic"])
	assert.Equal(t, 2, store.loads, "save drops the cached copy")
}

func TestProfileCache_MissIsNotCached(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	store := &memoryStore{data: map[uint]domain.UserProfile{}}
	cache := NewProfileCache(client, store, time.Minute)

	_, ok, err := cache.LoadUserProfile(ctx, 9002)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := client.Exists(ctx, profileKey(9002)).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProfileCache_FailedSaveKeepsCache(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	store := &memoryStore{data: map[uint]domain.UserProfile{}, err: errors.New("db down")}
	cache := NewProfileCache(client, store, time.Minute)

	err := cache.SaveUserProfile(ctx, &domain.UserProfile{UserID: 9003})
	assert.Error(t, err)
}

func TestProfileCache_UnreachableRedisFallsBack(t *testing.T) {
	// nothing listens on this port; every redis call fails fast
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	store := &memoryStore{data: map[uint]domain.UserProfile{5: {UserID: 5, QualityThreshold: 60}}}
	cache := NewProfileCache(client, store, time.Minute)

	p, ok, err := cache.LoadUserProfile(context.Background(), 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 60.0, p.QualityThreshold)

	require.NoError(t, cache.SaveUserProfile(context.Background(), &p))
}

type oneCandidate struct {
	candidate domain.Candidate
}

func (o oneCandidate) LoadCandidates(ctx context.Context, filter domain.CandidateFilter) ([]domain.Candidate, error) {
	return []domain.Candidate{o.candidate}, nil
}

func newWriterRecorder(store recommend.ProfileStore) *recommend.Recorder {
	artistic := oneCandidate{candidate: domain.Candidate{ID: 1, Category: "Artistic", Provider: "Lumen", QualityRating: 90}}
	return recommend.NewRecorder(store, artistic, nil, nil, nil, recommend.DefaultConfig(), recommend.RecorderOptions{})
}

func generateEvent(userID uint) domain.InteractionEvent {
	return domain.InteractionEvent{
		UserID:          userID,
		CandidateID:     1,
		InteractionType: domain.InteractionGenerate,
		EngagementLevel: 5,
		OccurredAt:      time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC),
	}
}

func TestProfileWriter_IgnoresStaleCachedCopy(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	const userID = 9004
	store := &memoryStore{data: map[uint]domain.UserProfile{
		userID: {UserID: userID, QualityThreshold: 70, CategoryAffinity: map[string]float64{"Artistic": 10}},
	}}
	cache := NewProfileCache(client, store, time.Minute)

	// a reader cached an older version after the last save invalidated it
	stale, err := json.Marshal(domain.UserProfile{UserID: userID, QualityThreshold: 70, CategoryAffinity: map[string]float64{"Artistic": 2}})
	require.NoError(t, err)
	require.NoError(t, client.Set(ctx, profileKey(userID), stale, time.Minute).Err())

	cached, ok, err := cache.LoadUserProfile(ctx, userID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2.0, cached.CategoryAffinity["Artistic"])

	require.NoError(t, newWriterRecorder(cache.Writer()).Record(ctx, generateEvent(userID)))

	assert.Equal(t, 15.0, store.data[userID].CategoryAffinity["Artistic"], "boost applied to the stored profile, not the cached one")

	n, err := client.Exists(ctx, profileKey(userID)).Result()
	require.NoError(t, err)
	assert.Zero(t, n, "save drops the stale copy")
}

func TestProfileWriter_UnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	store := &memoryStore{data: map[uint]domain.UserProfile{
		7: {UserID: 7, QualityThreshold: 70, CategoryAffinity: map[string]float64{"Artistic": 10}},
	}}
	cache := NewProfileCache(client, store, time.Minute)
	rec := newWriterRecorder(cache.Writer())

	require.NoError(t, rec.Record(context.Background(), generateEvent(7)))
	require.NoError(t, rec.Record(context.Background(), generateEvent(7)))

	assert.Equal(t, 20.0, store.data[7].CategoryAffinity["Artistic"])
	assert.Equal(t, 2, store.loads, "every update reads the backing store")
}
