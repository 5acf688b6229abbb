package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aiImageStudio/business/recommend"
	"aiImageStudio/domain"
	"aiImageStudio/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const defaultProfileTTL = 10 * time.Minute

// ProfileCache is a read-through cache in front of a ProfileStore.
// Saves go to the backing store first and then drop the cached copy,
// so a failed save never leaves a newer profile in the cache.
type ProfileCache struct {
	client *redis.Client
	next   recommend.ProfileStore
	ttl    time.Duration
}

var _ recommend.ProfileStore = (*ProfileCache)(nil)

func NewProfileCache(client *redis.Client, next recommend.ProfileStore, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = defaultProfileTTL
	}
	return &ProfileCache{
		client: client,
		next:   next,
		ttl:    ttl,
	}
}

func profileKey(userID uint) string {
	// key format: "profile:user:{user_id}"
	return fmt.Sprintf("profile:user:%d", userID)
}

func (c *ProfileCache) LoadUserProfile(ctx context.Context, userID uint) (domain.UserProfile, bool, error) {
	key := profileKey(userID)

	val, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p domain.UserProfile
		uerr := json.Unmarshal(val, &p)
		if uerr == nil {
			return p, true, nil
		}
		logger.Warn("profile_cache_decode_failed",
			"trace_id", recommend.TraceIDFromContext(ctx),
			"user_id", userID,
			"error", uerr,
		)
	case errors.Is(err, redis.Nil):
	default:
		// cache trouble must not fail the read
		logger.Warn("profile_cache_get_failed",
			"trace_id", recommend.TraceIDFromContext(ctx),
			"user_id", userID,
			"error", err,
		)
	}

	p, ok, err := c.next.LoadUserProfile(ctx, userID)
	if err != nil || !ok {
		return p, ok, err
	}

	if err := c.store(ctx, key, p); err != nil {
		logger.Warn("profile_cache_set_failed",
			"trace_id", recommend.TraceIDFromContext(ctx),
			"user_id", userID,
			"error", err,
		)
	}

	return p, true, nil
}

func (c *ProfileCache) SaveUserProfile(ctx context.Context, profile *domain.UserProfile) error {
	if err := c.next.SaveUserProfile(ctx, profile); err != nil {
		return err
	}

	if err := c.Invalidate(ctx, profile.UserID); err != nil {
		logger.Warn("profile_cache_invalidate_failed",
			"trace_id", recommend.TraceIDFromContext(ctx),
			"user_id", profile.UserID,
			"error", err,
		)
	}

	return nil
}

// Invalidate drops the cached copy of a user's profile.
func (c *ProfileCache) Invalidate(ctx context.Context, userID uint) error {
	if err := c.client.Del(ctx, profileKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete profile from Redis: %w", err)
	}
	return nil
}

func (c *ProfileCache) store(ctx context.Context, key string, p domain.UserProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store profile in Redis: %w", err)
	}
	return nil
}

// Writer returns a store for read-modify-write callers. Loads go straight to
// the backing store so a stale cached copy is never the base of an update;
// saves still drop the cached copy.
func (c *ProfileCache) Writer() recommend.ProfileStore {
	return profileWriter{cache: c}
}

type profileWriter struct {
	cache *ProfileCache
}

func (w profileWriter) LoadUserProfile(ctx context.Context, userID uint) (domain.UserProfile, bool, error) {
	return w.cache.next.LoadUserProfile(ctx, userID)
}

func (w profileWriter) SaveUserProfile(ctx context.Context, profile *domain.UserProfile) error {
	return w.cache.SaveUserProfile(ctx, profile)
}
