package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	profileCacheName = "mentor_profile"
	profileKeyPrefix = "mentor:profile:"
	cacheCheckPeriod = 10 * time.Minute
)

// ProfileCache holds mentor profiles in front of the profile store.
// Only profiles are cached; engagement counts are always read from the ledger.
// Cache failures are never surfaced, a failed Get is a miss.
type ProfileCache interface {
	Get(ctx context.Context, mentorID string) (*models.MentorProfile, bool)
	Set(ctx context.Context, profile *models.MentorProfile)
	Invalidate(ctx context.Context, mentorID string)
}

func profileKey(mentorID string) string {
	return profileKeyPrefix + mentorID
}

func copyProfile(p *models.MentorProfile) *models.MentorProfile {
	cp := *p
	cp.ExpertiseTags = append([]string{}, p.ExpertiseTags...)
	return &cp
}

// LocalProfileCache is an in-process cache backed by go-cache
type LocalProfileCache struct {
	cache *gocache.Cache
}

// NewLocalProfileCache creates an in-process profile cache
func NewLocalProfileCache(ttlSeconds int) *LocalProfileCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	return &LocalProfileCache{cache: gocache.New(ttl, cacheCheckPeriod)}
}

// Get returns a copy of the cached profile
func (c *LocalProfileCache) Get(_ context.Context, mentorID string) (*models.MentorProfile, bool) {
	data, found := c.cache.Get(profileKey(mentorID))
	if !found {
		metrics.CacheMisses.WithLabelValues(profileCacheName).Inc()
		return nil, false
	}

	profile, ok := data.(*models.MentorProfile)
	if !ok {
		logger.Error("Invalid profile cache data type", zap.String("mentor_id", mentorID))
		c.cache.Delete(profileKey(mentorID))
		metrics.CacheMisses.WithLabelValues(profileCacheName).Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues(profileCacheName).Inc()
	return copyProfile(profile), true
}

// Set stores a copy of profile with the default TTL
func (c *LocalProfileCache) Set(_ context.Context, profile *models.MentorProfile) {
	if profile == nil {
		return
	}
	c.cache.SetDefault(profileKey(profile.MentorID), copyProfile(profile))
}

// Invalidate drops the cached profile
func (c *LocalProfileCache) Invalidate(_ context.Context, mentorID string) {
	c.cache.Delete(profileKey(mentorID))
	metrics.CacheInvalidations.WithLabelValues(profileCacheName).Inc()
}

// RedisProfileCache shares cached profiles between API instances
type RedisProfileCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisProfileCache creates a profile cache on top of a redis client
func NewRedisProfileCache(rdb redis.Cmdable, ttlSeconds int) *RedisProfileCache {
	return &RedisProfileCache{
		rdb: rdb,
		ttl: time.Duration(ttlSeconds) * time.Second,
	}
}

// Get reads and decodes the cached profile. Redis errors count as misses.
func (c *RedisProfileCache) Get(ctx context.Context, mentorID string) (*models.MentorProfile, bool) {
	raw, err := c.rdb.Get(ctx, profileKey(mentorID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Profile cache read failed", zap.String("mentor_id", mentorID), zap.Error(err))
		}
		metrics.CacheMisses.WithLabelValues(profileCacheName).Inc()
		return nil, false
	}

	var profile models.MentorProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		logger.Error("Invalid profile cache payload", zap.String("mentor_id", mentorID), zap.Error(err))
		c.rdb.Del(ctx, profileKey(mentorID))
		metrics.CacheMisses.WithLabelValues(profileCacheName).Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues(profileCacheName).Inc()
	return &profile, true
}

// Set stores the profile as JSON with the configured TTL
func (c *RedisProfileCache) Set(ctx context.Context, profile *models.MentorProfile) {
	if profile == nil {
		return
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		logger.Error("Failed to encode profile for cache", zap.String("mentor_id", profile.MentorID), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, profileKey(profile.MentorID), raw, c.ttl).Err(); err != nil {
		logger.Warn("Profile cache write failed", zap.String("mentor_id", profile.MentorID), zap.Error(err))
	}
}

// Invalidate deletes the cached profile
func (c *RedisProfileCache) Invalidate(ctx context.Context, mentorID string) {
	if err := c.rdb.Del(ctx, profileKey(mentorID)).Err(); err != nil {
		logger.Warn("Profile cache invalidation failed", zap.String("mentor_id", mentorID), zap.Error(err))
		return
	}
	metrics.CacheInvalidations.WithLabelValues(profileCacheName).Inc()
}

// NopProfileCache disables profile caching
type NopProfileCache struct{}

func (NopProfileCache) Get(context.Context, string) (*models.MentorProfile, bool) { return nil, false }
func (NopProfileCache) Set(context.Context, *models.MentorProfile)               {}
func (NopProfileCache) Invalidate(context.Context, string)                        {}

var (
	_ ProfileCache = (*LocalProfileCache)(nil)
	_ ProfileCache = (*RedisProfileCache)(nil)
	_ ProfileCache = NopProfileCache{}
)
