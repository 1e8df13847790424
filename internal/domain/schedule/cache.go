package schedule

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	cacheKeyPrefix = "schedule:artist:"
	cacheTTL       = 5 * time.Minute
)

// Cache is a read-through cache for per-artist schedules. Every mutating
// schedule operation invalidates the artist's entry. Nil-safe: all methods
// degrade to misses when Redis is not configured.
type Cache struct {
	redis *redis.Client
}

// NewCache creates a schedule cache
func NewCache(redisClient *redis.Client) *Cache {
	return &Cache{redis: redisClient}
}

// Get returns the cached schedule for an artist, or nil on miss.
func (c *Cache) Get(ctx context.Context, artistID uuid.UUID) *Schedule {
	if c == nil || c.redis == nil {
		return nil
	}

	raw, err := c.redis.Get(ctx, cacheKeyPrefix+artistID.String()).Bytes()
	if err != nil {
		return nil
	}

	var s Schedule
	if err := json.Unmarshal(raw, &s); err != nil {
		log.Warn().Err(err).Str("artist_id", artistID.String()).Msg("Dropping corrupt schedule cache entry")
		c.Invalidate(ctx, artistID)
		return nil
	}
	return &s
}

// Set stores the schedule for an artist.
func (c *Cache) Set(ctx context.Context, artistID uuid.UUID, s *Schedule) {
	if c == nil || c.redis == nil || s == nil {
		return
	}

	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, cacheKeyPrefix+artistID.String(), raw, cacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("artist_id", artistID.String()).Msg("Failed to cache schedule")
	}
}

// Invalidate drops the cached schedule for an artist.
func (c *Cache) Invalidate(ctx context.Context, artistID uuid.UUID) {
	if c == nil || c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, cacheKeyPrefix+artistID.String()).Err(); err != nil {
		log.Warn().Err(err).Str("artist_id", artistID.String()).Msg("Failed to invalidate schedule cache")
	}
}
