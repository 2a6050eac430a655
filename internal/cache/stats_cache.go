// Package cache implements the Redis-backed stats cache: a key/value
// mirror of the last-known counter tuple for each (platform, videoId),
// advisory only — correctness of the pipeline never depends on it being
// warm.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/pkg/logger"
	"github.com/clipdeck/statistics-service/pkg/metrics"
)

// TTL is the fixed lifetime applied to every cache write.
const TTL = 3600 * time.Second

// StatsCache is the sole writer of stats:{platform}:{videoId} entries.
type StatsCache struct {
	client *redis.Client
	log    *logger.Logger
	m      *metrics.Metrics
}

// New builds a StatsCache over an already-connected redis.Client.
func New(client *redis.Client, log *logger.Logger, m *metrics.Metrics) *StatsCache {
	return &StatsCache{client: client, log: log, m: m}
}

func key(platform models.Platform, videoID string) string {
	return "stats:" + string(platform) + ":" + videoID
}

// Get returns the cached PlatformStats for (platform, videoId), or
// ok=false on a miss or deserialization error. A deserialization error is
// logged and treated as a miss — it never propagates.
func (c *StatsCache) Get(ctx context.Context, platform models.Platform, videoID string) (*models.PlatformStats, bool) {
	raw, err := c.client.Get(ctx, key(platform, videoID)).Result()
	if err == redis.Nil {
		c.m.RecordCacheMiss(string(platform))
		return nil, false
	}
	if err != nil {
		c.log.Warn("stats cache read failed", "platform", platform, "videoId", videoID, "error", err)
		c.m.RecordCacheMiss(string(platform))
		return nil, false
	}

	var stats models.PlatformStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		c.log.Warn("stats cache deserialize failed", "platform", platform, "videoId", videoID, "error", err)
		c.m.RecordCacheMiss(string(platform))
		return nil, false
	}

	c.m.RecordCacheHit(string(platform))
	return &stats, true
}

// Set writes stats for (platform, videoId) with the fixed TTL. Write
// failures are logged and swallowed, per the cache's advisory contract.
func (c *StatsCache) Set(ctx context.Context, platform models.Platform, videoID string, stats *models.PlatformStats) {
	payload, err := json.Marshal(stats)
	if err != nil {
		c.log.Warn("stats cache serialize failed", "platform", platform, "videoId", videoID, "error", err)
		return
	}

	if err := c.client.Set(ctx, key(platform, videoID), payload, TTL).Err(); err != nil {
		c.log.Warn("stats cache write failed", "platform", platform, "videoId", videoID, "error", err)
	}
}
