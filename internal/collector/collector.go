// Package collector implements StatsCollector: the orchestration layer
// that fetches fresh counters via a platform adapter, writes them through
// the cache, and republishes stats.updated.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/clipdeck/statistics-service/internal/cache"
	"github.com/clipdeck/statistics-service/internal/events"
	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/internal/platforms"
	"github.com/clipdeck/statistics-service/pkg/logger"
	"github.com/clipdeck/statistics-service/pkg/metrics"
)

// batchInterRequestDelay paces sequential platform fetches to stay under
// the free-tier soft limits of all four upstreams (~10 rps per worker).
const batchInterRequestDelay = 100 * time.Millisecond

// BatchSizeLimit bounds the clips a single batch refresh call accepts;
// enforced by the HTTP handler / scheduler caller, not here.
const BatchSizeLimit = 500

// ClipRef identifies one clip to refresh.
type ClipRef struct {
	SubmissionID string
	Platform     models.Platform
	VideoID      string
}

// BatchResult is the outcome of a batchRefreshStats run.
type BatchResult struct {
	SuccessCount int
	FailCount    int
}

// StatsCollector is the sole writer of StatsCache entries.
type StatsCollector struct {
	registry  *platforms.Registry
	cache     *cache.StatsCache
	publisher events.Publisher
	log       *logger.Logger
	m         *metrics.Metrics
}

// New builds a StatsCollector.
func New(registry *platforms.Registry, statsCache *cache.StatsCache, publisher events.Publisher, log *logger.Logger, m *metrics.Metrics) *StatsCollector {
	return &StatsCollector{registry: registry, cache: statsCache, publisher: publisher, log: log, m: m}
}

// RefreshClipStats fetches fresh stats via the matching platform adapter,
// writes the cache (best-effort), and publishes stats.updated
// (best-effort). Adapter errors propagate to the caller.
func (c *StatsCollector) RefreshClipStats(ctx context.Context, submissionID string, platform models.Platform, videoID string) (*models.PlatformStats, error) {
	adapter, ok := c.registry.Get(platform)
	if !ok {
		return nil, fmt.Errorf("no adapter registered for platform %s", platform)
	}

	start := time.Now()
	stats, err := adapter.Fetch(ctx, videoID)
	c.m.RecordPlatformFetch(string(platform), fetchStatus(err), time.Since(start))
	if err != nil {
		return nil, err
	}

	c.cache.Set(ctx, platform, videoID, stats)

	engagement := stats.Engagement()
	if pubErr := c.publisher.PublishStatsUpdated(ctx, models.StatsUpdatedEvent{
		ClipID:     submissionID,
		Views:      stats.Views,
		Likes:      stats.Likes,
		Comments:   stats.Comments,
		Shares:     stats.Shares,
		Engagement: engagement,
	}); pubErr != nil {
		c.log.Warn("stats.updated publish failed", "submissionId", submissionID, "error", pubErr)
	}

	return stats, nil
}

func fetchStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// GetOrFetchStats reads the cache first; on a hit it returns the cached
// tuple without touching the platform adapter. On a miss it delegates to
// RefreshClipStats.
func (c *StatsCollector) GetOrFetchStats(ctx context.Context, submissionID string, platform models.Platform, videoID string) (*models.PlatformStats, error) {
	if cached, ok := c.cache.Get(ctx, platform, videoID); ok {
		return cached, nil
	}
	return c.RefreshClipStats(ctx, submissionID, platform, videoID)
}

// BatchRefreshStats sequentially refreshes every clip with a fixed
// inter-request pause after each one (success or failure), so bursts never
// exceed the platforms' free-tier rate limits. Per-clip failures are
// counted and never abort the batch.
func (c *StatsCollector) BatchRefreshStats(ctx context.Context, clips []ClipRef) BatchResult {
	start := time.Now()
	var result BatchResult

	for _, clip := range clips {
		_, err := c.RefreshClipStats(ctx, clip.SubmissionID, clip.Platform, clip.VideoID)
		if err != nil {
			result.FailCount++
			c.log.Warn("batch refresh failed for clip", "submissionId", clip.SubmissionID, "error", err)
		} else {
			result.SuccessCount++
		}

		select {
		case <-ctx.Done():
			c.m.RecordBatchRefresh(result.SuccessCount, result.FailCount, time.Since(start))
			return result
		case <-time.After(batchInterRequestDelay):
		}
	}

	c.m.RecordBatchRefresh(result.SuccessCount, result.FailCount, time.Since(start))
	return result
}
