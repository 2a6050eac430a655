package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	statscache "github.com/clipdeck/statistics-service/internal/cache"
	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/internal/platforms"
	"github.com/clipdeck/statistics-service/pkg/logger"
	"github.com/clipdeck/statistics-service/pkg/metrics"
)

type fakeAdapter struct {
	stats *models.PlatformStats
	err   error
	calls int
}

func (f *fakeAdapter) Fetch(ctx context.Context, videoID string) (*models.PlatformStats, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

type fakePublisher struct {
	updated []models.StatsUpdatedEvent
	botFlag []models.BotDetectedEvent
}

func (f *fakePublisher) PublishStatsUpdated(ctx context.Context, e models.StatsUpdatedEvent) error {
	f.updated = append(f.updated, e)
	return nil
}

func (f *fakePublisher) PublishBotDetected(ctx context.Context, e models.BotDetectedEvent) error {
	f.botFlag = append(f.botFlag, e)
	return nil
}

func newTestCollector(t *testing.T, adapter *fakeAdapter, pub *fakePublisher) *StatsCollector {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	log := logger.New("info", "test")
	m := metrics.New()
	c := statscache.New(redisClient, log, m)

	registry := platforms.NewRegistry()
	registry.Register(models.PlatformYouTube, adapter)

	return New(registry, c, pub, log, m)
}

func TestGetOrFetchStats_CacheHitSkipsAdapter(t *testing.T) {
	adapter := &fakeAdapter{stats: &models.PlatformStats{Views: 100, Likes: 10, Comments: 2}}
	pub := &fakePublisher{}
	c := newTestCollector(t, adapter, pub)
	ctx := context.Background()

	_, err := c.RefreshClipStats(ctx, "s1", models.PlatformYouTube, "abc")
	require.NoError(t, err)
	require.Equal(t, 1, adapter.calls)
	require.Len(t, pub.updated, 1)
	assert.InDelta(t, 0.12, pub.updated[0].Engagement, 0.0001)

	stats, err := c.GetOrFetchStats(ctx, "s1", models.PlatformYouTube, "abc")
	require.NoError(t, err)
	require.Equal(t, int64(100), stats.Views)
	require.Equal(t, 1, adapter.calls, "cache hit must not call the adapter again")
}

func TestRefreshClipStats_AdapterErrorPropagates(t *testing.T) {
	adapter := &fakeAdapter{err: errors.New("upstream down")}
	pub := &fakePublisher{}
	c := newTestCollector(t, adapter, pub)

	_, err := c.RefreshClipStats(context.Background(), "s1", models.PlatformYouTube, "abc")
	assert.Error(t, err)
	assert.Empty(t, pub.updated)
}

func TestBatchRefreshStats_RefreshesAllAndPacesEachClip(t *testing.T) {
	adapter := &fakeAdapter{stats: &models.PlatformStats{Views: 1}}
	pub := &fakePublisher{}
	c := newTestCollector(t, adapter, pub)

	clips := []ClipRef{
		{SubmissionID: "a", Platform: models.PlatformYouTube, VideoID: "1"},
		{SubmissionID: "b", Platform: models.PlatformYouTube, VideoID: "2"},
		{SubmissionID: "c", Platform: models.PlatformYouTube, VideoID: "3"},
	}

	start := time.Now()
	result := c.BatchRefreshStats(context.Background(), clips)
	elapsed := time.Since(start)

	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 0, result.FailCount)
	assert.GreaterOrEqual(t, elapsed, 300*time.Millisecond)
}

func TestBatchRefreshStats_PerClipFailureCounted(t *testing.T) {
	pub := &fakePublisher{}
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	log := logger.New("info", "test")
	m := metrics.New()
	c := statscache.New(redisClient, log, m)

	registry := platforms.NewRegistry()
	registry.Register(models.PlatformYouTube, &fakeAdapter{err: errors.New("fail")})
	collector := New(registry, c, pub, log, m)

	clips := []ClipRef{
		{SubmissionID: "a", Platform: models.PlatformYouTube, VideoID: "1"},
		{SubmissionID: "b", Platform: models.PlatformYouTube, VideoID: "2"},
	}
	result := collector.BatchRefreshStats(context.Background(), clips)
	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, 2, result.FailCount)
}
