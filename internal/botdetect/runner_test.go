package botdetect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/internal/peers"
	"github.com/clipdeck/statistics-service/pkg/logger"
	"github.com/clipdeck/statistics-service/pkg/metrics"
)

type fakeBotPublisher struct {
	botFlags []models.BotDetectedEvent
	updated  []models.StatsUpdatedEvent
}

func (f *fakeBotPublisher) PublishStatsUpdated(ctx context.Context, e models.StatsUpdatedEvent) error {
	f.updated = append(f.updated, e)
	return nil
}

func (f *fakeBotPublisher) PublishBotDetected(ctx context.Context, e models.BotDetectedEvent) error {
	f.botFlags = append(f.botFlags, e)
	return nil
}

func newClipServiceServer(t *testing.T, clip peers.ClipSummary, history []models.StatsHistoryEntry) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/clips/"+clip.SubmissionID, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(clip)
	})
	mux.HandleFunc("/clips/"+clip.SubmissionID+"/stats-history", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(history)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunner_PublishesOnSignificantFlag(t *testing.T) {
	now := time.Now()
	history := []models.StatsHistoryEntry{
		{Views: 12000, Likes: 20, Comments: 0, RecordedAt: now},
		{Views: 1000, Likes: 15, Comments: 0, RecordedAt: now.Add(-time.Hour)},
	}
	clip := peers.ClipSummary{SubmissionID: "s1", Platform: "TIKTOK", CampaignID: "c1", UserID: "u1"}
	srv := newClipServiceServer(t, clip, history)

	pub := &fakeBotPublisher{}
	runner := NewRunner(peers.NewClipServiceClient(srv.URL, "statistics-service"), pub, logger.New("info", "test"), metrics.New())

	result := runner.Run(context.Background(), "s1")
	require.True(t, result.HasAnomalies)
	require.Len(t, pub.botFlags, 1)
	assert.Equal(t, "c1", pub.botFlags[0].CampaignID)
	assert.Equal(t, "u1", pub.botFlags[0].UserID)
	assert.Equal(t, models.FlagViewsSpike, pub.botFlags[0].FlagType)
	assert.InDelta(t, 0.9, pub.botFlags[0].Confidence, 0.0001)
}

func TestRunner_NoSignificantFlagsNoPublish(t *testing.T) {
	now := time.Now()
	history := []models.StatsHistoryEntry{
		{Views: 105, Likes: 10, Comments: 1, RecordedAt: now},
		{Views: 100, Likes: 9, Comments: 1, RecordedAt: now.Add(-time.Hour)},
	}
	clip := peers.ClipSummary{SubmissionID: "s1", Platform: "YOUTUBE", CampaignID: "c1", UserID: "u1"}
	srv := newClipServiceServer(t, clip, history)

	pub := &fakeBotPublisher{}
	runner := NewRunner(peers.NewClipServiceClient(srv.URL, "statistics-service"), pub, logger.New("info", "test"), metrics.New())

	result := runner.Run(context.Background(), "s1")
	assert.False(t, result.HasAnomalies)
	assert.Empty(t, pub.botFlags)
}

func TestRunner_FetchFailureReturnsEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	pub := &fakeBotPublisher{}
	runner := NewRunner(peers.NewClipServiceClient(srv.URL, "statistics-service"), pub, logger.New("info", "test"), metrics.New())

	result := runner.Run(context.Background(), "missing")
	assert.False(t, result.HasAnomalies)
	assert.Empty(t, pub.botFlags)
}
