package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	statscache "github.com/clipdeck/statistics-service/internal/cache"
	"github.com/clipdeck/statistics-service/internal/collector"
	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/internal/peers"
	"github.com/clipdeck/statistics-service/internal/platforms"
	"github.com/clipdeck/statistics-service/pkg/logger"
	"github.com/clipdeck/statistics-service/pkg/metrics"
)

type noopPublisher struct{}

func (noopPublisher) PublishStatsUpdated(ctx context.Context, e models.StatsUpdatedEvent) error { return nil }
func (noopPublisher) PublishBotDetected(ctx context.Context, e models.BotDetectedEvent) error   { return nil }

func setupStatsHandler(t *testing.T, clipSrv *httptest.Server, registry *platforms.Registry) *StatsHandler {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	log := logger.New("info", "test")
	m := metrics.New()
	c := statscache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), log, m)

	coll := collector.New(registry, c, noopPublisher{}, log, m)
	clipService := peers.NewClipServiceClient(clipSrv.URL, "statistics-service")

	base := NewBaseHandler(nil, log, nil)
	return NewStatsHandler(base, clipService, coll)
}

func TestGetClipStats_UnknownPlatformReturns422(t *testing.T) {
	gin.SetMode(gin.TestMode)

	clipSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(peers.ClipSummary{SubmissionID: "s1", Platform: "BOGUS", PlatformVideoID: "v1"})
	}))
	t.Cleanup(clipSrv.Close)

	h := setupStatsHandler(t, clipSrv, platforms.NewRegistry())

	r := gin.New()
	r.GET("/stats/:clipId", h.GetClipStats)

	req, _ := http.NewRequest(http.MethodGet, "/stats/s1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetClipStats_ClipNotFoundReturns404(t *testing.T) {
	gin.SetMode(gin.TestMode)

	clipSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(clipSrv.Close)

	h := setupStatsHandler(t, clipSrv, platforms.NewRegistry())

	r := gin.New()
	r.GET("/stats/:clipId", h.GetClipStats)

	req, _ := http.NewRequest(http.MethodGet, "/stats/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBatchRefreshStats_RejectsOversizedBatch(t *testing.T) {
	gin.SetMode(gin.TestMode)

	clipSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(clipSrv.Close)

	h := setupStatsHandler(t, clipSrv, platforms.NewRegistry())

	clips := make([]map[string]string, 0, 501)
	for i := 0; i < 501; i++ {
		clips = append(clips, map[string]string{"submissionId": "s", "platform": "YOUTUBE", "videoId": "v"})
	}
	body, _ := json.Marshal(map[string]any{"clips": clips})

	r := gin.New()
	r.POST("/stats/batch-refresh", h.BatchRefreshStats)

	req, _ := http.NewRequest(http.MethodPost, "/stats/batch-refresh", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
