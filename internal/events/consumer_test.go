package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipdeck/statistics-service/internal/campaigncache"
	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/internal/peers"
	"github.com/clipdeck/statistics-service/pkg/logger"
)

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) RefreshClipStats(ctx context.Context, submissionID string, platform models.Platform, videoID string) (*models.PlatformStats, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.PlatformStats{Views: 10}, nil
}

type fakeBotRunner struct {
	calls   []string
	results map[string]models.BotDetectionResult
}

func (f *fakeBotRunner) Run(ctx context.Context, clipID string) models.BotDetectionResult {
	f.calls = append(f.calls, clipID)
	if f.results != nil {
		if r, ok := f.results[clipID]; ok {
			return r
		}
	}
	return models.NoAnomalies()
}

type fakeCacheRepo struct {
	rows map[string]*models.CampaignCacheRow
}

func (f *fakeCacheRepo) Get(campaignID string) (*models.CampaignCacheRow, error) {
	if row, ok := f.rows[campaignID]; ok {
		return row, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeCacheRepo) Upsert(row *models.CampaignCacheRow) error {
	f.rows[row.CampaignID] = row
	return nil
}

func TestDispatch_ClipSubmittedIsNoOp(t *testing.T) {
	c := &Consumer{log: logger.New("info", "test")}
	err := c.dispatch(context.Background(), models.Event{Tag: models.EventClipSubmitted, ClipSubmitted: &models.ClipSubmittedPayload{SubmissionID: "s1"}})
	assert.NoError(t, err)
}

func TestDispatch_StatsRequestedRunsBotDetection(t *testing.T) {
	runner := &fakeBotRunner{}
	c := &Consumer{botRunner: runner, log: logger.New("info", "test")}
	err := c.dispatch(context.Background(), models.Event{Tag: models.EventStatsRequested, StatsRequested: &models.StatsRequestedPayload{SubmissionID: "s1"}})
	assert.NoError(t, err)
	assert.Equal(t, []string{"s1"}, runner.calls)
}

func TestDispatch_ClipApprovedRefreshesWhenVideoIDPresent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(peers.ClipSummary{SubmissionID: "s1", Platform: "YOUTUBE", PlatformVideoID: "v1"})
	}))
	t.Cleanup(srv.Close)

	refresher := &fakeRefresher{}
	c := &Consumer{
		clipService: peers.NewClipServiceClient(srv.URL, "statistics-service"),
		collector:   refresher,
		log:         logger.New("info", "test"),
	}

	err := c.dispatch(context.Background(), models.Event{Tag: models.EventClipApproved, ClipApproved: &models.ClipApprovedPayload{SubmissionID: "s1"}})
	require.NoError(t, err)
	assert.Equal(t, 1, refresher.calls)
}

func TestDispatch_ClipApprovedSkipsRefreshWithoutVideoID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(peers.ClipSummary{SubmissionID: "s1", Platform: "YOUTUBE", PlatformVideoID: ""})
	}))
	t.Cleanup(srv.Close)

	refresher := &fakeRefresher{}
	c := &Consumer{
		clipService: peers.NewClipServiceClient(srv.URL, "statistics-service"),
		collector:   refresher,
		log:         logger.New("info", "test"),
	}

	err := c.dispatch(context.Background(), models.Event{Tag: models.EventClipApproved, ClipApproved: &models.ClipApprovedPayload{SubmissionID: "s1"}})
	require.NoError(t, err)
	assert.Equal(t, 0, refresher.calls)
}

func TestDispatch_ClipApprovedPropagatesRefreshError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(peers.ClipSummary{SubmissionID: "s1", Platform: "YOUTUBE", PlatformVideoID: "v1"})
	}))
	t.Cleanup(srv.Close)

	refresher := &fakeRefresher{err: errors.New("upstream down")}
	c := &Consumer{
		clipService: peers.NewClipServiceClient(srv.URL, "statistics-service"),
		collector:   refresher,
		log:         logger.New("info", "test"),
	}

	err := c.dispatch(context.Background(), models.Event{Tag: models.EventClipApproved, ClipApproved: &models.ClipApprovedPayload{SubmissionID: "s1"}})
	assert.Error(t, err)
}

func TestDispatch_CampaignCreatedUpsertsCache(t *testing.T) {
	repo := &fakeCacheRepo{rows: map[string]*models.CampaignCacheRow{}}
	cache := campaigncache.New(repo, peers.NewCampaignServiceClient("http://unused", "statistics-service"), logger.New("info", "test"))
	c := &Consumer{campaigns: cache, log: logger.New("info", "test")}

	err := c.dispatch(context.Background(), models.Event{Tag: models.EventCampaignCreated, CampaignCreated: &models.CampaignCreatedPayload{CampaignID: "c1", Title: "Summer Push"}})
	require.NoError(t, err)
	assert.Equal(t, "Summer Push", repo.rows["c1"].Title)
	assert.Equal(t, "ACTIVE", repo.rows["c1"].Status)
}

func TestDecodeEvent_UnknownRoutingKeyErrors(t *testing.T) {
	_, err := decodeEvent("something.unknown", []byte(`{}`))
	assert.Error(t, err)
}

func TestDecodeEvent_ClipApprovedRoundTrips(t *testing.T) {
	body, _ := json.Marshal(models.ClipApprovedPayload{SubmissionID: "s1", Platform: "YOUTUBE", PlatformVideoID: "v1"})
	event, err := decodeEvent(string(models.EventClipApproved), body)
	require.NoError(t, err)
	assert.Equal(t, "s1", event.ClipApproved.SubmissionID)
}
