package campaigncache

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
)

type fakeCampaignCacheRepo struct {
	rows map[string]*models.CampaignCacheRow
}

func newFakeCampaignCacheRepo() *fakeCampaignCacheRepo {
	return &fakeCampaignCacheRepo{rows: make(map[string]*models.CampaignCacheRow)}
}

func (f *fakeCampaignCacheRepo) Get(campaignID string) (*models.CampaignCacheRow, error) {
	row, ok := f.rows[campaignID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return row, nil
}

func (f *fakeCampaignCacheRepo) Upsert(row *models.CampaignCacheRow) error {
	cp := *row
	f.rows[row.CampaignID] = &cp
	return nil
}

func newCacheWithServer(t *testing.T, campaign peers.CampaignSummary) (*Cache, *fakeCampaignCacheRepo, func(time.Time)) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(campaign)
	}))
	t.Cleanup(srv.Close)

	repo := newFakeCampaignCacheRepo()
	c := New(repo, peers.NewCampaignServiceClient(srv.URL, "statistics-service"), logger.New("info", "test"))
	var frozen time.Time
	c.now = func() time.Time { return frozen }
	return c, repo, func(t time.Time) { frozen = t }
}

func TestGet_MissPullsThroughAndUpserts(t *testing.T) {
	c, repo, setNow := newCacheWithServer(t, peers.CampaignSummary{CampaignID: "c1", Title: "Summer Push", Status: "ACTIVE"})
	setNow(time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC))

	row, err := c.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Summer Push", row.Title)
	assert.Contains(t, repo.rows, "c1")
}

func TestGet_StaleRowRefreshes(t *testing.T) {
	c, repo, setNow := newCacheWithServer(t, peers.CampaignSummary{CampaignID: "c1", Title: "Updated Title", Status: "PAUSED"})
	repo.rows["c1"] = &models.CampaignCacheRow{CampaignID: "c1", Title: "Old Title", Status: "ACTIVE", SyncedAt: time.Date(2026, 7, 31, 11, 0, 0, 0, time.UTC)}
	setNow(time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)) // 1h later, past the 5m threshold

	row, err := c.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", row.Title)
	assert.Equal(t, "PAUSED", row.Status)
}

func TestGet_FreshRowSkipsRefresh(t *testing.T) {
	c, repo, setNow := newCacheWithServer(t, peers.CampaignSummary{CampaignID: "c1", Title: "Should Not Be Seen", Status: "ACTIVE"})
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	repo.rows["c1"] = &models.CampaignCacheRow{CampaignID: "c1", Title: "Cached Title", Status: "ACTIVE", SyncedAt: now.Add(-time.Minute)}
	setNow(now)

	row, err := c.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Cached Title", row.Title)
}

func TestOnCampaignStatusChanged_PreservesTitleWhenAlreadyCached(t *testing.T) {
	c, repo, setNow := newCacheWithServer(t, peers.CampaignSummary{})
	setNow(time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC))
	repo.rows["c1"] = &models.CampaignCacheRow{CampaignID: "c1", Title: "Summer Push", Status: "ACTIVE", SyncedAt: time.Now()}

	err := c.OnCampaignStatusChanged(context.Background(), models.CampaignStatusChangedPayload{CampaignID: "c1", NewStatus: "ENDED"})
	require.NoError(t, err)
	assert.Equal(t, "Summer Push", repo.rows["c1"].Title)
	assert.Equal(t, "ENDED", repo.rows["c1"].Status)
}
