package rankings

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

type fakeRankingRepo struct {
	clipRows     []models.WeeklyClipRanking
	campaignRows []models.WeeklyCampaignRanking
}

func (f *fakeRankingRepo) UpsertClipRankings(rows []models.WeeklyClipRanking) error {
	f.clipRows = rows
	return nil
}

func (f *fakeRankingRepo) UpsertCampaignRankings(rows []models.WeeklyCampaignRanking) error {
	f.campaignRows = rows
	return nil
}

func (f *fakeRankingRepo) GetClipRankings(weekStart time.Time, platform string, limit int) ([]models.WeeklyClipRanking, error) {
	return f.clipRows, nil
}

func (f *fakeRankingRepo) GetCampaignRankings(weekStart time.Time, limit int) ([]models.WeeklyCampaignRanking, error) {
	return f.campaignRows, nil
}

func newEngineWithClips(t *testing.T, clips []models.RankableClip) (*Engine, *fakeRankingRepo) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/clips/approved-for-rankings", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(clips)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	repo := &fakeRankingRepo{}
	engine := New(peers.NewClipServiceClient(srv.URL, "statistics-service"), repo, logger.New("info", "test"), metrics.New())
	return engine, repo
}

func TestComputeClipRankings_TieBrokenByEngagement(t *testing.T) {
	clips := []models.RankableClip{
		{SubmissionID: "a", Views: 100, Engagement: 0.1},
		{SubmissionID: "b", Views: 100, Engagement: 0.2},
	}
	engine, repo := newEngineWithClips(t, clips)

	err := engine.ComputeClipRankings(context.Background(), time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, repo.clipRows, 2)
	assert.Equal(t, "b", repo.clipRows[0].SubmissionID)
	assert.Equal(t, 1, repo.clipRows[0].Rank)
	assert.Equal(t, "a", repo.clipRows[1].SubmissionID)
	assert.Equal(t, 2, repo.clipRows[1].Rank)
}

func TestComputeClipRankings_RanksAreContiguousWithNoGaps(t *testing.T) {
	clips := []models.RankableClip{
		{SubmissionID: "a", Views: 300},
		{SubmissionID: "b", Views: 300},
		{SubmissionID: "c", Views: 100},
	}
	engine, repo := newEngineWithClips(t, clips)

	err := engine.ComputeClipRankings(context.Background(), time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, repo.clipRows, 3)
	for i, row := range repo.clipRows {
		assert.Equal(t, i+1, row.Rank)
	}
}

func TestComputeClipRankings_EmptyInputReturnsSilently(t *testing.T) {
	engine, repo := newEngineWithClips(t, []models.RankableClip{})
	err := engine.ComputeClipRankings(context.Background(), time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, repo.clipRows)
}
