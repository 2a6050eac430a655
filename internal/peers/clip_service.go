// Package peers implements the outbound HTTP clients for the clip-service
// and campaign-service collaborators. Every call carries the
// X-Internal-Service header and an explicit context deadline; their
// internals are opaque, only the contracts in this package matter.
package peers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/clipdeck/statistics-service/internal/apperrors"
	"github.com/clipdeck/statistics-service/internal/models"
)

const internalServiceHeader = "X-Internal-Service"

// ClipServiceClient wraps the clip-service HTTP contract.
type ClipServiceClient struct {
	baseURL     string
	serviceName string
	httpClient  *http.Client
}

// NewClipServiceClient builds a ClipServiceClient.
func NewClipServiceClient(baseURL, serviceName string) *ClipServiceClient {
	return &ClipServiceClient{baseURL: baseURL, serviceName: serviceName, httpClient: &http.Client{Timeout: 30 * time.Second}}
}

// ClipSummary is the clip-service representation of a submission needed to
// drive a refresh.
type ClipSummary struct {
	SubmissionID    string `json:"submissionId"`
	Platform        string `json:"platform"`
	PlatformVideoID string `json:"platformVideoId"`
	CampaignID      string `json:"campaignId"`
	UserID          string `json:"userId"`
}

func (c *ClipServiceClient) do(ctx context.Context, method, path string, timeout time.Duration, out any) error {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, nil)
	if err != nil {
		return apperrors.New(apperrors.KindUpstream, "clipService."+path, err)
	}
	req.Header.Set(internalServiceHeader, c.serviceName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.New(apperrors.KindUpstream, "clipService."+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.New(apperrors.KindNotFound, "clipService."+path, models.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.New(apperrors.KindUpstream, "clipService."+path, fmt.Errorf("status %d", resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.New(apperrors.KindParse, "clipService."+path, err)
	}
	return nil
}

// GetClip fetches a single clip by submission id, with a 5s deadline.
func (c *ClipServiceClient) GetClip(ctx context.Context, submissionID string) (*ClipSummary, error) {
	var summary ClipSummary
	if err := c.do(ctx, http.MethodGet, "/clips/"+url.PathEscape(submissionID), 5*time.Second, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// NeedsRefresh lists clips the scheduled batch refresh should process.
func (c *ClipServiceClient) NeedsRefresh(ctx context.Context) ([]ClipSummary, error) {
	var clips []ClipSummary
	if err := c.do(ctx, http.MethodGet, "/clips/needs-refresh", 30*time.Second, &clips); err != nil {
		return nil, err
	}
	return clips, nil
}

// GetStatsHistory fetches the newest-first counter history for a clip,
// used by the bot-detection wrapper.
func (c *ClipServiceClient) GetStatsHistory(ctx context.Context, submissionID string) ([]models.StatsHistoryEntry, error) {
	var history []models.StatsHistoryEntry
	path := fmt.Sprintf("/clips/%s/stats-history", url.PathEscape(submissionID))
	if err := c.do(ctx, http.MethodGet, path, 10*time.Second, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// GetApprovedForRankings fetches pre-aggregated clip data for the given ISO
// week, the input to the weekly clip ranking calculation.
func (c *ClipServiceClient) GetApprovedForRankings(ctx context.Context, weekStart, weekEnd time.Time) ([]models.RankableClip, error) {
	q := url.Values{}
	q.Set("weekStart", weekStart.Format("2006-01-02"))
	q.Set("weekEnd", weekEnd.Format("2006-01-02"))
	var clips []models.RankableClip
	path := "/clips/approved-for-rankings?" + q.Encode()
	if err := c.do(ctx, http.MethodGet, path, 30*time.Second, &clips); err != nil {
		return nil, err
	}
	return clips, nil
}

// GetCampaignStatsForRankings fetches pre-aggregated campaign data for the
// given ISO week, the input to the weekly campaign ranking calculation.
func (c *ClipServiceClient) GetCampaignStatsForRankings(ctx context.Context, weekStart, weekEnd time.Time) ([]models.RankableCampaign, error) {
	q := url.Values{}
	q.Set("weekStart", weekStart.Format("2006-01-02"))
	q.Set("weekEnd", weekEnd.Format("2006-01-02"))
	var campaigns []models.RankableCampaign
	path := "/clips/campaign-stats-for-rankings?" + q.Encode()
	if err := c.do(ctx, http.MethodGet, path, 30*time.Second, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}
