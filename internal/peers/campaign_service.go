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

// CampaignServiceClient wraps the campaign-service HTTP contract.
type CampaignServiceClient struct {
	baseURL     string
	serviceName string
	httpClient  *http.Client
}

// NewCampaignServiceClient builds a CampaignServiceClient.
func NewCampaignServiceClient(baseURL, serviceName string) *CampaignServiceClient {
	return &CampaignServiceClient{baseURL: baseURL, serviceName: serviceName, httpClient: &http.Client{Timeout: 10 * time.Second}}
}

// CampaignSummary is the campaign-service representation of a campaign,
// used to repopulate CampaignCache on a pull-on-miss read.
type CampaignSummary struct {
	CampaignID string `json:"campaignId"`
	Title      string `json:"title"`
	Status     string `json:"status"`
}

// GetCampaign fetches a single campaign by id, with a 5s deadline.
func (c *CampaignServiceClient) GetCampaign(ctx context.Context, campaignID string) (*CampaignSummary, error) {
	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+"/campaigns/"+url.PathEscape(campaignID), nil)
	if err != nil {
		return nil, apperrors.New(apperrors.KindUpstream, "campaignService.GetCampaign", err)
	}
	req.Header.Set(internalServiceHeader, c.serviceName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.New(apperrors.KindUpstream, "campaignService.GetCampaign", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.New(apperrors.KindNotFound, "campaignService.GetCampaign", models.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.New(apperrors.KindUpstream, "campaignService.GetCampaign", fmt.Errorf("status %d", resp.StatusCode))
	}

	var summary CampaignSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, apperrors.New(apperrors.KindParse, "campaignService.GetCampaign", err)
	}
	return &summary, nil
}
