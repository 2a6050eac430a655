// Package campaigncache mirrors campaign metadata locally, kept warm by
// campaign.created/campaign.status_changed events and refreshed on a
// pull-on-miss or staleness read.
package campaigncache

import (
	"context"
	"errors"
	"time"

	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/internal/peers"
	"github.com/clipdeck/statistics-service/pkg/logger"
)

// Cache is the sole owner of campaign_cache rows.
type Cache struct {
	repo            models.CampaignCacheRepository
	campaignService *peers.CampaignServiceClient
	log             *logger.Logger
	now             func() time.Time
}

// New builds a Cache.
func New(repo models.CampaignCacheRepository, campaignService *peers.CampaignServiceClient, log *logger.Logger) *Cache {
	return &Cache{repo: repo, campaignService: campaignService, log: log, now: time.Now}
}

// Get returns the cached row, refreshing from campaign-service on a miss or
// a stale row. A refresh failure on a stale-but-present row returns the
// stale row rather than an error.
func (c *Cache) Get(ctx context.Context, campaignID string) (*models.CampaignCacheRow, error) {
	row, err := c.repo.Get(campaignID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	if row != nil && !row.Stale(c.now()) {
		return row, nil
	}

	fresh, fetchErr := c.refresh(ctx, campaignID)
	if fetchErr != nil {
		if row != nil {
			c.log.Warn("campaign cache refresh failed, serving stale row", "campaignId", campaignID, "error", fetchErr)
			return row, nil
		}
		return nil, fetchErr
	}
	return fresh, nil
}

// OnCampaignCreated upserts a row from a campaign.created event payload.
func (c *Cache) OnCampaignCreated(ctx context.Context, payload models.CampaignCreatedPayload) error {
	row := &models.CampaignCacheRow{
		CampaignID: payload.CampaignID,
		Title:      payload.Title,
		Status:     "ACTIVE",
		SyncedAt:   c.now(),
	}
	return c.repo.Upsert(row)
}

// OnCampaignStatusChanged upserts the new status from a
// campaign.status_changed event payload, pulling the current title from
// campaign-service if the row is not already cached.
func (c *Cache) OnCampaignStatusChanged(ctx context.Context, payload models.CampaignStatusChangedPayload) error {
	existing, err := c.repo.Get(payload.CampaignID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}
	title := ""
	if existing != nil {
		title = existing.Title
	} else if summary, fetchErr := c.campaignService.GetCampaign(ctx, payload.CampaignID); fetchErr == nil {
		title = summary.Title
	} else {
		c.log.Warn("campaign cache: title lookup failed", "campaignId", payload.CampaignID, "error", fetchErr)
	}
	row := &models.CampaignCacheRow{
		CampaignID: payload.CampaignID,
		Title:      title,
		Status:     payload.NewStatus,
		SyncedAt:   c.now(),
	}
	return c.repo.Upsert(row)
}

func (c *Cache) refresh(ctx context.Context, campaignID string) (*models.CampaignCacheRow, error) {
	summary, err := c.campaignService.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	row := &models.CampaignCacheRow{
		CampaignID: summary.CampaignID,
		Title:      summary.Title,
		Status:     summary.Status,
		SyncedAt:   c.now(),
	}
	if err := c.repo.Upsert(row); err != nil {
		return nil, err
	}
	return row, nil
}
