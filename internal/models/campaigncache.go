package models

import "time"

// CampaignCacheRow is the local mirror of campaign metadata, kept warm by
// campaign.created/campaign.status_changed events or a pull-on-miss read
// through campaign-service.
type CampaignCacheRow struct {
	CampaignID string    `json:"campaignId" gorm:"primaryKey;column:campaign_id;type:varchar(36)"`
	Title      string    `json:"title" gorm:"column:title;type:varchar(255);not null"`
	Status     string    `json:"status" gorm:"column:status;type:varchar(50);not null"`
	SyncedAt   time.Time `json:"syncedAt" gorm:"column:synced_at;not null"`
}

func (CampaignCacheRow) TableName() string { return "campaign_cache" }

// StalenessThreshold is the age beyond which a CampaignCacheRow is
// considered stale and should be refreshed on next read.
const StalenessThreshold = 5 * time.Minute

// Stale reports whether the row was synced longer ago than StalenessThreshold.
func (r CampaignCacheRow) Stale(now time.Time) bool {
	return now.Sub(r.SyncedAt) > StalenessThreshold
}

// CampaignCacheRepository persists CampaignCacheRow. Upsert is keyed on
// campaign_id.
type CampaignCacheRepository interface {
	Get(campaignID string) (*CampaignCacheRow, error)
	Upsert(row *CampaignCacheRow) error
}
