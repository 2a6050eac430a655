package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/clipdeck/statistics-service/internal/models"
)

type campaignCacheRepository struct {
	db *gorm.DB
}

// NewCampaignCacheRepository creates a new repository.
func NewCampaignCacheRepository(db *gorm.DB) models.CampaignCacheRepository {
	return &campaignCacheRepository{db: db}
}

func (r *campaignCacheRepository) Get(campaignID string) (*models.CampaignCacheRow, error) {
	var row models.CampaignCacheRow
	err := r.db.Where("campaign_id = ?", campaignID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *campaignCacheRepository) Upsert(row *models.CampaignCacheRow) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.CampaignCacheRow
		err := tx.Where("campaign_id = ?", row.CampaignID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(row).Error
		case err != nil:
			return err
		default:
			return tx.Model(&existing).Where("campaign_id = ?", row.CampaignID).Updates(map[string]any{
				"title":     row.Title,
				"status":    row.Status,
				"synced_at": row.SyncedAt,
			}).Error
		}
	})
}
