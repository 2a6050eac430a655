package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/clipdeck/statistics-service/internal/models"
)

type rankingRepository struct {
	db *gorm.DB
}

// NewRankingRepository creates a new repository.
func NewRankingRepository(db *gorm.DB) models.RankingRepository {
	return &rankingRepository{db: db}
}

// UpsertClipRankings writes every row in a single transaction: update on
// primary-key hit, insert on miss.
func (r *rankingRepository) UpsertClipRankings(rows []models.WeeklyClipRanking) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			var existing models.WeeklyClipRanking
			err := tx.Where("week_start = ? AND submission_id = ?", row.WeekStart, row.SubmissionID).First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				if err := tx.Model(&existing).
					Where("week_start = ? AND submission_id = ?", row.WeekStart, row.SubmissionID).
					Updates(map[string]any{
						"week_end":   row.WeekEnd,
						"platform":   row.Platform,
						"views":      row.Views,
						"likes":      row.Likes,
						"engagement": row.Engagement,
						"rank":       row.Rank,
					}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// UpsertCampaignRankings is the campaign-level analogue of
// UpsertClipRankings.
func (r *rankingRepository) UpsertCampaignRankings(rows []models.WeeklyCampaignRanking) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			var existing models.WeeklyCampaignRanking
			err := tx.Where("week_start = ? AND campaign_id = ?", row.WeekStart, row.CampaignID).First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				if err := tx.Model(&existing).
					Where("week_start = ? AND campaign_id = ?", row.WeekStart, row.CampaignID).
					Updates(map[string]any{
						"week_end":       row.WeekEnd,
						"total_views":    row.TotalViews,
						"total_likes":    row.TotalLikes,
						"avg_engagement": row.AvgEngagement,
						"clips_count":    row.ClipsCount,
						"rank":           row.Rank,
					}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// GetClipRankings returns the top `limit` ranked clips for weekStart,
// optionally filtered by platform, ordered by rank ascending.
func (r *rankingRepository) GetClipRankings(weekStart time.Time, platform string, limit int) ([]models.WeeklyClipRanking, error) {
	var rows []models.WeeklyClipRanking
	q := r.db.Where("week_start = ?", weekStart)
	if platform != "" {
		q = q.Where("platform = ?", platform)
	}
	err := q.Order("rank ASC").Limit(limit).Find(&rows).Error
	return rows, err
}

// GetCampaignRankings returns the top `limit` ranked campaigns for
// weekStart, ordered by rank ascending.
func (r *rankingRepository) GetCampaignRankings(weekStart time.Time, limit int) ([]models.WeeklyCampaignRanking, error) {
	var rows []models.WeeklyCampaignRanking
	err := r.db.Where("week_start = ?", weekStart).Order("rank ASC").Limit(limit).Find(&rows).Error
	return rows, err
}
