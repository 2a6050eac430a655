package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/clipdeck/statistics-service/internal/models"
)

type deadLetterRepository struct {
	db *gorm.DB
}

// NewDeadLetterRepository creates a new repository.
func NewDeadLetterRepository(db *gorm.DB) models.DeadLetterRepository {
	return &deadLetterRepository{db: db}
}

func (r *deadLetterRepository) Create(msg *models.DeadLetterMessage) error {
	return r.db.Create(msg).Error
}

func (r *deadLetterRepository) Get(id string) (*models.DeadLetterMessage, error) {
	var row models.DeadLetterMessage
	err := r.db.Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *deadLetterRepository) MarkRequeued(id string, requeuedAt time.Time) error {
	res := r.db.Model(&models.DeadLetterMessage{}).Where("id = ?", id).Update("requeued_at", requeuedAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
