package repository

import (
	"cylink/models"

	"gorm.io/gorm"
)

type ClickRepository struct {
	db *gorm.DB
}

func NewClickRepository(db *gorm.DB) *ClickRepository {
	return &ClickRepository{db: db}
}

func (r *ClickRepository) Create(click *models.Click) error {
	return r.db.Create(click).Error
}

func (r *ClickRepository) CountByURL(urlID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Click{}).
		Where("url_id = ?", urlID).
		Count(&count).Error
	return count, err
}

func (r *ClickRepository) ListByURL(urlID uint) ([]models.Click, error) {
	var clicks []models.Click
	err := r.db.Where("url_id = ?", urlID).
		Order("clicked_at desc").
		Find(&clicks).Error
	return clicks, err
}
