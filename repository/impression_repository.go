package repository

import (
	"time"

	"cylink/models"

	"gorm.io/gorm"
)

type ImpressionRepository struct {
	db *gorm.DB
}

func NewImpressionRepository(db *gorm.DB) *ImpressionRepository {
	return &ImpressionRepository{db: db}
}

func (r *ImpressionRepository) Create(impression *models.Impression) error {
	return r.db.Create(impression).Error
}

// ExistsSince reports whether any impression for the (url, IP) pair was
// recorded at or after the given instant.
func (r *ImpressionRepository) ExistsSince(urlID uint, ipAddress string, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.Impression{}).
		Where("url_id = ? AND ip_address = ? AND created_at >= ?", urlID, ipAddress, since).
		Count(&count).Error
	return count > 0, err
}

func (r *ImpressionRepository) Counts(urlID uint) (total int64, unique int64, err error) {
	if err = r.db.Model(&models.Impression{}).
		Where("url_id = ?", urlID).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = r.db.Model(&models.Impression{}).
		Where("url_id = ? AND is_unique = ?", urlID, true).
		Count(&unique).Error
	return total, unique, err
}
