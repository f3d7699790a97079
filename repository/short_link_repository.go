package repository

import (
	"time"

	"cylink/models"

	"gorm.io/gorm"
)

type ShortLinkRepository struct {
	db *gorm.DB
}

func NewShortLinkRepository(db *gorm.DB) *ShortLinkRepository {
	return &ShortLinkRepository{db: db}
}

func (r *ShortLinkRepository) Create(link *models.ShortLink) error {
	return r.db.Create(link).Error
}

// FindByCode returns the live link for a short code. Deactivated links are
// excluded here; soft-deleted rows are excluded by GORM. Expiry is not
// evaluated at this level.
func (r *ShortLinkRepository) FindByCode(shortCode string) (*models.ShortLink, error) {
	var link models.ShortLink
	err := r.db.Where("short_code = ? AND is_active = ?", shortCode, true).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// FindByCodeAny ignores the activation flag so owners can still reach
// expired or deactivated links. Soft-deleted rows stay hidden.
func (r *ShortLinkRepository) FindByCodeAny(shortCode string) (*models.ShortLink, error) {
	var link models.ShortLink
	err := r.db.Where("short_code = ?", shortCode).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *ShortLinkRepository) CodeTaken(shortCode string) (bool, error) {
	var count int64
	err := r.db.Model(&models.ShortLink{}).
		Unscoped().
		Where("short_code = ?", shortCode).
		Count(&count).Error
	return count > 0, err
}

func (r *ShortLinkRepository) RedirectType(shortCode string) (string, error) {
	var link models.ShortLink
	err := r.db.Select("redirect_type").
		Where("short_code = ?", shortCode).
		Take(&link).Error
	if err != nil {
		return "", err
	}
	return link.RedirectType, nil
}

func (r *ShortLinkRepository) SoftDelete(id uint) error {
	return r.db.Delete(&models.ShortLink{}, id).Error
}

// DeactivateExpired flips is_active off for every link whose expiry has
// passed. Used by the maintenance scheduler.
func (r *ShortLinkRepository) DeactivateExpired() (int64, error) {
	result := r.db.Model(&models.ShortLink{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, time.Now()).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
