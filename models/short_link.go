package models

import (
	"time"

	"gorm.io/gorm"
)

// Redirect types as stored on the link. Anything other than the permanent
// marker redirects with 302.
const (
	RedirectTypePermanent = "301"
	RedirectTypeTemporary = "302"
)

type ShortLink struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       *uint          `json:"user_id" gorm:"index"`
	OriginalURL  string         `json:"original_url" gorm:"not null"`
	ShortCode    string         `json:"short_code" gorm:"uniqueIndex;not null"`
	Title        *string        `json:"title,omitempty"`
	RedirectType string         `json:"redirect_type" gorm:"size:3;default:'302'"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	Password     *string        `json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	ExpiresAt    *time.Time     `json:"expires_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	Clicks      []Click          `json:"clicks,omitempty" gorm:"foreignKey:URLID"`
	Impressions []Impression     `json:"-" gorm:"foreignKey:URLID"`
	Goals       []ConversionGoal `json:"goals,omitempty" gorm:"foreignKey:URLID"`
}

// Expired reports whether the link's expiry, if set, has passed.
func (l *ShortLink) Expired() bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(time.Now())
}
