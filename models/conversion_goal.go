package models

import (
	"time"
)

// ConversionGoal is a configured target event attached to a link. The
// redirect path only reads goals; when a link carries several, the first is
// used for attribution.
type ConversionGoal struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	URLID       uint      `json:"url_id" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at"`
}
