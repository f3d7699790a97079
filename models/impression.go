package models

import (
	"time"
)

// Impression is one recorded visit attempt, used for reach metrics. A visit
// from the same (url, IP) pair within the uniqueness window is stored with
// IsUnique=false. The flag is never edited after insert.
type Impression struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	URLID     uint      `json:"url_id" gorm:"index:idx_impressions_url_ip;not null"`
	IPAddress string    `json:"ip_address" gorm:"index:idx_impressions_url_ip;size:45"`
	UserAgent string    `json:"user_agent" gorm:"size:500"`
	Referrer  string    `json:"referrer" gorm:"size:500"`
	Source    string    `json:"source" gorm:"size:255"`
	IsUnique  bool      `json:"is_unique"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
