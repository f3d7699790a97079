package models

import (
	"time"
)

// Click is one successful resolution-and-redirect event. Rows are append-only.
type Click struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	URLID      uint      `json:"url_id" gorm:"index;not null"`
	ClickedAt  time.Time `json:"clicked_at" gorm:"autoCreateTime"`
	IPAddress  string    `json:"ip_address" gorm:"size:45"`
	UserAgent  string    `json:"user_agent" gorm:"size:500"`
	Referrer   string    `json:"referrer" gorm:"size:500"`
	DeviceType string    `json:"device_type" gorm:"size:50;default:'unknown'"`
	Browser    string    `json:"browser" gorm:"size:50;default:'unknown'"`
	Country    string    `json:"country" gorm:"size:100;default:'unknown'"`
}
