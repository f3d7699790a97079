package models

import (
	"time"
)

// Conversion correlates a tracking identifier issued on a redirect to a goal.
type Conversion struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	GoalID      uint      `json:"goal_id" gorm:"index;not null"`
	TrackingID  string    `json:"tracking_id" gorm:"size:100;index;not null"`
	ConvertedAt time.Time `json:"converted_at" gorm:"autoCreateTime"`
}
