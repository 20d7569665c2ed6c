package models

import (
	"time"

	"gorm.io/gorm"
)

// SavedSearch is a standing query the cron evaluator re-runs. New sessions
// created after LastEvaluatedAt inside the radius produce a targeted
// notification, then the watermark advances.
type SavedSearch struct {
	gorm.Model
	UserID          uint    `gorm:"not null;index"`
	LocationID      uint    `gorm:"not null"`
	RadiusMiles     float64 `gorm:"not null"`
	LastEvaluatedAt time.Time
}
