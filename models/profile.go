package models

import (
	"gorm.io/gorm"
)

// Profile is created lazily the first time an authenticated identity calls
// in. ExternalID is the identity provider's stable subject, opaque to us.
type Profile struct {
	gorm.Model
	ExternalID      string `gorm:"unique;not null"`
	Nickname        string `gorm:"not null"`
	IsAdmin         bool   `gorm:"not null;default:false"`
	Tier            string `gorm:"not null;default:'free'"`
	ActiveSlotCount int    `gorm:"not null;default:0"` // hosted + joined, bounds the global cap
}
