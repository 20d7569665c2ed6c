package models

import (
	"gorm.io/gorm"
)

// Notification is either targeted (UserID set) or session-scoped
// (GameSessionID set, visible to all current participants). Read only
// applies to targeted rows.
type Notification struct {
	gorm.Model
	UserID        *uint  `gorm:"index"`
	GameSessionID *uint  `gorm:"index"`
	Text          string `gorm:"not null"`
	Read          bool   `gorm:"not null;default:false"`
}
