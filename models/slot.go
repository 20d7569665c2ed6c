package models

import (
	"gorm.io/gorm"
)

// Slot is one user's claim on a session, host slot included. The composite
// unique index makes a duplicate join impossible regardless of races.
// SearchLocationID is the joiner's own search point, kept separate from the
// session's location so distance can be shown without exposing the host's
// exact address.
type Slot struct {
	gorm.Model
	UserID           uint  `gorm:"not null;uniqueIndex:idx_slot_user_session"`
	GameSessionID    uint  `gorm:"not null;uniqueIndex:idx_slot_user_session;index"`
	IsHost           bool  `gorm:"not null;default:false"`
	SearchLocationID *uint `gorm:"index"`
}
