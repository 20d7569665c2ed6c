package models

import (
	"time"

	"gorm.io/gorm"
)

// GameSession is one hosted event. IsFull is the host's manual toggle and
// the only session-level gate on joins; there is no numeric joiner limit.
type GameSession struct {
	gorm.Model
	HostID      uint      `gorm:"not null;index"`
	LocationID  uint      `gorm:"not null;index"`
	Title       string    `gorm:"not null"`
	ScheduledAt time.Time `gorm:"not null"`
	IsFull      bool      `gorm:"not null;default:false"`
	InviteToken string    `gorm:"unique;not null"` // shareable join link token
	Slots       []Slot    `gorm:"foreignKey:GameSessionID"`
}
