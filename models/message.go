package models

import (
	"time"

	"gorm.io/gorm"
)

// Message visibility states. Hidden marks rows whose sender left the
// session: they stay readable to remaining participants' history but drop
// out of the default view. Deleted rows never show again.
const (
	MessageVisible = "visible"
	MessageHidden  = "hidden"
	MessageDeleted = "deleted"
)

type Message struct {
	gorm.Model
	SenderID      uint   `gorm:"not null;index"`
	GameSessionID uint   `gorm:"not null;index"`
	Text          string `gorm:"not null"`
	Visibility    string `gorm:"not null;default:'visible';index"`
	EditedAt      *time.Time
}
