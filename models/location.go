package models

import (
	"gorm.io/gorm"
)

// Location is a named point. OwnerID is nil for shared venues. Temporary
// locations exist only to back a single slot or session and are cleaned up
// when that reference goes away.
type Location struct {
	gorm.Model
	OwnerID   *uint   `gorm:"index"`
	Lat       float64 `gorm:"not null"`
	Lng       float64 `gorm:"not null"`
	Address   string  `gorm:"not null"`
	IsVenue   bool    `gorm:"not null;default:false"`
	IsPrivate bool    `gorm:"not null;default:false"`
	Temporary bool    `gorm:"not null;default:false"`
}
