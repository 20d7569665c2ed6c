package models

import (
	"gorm.io/gorm"
)

// Ban excludes a user from all of one host's sessions until the host lifts
// it. The unique index keeps repeat bans from stacking rows.
type Ban struct {
	gorm.Model
	HostID       uint   `gorm:"not null;uniqueIndex:idx_ban_host_user"`
	BannedUserID uint   `gorm:"not null;uniqueIndex:idx_ban_host_user;index"`
	Reason       string
}
