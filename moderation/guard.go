// Package moderation is the read side of the ban list, consulted before a
// slot claim and by the "why was I blocked" lookups.
package moderation

import (
	"errors"

	"meepleserver/apperr"
	"meepleserver/models"

	"gorm.io/gorm"
)

// IsBanned reports whether the host has banned the user.
func IsBanned(db *gorm.DB, hostID, userID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Ban{}).
		Where("host_id = ? AND banned_user_id = ?", hostID, userID).
		Count(&count).Error
	return count > 0, err
}

// BanReasonForSession resolves session → host → ban and returns the stored
// reason, or nil when no ban exists.
func BanReasonForSession(db *gorm.DB, sessionID, userID uint) (*string, error) {
	var session models.GameSession
	if err := db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	var ban models.Ban
	err := db.Where("host_id = ? AND banned_user_id = ?", session.HostID, userID).First(&ban).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ban.Reason, nil
}

// ListBans feeds the host's ban-management screen.
func ListBans(db *gorm.DB, hostID uint) ([]models.Ban, error) {
	var bans []models.Ban
	err := db.Where("host_id = ?", hostID).Order("created_at DESC").Find(&bans).Error
	return bans, err
}
