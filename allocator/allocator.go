// Package allocator is the capacity-constrained join/leave engine. Every
// invariant check shares a transaction with the write it guards: the
// composite unique index on slots kills duplicate joins, and the global cap
// is claimed with an atomic conditional counter update on the profile row,
// so no interleaving of concurrent requests can oversubscribe a user.
package allocator

import (
	"errors"
	"fmt"

	"meepleserver/apperr"
	"meepleserver/auth"
	"meepleserver/models"

	"gorm.io/gorm"
)

// DefaultGlobalCap bounds how many active slots (hosted + joined) a
// non-admin user may hold.
const DefaultGlobalCap = 5

var globalCap = DefaultGlobalCap

// SetGlobalCap overrides the cap from configuration. Zero or negative
// restores the default.
func SetGlobalCap(cap int) {
	if cap <= 0 {
		globalCap = DefaultGlobalCap
		return
	}
	globalCap = cap
}

func GlobalCap() int {
	return globalCap
}

// claimCapacity atomically takes one unit of the caller's global cap.
// Admins are exempt. Zero rows affected with an existing profile means the
// cap is spent.
func claimCapacity(tx *gorm.DB, userID uint) error {
	result := tx.Model(&models.Profile{}).
		Where("id = ? AND (is_admin = ? OR active_slot_count < ?)", userID, true, globalCap).
		Update("active_slot_count", gorm.Expr("active_slot_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var exists int64
		if err := tx.Model(&models.Profile{}).Where("id = ?", userID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return apperr.ErrNotFound
		}
		return apperr.ErrCapacityExceeded
	}
	return nil
}

// releaseCapacity gives one unit back, never going below zero.
func releaseCapacity(tx *gorm.DB, userID uint) error {
	return tx.Model(&models.Profile{}).
		Where("id = ? AND active_slot_count > 0", userID).
		Update("active_slot_count", gorm.Expr("active_slot_count - 1")).Error
}

func loadSession(db *gorm.DB, sessionID uint) (*models.GameSession, error) {
	var session models.GameSession
	if err := db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: session %d", apperr.ErrNotFound, sessionID)
		}
		return nil, err
	}
	return &session, nil
}

func nicknameOf(db *gorm.DB, userID uint) string {
	var profile models.Profile
	if err := db.First(&profile, userID).Error; err != nil {
		return "a player"
	}
	return profile.Nickname
}

// isHostOrAdmin authorizes host-scoped mutations.
func isHostOrAdmin(db *gorm.DB, session *models.GameSession, callerID uint) (bool, error) {
	if session.HostID == callerID {
		return true, nil
	}
	admin, err := auth.IsAdmin(db, callerID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return admin, nil
}
