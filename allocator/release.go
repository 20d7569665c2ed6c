package allocator

import (
	"errors"
	"fmt"

	"meepleserver/apperr"
	"meepleserver/chat"
	"meepleserver/locations"
	"meepleserver/models"
	"meepleserver/notify"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReleaseSlot removes a user's claim on a session. The caller must be the
// slot owner, the session host (removal) or an admin. Slot deletion and the
// counter decrement are atomic; everything after the commit is a
// compensating step that is attempted regardless of earlier failures and
// logged instead of surfaced. The user must always be able to leave.
func ReleaseSlot(db *gorm.DB, logger *zap.Logger, dispatcher *notify.Dispatcher, callerID, targetUserID, sessionID uint) error {
	session, err := loadSession(db, sessionID)
	if err != nil {
		return err
	}

	if callerID != targetUserID {
		allowed, err := isHostOrAdmin(db, session, callerID)
		if err != nil {
			return err
		}
		if !allowed {
			return apperr.ErrUnauthorized
		}
	}

	var slot models.Slot
	if err := db.Where("user_id = ? AND game_session_id = ?", targetUserID, sessionID).
		First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no slot for user in session", apperr.ErrNotFound)
		}
		return err
	}
	if slot.IsHost {
		return fmt.Errorf("%w: host slot is released by deleting the session", apperr.ErrConflict)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// hard delete: a lingering soft-deleted row would trip the unique
		// (user, session) index on a later rejoin
		result := tx.Unscoped().Delete(&models.Slot{}, slot.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: slot already released", apperr.ErrConflict)
		}
		return releaseCapacity(tx, targetUserID)
	})
	if err != nil {
		return err
	}

	// compensating steps, each attempted even if the previous one failed
	if slot.SearchLocationID != nil {
		if err := locations.DeleteIfOrphaned(db, logger, *slot.SearchLocationID); err != nil {
			logger.Warn("orphan location cleanup failed on leave",
				zap.Uint("locationID", *slot.SearchLocationID), zap.Error(err))
		}
	}
	if err := chat.HideUserMessages(db, targetUserID, sessionID); err != nil {
		logger.Warn("hiding chat messages failed on leave",
			zap.Uint("userID", targetUserID), zap.Uint("sessionID", sessionID), zap.Error(err))
	}
	if err := dispatcher.SessionBroadcast(db, sessionID, nicknameOf(db, targetUserID)+" left the session"); err != nil {
		logger.Warn("leave notification failed", zap.Uint("sessionID", sessionID), zap.Error(err))
	}
	return nil
}
