package allocator

import (
	"fmt"

	"meepleserver/apperr"
	"meepleserver/locations"
	"meepleserver/models"
	"meepleserver/notify"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DeleteSession tears a session down, host or admin only. Slot and Session
// rows go in one transaction so a dangling slot can never survive; location
// cleanup and the notification fan-out run after commit, best-effort, each
// failure logged for the operator because an un-notified participant is a
// silent gap.
func DeleteSession(db *gorm.DB, logger *zap.Logger, dispatcher *notify.Dispatcher, callerID, sessionID uint) error {
	session, err := loadSession(db, sessionID)
	if err != nil {
		return err
	}
	allowed, err := isHostOrAdmin(db, session, callerID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.ErrUnauthorized
	}

	// capture what the follow-ups render before rows start vanishing
	var sessionLoc models.Location
	hasSessionLoc := db.First(&sessionLoc, session.LocationID).Error == nil
	hostName := nicknameOf(db, session.HostID)

	// the slot set is read inside the transaction that deletes it: a join
	// committing between the authorization check and the delete still gets
	// its counter released and its holder notified
	var slots []models.Slot
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_session_id = ?", sessionID).Find(&slots).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("game_session_id = ?", sessionID).Delete(&models.Slot{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.GameSession{}, sessionID).Error; err != nil {
			return err
		}
		for _, slot := range slots {
			if err := releaseCapacity(tx, slot.UserID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, slot := range slots {
		if slot.SearchLocationID != nil {
			if err := locations.DeleteIfOrphaned(db, logger, *slot.SearchLocationID); err != nil {
				logger.Warn("joiner location cleanup failed after session delete",
					zap.Uint("locationID", *slot.SearchLocationID), zap.Error(err))
			}
		}
	}
	if hasSessionLoc && sessionLoc.Temporary {
		if err := locations.DeleteIfOrphaned(db, logger, sessionLoc.ID); err != nil {
			logger.Warn("session location cleanup failed after session delete",
				zap.Uint("locationID", sessionLoc.ID), zap.Error(err))
		}
	}

	text := fmt.Sprintf("%s cancelled %q at %s on %s",
		hostName, session.Title, sessionLoc.Address, session.ScheduledAt.Format("Jan 2 15:04"))
	for _, slot := range slots {
		if slot.UserID == session.HostID {
			continue
		}
		if err := dispatcher.Notify(db, slot.UserID, text); err != nil {
			logger.Error("cancellation notification failed",
				zap.Uint("userID", slot.UserID), zap.Uint("sessionID", sessionID), zap.Error(err))
		}
	}
	return nil
}
