package allocator

import (
	"errors"
	"fmt"

	"meepleserver/apperr"
	"meepleserver/models"
	"meepleserver/moderation"
	"meepleserver/notify"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BanUser removes a participant from the session and excludes them from all
// of the host's future sessions. Repeat bans of the same pair are an
// idempotent success; the unique (host, banned) index is the backstop when
// two bans race.
func BanUser(db *gorm.DB, logger *zap.Logger, dispatcher *notify.Dispatcher, callerID, sessionID, targetUserID uint, reason string) error {
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
	if targetUserID == session.HostID {
		return fmt.Errorf("%w: cannot ban the host", apperr.ErrConflict)
	}

	banned, err := moderation.IsBanned(db, session.HostID, targetUserID)
	if err != nil {
		return err
	}
	if !banned {
		ban := models.Ban{HostID: session.HostID, BannedUserID: targetUserID, Reason: reason}
		if err := db.Create(&ban).Error; err != nil {
			// lost a race with an identical ban: same outcome, carry on
			logger.Warn("ban insert conflict", zap.Uint("hostID", session.HostID),
				zap.Uint("targetUserID", targetUserID), zap.Error(err))
		}
	}

	// host-initiated removal of the target's slot; absence is fine, the
	// ban stands either way
	if err := ReleaseSlot(db, logger, dispatcher, callerID, targetUserID, sessionID); err != nil &&
		!errors.Is(err, apperr.ErrNotFound) {
		logger.Warn("slot removal failed during ban",
			zap.Uint("targetUserID", targetUserID), zap.Uint("sessionID", sessionID), zap.Error(err))
	}

	text := "You were banned by " + nicknameOf(db, session.HostID)
	if reason != "" {
		text += ", reason: " + reason
	}
	if err := dispatcher.Notify(db, targetUserID, text); err != nil {
		logger.Warn("ban notification failed", zap.Uint("targetUserID", targetUserID), zap.Error(err))
	}
	return nil
}

// UnbanUser lifts a host's ban. This is the only way out of the banned
// state.
func UnbanUser(db *gorm.DB, hostID, targetUserID uint) error {
	// hard delete so a later re-ban doesn't collide with the unique index
	result := db.Unscoped().Where("host_id = ? AND banned_user_id = ?", hostID, targetUserID).
		Delete(&models.Ban{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: no ban for user", apperr.ErrNotFound)
	}
	return nil
}
