package allocator

import (
	"errors"

	"meepleserver/apperr"
	"meepleserver/models"
	"meepleserver/notify"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DeleteProfile is the full account teardown. Hosted sessions go first
// (each via DeleteSession with its whole cascade), then remaining slots in
// other hosts' sessions, then owned locations, notifications, saved
// searches and ban rows, and finally the profile itself. Existence is
// re-checked at each step because an earlier cascade may already have
// consumed the row.
func DeleteProfile(db *gorm.DB, logger *zap.Logger, dispatcher *notify.Dispatcher, userID uint) error {
	var profile models.Profile
	if err := db.First(&profile, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	var hostedIDs []uint
	if err := db.Model(&models.GameSession{}).Where("host_id = ?", userID).
		Pluck("id", &hostedIDs).Error; err != nil {
		return err
	}
	for _, sessionID := range hostedIDs {
		if err := DeleteSession(db, logger, dispatcher, userID, sessionID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				continue
			}
			return err
		}
	}

	var slots []models.Slot
	if err := db.Where("user_id = ?", userID).Find(&slots).Error; err != nil {
		return err
	}
	for _, slot := range slots {
		err := ReleaseSlot(db, logger, dispatcher, userID, userID, slot.GameSessionID)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
	}

	// account teardown removes rows outright, no soft-delete residue
	if err := db.Unscoped().Where("owner_id = ?", userID).Delete(&models.Location{}).Error; err != nil {
		return err
	}
	if err := db.Unscoped().Where("user_id = ?", userID).Delete(&models.Notification{}).Error; err != nil {
		return err
	}
	if err := db.Unscoped().Where("user_id = ?", userID).Delete(&models.SavedSearch{}).Error; err != nil {
		return err
	}
	if err := db.Unscoped().Where("host_id = ? OR banned_user_id = ?", userID, userID).
		Delete(&models.Ban{}).Error; err != nil {
		return err
	}

	if err := db.Unscoped().Delete(&models.Profile{}, userID).Error; err != nil {
		return err
	}
	logger.Info("profile deleted", zap.Uint("userID", userID),
		zap.Int("hostedSessions", len(hostedIDs)), zap.Int("releasedSlots", len(slots)))
	return nil
}
