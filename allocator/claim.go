package allocator

import (
	"context"
	"fmt"

	"meepleserver/apperr"
	"meepleserver/geo"
	"meepleserver/locations"
	"meepleserver/models"
	"meepleserver/moderation"
	"meepleserver/notify"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClaimSlot joins a user to a session. The joiner's search location is
// reused when an id is supplied, otherwise searchAddress is geocoded into a
// temporary location. The geocode happens before the transaction opens so a
// slow provider never holds a lock; the full/ban/cap checks run inside it.
func ClaimSlot(ctx context.Context, db *gorm.DB, logger *zap.Logger, dispatcher *notify.Dispatcher, gc geo.Geocoder,
	userID, sessionID uint, searchLocationID *uint, searchAddress string) (*models.Slot, error) {

	session, err := loadSession(db, sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostID == userID {
		return nil, fmt.Errorf("%w: host already holds a slot", apperr.ErrConflict)
	}

	var searchPoint *geo.Point
	if searchLocationID == nil && searchAddress != "" {
		point, err := gc.Geocode(ctx, searchAddress)
		if err != nil {
			return nil, err
		}
		searchPoint = &point
	}

	var slot models.Slot
	err = db.Transaction(func(tx *gorm.DB) error {
		// re-read under the transaction so a racing "mark full" is seen
		current, err := loadSession(tx, sessionID)
		if err != nil {
			return err
		}
		if current.IsFull {
			return apperr.ErrSessionFull
		}

		banned, err := moderation.IsBanned(tx, current.HostID, userID)
		if err != nil {
			return err
		}
		if banned {
			return apperr.ErrBanned
		}

		var existing int64
		if err := tx.Model(&models.Slot{}).
			Where("user_id = ? AND game_session_id = ?", userID, sessionID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: already joined", apperr.ErrConflict)
		}

		if err := claimCapacity(tx, userID); err != nil {
			return err
		}

		var locID *uint
		switch {
		case searchLocationID != nil:
			var loc models.Location
			if err := tx.First(&loc, *searchLocationID).Error; err != nil {
				return fmt.Errorf("%w: search location", apperr.ErrNotFound)
			}
			locID = &loc.ID
		case searchPoint != nil:
			loc, err := locations.CreateTemporaryAt(tx, userID, searchAddress, *searchPoint)
			if err != nil {
				return err
			}
			locID = &loc.ID
		}

		slot = models.Slot{
			UserID:           userID,
			GameSessionID:    sessionID,
			SearchLocationID: locID,
		}
		if err := tx.Create(&slot).Error; err != nil {
			// the unique (user, session) index is the race backstop
			return fmt.Errorf("%w: %v", apperr.ErrConflict, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := dispatcher.SessionBroadcast(db, sessionID, nicknameOf(db, userID)+" joined the session"); err != nil {
		logger.Warn("join notification failed", zap.Uint("sessionID", sessionID), zap.Error(err))
	}
	return &slot, nil
}
