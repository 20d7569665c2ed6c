package allocator

import (
	"context"
	"fmt"

	"meepleserver/apperr"
	"meepleserver/geo"
	"meepleserver/locations"
	"meepleserver/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateSession creates a hosted session paired with its host slot. The
// host slot counts against the global cap like any other. Location
// resolution (reuse, or geocode into a saved or temporary row) happens
// before the transaction.
func CreateSession(ctx context.Context, db *gorm.DB, logger *zap.Logger, gc geo.Geocoder,
	hostID uint, req models.SessionCreateRequest) (*models.GameSession, error) {

	var locID uint
	switch {
	case req.LocationID != nil:
		var loc models.Location
		if err := db.First(&loc, *req.LocationID).Error; err != nil {
			return nil, fmt.Errorf("%w: location", apperr.ErrNotFound)
		}
		if loc.OwnerID != nil && *loc.OwnerID != hostID && !loc.IsVenue {
			return nil, apperr.ErrUnauthorized
		}
		locID = loc.ID
	case req.Address != "":
		var loc *models.Location
		var err error
		if req.SaveLocation {
			loc, err = locations.CreatePermanent(ctx, db, gc, hostID, req.Address, req.IsPrivate)
		} else {
			loc, err = locations.CreateTemporary(ctx, db, gc, hostID, req.Address)
		}
		if err != nil {
			return nil, err
		}
		locID = loc.ID
	default:
		return nil, fmt.Errorf("%w: location or address required", apperr.ErrNotFound)
	}

	var session models.GameSession
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := claimCapacity(tx, hostID); err != nil {
			return err
		}

		session = models.GameSession{
			HostID:      hostID,
			LocationID:  locID,
			Title:       req.Title,
			ScheduledAt: req.ScheduledAt,
			InviteToken: uuid.New().String(),
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}

		hostSlot := models.Slot{
			UserID:        hostID,
			GameSessionID: session.ID,
			IsHost:        true,
		}
		return tx.Create(&hostSlot).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("session created", zap.Uint("sessionID", session.ID), zap.Uint("hostID", hostID))
	return &session, nil
}

// EditSession updates the date, title or location, host or admin only.
func EditSession(ctx context.Context, db *gorm.DB, logger *zap.Logger, gc geo.Geocoder, callerID, sessionID uint,
	req models.SessionUpdateRequest) (*models.GameSession, error) {

	session, err := loadSession(db, sessionID)
	if err != nil {
		return nil, err
	}
	allowed, err := isHostOrAdmin(db, session, callerID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.ErrUnauthorized
	}

	oldLocationID := session.LocationID
	if req.Title != "" {
		session.Title = req.Title
	}
	if req.ScheduledAt != nil {
		session.ScheduledAt = *req.ScheduledAt
	}
	switch {
	case req.LocationID != nil:
		var loc models.Location
		if err := db.First(&loc, *req.LocationID).Error; err != nil {
			return nil, fmt.Errorf("%w: location", apperr.ErrNotFound)
		}
		session.LocationID = loc.ID
	case req.Address != "":
		loc, err := locations.CreateTemporary(ctx, db, gc, session.HostID, req.Address)
		if err != nil {
			return nil, err
		}
		session.LocationID = loc.ID
	}

	if err := db.Save(session).Error; err != nil {
		return nil, err
	}
	if session.LocationID != oldLocationID {
		if err := locations.DeleteIfOrphaned(db, logger, oldLocationID); err != nil {
			// the cron sweep reconciles anything this misses
			logger.Warn("old session location cleanup failed", zap.Uint("locationID", oldLocationID), zap.Error(err))
		}
	}
	return session, nil
}

// SetFull flips the host's manual full toggle. This is the only
// session-level gate on joins.
func SetFull(db *gorm.DB, callerID, sessionID uint, full bool) error {
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
	return db.Model(session).Update("is_full", full).Error
}

// SessionByInviteToken resolves a shared join link.
func SessionByInviteToken(db *gorm.DB, token string) (*models.GameSession, error) {
	var session models.GameSession
	if err := db.Where("invite_token = ?", token).First(&session).Error; err != nil {
		return nil, fmt.Errorf("%w: invite", apperr.ErrNotFound)
	}
	return &session, nil
}
