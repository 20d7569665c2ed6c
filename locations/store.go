// Package locations owns the Location lifecycle: geocode-and-save for
// permanent addresses, throwaway temporary rows backing a single slot or
// session, and the orphan cleanup that removes a temporary row once its
// last reference is gone.
package locations

import (
	"context"
	"errors"
	"fmt"

	"meepleserver/apperr"
	"meepleserver/geo"
	"meepleserver/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreatePermanent geocodes the address and saves it to the owner's list.
// Geocoder failures come back verbatim so the handler can distinguish a bad
// address from a provider outage.
func CreatePermanent(ctx context.Context, db *gorm.DB, gc geo.Geocoder, ownerID uint, address string, isPrivate bool) (*models.Location, error) {
	point, err := gc.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	loc := models.Location{
		OwnerID:   &ownerID,
		Lat:       point.Lat,
		Lng:       point.Lng,
		Address:   address,
		IsPrivate: isPrivate,
	}
	if err := db.Create(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

// CreateTemporary geocodes and persists a location that exists only to back
// one slot or session.
func CreateTemporary(ctx context.Context, db *gorm.DB, gc geo.Geocoder, ownerID uint, address string) (*models.Location, error) {
	point, err := gc.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}
	return CreateTemporaryAt(db, ownerID, address, point)
}

// CreateTemporaryAt persists a temporary location for a coordinate the
// caller already holds.
func CreateTemporaryAt(db *gorm.DB, ownerID uint, address string, point geo.Point) (*models.Location, error) {
	loc := models.Location{
		OwnerID:   &ownerID,
		Lat:       point.Lat,
		Lng:       point.Lng,
		Address:   address,
		Temporary: true,
	}
	if err := db.Create(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

// referenceCount counts live slots and sessions pointing at the location.
func referenceCount(db *gorm.DB, locationID uint) (int64, error) {
	var slotRefs int64
	if err := db.Model(&models.Slot{}).Where("search_location_id = ?", locationID).Count(&slotRefs).Error; err != nil {
		return 0, err
	}
	var sessionRefs int64
	if err := db.Model(&models.GameSession{}).Where("location_id = ?", locationID).Count(&sessionRefs).Error; err != nil {
		return 0, err
	}
	return slotRefs + sessionRefs, nil
}

// DeleteIfOrphaned removes a temporary location when nothing references it
// anymore. The reference recount and the delete share one transaction so a
// claim racing the cleanup cannot lose its location.
func DeleteIfOrphaned(db *gorm.DB, logger *zap.Logger, locationID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var loc models.Location
		if err := tx.First(&loc, locationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // already gone
			}
			return err
		}
		if !loc.Temporary {
			return nil
		}

		refs, err := referenceCount(tx, locationID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return nil
		}

		if err := tx.Delete(&models.Location{}, locationID).Error; err != nil {
			return err
		}
		logger.Info("deleted orphaned temporary location", zap.Uint("locationID", locationID))
		return nil
	})
}

// DeleteOwned removes a saved location at its owner's request. A location
// still referenced by a session or slot stays put.
func DeleteOwned(db *gorm.DB, userID, locationID uint) error {
	var loc models.Location
	if err := db.First(&loc, locationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}
	if loc.OwnerID == nil || *loc.OwnerID != userID {
		return apperr.ErrUnauthorized
	}

	return db.Transaction(func(tx *gorm.DB) error {
		refs, err := referenceCount(tx, locationID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("%w: location still in use", apperr.ErrConflict)
		}
		return tx.Delete(&models.Location{}, locationID).Error
	})
}

// ListOwned returns the caller's saved (non-temporary) locations.
func ListOwned(db *gorm.DB, userID uint) ([]models.Location, error) {
	var locs []models.Location
	err := db.Where("owner_id = ? AND temporary = ?", userID, false).
		Order("created_at ASC").Find(&locs).Error
	return locs, err
}
