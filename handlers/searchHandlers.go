package handlers

import (
	"context"
	"net/http"

	"meepleserver/apperr"
	"meepleserver/geo"
	"meepleserver/middlewares"
	"meepleserver/models"
	"meepleserver/search"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// resolveCenter turns a search request into a coordinate: a saved location
// id wins, otherwise the address is geocoded.
func resolveCenter(ctx context.Context, db *gorm.DB, gc geo.Geocoder, req models.SearchRequest) (geo.Point, error) {
	if req.LocationID != nil {
		var loc models.Location
		if err := db.First(&loc, *req.LocationID).Error; err != nil {
			return geo.Point{}, apperr.ErrNotFound
		}
		return geo.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
	}
	if req.Address == "" {
		return geo.Point{}, apperr.ErrNotFound
	}
	return gc.Geocode(ctx, req.Address)
}

// SessionSearch finds joinable sessions within the radius, nearest first.
// The caller's own hosted sessions never appear.
func SessionSearch(c *gin.Context, db *gorm.DB, logger *zap.Logger, gc geo.Geocoder) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}

	var request models.SearchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	center, err := resolveCenter(c.Request.Context(), db, gc, request)
	if err != nil {
		fail(c, err)
		return
	}

	hits, err := search.FindSessionsWithin(db, center, request.RadiusMiles, userID)
	if err != nil {
		logger.Error("Session search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": hits})
}

// VenueSearch looks up game stores near the center: stored venue locations
// plus the external place-search provider. Non-operational places are
// already filtered out.
func VenueSearch(c *gin.Context, db *gorm.DB, logger *zap.Logger, gc geo.Geocoder, ps geo.PlaceSearcher) {
	if _, err := middlewares.GetUserIDFromToken(c, db, logger); err != nil {
		fail(c, err)
		return
	}

	var request models.SearchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	center, err := resolveCenter(c.Request.Context(), db, gc, request)
	if err != nil {
		fail(c, err)
		return
	}

	stored, err := search.FindLocationsWithin(db, center, request.RadiusMiles)
	if err != nil {
		logger.Error("Stored venue search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	venues, err := ps.FindVenues(c.Request.Context(), "board game store", center, request.RadiusMiles)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"venues": venues, "storedVenues": stored})
}
