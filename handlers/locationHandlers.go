package handlers

import (
	"net/http"
	"strconv"

	"meepleserver/geo"
	"meepleserver/locations"
	"meepleserver/middlewares"
	"meepleserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LocationCreate geocodes and saves a permanent address for the caller.
func LocationCreate(c *gin.Context, db *gorm.DB, logger *zap.Logger, gc geo.Geocoder) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}

	var request models.LocationCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loc, err := locations.CreatePermanent(c.Request.Context(), db, gc, userID, request.Address, request.IsPrivate)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"location": loc})
}

// LocationList returns the caller's saved addresses.
func LocationList(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}

	locs, err := locations.ListOwned(db, userID)
	if err != nil {
		logger.Error("Failed to list locations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locs})
}

// LocationDelete removes a saved address that nothing references anymore.
func LocationDelete(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}
	locationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location id"})
		return
	}

	if err := locations.DeleteOwned(db, userID, uint(locationID)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
