package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"meepleserver/apperr"
	"meepleserver/middlewares"
	"meepleserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SavedSearchCreate registers a standing proximity query. The watermark
// starts at now so only sessions created afterward trigger a notification.
func SavedSearchCreate(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}

	var request models.SavedSearchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var loc models.Location
	if err := db.First(&loc, request.LocationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, apperr.ErrNotFound)
			return
		}
		logger.Error("Saved search location lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	savedSearch := models.SavedSearch{
		UserID:          userID,
		LocationID:      request.LocationID,
		RadiusMiles:     request.RadiusMiles,
		LastEvaluatedAt: time.Now(),
	}
	if err := db.Create(&savedSearch).Error; err != nil {
		logger.Error("Failed to create saved search", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"savedSearch": savedSearch})
}

// SavedSearchList returns the caller's standing queries.
func SavedSearchList(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}

	var searches []models.SavedSearch
	if err := db.Where("user_id = ?", userID).Find(&searches).Error; err != nil {
		logger.Error("Failed to list saved searches", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"savedSearches": searches})
}

// SavedSearchDelete removes one of the caller's standing queries.
func SavedSearchDelete(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}
	searchID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid saved search id"})
		return
	}

	result := db.Where("id = ? AND user_id = ?", searchID, userID).Delete(&models.SavedSearch{})
	if result.Error != nil {
		logger.Error("Failed to delete saved search", zap.Error(result.Error))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if result.RowsAffected == 0 {
		fail(c, apperr.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
