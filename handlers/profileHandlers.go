package handlers

import (
	"net/http"

	"meepleserver/allocator"
	"meepleserver/middlewares"
	"meepleserver/models"
	"meepleserver/notify"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MyProfile returns the caller's profile with its remaining slot headroom.
func MyProfile(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}

	var profile models.Profile
	if err := db.First(&profile, userID).Error; err != nil {
		logger.Error("Profile lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	headroom := allocator.GlobalCap() - profile.ActiveSlotCount
	if profile.IsAdmin || headroom < 0 {
		headroom = allocator.GlobalCap()
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile, "slotHeadroom": headroom})
}

// ProfileDelete is full account removal with its whole cascade.
func ProfileDelete(c *gin.Context, db *gorm.DB, logger *zap.Logger, dispatcher *notify.Dispatcher) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}

	if err := allocator.DeleteProfile(db, logger, dispatcher, userID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
