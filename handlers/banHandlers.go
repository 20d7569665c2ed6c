package handlers

import (
	"net/http"
	"strconv"

	"meepleserver/allocator"
	"meepleserver/middlewares"
	"meepleserver/models"
	"meepleserver/moderation"
	"meepleserver/notify"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BanFromSession removes a participant and bans them from all of the
// caller's sessions.
func BanFromSession(c *gin.Context, db *gorm.DB, logger *zap.Logger, dispatcher *notify.Dispatcher) {
	callerID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var request models.BanRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := allocator.BanUser(db, logger, dispatcher, callerID, sessionID, request.UserID, request.Reason); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "banned"})
}

// Unban lifts one of the caller's bans.
func Unban(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	callerID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := allocator.UnbanUser(db, callerID, uint(targetID)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unbanned"})
}

// ListBans feeds the caller's ban-management screen.
func ListBans(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	callerID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}

	bans, err := moderation.ListBans(db, callerID)
	if err != nil {
		logger.Error("Failed to list bans", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bans": bans})
}

// BanReason explains a blocked join: the stored reason for the ban the
// session's host holds against the caller, if any.
func BanReason(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	callerID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	reason, err := moderation.BanReasonForSession(db, sessionID, callerID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"banned": reason != nil, "reason": reason})
}
