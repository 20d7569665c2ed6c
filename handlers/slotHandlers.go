package handlers

import (
	"net/http"
	"strconv"

	"meepleserver/allocator"
	"meepleserver/geo"
	"meepleserver/middlewares"
	"meepleserver/models"
	"meepleserver/notify"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// JoinSession claims a slot for the caller.
func JoinSession(c *gin.Context, db *gorm.DB, logger *zap.Logger, dispatcher *notify.Dispatcher, gc geo.Geocoder) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var request models.JoinRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := allocator.ClaimSlot(c.Request.Context(), db, logger, dispatcher, gc,
		userID, sessionID, request.SearchLocationID, request.SearchAddress)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"slot": slot})
}

// LeaveSession releases the caller's own slot.
func LeaveSession(c *gin.Context, db *gorm.DB, logger *zap.Logger, dispatcher *notify.Dispatcher) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	if err := allocator.ReleaseSlot(db, logger, dispatcher, userID, userID, sessionID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "left"})
}

// RemoveParticipant is a host-initiated release of another user's slot.
func RemoveParticipant(c *gin.Context, db *gorm.DB, logger *zap.Logger, dispatcher *notify.Dispatcher) {
	callerID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := allocator.ReleaseSlot(db, logger, dispatcher, callerID, uint(targetID), sessionID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}
