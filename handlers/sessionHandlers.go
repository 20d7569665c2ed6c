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

func sessionIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return 0, false
	}
	return uint(id), true
}

// SessionCreate creates a session paired with the caller's host slot.
func SessionCreate(c *gin.Context, db *gorm.DB, logger *zap.Logger, gc geo.Geocoder) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}

	var request models.SessionCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Session create bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := allocator.CreateSession(c.Request.Context(), db, logger, gc, userID, request)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// SessionUpdate edits date, title or location, host only.
func SessionUpdate(c *gin.Context, db *gorm.DB, logger *zap.Logger, gc geo.Geocoder) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var request models.SessionUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := allocator.EditSession(c.Request.Context(), db, logger, gc, userID, sessionID, request)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// SessionDelete tears down a hosted session with its full cascade.
func SessionDelete(c *gin.Context, db *gorm.DB, logger *zap.Logger, dispatcher *notify.Dispatcher) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	if err := allocator.DeleteSession(db, logger, dispatcher, userID, sessionID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// SessionMarkFull flips the manual full toggle.
func SessionMarkFull(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var request struct {
		Full bool `json:"full"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := allocator.SetFull(db, userID, sessionID, request.Full); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "full": request.Full})
}

// MySessions returns the sessions the caller hosts and the ones they
// joined, with pending context for the home screen.
func MySessions(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}

	var hosted []models.GameSession
	if err := db.Where("host_id = ?", userID).Order("scheduled_at ASC").Find(&hosted).Error; err != nil {
		logger.Error("Failed to find hosted sessions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	var joinedIDs []uint
	if err := db.Model(&models.Slot{}).
		Where("user_id = ? AND is_host = ?", userID, false).
		Pluck("game_session_id", &joinedIDs).Error; err != nil {
		logger.Error("Failed to find joined slots", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	var joined []models.GameSession
	if len(joinedIDs) > 0 {
		if err := db.Where("id IN ?", joinedIDs).Order("scheduled_at ASC").Find(&joined).Error; err != nil {
			logger.Error("Failed to find joined sessions", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"hosted": hosted, "joined": joined})
}

// SessionByInvite resolves a shared invite link to its session.
func SessionByInvite(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	session, err := allocator.SessionByInviteToken(db, c.Param("token"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}
