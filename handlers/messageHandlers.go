package handlers

import (
	"net/http"
	"strconv"

	"meepleserver/chat"
	"meepleserver/middlewares"
	"meepleserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MessagePost writes a chat message into a session the caller participates
// in.
func MessagePost(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var request models.MessageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := chat.PostMessage(db, userID, sessionID, request.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// MessageEdit replaces a message's text, sender only.
func MessageEdit(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}
	messageID, err := strconv.ParseUint(c.Param("messageId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var request models.MessageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := chat.EditMessage(db, userID, uint(messageID), request.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// MessageDelete soft-deletes a message, sender or host.
func MessageDelete(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}
	messageID, err := strconv.ParseUint(c.Param("messageId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	if err := chat.SoftDeleteMessage(db, userID, uint(messageID)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// MessageList returns session history. Participants see hidden ex-member
// rows for context; everyone else gets the default view.
func MessageList(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var participant int64
	if err := db.Model(&models.Slot{}).
		Where("user_id = ? AND game_session_id = ?", userID, sessionID).
		Count(&participant).Error; err != nil {
		logger.Error("Participant check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	var msgs []models.Message
	if participant > 0 {
		msgs, err = chat.ListForParticipant(db, sessionID)
	} else {
		msgs, err = chat.ListVisible(db, sessionID)
	}
	if err != nil {
		logger.Error("Failed to list messages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
