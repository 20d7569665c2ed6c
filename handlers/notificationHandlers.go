package handlers

import (
	"net/http"
	"strconv"

	"meepleserver/middlewares"
	"meepleserver/notify"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationList returns the caller's inbox, targeted rows plus session
// broadcasts for sessions they hold a slot in.
func NotificationList(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}

	notifications, err := notify.ListForUser(db, userID)
	if err != nil {
		logger.Error("Failed to list notifications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// NotificationRead marks a targeted notification read.
func NotificationRead(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}
	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := notify.MarkRead(db, userID, uint(notificationID)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

// NotificationDelete removes a targeted notification.
func NotificationDelete(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}
	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := notify.DeleteForUser(db, userID, uint(notificationID)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// NotificationStream upgrades to a websocket and registers the connection
// with the push hub until the client goes away.
func NotificationStream(c *gin.Context, db *gorm.DB, logger *zap.Logger, hub *notify.Hub, upgrader websocket.Upgrader) {
	userID, err := middlewares.GetUserIDFromToken(c, db, logger)
	if err != nil {
		fail(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("Websocket upgrade failed", zap.Error(err))
		return
	}

	client := &notify.Client{Conn: conn, UserID: userID}
	hub.Register(client)
	defer func() {
		hub.Unregister(client)
		conn.Close()
	}()

	// drain reads until the peer closes; pushes come from the hub
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
