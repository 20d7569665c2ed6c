// Package notify persists notifications and pushes them to connected
// clients. The row insert is the only step that can fail the caller; the
// websocket push is fire-and-forget.
package notify

import (
	"errors"
	"time"

	"meepleserver/apperr"
	"meepleserver/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Dispatcher struct {
	Hub    *Hub
	Logger *zap.Logger
}

func NewDispatcher(hub *Hub, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{Hub: hub, Logger: logger}
}

type pushPayload struct {
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	SessionID uint      `json:"sessionId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notify creates a targeted notification for one user.
func (d *Dispatcher) Notify(db *gorm.DB, userID uint, text string) error {
	n := models.Notification{UserID: &userID, Text: text}
	if err := db.Create(&n).Error; err != nil {
		return err
	}
	if d.Hub != nil {
		d.Hub.Push(userID, pushPayload{Type: "notification", Text: text, CreatedAt: n.CreatedAt})
	}
	return nil
}

// SessionBroadcast creates a session-scoped notification visible to all
// current participants and pushes it to each of them.
func (d *Dispatcher) SessionBroadcast(db *gorm.DB, sessionID uint, text string) error {
	n := models.Notification{GameSessionID: &sessionID, Text: text}
	if err := db.Create(&n).Error; err != nil {
		return err
	}

	if d.Hub != nil {
		var slots []models.Slot
		if err := db.Where("game_session_id = ?", sessionID).Find(&slots).Error; err != nil {
			d.Logger.Warn("broadcast participant lookup failed", zap.Error(err))
			return nil
		}
		for _, slot := range slots {
			d.Hub.Push(slot.UserID, pushPayload{
				Type:      "sessionNotification",
				Text:      text,
				SessionID: sessionID,
				CreatedAt: n.CreatedAt,
			})
		}
	}
	return nil
}

// ListForUser returns the user's inbox: targeted rows plus broadcasts for
// sessions they currently hold a slot in, newest first.
func ListForUser(db *gorm.DB, userID uint) ([]models.Notification, error) {
	var sessionIDs []uint
	if err := db.Model(&models.Slot{}).Where("user_id = ?", userID).
		Pluck("game_session_id", &sessionIDs).Error; err != nil {
		return nil, err
	}

	var notifications []models.Notification
	q := db.Where("user_id = ?", userID)
	if len(sessionIDs) > 0 {
		q = db.Where("user_id = ? OR game_session_id IN ?", userID, sessionIDs)
	}
	err := q.Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

// MarkRead flags a targeted notification, owner only.
func MarkRead(db *gorm.DB, userID, notificationID uint) error {
	var n models.Notification
	if err := db.First(&n, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}
	if n.UserID == nil || *n.UserID != userID {
		return apperr.ErrUnauthorized
	}
	return db.Model(&n).Update("read", true).Error
}

// DeleteForUser removes a targeted notification, owner only.
func DeleteForUser(db *gorm.DB, userID, notificationID uint) error {
	var n models.Notification
	if err := db.First(&n, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}
	if n.UserID == nil || *n.UserID != userID {
		return apperr.ErrUnauthorized
	}
	return db.Delete(&n).Error
}
