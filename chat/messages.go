// Package chat persists per-session messages. Rows are never hard-deleted:
// a sender's exit flips their messages to hidden so remaining participants
// keep their history while the default view stays clean, and an explicit
// delete flips to deleted for everyone.
package chat

import (
	"errors"
	"time"

	"meepleserver/apperr"
	"meepleserver/models"

	"gorm.io/gorm"
)

// PostMessage writes a message for a current participant.
func PostMessage(db *gorm.DB, userID, sessionID uint, text string) (*models.Message, error) {
	var slots int64
	if err := db.Model(&models.Slot{}).
		Where("user_id = ? AND game_session_id = ?", userID, sessionID).
		Count(&slots).Error; err != nil {
		return nil, err
	}
	if slots == 0 {
		return nil, apperr.ErrUnauthorized
	}

	msg := models.Message{
		SenderID:      userID,
		GameSessionID: sessionID,
		Text:          text,
		Visibility:    models.MessageVisible,
	}
	if err := db.Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// EditMessage replaces the text, sender only, and stamps the edit time.
func EditMessage(db *gorm.DB, userID, messageID uint, text string) (*models.Message, error) {
	var msg models.Message
	if err := db.First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if msg.SenderID != userID {
		return nil, apperr.ErrUnauthorized
	}
	if msg.Visibility == models.MessageDeleted {
		return nil, apperr.ErrNotFound
	}

	now := time.Now()
	msg.Text = text
	msg.EditedAt = &now
	if err := db.Save(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// SoftDeleteMessage marks a message deleted. The sender or the session host
// may do this.
func SoftDeleteMessage(db *gorm.DB, callerID, messageID uint) error {
	var msg models.Message
	if err := db.First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	if msg.SenderID != callerID {
		var session models.GameSession
		if err := db.First(&session, msg.GameSessionID).Error; err != nil {
			return err
		}
		if session.HostID != callerID {
			return apperr.ErrUnauthorized
		}
	}

	return db.Model(&msg).Update("visibility", models.MessageDeleted).Error
}

// HideUserMessages flips a departing user's messages to hidden in one
// session. Called on leave, removal and ban.
func HideUserMessages(db *gorm.DB, userID, sessionID uint) error {
	return db.Model(&models.Message{}).
		Where("sender_id = ? AND game_session_id = ? AND visibility = ?",
			userID, sessionID, models.MessageVisible).
		Update("visibility", models.MessageHidden).Error
}

// ListVisible is the default joiner view: visible rows only.
func ListVisible(db *gorm.DB, sessionID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := db.Where("game_session_id = ? AND visibility = ?", sessionID, models.MessageVisible).
		Order("created_at ASC").Find(&msgs).Error
	return msgs, err
}

// ListForParticipant keeps hidden ex-member rows so the history remaining
// participants saw stays intact. Deleted rows are gone for everyone.
func ListForParticipant(db *gorm.DB, sessionID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := db.Where("game_session_id = ? AND visibility IN ?", sessionID,
		[]string{models.MessageVisible, models.MessageHidden}).
		Order("created_at ASC").Find(&msgs).Error
	return msgs, err
}
