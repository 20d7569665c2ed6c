package moderation

import (
	"errors"
	"fmt"
	"testing"

	"meepleserver/apperr"
	"meepleserver/database"
	"meepleserver/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func TestIsBanned(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Create(&models.Ban{HostID: 1, BannedUserID: 2, Reason: "no-shows"}).Error; err != nil {
		t.Fatalf("Failed to create ban: %v", err)
	}

	banned, err := IsBanned(db, 1, 2)
	if err != nil {
		t.Fatalf("IsBanned failed: %v", err)
	}
	if !banned {
		t.Error("Expected user 2 to be banned by host 1")
	}

	// The ban list is directional: host 2 never banned user 1.
	banned, err = IsBanned(db, 2, 1)
	if err != nil {
		t.Fatalf("IsBanned failed: %v", err)
	}
	if banned {
		t.Error("Reverse direction should not be banned")
	}
}

func TestBanReasonForSession(t *testing.T) {
	db := setupTestDB(t)
	session := models.GameSession{HostID: 1, LocationID: 1, Title: "g", InviteToken: "tok-r"}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if err := db.Create(&models.Ban{HostID: 1, BannedUserID: 2, Reason: "table flipping"}).Error; err != nil {
		t.Fatalf("Failed to create ban: %v", err)
	}

	t.Run("banned user sees reason", func(t *testing.T) {
		reason, err := BanReasonForSession(db, session.ID, 2)
		if err != nil {
			t.Fatalf("BanReasonForSession failed: %v", err)
		}
		if reason == nil || *reason != "table flipping" {
			t.Errorf("reason = %v, want table flipping", reason)
		}
	})

	t.Run("unbanned user gets nil", func(t *testing.T) {
		reason, err := BanReasonForSession(db, session.ID, 3)
		if err != nil {
			t.Fatalf("BanReasonForSession failed: %v", err)
		}
		if reason != nil {
			t.Errorf("reason = %v, want nil", *reason)
		}
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := BanReasonForSession(db, 999, 2)
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestListBans(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Create(&models.Ban{HostID: 1, BannedUserID: 2, Reason: "a"}).Error; err != nil {
		t.Fatalf("Failed to create ban: %v", err)
	}
	if err := db.Create(&models.Ban{HostID: 1, BannedUserID: 3, Reason: "b"}).Error; err != nil {
		t.Fatalf("Failed to create ban: %v", err)
	}
	if err := db.Create(&models.Ban{HostID: 4, BannedUserID: 2, Reason: "c"}).Error; err != nil {
		t.Fatalf("Failed to create ban: %v", err)
	}

	bans, err := ListBans(db, 1)
	if err != nil {
		t.Fatalf("ListBans failed: %v", err)
	}
	if len(bans) != 2 {
		t.Errorf("len(bans) = %d, want 2", len(bans))
	}
	for _, b := range bans {
		if b.HostID != 1 {
			t.Errorf("Ban from host %d leaked into host 1's list", b.HostID)
		}
	}
}
