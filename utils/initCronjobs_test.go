package utils

import (
	"fmt"
	"testing"
	"time"

	"meepleserver/database"
	"meepleserver/models"
	"meepleserver/notify"

	"go.uber.org/zap"
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

func createLocation(t *testing.T, db *gorm.DB, lat, lng float64, temporary bool) *models.Location {
	t.Helper()
	loc := models.Location{Lat: lat, Lng: lng, Address: fmt.Sprintf("loc %f,%f", lat, lng), Temporary: temporary}
	if err := db.Create(&loc).Error; err != nil {
		t.Fatalf("Failed to create location: %v", err)
	}
	return &loc
}

// latAtMiles offsets latitude north of a base by roughly the given miles.
func latAtMiles(base, miles float64) float64 {
	return base + miles*1609.34/111132.0
}

func TestSweepOrphanLocations(t *testing.T) {
	db := setupTestDB(t)

	heldBySlot := createLocation(t, db, 35.0, 139.0, true)
	heldBySession := createLocation(t, db, 35.1, 139.0, true)
	orphanTemp := createLocation(t, db, 35.2, 139.0, true)
	orphanPermanent := createLocation(t, db, 35.3, 139.0, false)

	if err := db.Create(&models.Slot{UserID: 1, GameSessionID: 10, SearchLocationID: &heldBySlot.ID}).Error; err != nil {
		t.Fatalf("Failed to create slot: %v", err)
	}
	session := models.GameSession{HostID: 1, LocationID: heldBySession.ID, Title: "g", InviteToken: "tok-sweep"}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	SweepOrphanLocations(db, zap.NewNop())

	var remaining []models.Location
	if err := db.Find(&remaining).Error; err != nil {
		t.Fatalf("Failed to list locations: %v", err)
	}
	if len(remaining) != 3 {
		t.Fatalf("len(remaining) = %d, want 3", len(remaining))
	}
	for _, loc := range remaining {
		if loc.ID == orphanTemp.ID {
			t.Error("Unreferenced temporary location survived the sweep")
		}
	}
	for _, want := range []uint{heldBySlot.ID, heldBySession.ID, orphanPermanent.ID} {
		found := false
		for _, loc := range remaining {
			if loc.ID == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Location %d was swept but is still referenced or permanent", want)
		}
	}
}

func TestEvaluateSavedSearches(t *testing.T) {
	db := setupTestDB(t)
	dispatcher := notify.NewDispatcher(nil, zap.NewNop())

	center := createLocation(t, db, 35.0, 139.0, false)
	nearLoc := createLocation(t, db, latAtMiles(35.0, 2), 139.0, false)
	farLoc := createLocation(t, db, latAtMiles(35.0, 50), 139.0, false)

	watermark := time.Now().Add(-time.Hour)
	saved := models.SavedSearch{UserID: 1, LocationID: center.ID, RadiusMiles: 10, LastEvaluatedAt: watermark}
	if err := db.Create(&saved).Error; err != nil {
		t.Fatalf("Failed to create saved search: %v", err)
	}

	nearSession := models.GameSession{HostID: 2, LocationID: nearLoc.ID, Title: "near", InviteToken: "tok-near"}
	farSession := models.GameSession{HostID: 2, LocationID: farLoc.ID, Title: "far", InviteToken: "tok-far"}
	ownSession := models.GameSession{HostID: 1, LocationID: nearLoc.ID, Title: "own", InviteToken: "tok-own"}
	staleSession := models.GameSession{HostID: 3, LocationID: nearLoc.ID, Title: "stale", InviteToken: "tok-stale"}
	for _, s := range []*models.GameSession{&nearSession, &farSession, &ownSession, &staleSession} {
		if err := db.Create(s).Error; err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}
	// Predates the watermark, already reported on a previous run.
	if err := db.Model(&models.GameSession{}).Where("id = ?", staleSession.ID).
		Update("created_at", watermark.Add(-time.Hour)).Error; err != nil {
		t.Fatalf("Failed to backdate session: %v", err)
	}

	EvaluateSavedSearches(db, dispatcher, zap.NewNop())

	var notifications []models.Notification
	if err := db.Where("user_id = ?", 1).Find(&notifications).Error; err != nil {
		t.Fatalf("Failed to list notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("len(notifications) = %d, want 1 (only the new nearby session)", len(notifications))
	}

	var stored models.SavedSearch
	if err := db.First(&stored, saved.ID).Error; err != nil {
		t.Fatalf("Failed to reload saved search: %v", err)
	}
	if !stored.LastEvaluatedAt.After(watermark) {
		t.Error("Watermark did not advance")
	}

	// A second run from the new watermark must not re-notify.
	EvaluateSavedSearches(db, dispatcher, zap.NewNop())
	if err := db.Where("user_id = ?", 1).Find(&notifications).Error; err != nil {
		t.Fatalf("Failed to list notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Errorf("Second run re-notified: len = %d, want 1", len(notifications))
	}
}
