package search

import (
	"fmt"
	"math"
	"testing"
	"time"

	"meepleserver/database"
	"meepleserver/geo"
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

// pointAtMiles puts a point due north of center at the given distance.
func pointAtMiles(center geo.Point, miles float64) geo.Point {
	dLat := miles * geo.MetersPerMile / 6371000.0 * 180.0 / math.Pi
	return geo.Point{Lat: center.Lat + dLat, Lng: center.Lng}
}

func createSessionAt(t *testing.T, db *gorm.DB, hostID uint, p geo.Point, title string) *models.GameSession {
	t.Helper()
	loc := models.Location{Lat: p.Lat, Lng: p.Lng, Address: title + " address"}
	if err := db.Create(&loc).Error; err != nil {
		t.Fatalf("Failed to create location: %v", err)
	}
	session := models.GameSession{
		HostID:      hostID,
		LocationID:  loc.ID,
		Title:       title,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		InviteToken: title + "-token",
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return &session
}

func TestFindSessionsWithinRadiusAndOrdering(t *testing.T) {
	db := setupTestDB(t)
	center := geo.Point{Lat: 40.0, Lng: -75.0}

	// fixtures at 5, 1 and 9.9 miles, inserted out of order
	far := createSessionAt(t, db, 2, pointAtMiles(center, 5.0), "five")
	near := createSessionAt(t, db, 3, pointAtMiles(center, 1.0), "one")
	edge := createSessionAt(t, db, 4, pointAtMiles(center, 9.9), "almostten")

	t.Run("radius 10 returns all three nearest first", func(t *testing.T) {
		hits, err := FindSessionsWithin(db, center, 10.0, 0)
		if err != nil {
			t.Fatalf("FindSessionsWithin failed: %v", err)
		}
		if len(hits) != 3 {
			t.Fatalf("Hits = %d, want 3", len(hits))
		}
		wantOrder := []uint{near.ID, far.ID, edge.ID}
		for i, want := range wantOrder {
			if hits[i].Session.ID != want {
				t.Errorf("Hit %d = session %d, want %d", i, hits[i].Session.ID, want)
			}
		}
		for i := 1; i < len(hits); i++ {
			if hits[i].DistanceMiles < hits[i-1].DistanceMiles {
				t.Errorf("Ordering not non-decreasing at %d", i)
			}
		}
		if hits[0].DistanceMiles > 1.01 || hits[0].DistanceMiles < 0.99 {
			t.Errorf("Nearest distance = %f, want ~1.0", hits[0].DistanceMiles)
		}
	})

	t.Run("radius 5 drops the farthest", func(t *testing.T) {
		hits, err := FindSessionsWithin(db, center, 5.0, 0)
		if err != nil {
			t.Fatalf("FindSessionsWithin failed: %v", err)
		}
		if len(hits) != 2 {
			t.Fatalf("Hits = %d, want 2", len(hits))
		}
		if hits[0].Session.ID != near.ID || hits[1].Session.ID != far.ID {
			t.Errorf("Order = [%d %d], want [%d %d]", hits[0].Session.ID, hits[1].Session.ID, near.ID, far.ID)
		}
	})
}

func TestFindSessionsWithinExcludesOwnHosted(t *testing.T) {
	db := setupTestDB(t)
	center := geo.Point{Lat: 40.0, Lng: -75.0}

	mine := createSessionAt(t, db, 7, pointAtMiles(center, 1.0), "mine")
	theirs := createSessionAt(t, db, 8, pointAtMiles(center, 2.0), "theirs")

	hits, err := FindSessionsWithin(db, center, 10.0, 7)
	if err != nil {
		t.Fatalf("FindSessionsWithin failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Hits = %d, want 1", len(hits))
	}
	if hits[0].Session.ID != theirs.ID {
		t.Errorf("Got session %d, want %d (own session %d must not appear)", hits[0].Session.ID, theirs.ID, mine.ID)
	}
}

func TestFindSessionsWithinTieBreaksByCreation(t *testing.T) {
	db := setupTestDB(t)
	center := geo.Point{Lat: 40.0, Lng: -75.0}
	p := pointAtMiles(center, 3.0)

	first := createSessionAt(t, db, 2, p, "first")
	second := createSessionAt(t, db, 3, p, "second")

	hits, err := FindSessionsWithin(db, center, 10.0, 0)
	if err != nil {
		t.Fatalf("FindSessionsWithin failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("Hits = %d, want 2", len(hits))
	}
	if hits[0].Session.ID != first.ID || hits[1].Session.ID != second.ID {
		t.Errorf("Tie order = [%d %d], want [%d %d]", hits[0].Session.ID, hits[1].Session.ID, first.ID, second.ID)
	}
}

func TestFindLocationsWithinFiltersVenues(t *testing.T) {
	db := setupTestDB(t)
	center := geo.Point{Lat: 40.0, Lng: -75.0}

	venue := models.Location{Lat: pointAtMiles(center, 2).Lat, Lng: center.Lng, Address: "Game Store", IsVenue: true}
	private := models.Location{Lat: pointAtMiles(center, 1).Lat, Lng: center.Lng, Address: "Home", IsVenue: false}
	if err := db.Create(&venue).Error; err != nil {
		t.Fatalf("Failed to create venue: %v", err)
	}
	if err := db.Create(&private).Error; err != nil {
		t.Fatalf("Failed to create private location: %v", err)
	}

	hits, err := FindLocationsWithin(db, center, 10.0)
	if err != nil {
		t.Fatalf("FindLocationsWithin failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Location.ID != venue.ID {
		t.Errorf("Expected only the venue, got %d hits", len(hits))
	}
}

func TestNewSessionsSinceWatermark(t *testing.T) {
	db := setupTestDB(t)
	center := geo.Point{Lat: 40.0, Lng: -75.0}

	old := createSessionAt(t, db, 2, pointAtMiles(center, 1.0), "old")
	watermark := time.Now()
	// push the new session's CreatedAt clearly past the watermark
	fresh := createSessionAt(t, db, 3, pointAtMiles(center, 2.0), "fresh")
	if err := db.Model(fresh).Update("created_at", watermark.Add(time.Minute)).Error; err != nil {
		t.Fatalf("Failed to bump created_at: %v", err)
	}
	if err := db.Model(old).Update("created_at", watermark.Add(-time.Minute)).Error; err != nil {
		t.Fatalf("Failed to backdate created_at: %v", err)
	}

	hits, err := NewSessionsSince(db, center, 10.0, watermark, 0)
	if err != nil {
		t.Fatalf("NewSessionsSince failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Session.ID != fresh.ID {
		t.Errorf("Expected only the fresh session, got %d hits", len(hits))
	}
}
