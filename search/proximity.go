// Package search implements the radius-bounded proximity queries. The
// database only prefilters with a bounding box; the exact great-circle
// distance, the radius cut and the ordering happen here so the contract
// holds on any SQL backend.
package search

import (
	"sort"
	"time"

	"meepleserver/geo"
	"meepleserver/models"

	"gorm.io/gorm"
)

// SessionHit is one joinable session with its distance from the search
// center.
type SessionHit struct {
	Session       models.GameSession `json:"session"`
	Location      models.Location    `json:"location"`
	DistanceMiles float64            `json:"distanceMiles"`
}

// LocationHit is one stored location inside the radius.
type LocationHit struct {
	Location      models.Location `json:"location"`
	DistanceMiles float64         `json:"distanceMiles"`
}

// FindSessionsWithin returns sessions whose location lies within radiusMiles
// of center, nearest first. Equal distances order by creation (primary key).
// When excludeHostID is non-zero that host's own sessions are dropped, so a
// host never finds their own session when looking for one to join.
func FindSessionsWithin(db *gorm.DB, center geo.Point, radiusMiles float64, excludeHostID uint) ([]SessionHit, error) {
	minLat, maxLat, minLng, maxLng := geo.BoundingBox(center, radiusMiles)

	var locations []models.Location
	if err := db.Where("lat BETWEEN ? AND ?", minLat, maxLat).
		Where("lng BETWEEN ? AND ?", minLng, maxLng).
		Find(&locations).Error; err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return []SessionHit{}, nil
	}

	byID := make(map[uint]models.Location, len(locations))
	locationIDs := make([]uint, 0, len(locations))
	for _, loc := range locations {
		byID[loc.ID] = loc
		locationIDs = append(locationIDs, loc.ID)
	}

	var sessions []models.GameSession
	q := db.Where("location_id IN ?", locationIDs)
	if excludeHostID != 0 {
		q = q.Where("host_id <> ?", excludeHostID)
	}
	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}

	hits := make([]SessionHit, 0, len(sessions))
	for _, session := range sessions {
		loc := byID[session.LocationID]
		d := geo.DistanceMiles(center, geo.Point{Lat: loc.Lat, Lng: loc.Lng})
		if d <= radiusMiles {
			hits = append(hits, SessionHit{Session: session, Location: loc, DistanceMiles: d})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].DistanceMiles != hits[j].DistanceMiles {
			return hits[i].DistanceMiles < hits[j].DistanceMiles
		}
		return hits[i].Session.ID < hits[j].Session.ID
	})
	return hits, nil
}

// FindLocationsWithin returns stored venue locations within the radius,
// nearest first, same ordering rules as sessions.
func FindLocationsWithin(db *gorm.DB, center geo.Point, radiusMiles float64) ([]LocationHit, error) {
	minLat, maxLat, minLng, maxLng := geo.BoundingBox(center, radiusMiles)

	var locations []models.Location
	if err := db.Where("is_venue = ?", true).
		Where("lat BETWEEN ? AND ?", minLat, maxLat).
		Where("lng BETWEEN ? AND ?", minLng, maxLng).
		Find(&locations).Error; err != nil {
		return nil, err
	}

	hits := make([]LocationHit, 0, len(locations))
	for _, loc := range locations {
		d := geo.DistanceMiles(center, geo.Point{Lat: loc.Lat, Lng: loc.Lng})
		if d <= radiusMiles {
			hits = append(hits, LocationHit{Location: loc, DistanceMiles: d})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].DistanceMiles != hits[j].DistanceMiles {
			return hits[i].DistanceMiles < hits[j].DistanceMiles
		}
		return hits[i].Location.ID < hits[j].Location.ID
	})
	return hits, nil
}

// NewSessionsSince is the saved-search evaluation query: sessions created
// after the watermark inside the radius, excluding the searcher's own.
func NewSessionsSince(db *gorm.DB, center geo.Point, radiusMiles float64, since time.Time, excludeHostID uint) ([]SessionHit, error) {
	hits, err := FindSessionsWithin(db, center, radiusMiles, excludeHostID)
	if err != nil {
		return nil, err
	}
	fresh := hits[:0]
	for _, h := range hits {
		if h.Session.CreatedAt.After(since) {
			fresh = append(fresh, h)
		}
	}
	return fresh, nil
}
