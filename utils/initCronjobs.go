package utils

import (
	"time"

	"meepleserver/geo"
	"meepleserver/models"
	"meepleserver/notify"
	"meepleserver/search"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CronJobs starts the background maintenance schedule: saved-search
// evaluation every ten minutes and a daily sweep for temporary locations
// whose references disappeared while a best-effort cleanup step failed.
func CronJobs(db *gorm.DB, dispatcher *notify.Dispatcher, logger *zap.Logger) {
	c := cron.New()

	c.AddFunc("@every 10m", func() {
		EvaluateSavedSearches(db, dispatcher, logger)
	})

	c.AddFunc("0 4 * * *", func() {
		SweepOrphanLocations(db, logger)
	})

	c.Start()
}

// EvaluateSavedSearches re-runs every standing query from its watermark and
// notifies the owner about newly created matching sessions, then advances
// the watermark. Per-row failures are logged and skipped so one bad row
// never stalls the batch.
func EvaluateSavedSearches(db *gorm.DB, dispatcher *notify.Dispatcher, logger *zap.Logger) {
	var searches []models.SavedSearch
	if err := db.Find(&searches).Error; err != nil {
		logger.Error("saved search scan failed", zap.Error(err))
		return
	}

	now := time.Now()
	for _, s := range searches {
		var loc models.Location
		if err := db.First(&loc, s.LocationID).Error; err != nil {
			logger.Warn("saved search location missing", zap.Uint("savedSearchID", s.ID), zap.Error(err))
			continue
		}

		center := geo.Point{Lat: loc.Lat, Lng: loc.Lng}
		hits, err := search.NewSessionsSince(db, center, s.RadiusMiles, s.LastEvaluatedAt, s.UserID)
		if err != nil {
			logger.Warn("saved search evaluation failed", zap.Uint("savedSearchID", s.ID), zap.Error(err))
			continue
		}

		for _, hit := range hits {
			text := "New session near " + loc.Address + ": " + hit.Session.Title
			if err := dispatcher.Notify(db, s.UserID, text); err != nil {
				logger.Warn("saved search notification failed",
					zap.Uint("userID", s.UserID), zap.Uint("sessionID", hit.Session.ID), zap.Error(err))
			}
		}

		if err := db.Model(&models.SavedSearch{}).Where("id = ?", s.ID).
			Update("last_evaluated_at", now).Error; err != nil {
			logger.Warn("saved search watermark update failed", zap.Uint("savedSearchID", s.ID), zap.Error(err))
		}
	}
}

// SweepOrphanLocations is the reconciliation pass for the relaxed cascade
// steps: temporary locations with no remaining slot or session reference
// are deleted.
func SweepOrphanLocations(db *gorm.DB, logger *zap.Logger) {
	var orphanIDs []uint
	err := db.Model(&models.Location{}).
		Where("temporary = ?", true).
		Where("id NOT IN (?)", db.Model(&models.Slot{}).Select("search_location_id").Where("search_location_id IS NOT NULL")).
		Where("id NOT IN (?)", db.Model(&models.GameSession{}).Select("location_id")).
		Pluck("id", &orphanIDs).Error
	if err != nil {
		logger.Error("orphan location scan failed", zap.Error(err))
		return
	}
	if len(orphanIDs) == 0 {
		return
	}

	result := db.Where("id IN ?", orphanIDs).Delete(&models.Location{})
	if result.Error != nil {
		logger.Error("orphan location sweep failed", zap.Error(result.Error))
		return
	}
	logger.Info("orphan location sweep complete", zap.Int("deleted", int(result.RowsAffected)))
}
