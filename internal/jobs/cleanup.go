package jobs

import (
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge"

	"funneltrack/internal/config"
	"funneltrack/internal/funnel"
)

// CleanupJob removes tracked events past the retention window. Keeps storage
// bounded and serves GDPR data minimization.
type CleanupJob struct {
	dbManager cartridge.DBManager
	logger    *slog.Logger
	cfg       *config.Config
}

func NewCleanupJob(dbManager cartridge.DBManager, logger *slog.Logger, cfg *config.Config) *CleanupJob {
	return &CleanupJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run deletes tracked events older than the retention period in batches to
// avoid holding the write lock for too long.
func (j *CleanupJob) Run() error {
	retentionDays := j.cfg.TrackedEventsRetentionDays
	db := j.dbManager.GetConnection()
	cutoffDate := time.Now().UTC().AddDate(0, 0, -retentionDays)

	j.logger.Info("Starting cleanup of old tracked events",
		slog.Int("retention_days", retentionDays),
		slog.Time("cutoff_date", cutoffDate))

	var countToDelete int64
	if err := db.Model(&funnel.TrackedEvent{}).
		Where("created_at < ?", cutoffDate).
		Count(&countToDelete).Error; err != nil {
		j.logger.Error("Failed to count old tracked events", slog.Any("error", err))
		return err
	}

	if countToDelete == 0 {
		j.logger.Debug("No old tracked events to clean up")
		return nil
	}

	batchSize := 1000
	totalDeleted := int64(0)

	for {
		result := db.Where("created_at < ?", cutoffDate).
			Limit(batchSize).
			Delete(&funnel.TrackedEvent{})

		if result.Error != nil {
			j.logger.Error("Failed to delete old tracked events",
				slog.Any("error", result.Error),
				slog.Int64("deleted_so_far", totalDeleted))
			return result.Error
		}

		totalDeleted += result.RowsAffected

		if result.RowsAffected < int64(batchSize) {
			break
		}

		// Small delay between batches to prevent database lock contention
		time.Sleep(100 * time.Millisecond)
	}

	j.logger.Info("Cleaned up old tracked events",
		slog.Int64("deleted_count", totalDeleted),
		slog.Int("retention_days", retentionDays))

	return nil
}
