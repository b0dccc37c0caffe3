package jobs

import (
	"log/slog"

	"github.com/karloscodes/cartridge"

	"funneltrack/internal/auth"
)

// SessionSweepJob deletes expired admin sessions so revocation checks stay on
// a small table.
type SessionSweepJob struct {
	dbManager cartridge.DBManager
	logger    *slog.Logger
}

func NewSessionSweepJob(dbManager cartridge.DBManager, logger *slog.Logger) *SessionSweepJob {
	return &SessionSweepJob{
		dbManager: dbManager,
		logger:    logger,
	}
}

func (j *SessionSweepJob) Run() error {
	db := j.dbManager.GetConnection()

	deleted, err := auth.SweepExpiredSessions(db, j.logger)
	if err != nil {
		j.logger.Error("Failed to sweep expired sessions", slog.Any("error", err))
		return err
	}

	if deleted > 0 {
		j.logger.Info("Swept expired admin sessions", slog.Int64("deleted_count", deleted))
	}
	return nil
}
