package audit

import (
	"encoding/json"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// Entry is one row in the admin audit log. Every sensitive admin action writes
// one: logins (including failures), config changes, dev mode toggles.
type Entry struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index" json:"user_id,omitempty"`
	SessionID      string    `gorm:"index" json:"session_id,omitempty"`
	ActionType     string    `gorm:"index;not null" json:"action_type"`
	ActionCategory string    `gorm:"index;not null" json:"action_category"`
	TargetResource string    `json:"target_resource,omitempty"`
	TargetID       string    `json:"target_id,omitempty"`
	OldValues      string    `gorm:"type:text" json:"old_values,omitempty"`
	NewValues      string    `gorm:"type:text" json:"new_values,omitempty"`
	ActionResult   string    `gorm:"not null" json:"action_result"`
	FailureReason  string    `json:"failure_reason,omitempty"`
	IPAddress      string    `json:"ip_address,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty"`
	CreatedAt      time.Time `gorm:"index;autoCreateTime" json:"created_at"`
}

// Action results
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultBlocked = "blocked"
)

// Action categories
const (
	CategoryAuth    = "auth"
	CategoryConfig  = "config"
	CategoryDevMode = "dev_mode"
)

// Record writes an audit entry. Failures are logged but never propagated: an
// audit write must not break the action it documents.
func Record(dbConn *gorm.DB, logger *slog.Logger, entry *Entry) {
	err := sqlite.PerformWrite(logger, dbConn, func(tx *gorm.DB) error {
		return tx.Create(entry).Error
	})
	if err != nil {
		logger.Error("Failed to write audit entry",
			slog.String("action_type", entry.ActionType),
			slog.Any("error", err))
	}
}

// EncodeValues marshals a key/value snapshot for the old/new value columns.
func EncodeValues(values map[string]any) string {
	if len(values) == 0 {
		return ""
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// Recent returns the newest audit entries up to limit.
func Recent(dbConn *gorm.DB, limit int) ([]Entry, error) {
	var entries []Entry
	err := dbConn.Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
