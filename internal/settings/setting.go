package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/cache"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// Setting represents a runtime configuration item in the database. Unlike the
// process config, these are editable from the admin panel without a restart.
type Setting struct {
	ID          uint      `gorm:"primaryKey"`
	Key         string    `gorm:"uniqueIndex;not null"`
	Value       string    `gorm:"not null"`
	DataType    string    `gorm:"not null;default:string"`
	Description string
	UpdatedBy   uint
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:milli"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:milli"`
}

// Runtime setting keys
const (
	KeyDevModeEnabled        = "dev_mode_enabled"
	KeyMaintenanceMode       = "maintenance_mode"
	KeyAnalyticsEnabled      = "analytics_enabled"
	KeyPaymentSimulation     = "payment_simulation_enabled"
	KeySignupSimulation      = "signup_simulation_enabled"
	KeySessionTimeoutMinutes = "session_timeout_minutes"
)

var (
	devModeCache   *cache.Cache[string, bool]
	devModeCacheMu sync.Mutex
)

// SetupDefaultSettings seeds the runtime settings the admin panel manages.
// Existing rows are left untouched.
func SetupDefaultSettings(dbConn *gorm.DB) error {
	defaults := []Setting{
		{Key: KeyDevModeEnabled, Value: "false", DataType: "boolean", Description: "Tag incoming events as development traffic"},
		{Key: KeyMaintenanceMode, Value: "false", DataType: "boolean", Description: "Serve a maintenance response on public endpoints"},
		{Key: KeyAnalyticsEnabled, Value: "true", DataType: "boolean", Description: "Accept incoming tracking events"},
		{Key: KeyPaymentSimulation, Value: "true", DataType: "boolean", Description: "Simulate payment processing instead of charging"},
		{Key: KeySignupSimulation, Value: "true", DataType: "boolean", Description: "Simulate account provisioning on signup"},
		{Key: KeySessionTimeoutMinutes, Value: "480", DataType: "number", Description: "Admin session lifetime in minutes"},
	}
	err := sqlite.PerformWrite(slog.Default(), dbConn, func(tx *gorm.DB) error {
		for _, setting := range defaults {
			err := tx.Exec(`
                INSERT INTO settings (key, value, data_type, description, created_at, updated_at)
                VALUES (?, ?, ?, ?, ?, ?)
                ON CONFLICT(key) DO NOTHING
            `, setting.Key, setting.Value, setting.DataType, setting.Description,
				time.Now().UTC(), time.Now().UTC()).Error
			if err != nil {
				slog.Default().Error("Failed to upsert setting", slog.String("key", setting.Key), slog.Any("error", err))
				return fmt.Errorf("failed to upsert setting %s: %w", setting.Key, err)
			}
		}
		return nil
	})

	loadCache(dbConn, slog.Default())

	return err
}

// IsDevModeEnabled reports whether events should be tagged as development
// traffic. Reads go through a short-lived cache since this sits on the
// ingestion hot path.
func IsDevModeEnabled(dbConn *gorm.DB) bool {
	devModeCacheMu.Lock()
	if devModeCache == nil {
		devModeCache = newDevModeCache(dbConn, slog.Default())
	}
	c := devModeCache
	devModeCacheMu.Unlock()

	enabled, err := c.Get(KeyDevModeEnabled)
	if err != nil {
		return false
	}
	return enabled
}

// SetDevMode flips the dev mode flag and returns the new value.
func SetDevMode(dbConn *gorm.DB, enabled bool, updatedBy uint) error {
	if err := UpdateSetting(dbConn, KeyDevModeEnabled, strconv.FormatBool(enabled), updatedBy); err != nil {
		return err
	}
	return nil
}

// GetSetting retrieves a setting value from the database.
func GetSetting(dbConn *gorm.DB, key string) (string, error) {
	var setting Setting
	result := dbConn.Where("key = ?", key).First(&setting)
	if result.Error != nil {
		return "", result.Error
	}
	return setting.Value, nil
}

// GetBoolSetting retrieves a boolean setting, returning fallback when the key
// is missing or not parseable.
func GetBoolSetting(dbConn *gorm.DB, key string, fallback bool) bool {
	value, err := GetSetting(dbConn, key)
	if err != nil {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// UpdateSetting updates an existing setting. Unknown keys are rejected: the
// admin panel can only change settings that were seeded, never invent new ones.
func UpdateSetting(dbConn *gorm.DB, key string, value string, updatedBy uint) error {
	err := sqlite.PerformWrite(slog.Default(), dbConn, func(tx *gorm.DB) error {
		result := tx.Model(&Setting{}).Where("key = ?", key).
			Updates(map[string]any{"value": value, "updated_by": updatedBy})
		if result.Error != nil {
			return fmt.Errorf("failed to update setting: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrUnknownSettingKey{Key: key}
		}
		return nil
	})
	if err != nil {
		return err
	}

	devModeCacheMu.Lock()
	if devModeCache != nil {
		devModeCache.Clear()
	}
	devModeCacheMu.Unlock()
	return nil
}

// ErrUnknownSettingKey signals an update against a key that was never seeded.
type ErrUnknownSettingKey struct {
	Key string
}

func (e ErrUnknownSettingKey) Error() string {
	return fmt.Sprintf("unknown setting key %q", e.Key)
}

// UpdateResult describes the outcome of one key in a bulk settings update.
type UpdateResult struct {
	Key     string `json:"key"`
	Action  string `json:"action"`
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// UpdateKnownSettings applies a bulk update. Known keys are updated; unknown
// keys are skipped and reported rather than failing the whole batch.
func UpdateKnownSettings(dbConn *gorm.DB, updates map[string]string, updatedBy uint) []UpdateResult {
	results := make([]UpdateResult, 0, len(updates))
	for key, value := range updates {
		err := UpdateSetting(dbConn, key, value, updatedBy)
		if err == nil {
			results = append(results, UpdateResult{Key: key, Action: "updated", Success: true})
			continue
		}
		reason := err.Error()
		var unknown ErrUnknownSettingKey
		if errors.As(err, &unknown) {
			reason = "setting key not found"
		}
		results = append(results, UpdateResult{Key: key, Action: "skipped", Success: false, Reason: reason})
	}
	return results
}

// SettingResponse represents a setting for API responses.
type SettingResponse struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	DataType    string    `json:"data_type"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GetAllSettings retrieves every runtime setting ordered by key.
func GetAllSettings(dbConn *gorm.DB) ([]SettingResponse, error) {
	var all []Setting
	if err := dbConn.Order("key").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch settings: %w", err)
	}

	result := make([]SettingResponse, 0, len(all))
	for _, setting := range all {
		result = append(result, SettingResponse{
			Key:         setting.Key,
			Value:       setting.Value,
			DataType:    setting.DataType,
			Description: setting.Description,
			UpdatedAt:   setting.UpdatedAt,
		})
	}
	return result, nil
}

// loadCache rebinds the dev mode cache to dbConn. Safe to call concurrently
// with reads.
func loadCache(dbConn *gorm.DB, logger *slog.Logger) {
	c := newDevModeCache(dbConn, logger)
	devModeCacheMu.Lock()
	devModeCache = c
	devModeCacheMu.Unlock()
}

func newDevModeCache(dbConn *gorm.DB, logger *slog.Logger) *cache.Cache[string, bool] {
	fetchFunc := func(key string) (bool, error) {
		var value string
		err := dbConn.WithContext(context.Background()).
			Raw("SELECT value FROM settings WHERE key = ? LIMIT 1", key).
			Scan(&value).Error
		if err != nil {
			return false, err
		}
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return false, nil
		}
		return enabled, nil
	}
	return cache.NewCache[string, bool](logger, 1*time.Minute, fetchFunc)
}
