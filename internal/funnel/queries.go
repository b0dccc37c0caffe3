package funnel

import (
	"time"

	"gorm.io/gorm"
)

// EventFilters represents filtering options for analytics queries.
type EventFilters struct {
	PageName  string
	SessionID string
	Days      int
	Limit     int
}

// RecentEvents retrieves tracked events within the trailing window, most recent
// first. Days and Limit must be positive; handlers apply the configured
// defaults before calling.
func RecentEvents(db *gorm.DB, filters EventFilters) ([]TrackedEvent, error) {
	since := time.Now().UTC().AddDate(0, 0, -filters.Days)

	query := db.Model(&TrackedEvent{}).
		Where("created_at >= ?", since)

	if filters.PageName != "" {
		query = query.Where("page_name = ?", filters.PageName)
	}
	if filters.SessionID != "" {
		query = query.Where("visitor_session_id = ?", filters.SessionID)
	}

	var events []TrackedEvent
	if err := query.Order("created_at DESC").
		Limit(filters.Limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// CountEventsSince counts tracked events created on or after the given time.
func CountEventsSince(db *gorm.DB, since time.Time) (int64, error) {
	var count int64
	err := db.Model(&TrackedEvent{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

// DeleteEventsOlderThan removes tracked events past the retention window and
// returns how many rows were deleted.
func DeleteEventsOlderThan(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("created_at < ?", cutoff).Delete(&TrackedEvent{})
	return result.RowsAffected, result.Error
}
