package funnel

import (
	"fmt"
	"time"
)

// EventType identifies what happened in the checkout flow. The set is closed:
// ingestion rejects anything else.
type EventType string

const (
	EventPageLoad        EventType = "page_load"
	EventStepStart       EventType = "step_start"
	EventStepComplete    EventType = "step_complete"
	EventFormInteraction EventType = "form_interaction"
	EventCheckoutOpen    EventType = "checkout_open"
	EventCheckoutAbandon EventType = "checkout_abandon"
	EventPaymentAttempt  EventType = "payment_attempt"
	EventPaymentComplete EventType = "payment_complete"
)

// FunnelSteps is the number of sequential checkout steps tracked
// (plan selection, account info, payment info, confirmation).
const FunnelSteps = 4

var validEventTypes = map[EventType]bool{
	EventPageLoad:        true,
	EventStepStart:       true,
	EventStepComplete:    true,
	EventFormInteraction: true,
	EventCheckoutOpen:    true,
	EventCheckoutAbandon: true,
	EventPaymentAttempt:  true,
	EventPaymentComplete: true,
}

// IsValid reports whether t is one of the known event types.
func (t EventType) IsValid() bool {
	return validEventTypes[t]
}

// TrackedEvent is one instrumentation record emitted by a landing page.
// Events are immutable once stored; everything derived from them is computed
// per query and never written back.
type TrackedEvent struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PageName         string    `gorm:"index;not null" json:"page_name"`
	EventType        EventType `gorm:"index;not null" json:"event_type"`
	VisitorSessionID string    `gorm:"index;not null" json:"visitor_session_id"`
	StepNumber       int       `json:"step_number,omitempty"`
	StepName         string    `json:"step_name,omitempty"`
	FormData         string    `gorm:"type:text" json:"form_data,omitempty"`
	TimeSpentSeconds int       `json:"time_spent_seconds,omitempty"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	VisitorIP        string    `json:"visitor_ip"`
	UserAgent        string    `json:"user_agent"`
	Country          string    `json:"country,omitempty"`
	DevModeActive    bool      `json:"dev_mode_active"`
	CreatedAt        time.Time `gorm:"index;not null" json:"created_at"`
}

// Validate checks the invariants ingestion relies on. VisitorSessionID may still be
// empty here; CollectEvent assigns a fallback before storing.
func (e *TrackedEvent) Validate() error {
	if e.PageName == "" {
		return fmt.Errorf("page_name is required")
	}
	if !e.EventType.IsValid() {
		return fmt.Errorf("unknown event_type %q", e.EventType)
	}
	if e.StepNumber < 0 || e.StepNumber > FunnelSteps {
		return fmt.Errorf("step_number %d out of range 1-%d", e.StepNumber, FunnelSteps)
	}
	if e.TimeSpentSeconds < 0 {
		return fmt.Errorf("time_spent_seconds cannot be negative")
	}
	return nil
}

// ConversionStatus of a visitor session.
const (
	StatusConverted = "converted"
	StatusAbandoned = "abandoned"
)

// SessionSummary is the per-visitor view derived from a slice of tracked events.
// It exists only for the duration of one query/response cycle.
type SessionSummary struct {
	SessionID         string         `json:"session_id"`
	VisitorAlias      string         `json:"visitor_alias"`
	VisitorIP         string         `json:"visitor_ip"`
	UserAgent         string         `json:"user_agent"`
	Country           string         `json:"country,omitempty"`
	CountryName       string         `json:"country_name,omitempty"`
	FirstSeen         time.Time      `json:"first_seen"`
	LastSeen          time.Time      `json:"last_seen"`
	Events            []TrackedEvent `json:"events"`
	StepsCompleted    []int          `json:"steps_completed"`
	FurthestStep      int            `json:"furthest_step"`
	FurthestStepLabel string         `json:"furthest_step_label,omitempty"`
	TotalTimeSeconds  int            `json:"total_time_seconds"`
	ConversionStatus  string         `json:"conversion_status"`
}

// StepAnalysis holds the per-step funnel counts. step_N_starts is the number of
// sessions whose furthest completed step is at least N, so the counts are
// monotonically non-increasing; completions duplicates converted_sessions as the
// terminal stage.
type StepAnalysis struct {
	Step1Starts int `json:"step_1_starts"`
	Step2Starts int `json:"step_2_starts"`
	Step3Starts int `json:"step_3_starts"`
	Step4Starts int `json:"step_4_starts"`
	Completions int `json:"completions"`
}

// Summary is the aggregate view over all sessions in the queried slice.
type Summary struct {
	TotalSessions     int          `json:"total_sessions"`
	ConvertedSessions int          `json:"converted_sessions"`
	ConversionRate    float64      `json:"conversion_rate"`
	StepAnalysis      StepAnalysis `json:"step_analysis"`
	DateRangeDays     int          `json:"date_range_days"`
}

// FunnelReport is the full analytics response: summary statistics, per-session
// drill-downs sorted most-recently-started first, and the unmodified input slice.
type FunnelReport struct {
	Summary   Summary          `json:"summary"`
	Sessions  []SessionSummary `json:"sessions"`
	RawEvents []TrackedEvent   `json:"raw_events"`
}
