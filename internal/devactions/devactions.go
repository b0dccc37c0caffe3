package devactions

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"funneltrack/internal/audit"
)

// ActionType identifies how a dev shortcut was triggered on a landing page.
type ActionType string

const (
	ActionAutofill         ActionType = "autofill"
	ActionAutosubmit       ActionType = "autosubmit"
	ActionKeyboardShortcut ActionType = "keyboard_shortcut"
	ActionManualDevButton  ActionType = "manual_dev_button"
)

var validActionTypes = map[ActionType]bool{
	ActionAutofill:         true,
	ActionAutosubmit:       true,
	ActionKeyboardShortcut: true,
	ActionManualDevButton:  true,
}

// IsValid reports whether t is one of the known dev action types.
func (t ActionType) IsValid() bool {
	return validActionTypes[t]
}

// DevAction records one use of a development shortcut (form autofill, auto
// submit, keyboard shortcut) on a landing page, attributed to the admin who
// triggered it.
type DevAction struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"index;not null" json:"user_id"`
	SessionID       string     `gorm:"index" json:"session_id,omitempty"`
	PageName        string     `gorm:"index;not null" json:"page_name"`
	ActionType      ActionType `gorm:"index;not null" json:"action_type"`
	StepNumber      int        `json:"step_number,omitempty"`
	StepName        string     `json:"step_name,omitempty"`
	FormData        string     `gorm:"type:text" json:"form_data,omitempty"`
	ExecutionTimeMs int        `json:"execution_time_ms,omitempty"`
	Success         bool       `gorm:"not null;default:true" json:"success"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	IPAddress       string     `json:"ip_address,omitempty"`
	CreatedAt       time.Time  `gorm:"index;autoCreateTime" json:"created_at"`
}

// LogInput is the client-supplied portion of a dev action record.
type LogInput struct {
	PageName        string         `json:"page_name"`
	ActionType      ActionType     `json:"action_type"`
	ActionName      string         `json:"action_name"`
	StepNumber      int            `json:"step_number"`
	StepName        string         `json:"step_name"`
	FormData        map[string]any `json:"form_data"`
	Success         *bool          `json:"success"`
	ExecutionTimeMs int            `json:"execution_time_ms"`
	ErrorMessage    string         `json:"error_message"`
}

// ErrInvalidInput marks client-supplied input Log rejects before storing
// anything. Handlers map it to a 400 rather than a server error.
var ErrInvalidInput = errors.New("invalid dev action input")

// Log stores a dev action and mirrors it into the audit trail. Returns the
// stored action's id.
func Log(dbConn *gorm.DB, logger *slog.Logger, userID uint, sessionID, ipAddress, userAgent string, input *LogInput) (uint, error) {
	if input.PageName == "" {
		return 0, fmt.Errorf("%w: page_name is required", ErrInvalidInput)
	}
	if !input.ActionType.IsValid() {
		return 0, fmt.Errorf("%w: unknown action_type %q", ErrInvalidInput, input.ActionType)
	}

	// success defaults to true when the client omits it
	success := true
	if input.Success != nil {
		success = *input.Success
	}

	stepName := input.StepName
	if stepName == "" {
		stepName = input.ActionName
	}

	var formData string
	if input.FormData != nil {
		encoded, err := json.Marshal(input.FormData)
		if err != nil {
			return 0, fmt.Errorf("failed to encode form_data: %w", err)
		}
		formData = string(encoded)
	}

	action := &DevAction{
		UserID:          userID,
		SessionID:       sessionID,
		PageName:        input.PageName,
		ActionType:      input.ActionType,
		StepNumber:      input.StepNumber,
		StepName:        stepName,
		FormData:        formData,
		ExecutionTimeMs: input.ExecutionTimeMs,
		Success:         success,
		ErrorMessage:    input.ErrorMessage,
		IPAddress:       ipAddress,
	}
	err := sqlite.PerformWrite(logger, dbConn, func(tx *gorm.DB) error {
		return tx.Create(action).Error
	})
	if err != nil {
		logger.Error("Failed to log dev action", slog.Any("error", err))
		return 0, fmt.Errorf("failed to log dev action: %w", err)
	}

	result := audit.ResultSuccess
	if !success {
		result = audit.ResultFailure
	}
	audit.Record(dbConn, logger, &audit.Entry{
		UserID:         userID,
		SessionID:      sessionID,
		ActionType:     "dev_action_performed",
		ActionCategory: audit.CategoryDevMode,
		TargetResource: "landing_page",
		TargetID:       input.PageName,
		NewValues: audit.EncodeValues(map[string]any{
			"action_type":    input.ActionType,
			"step":           stepName,
			"execution_time": input.ExecutionTimeMs,
			"success":        success,
		}),
		ActionResult: result,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
	})

	return action.ID, nil
}

// Recent returns the newest dev actions, optionally filtered by page name.
func Recent(dbConn *gorm.DB, pageName string, limit int) ([]DevAction, error) {
	query := dbConn.Model(&DevAction{})
	if pageName != "" {
		query = query.Where("page_name = ?", pageName)
	}

	var actions []DevAction
	err := query.Order("created_at DESC").Limit(limit).Find(&actions).Error
	return actions, err
}
