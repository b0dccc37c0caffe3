package funnel

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"funneltrack/internal/pkg/geoip"
	"funneltrack/internal/settings"
)

// CollectEventInput is the client-supplied portion of a tracked event. IP,
// user agent, country and timestamp are server-assigned; anything the client
// sends for those is ignored.
type CollectEventInput struct {
	PageName         string         `json:"page_name"`
	EventType        EventType      `json:"event_type"`
	VisitorSessionID string         `json:"visitor_session_id"`
	StepNumber       int            `json:"step_number"`
	StepName         string         `json:"step_name"`
	FormData         map[string]any `json:"form_data"`
	TimeSpentSeconds int            `json:"time_spent_seconds"`
	ErrorMessage     string         `json:"error_message"`

	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

// CollectEvent validates and stores a tracked event. The visitor session id is
// normally minted client-side; when it is missing a server-side UUID keeps the
// event attributable to a (single-event) session instead of dropping it.
func CollectEvent(dbManager cartridge.DBManager, logger *slog.Logger, input *CollectEventInput) error {
	if input.UserAgent == "" {
		input.UserAgent = "Unknown User Agent"
	}
	if input.VisitorSessionID == "" {
		input.VisitorSessionID = "srv_" + uuid.NewString()
		logger.Debug("Assigned fallback visitor session id",
			slog.String("session_id", input.VisitorSessionID),
			slog.String("page", input.PageName))
	}

	formData, err := EncodeFormData(input.EventType, input.FormData)
	if err != nil {
		logger.Warn("Rejected event form_data",
			slog.String("event_type", string(input.EventType)),
			slog.Any("error", err))
		return fmt.Errorf("invalid form_data: %w", err)
	}

	db := dbManager.GetConnection()
	event := &TrackedEvent{
		PageName:         input.PageName,
		EventType:        input.EventType,
		VisitorSessionID: input.VisitorSessionID,
		StepNumber:       input.StepNumber,
		StepName:         input.StepName,
		FormData:         formData,
		TimeSpentSeconds: input.TimeSpentSeconds,
		ErrorMessage:     input.ErrorMessage,
		VisitorIP:        input.IPAddress,
		UserAgent:        input.UserAgent,
		Country:          geoip.CountryCode(input.IPAddress),
		DevModeActive:    settings.IsDevModeEnabled(db),
		CreatedAt:        time.Now().UTC(),
	}

	if err := event.Validate(); err != nil {
		logger.Warn("Rejected tracked event", slog.Any("error", err))
		return err
	}

	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(event).Error
	})
	if err != nil {
		logger.Error("Failed to store tracked event", slog.Any("error", err))
		return fmt.Errorf("failed to store tracked event: %w", err)
	}

	return nil
}
