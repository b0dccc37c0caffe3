package http

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"funneltrack/internal/config"
	"funneltrack/internal/funnel"
)

// AnalyticsIndexAction returns the funnel report for the admin panel: summary
// statistics, per-session journeys and the raw event slice, filtered by the
// query parameters.
func AnalyticsIndexAction(ctx *cartridge.Context) error {
	cfg := config.GetConfig()

	days, _ := strconv.Atoi(ctx.Query("days", ""))
	if days <= 0 {
		days = cfg.AnalyticsDefaultDays
	}
	limit, _ := strconv.Atoi(ctx.Query("limit", ""))
	if limit <= 0 {
		limit = cfg.AnalyticsDefaultLimit
	}

	filters := funnel.EventFilters{
		PageName:  ctx.Query("page_name"),
		SessionID: ctx.Query("session_id"),
		Days:      days,
		Limit:     limit,
	}

	events, err := funnel.RecentEvents(ctx.DB(), filters)
	if err != nil {
		ctx.Logger.Error("Failed to fetch tracked events", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch analytics",
		})
	}

	report := funnel.AggregateSessions(events, days)

	return ctx.JSON(fiber.Map{
		"success":    true,
		"summary":    report.Summary,
		"sessions":   report.Sessions,
		"raw_events": report.RawEvents,
	})
}
