package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"funneltrack/internal/funnel"
	"funneltrack/internal/settings"
)

const (
	msgEventAdded     = "Event tracked successfully"
	errInvalidRequest = "Invalid request"
)

// TrackEventPublicAPIHandler ingests a checkout funnel event from a landing
// page. The endpoint stays permissive: it is called from marketing pages on
// arbitrary domains, so there is no origin allowlist, only rate limiting.
func TrackEventPublicAPIHandler(ctx *cartridge.Context) error {
	ctx.Logger.Debug("Received track request",
		slog.String("method", ctx.Method()),
		slog.String("path", ctx.Path()))

	var input funnel.CollectEventInput
	if err := ctx.BodyParser(&input); err != nil {
		ctx.Logger.Debug("Failed to parse track request", slog.Any("error", err))
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": errInvalidRequest,
		})
	}

	db := ctx.DB()
	if !settings.GetBoolSetting(db, settings.KeyAnalyticsEnabled, true) {
		// Tracking disabled from the admin panel; acknowledge and drop.
		return ctx.Status(http.StatusAccepted).JSON(fiber.Map{
			"message": msgEventAdded,
			"status":  http.StatusAccepted,
		})
	}

	input.IPAddress = getClientIP(ctx.Ctx)
	input.UserAgent = requestUserAgent(ctx)

	if err := funnel.CollectEvent(ctx.DBManager, ctx.Logger, &input); err != nil {
		if strings.Contains(err.Error(), "database is locked") || strings.Contains(err.Error(), "busy") {
			return ctx.Status(599).JSON(fiber.Map{}) // custom status code
		}
		ctx.Logger.Debug("Rejected tracked event", slog.Any("error", err))
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "INVALID_EVENT",
		})
	}

	return ctx.Status(http.StatusAccepted).JSON(fiber.Map{
		"message": msgEventAdded,
		"status":  http.StatusAccepted,
	})
}

// TrackEventBeaconHandler ingests events sent via navigator.sendBeacon, which
// is how checkout_abandon events arrive during page unload. Beacon requests
// always get a 202 so the browser never retries.
func TrackEventBeaconHandler(ctx *cartridge.Context) error {
	body := ctx.Body()
	var input funnel.CollectEventInput
	if err := json.Unmarshal(body, &input); err != nil {
		ctx.Logger.Debug("Failed to parse beacon request", slog.Any("error", err))
		return ctx.SendStatus(http.StatusAccepted)
	}

	db := ctx.DB()
	if !settings.GetBoolSetting(db, settings.KeyAnalyticsEnabled, true) {
		return ctx.SendStatus(http.StatusAccepted)
	}

	input.IPAddress = getClientIP(ctx.Ctx)
	input.UserAgent = requestUserAgent(ctx)

	if err := funnel.CollectEvent(ctx.DBManager, ctx.Logger, &input); err != nil {
		ctx.Logger.Debug("Failed to collect beacon event",
			slog.Any("error", err),
			slog.String("page", input.PageName))
	}

	return ctx.SendStatus(http.StatusAccepted)
}

func requestUserAgent(ctx *cartridge.Context) string {
	userAgent := ctx.Get("User-Agent")
	if forwardedUA := ctx.Get("X-Forwarded-User-Agent"); forwardedUA != "" {
		userAgent = forwardedUA
	}
	return userAgent
}
