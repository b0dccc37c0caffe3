package http

import (
	"strconv"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"funneltrack/internal/audit"
	"funneltrack/internal/settings"
	"funneltrack/internal/users"
)

// ConfigIndexAction lists the runtime settings for the admin panel.
func ConfigIndexAction(ctx *cartridge.Context) error {
	all, err := settings.GetAllSettings(ctx.DB())
	if err != nil {
		ctx.Logger.Error("Failed to fetch settings", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch configuration",
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"config":  all,
	})
}

// ConfigUpdateAction applies a bulk settings update. Super admin only. Known
// keys are updated and audited; unknown keys are skipped and reported, never
// created.
func ConfigUpdateAction(ctx *cartridge.Context) error {
	user := authenticatedUser(ctx)
	if user.Role != users.RoleSuperAdmin {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Super admin access required",
		})
	}

	var body struct {
		Updates map[string]string `json:"updates"`
	}
	if err := ctx.BodyParser(&body); err != nil || len(body.Updates) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid updates format",
		})
	}

	db := ctx.DB()
	oldValues := make(map[string]any, len(body.Updates))
	for key := range body.Updates {
		if value, err := settings.GetSetting(db, key); err == nil {
			oldValues[key] = value
		}
	}

	results := settings.UpdateKnownSettings(db, body.Updates, user.UserID)

	newValues := make(map[string]any, len(body.Updates))
	for _, result := range results {
		if result.Success {
			newValues[result.Key] = body.Updates[result.Key]
		}
	}
	if len(newValues) > 0 {
		audit.Record(db, ctx.Logger, &audit.Entry{
			UserID:         user.UserID,
			SessionID:      user.SessionID,
			ActionType:     "config_update",
			ActionCategory: audit.CategoryConfig,
			TargetResource: "settings",
			OldValues:      audit.EncodeValues(oldValues),
			NewValues:      audit.EncodeValues(newValues),
			ActionResult:   audit.ResultSuccess,
			IPAddress:      ctx.Ctx.IP(),
			UserAgent:      ctx.Get("User-Agent"),
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Configuration updated",
		"results": results,
	})
}

// DevModeToggleAction flips the dev mode flag. Any admin may toggle it; the
// flag only changes how incoming events are tagged.
func DevModeToggleAction(ctx *cartridge.Context) error {
	user := authenticatedUser(ctx)

	var body struct {
		Action string `json:"action"`
		Value  *bool  `json:"value"`
	}
	if err := ctx.BodyParser(&body); err != nil || body.Action != "toggle_dev_mode" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid action",
		})
	}

	db := ctx.DB()
	current := settings.GetBoolSetting(db, settings.KeyDevModeEnabled, false)

	// explicit value wins, otherwise flip
	newValue := !current
	if body.Value != nil {
		newValue = *body.Value
	}

	if err := settings.SetDevMode(db, newValue, user.UserID); err != nil {
		ctx.Logger.Error("Failed to toggle dev mode", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to toggle dev mode",
		})
	}

	audit.Record(db, ctx.Logger, &audit.Entry{
		UserID:         user.UserID,
		SessionID:      user.SessionID,
		ActionType:     "dev_mode_toggle",
		ActionCategory: audit.CategoryDevMode,
		TargetResource: "settings",
		TargetID:       settings.KeyDevModeEnabled,
		OldValues:      audit.EncodeValues(map[string]any{settings.KeyDevModeEnabled: current}),
		NewValues:      audit.EncodeValues(map[string]any{settings.KeyDevModeEnabled: newValue}),
		ActionResult:   audit.ResultSuccess,
		IPAddress:      ctx.Ctx.IP(),
		UserAgent:      ctx.Get("User-Agent"),
	})

	message := "Dev mode disabled"
	if newValue {
		message = "Dev mode enabled"
	}
	return ctx.JSON(fiber.Map{
		"success":          true,
		"message":          message,
		"dev_mode_enabled": newValue,
	})
}

// AuditLogIndexAction returns the newest audit entries.
func AuditLogIndexAction(ctx *cartridge.Context) error {
	limit, _ := strconv.Atoi(ctx.Query("limit", "50"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	entries, err := audit.Recent(ctx.DB(), limit)
	if err != nil {
		ctx.Logger.Error("Failed to fetch audit log", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch audit log",
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"entries": entries,
	})
}
