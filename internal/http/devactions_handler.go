package http

import (
	"errors"
	"strconv"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"funneltrack/internal/devactions"
)

// DevActionCreateAction logs a development shortcut used on a landing page
// (autofill, autosubmit, keyboard shortcut) by the authenticated admin.
func DevActionCreateAction(ctx *cartridge.Context) error {
	user := authenticatedUser(ctx)

	var input devactions.LogInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}
	if input.PageName == "" || input.ActionType == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Missing required fields",
		})
	}

	actionID, err := devactions.Log(ctx.DB(), ctx.Logger, user.UserID, user.SessionID,
		ctx.Ctx.IP(), ctx.Get("User-Agent"), &input)
	if err != nil {
		if errors.Is(err, devactions.ErrInvalidInput) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid dev action",
			})
		}
		ctx.Logger.Error("Failed to log dev action", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to log action",
		})
	}

	return ctx.JSON(fiber.Map{
		"success":   true,
		"message":   "Dev action logged successfully",
		"action_id": actionID,
	})
}

// DevActionIndexAction lists recent dev actions, optionally filtered by page.
func DevActionIndexAction(ctx *cartridge.Context) error {
	limit, _ := strconv.Atoi(ctx.Query("limit", "50"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	actions, err := devactions.Recent(ctx.DB(), ctx.Query("page_name"), limit)
	if err != nil {
		ctx.Logger.Error("Failed to fetch dev actions", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch dev actions",
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"actions": actions,
	})
}
