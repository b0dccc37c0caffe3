package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"funneltrack/internal/auth"
	"funneltrack/internal/config"
)

// Locals key holding the verified admin identity.
const AuthUserKey = "auth_user"

// RequireAdmin validates the session cookie and attaches the authenticated
// admin to the request context.
func RequireAdmin(db *gorm.DB, logger *slog.Logger) fiber.Handler {
	cfg := config.GetConfig()
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cfg.SessionCookieName())
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Authentication required",
			})
		}

		user, err := auth.VerifySession(db, token)
		if err != nil {
			logger.Debug("Session verification failed", slog.Any("error", err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Authentication required",
			})
		}

		c.Locals(AuthUserKey, user)
		return c.Next()
	}
}

// AuthenticatedUser retrieves the admin identity stored by RequireAdmin.
func AuthenticatedUser(c *fiber.Ctx) *auth.AuthenticatedUser {
	user, _ := c.Locals(AuthUserKey).(*auth.AuthenticatedUser)
	return user
}

// RequireConfigured short-circuits with a "not configured" response when the
// instance still runs on the placeholder signing key in production. Nothing
// downstream touches the database in that state.
func RequireConfigured(logger *slog.Logger) fiber.Handler {
	cfg := config.GetConfig()
	return func(c *fiber.Ctx) error {
		if !cfg.IsConfigured() {
			logger.Warn("Request rejected: instance not configured",
				slog.String("path", c.Path()))
			// Deliberately a 200: the landing pages poll this state and treat
			// it as "analytics off", not as a server failure.
			return c.JSON(fiber.Map{
				"success": false,
				"message": "Analytics system not configured",
			})
		}
		return c.Next()
	}
}
