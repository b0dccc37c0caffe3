package http

import (
	"errors"
	"time"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"funneltrack/internal/auth"
	"funneltrack/internal/config"
	"funneltrack/internal/http/middleware"
)

// ProcessLoginAction authenticates an admin and sets the session cookie.
// Invalid email and wrong password get the same response; only a lockout is
// distinguishable, since the caller needs to know to stop retrying.
func ProcessLoginAction(ctx *cartridge.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := ctx.BodyParser(&body); err != nil || body.Email == "" || body.Password == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Email and password are required",
		})
	}

	db := ctx.DB()
	token, user, err := auth.Login(db, ctx.Logger, auth.LoginInput{
		Email:     body.Email,
		Password:  body.Password,
		IPAddress: ctx.Ctx.IP(),
		UserAgent: ctx.Get("User-Agent"),
	})
	if err != nil {
		if errors.Is(err, auth.ErrAccountLocked) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Account temporarily locked. Try again later.",
			})
		}
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrAccountDisabled) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid credentials",
			})
		}
		ctx.Logger.Error("Login failed", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Authentication server error",
		})
	}

	cfg := config.GetConfig()
	setSessionCookie(ctx, token, time.Duration(cfg.LoginSessionTimeoutSeconds)*time.Second)

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"user": fiber.Map{
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// SessionStatusAction reports whether the request carries a valid admin session.
func SessionStatusAction(ctx *cartridge.Context) error {
	cfg := config.GetConfig()
	token := ctx.Ctx.Cookies(cfg.SessionCookieName())

	user, err := auth.VerifySession(ctx.DB(), token)
	if err != nil {
		return ctx.JSON(fiber.Map{
			"success":       true,
			"authenticated": false,
		})
	}

	return ctx.JSON(fiber.Map{
		"success":       true,
		"authenticated": true,
		"user": fiber.Map{
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// LogoutAction revokes the session and clears the cookie. Idempotent: logging
// out twice succeeds both times.
func LogoutAction(ctx *cartridge.Context) error {
	cfg := config.GetConfig()
	token := ctx.Ctx.Cookies(cfg.SessionCookieName())

	if err := auth.RevokeSession(ctx.DB(), ctx.Logger, token); err != nil {
		ctx.Logger.Error("Failed to revoke session", slog.Any("error", err))
	}

	ctx.ClearCookie(cfg.SessionCookieName())
	setSessionCookie(ctx, "", -time.Hour)

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Logout successful",
	})
}

func setSessionCookie(ctx *cartridge.Context, token string, maxAge time.Duration) {
	cfg := config.GetConfig()
	ctx.Cookie(&fiber.Cookie{
		Name:     cfg.SessionCookieName(),
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Expires:  time.Now().Add(maxAge),
		Secure:   cfg.IsProduction(),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

// authenticatedUser is a convenience wrapper for handlers behind RequireAdmin.
func authenticatedUser(ctx *cartridge.Context) *auth.AuthenticatedUser {
	return middleware.AuthenticatedUser(ctx.Ctx)
}
