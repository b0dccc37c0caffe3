package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	v1 "funneltrack/api/v1"
	"funneltrack/internal/config"
	"funneltrack/internal/http"
	"funneltrack/internal/http/middleware"
)

// publicCORSConfig is the permissive CORS setup shared by all public endpoints:
// the tracking and checkout APIs are called from landing pages on arbitrary
// marketing domains.
var publicCORSConfig = &cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Authorization, Referrer, User-Agent",
}

// MountAppRoutes mounts all application routes using cartridge's route API.
func MountAppRoutes(srv *cartridge.Server) {
	cfg := config.GetConfig()

	// Rate limiting only in production; in development/test it would interfere
	// with testing.
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// Public ingestion: 70 req/min per IP handles legitimate funnel traffic
	// while preventing abuse.
	publicRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(70),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	// Stricter limit on auth endpoints to slow brute force attempts.
	authRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(10),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	db := srv.GetDBManager().GetConnection()
	logger := srv.GetLogger()

	publicAPIConfig := &cartridge.RouteConfig{
		EnableCORS:       true,
		WriteConcurrency: false,
		CustomMiddleware: []fiber.Handler{publicRateLimiter},
		CORSConfig:       publicCORSConfig,
	}

	checkoutConfig := &cartridge.RouteConfig{
		EnableCORS:       true,
		CustomMiddleware: []fiber.Handler{publicRateLimiter},
		CORSConfig:       publicCORSConfig,
	}

	loginConfig := &cartridge.RouteConfig{
		CustomMiddleware: []fiber.Handler{
			authRateLimiter,
			middleware.RequireConfigured(logger),
		},
	}

	adminAPIConfig := &cartridge.RouteConfig{
		CustomMiddleware: []fiber.Handler{
			middleware.RequireConfigured(logger),
			middleware.RequireAdmin(db, logger),
		},
	}

	// === HEALTH ===
	srv.Get("/_health", http.HealthIndexAction)
	srv.Head("/_health", http.HealthIndexAction)

	// === PUBLIC TRACKING API ===
	srv.Post("/api/v1/track", v1.TrackEventPublicAPIHandler, publicAPIConfig)
	srv.Options("/api/v1/track", func(ctx *cartridge.Context) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	}, publicAPIConfig)
	srv.Post("/api/v1/track/beacon", v1.TrackEventBeaconHandler, publicAPIConfig)
	srv.Options("/api/v1/track/beacon", func(ctx *cartridge.Context) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	}, publicAPIConfig)

	// === PUBLIC CHECKOUT SIMULATION API ===
	srv.Post("/api/v1/process-payment", http.ProcessPaymentAction, checkoutConfig)
	srv.Post("/api/v1/signup", http.SignupAction, checkoutConfig)
	srv.Post("/api/v1/service-checkout", http.ServiceCheckoutAction, checkoutConfig)

	// === ADMIN AUTHENTICATION ===
	srv.Post("/api/admin/auth", http.ProcessLoginAction, loginConfig)
	srv.Get("/api/admin/auth", http.SessionStatusAction)
	srv.Delete("/api/admin/auth", http.LogoutAction)

	// === PROTECTED ADMIN API ===
	srv.Get("/api/admin/analytics", http.AnalyticsIndexAction, adminAPIConfig)

	srv.Get("/api/admin/config", http.ConfigIndexAction, adminAPIConfig)
	srv.Post("/api/admin/config", http.ConfigUpdateAction, adminAPIConfig)
	srv.Put("/api/admin/config", http.DevModeToggleAction, adminAPIConfig)

	srv.Post("/api/admin/dev-action", http.DevActionCreateAction, adminAPIConfig)
	srv.Get("/api/admin/dev-action", http.DevActionIndexAction, adminAPIConfig)

	srv.Get("/api/admin/audit-log", http.AuditLogIndexAction, adminAPIConfig)
}
