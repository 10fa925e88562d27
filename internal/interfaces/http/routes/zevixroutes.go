package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/zevix-io/zevix/internal/infrastructure/auth"
	"github.com/zevix-io/zevix/internal/infrastructure/ratelimit"
	"github.com/zevix-io/zevix/internal/interfaces/http/handlers"
	"github.com/zevix-io/zevix/internal/interfaces/http/middleware"
)

// ZevixRouteConfig holds dependencies for the core product routes.
type ZevixRouteConfig struct {
	AuthHandler    *handlers.AuthHandler
	LeadHandler    *handlers.LeadHandler
	BillingHandler *handlers.BillingHandler
	JWTService     *auth.JWTService
	RateLimiter    ratelimit.RateLimiter
	LoginLimits    ratelimit.RateLimitConfig
}

// SetupZevixRoutes configures the account, metering, and billing routes.
func SetupZevixRoutes(engine *gin.Engine, cfg *ZevixRouteConfig) {
	bearer := middleware.OptionalBearerAuth(cfg.JWTService)
	loginLimit := middleware.RateLimit(cfg.RateLimiter, cfg.LoginLimits)

	zevix := engine.Group("/zevix")
	{
		zevix.POST("/register", loginLimit, cfg.AuthHandler.Register)
		zevix.POST("/login", loginLimit, cfg.AuthHandler.Login)

		zevix.POST("/consume-leads", bearer, cfg.LeadHandler.ConsumeLeads)
		// Legacy route name kept for existing integrations.
		zevix.POST("/export-lead", bearer, cfg.LeadHandler.ConsumeLeads)

		zevix.POST("/webhook", cfg.BillingHandler.Webhook)
		zevix.POST("/verify-session", cfg.BillingHandler.VerifySession)
	}
}
