// Package http wires the application together behind a gin engine.
package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appbilling "github.com/zevix-io/zevix/internal/application/billing"
	"github.com/zevix-io/zevix/internal/application/metering"
	userapp "github.com/zevix-io/zevix/internal/application/user"
	domainbilling "github.com/zevix-io/zevix/internal/domain/billing"
	"github.com/zevix-io/zevix/internal/infrastructure/auth"
	stripebilling "github.com/zevix-io/zevix/internal/infrastructure/billing"
	"github.com/zevix-io/zevix/internal/infrastructure/config"
	"github.com/zevix-io/zevix/internal/infrastructure/email"
	"github.com/zevix-io/zevix/internal/infrastructure/ratelimit"
	"github.com/zevix-io/zevix/internal/infrastructure/repository"
	"github.com/zevix-io/zevix/internal/interfaces/http/handlers"
	"github.com/zevix-io/zevix/internal/interfaces/http/middleware"
	"github.com/zevix-io/zevix/internal/interfaces/http/routes"
	"github.com/zevix-io/zevix/internal/shared/db"
	"github.com/zevix-io/zevix/internal/shared/logger"
)

// Router holds the wired gin engine.
type Router struct {
	engine *gin.Engine
}

// NewRouter wires repositories, use cases, handlers, and middleware
// from the loaded configuration. The redis client is optional; without
// it rate limiting is disabled.
func NewRouter(cfg *config.Config, gdb *gorm.DB, redisClient *redis.Client) *Router {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	log := logger.NewLogger()

	// Shared infrastructure
	txManager := db.NewTransactionManager(gdb)
	userRepo := repository.NewUserRepository(gdb, log)
	usageRepo := repository.NewUsageRepository(gdb, log)

	catalog := domainbilling.NewCatalog(cfg.Billing.Quotas, cfg.Billing.PricePlans, cfg.Billing.ProductPlans)
	planCache := appbilling.NewPlanCache(time.Duration(cfg.Billing.ReconcileTTLMinutes) * time.Minute)
	gateway := stripebilling.NewStripeGateway(cfg.Billing.StripeSecretKey, log)

	// Billing use cases
	reconcileUC := appbilling.NewReconcilePlanUseCase(
		gateway, userRepo, catalog, planCache,
		time.Duration(cfg.Billing.RequestTimeoutSecs)*time.Second,
		cfg.Billing.PlanValidityDays, log,
	)
	applyUC := appbilling.NewApplyCheckoutUseCase(
		userRepo, usageRepo, catalog, planCache, gateway,
		cfg.Billing.PlanValidityDays, log,
	)
	verifyUC := appbilling.NewVerifySessionUseCase(gateway, applyUC, log)

	// Identity and metering use cases
	hasher := auth.NewBcryptPasswordHasher(cfg.Auth.BcryptCost)
	jwtService := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.ValidityDays)
	registerUC := userapp.NewRegisterUseCase(userRepo, hasher, log)
	loginUC := userapp.NewLoginUseCase(userRepo, usageRepo, catalog, reconcileUC, hasher, jwtService, log)
	consumeUC := metering.NewConsumeLeadsUseCase(userRepo, usageRepo, catalog, reconcileUC, txManager, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(registerUC, loginUC)
	leadHandler := handlers.NewLeadHandler(consumeUC)
	billingHandler := handlers.NewBillingHandler(verifyUC, applyUC, gateway, cfg.Billing.StripeWebhookSecret)
	roiHandler := handlers.NewROIHandler()

	var mandateHandler *handlers.MandateHandler
	if cfg.Email.SMTPHost != "" {
		mailer := email.NewSMTPEmailService(email.SMTPConfig{
			Host:        cfg.Email.SMTPHost,
			Port:        cfg.Email.SMTPPort,
			Username:    cfg.Email.SMTPUser,
			Password:    cfg.Email.SMTPPassword,
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
		})
		mandateHandler = handlers.NewMandateHandler(mailer, cfg.Email.MandateRecipient)
	}

	var limiter ratelimit.RateLimiter
	if redisClient != nil {
		limiter = ratelimit.NewRedisRateLimiter(redisClient)
	}

	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestLogger())
	engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	routes.SetupZevixRoutes(engine, &routes.ZevixRouteConfig{
		AuthHandler:    authHandler,
		LeadHandler:    leadHandler,
		BillingHandler: billingHandler,
		JWTService:     jwtService,
		RateLimiter:    limiter,
		LoginLimits: ratelimit.RateLimitConfig{
			RequestsPerMinute: 20,
			RequestsPerHour:   200,
		},
	})
	routes.SetupAPIRoutes(engine, &routes.APIRouteConfig{
		ROIHandler:     roiHandler,
		MandateHandler: mandateHandler,
	})

	return &Router{engine: engine}
}

// Engine exposes the underlying gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
