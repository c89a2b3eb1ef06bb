package handler

import (
	"github.com/hypersoftss/elopaygateway-sub002/internal/adapter/http/middleware"
	redisStore "github.com/hypersoftss/elopaygateway-sub002/internal/adapter/storage/redis"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	PaymentSvc     ports.PaymentService
	CallbackSvc    ports.CallbackService
	ReportingSvc   ports.ReportingService
	MerchantSvc    ports.MerchantManagementService
	LinkSvc        ports.PaymentLinkService
	AlertSvc       AlertAdminService
	MerchantRepo   ports.MerchantRepository
	SigSvc         ports.SignatureService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL, Redis and the upstream gateway)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Merchant API (signature-authenticated per request) ---
	paymentHandler := NewPaymentHandler(deps.PaymentSvc, deps.MerchantRepo, deps.SigSvc)
	v1.POST("/payin", rl("payin"), paymentHandler.CreatePayin)
	v1.POST("/payout", rl("payout"), paymentHandler.CreatePayout)

	// --- Settlement callbacks from the upstream processor ---
	callbackHandler := NewCallbackHandler(deps.CallbackSvc)
	callbacks := v1.Group("/callback")
	{
		callbacks.POST("/payin", callbackHandler.PayinCallback)
		callbacks.POST("/payout", callbackHandler.PayoutCallback)
	}

	// --- Payment links (public pay-by-code) ---
	linkHandler := NewPaymentLinkHandler(deps.LinkSvc)
	v1.POST("/links/:code/pay", rl("links"), linkHandler.PayLink)

	// --- Admin authentication ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	v1.POST("/auth/login", rl("auth_login"), authHandler.Login)

	// --- JWT-authenticated admin surface ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	adminHandler := NewAdminHandler(deps.PaymentSvc, deps.ReportingSvc, deps.MerchantSvc, deps.AlertSvc)

	admin := v1.Group("/admin", jwtAuth, rl("admin"))
	{
		admin.POST("/payouts/:id/approve", adminHandler.ApprovePayout)
		admin.POST("/payouts/:id/reject", adminHandler.RejectPayout)

		admin.GET("/transactions", adminHandler.ListTransactions)
		admin.GET("/stats", adminHandler.GetStats)

		admin.POST("/merchants", adminHandler.CreateMerchant)
		admin.PUT("/merchants/:id/fees", adminHandler.UpdateFeeSchedule)
		admin.POST("/merchants/:id/rotate-keys", adminHandler.RotateKeys)
		admin.GET("/merchants/:id/ledger", adminHandler.GetLedger)

		admin.GET("/alerts", adminHandler.ListAlerts)
		admin.POST("/alerts/:id/ack", adminHandler.AcknowledgeAlert)

		admin.POST("/links", linkHandler.CreateLink)
	}

	return r
}
