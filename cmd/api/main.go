package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/config"
	"github.com/hypersoftss/elopaygateway-sub002/internal/adapter/gateway"
	httpHandler "github.com/hypersoftss/elopaygateway-sub002/internal/adapter/http/handler"
	pgStorage "github.com/hypersoftss/elopaygateway-sub002/internal/adapter/storage/postgres"
	redisStorage "github.com/hypersoftss/elopaygateway-sub002/internal/adapter/storage/redis"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"
	"github.com/hypersoftss/elopaygateway-sub002/internal/service"
	"github.com/hypersoftss/elopaygateway-sub002/pkg/logger"

	"github.com/shopspring/decimal"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting EloPay Gateway")

	largePayin, err := decimal.NewFromString(cfg.Alerts.LargePayinThreshold)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid large payin threshold")
	}
	largePayout, err := decimal.NewFromString(cfg.Alerts.LargePayoutThreshold)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid large payout threshold")
	}

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	merchantRepo := pgStorage.NewMerchantRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	linkRepo := pgStorage.NewPaymentLinkRepo(pool)
	alertRepo := pgStorage.NewAlertRepo(pool)
	adminRepo := pgStorage.NewAdminRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	dedupCache := redisStorage.NewDedupCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	sigSvc := service.NewDigestSignatureService()
	orderGen := service.NewOrderNoService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Upstream gateway client
	gatewayClient := gateway.NewClient(cfg.Gateway, sigSvc, log)

	// Initialize business services
	alertSvc := service.NewAlertService(alertRepo, log)
	authSvc := service.NewAuthService(adminRepo, hashSvc, tokenSvc, log)
	paymentSvc := service.NewLifecycleService(
		txRepo,
		merchantRepo,
		transactor,
		orderGen,
		gatewayClient,
		alertSvc,
		dedupCache,
		largePayin,
		largePayout,
		log,
	)
	merchantNotifier := service.NewMerchantNotifyService(sigSvc, &http.Client{Timeout: 10 * time.Second}, log)
	callbackSvc := service.NewCallbackService(
		txRepo,
		merchantRepo,
		transactor,
		sigSvc,
		merchantNotifier,
		cfg.Gateway.PayoutKey,
		log,
	)
	linkSvc := service.NewPaymentLinkService(linkRepo, paymentSvc, log)
	merchantSvc := service.NewMerchantService(merchantRepo, log)
	reportingSvc := service.NewReportingService(txRepo, merchantRepo)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)
	gatewayHealth := gateway.NewHealthAdapter(gatewayClient)

	// Background gateway probe raising degradation alerts
	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	monitor := service.NewGatewayHealthMonitor(gatewayClient, alertSvc, cfg.Alerts.HealthProbeInterval, log)
	go monitor.Run(monitorCtx)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		PaymentSvc:     paymentSvc,
		CallbackSvc:    callbackSvc,
		ReportingSvc:   reportingSvc,
		MerchantSvc:    merchantSvc,
		LinkSvc:        linkSvc,
		AlertSvc:       alertSvc,
		MerchantRepo:   merchantRepo,
		SigSvc:         sigSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth, gatewayHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	stopMonitor()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
